package game

// DefaultSnakeColor is the recolor hint before any fruit is eaten
const DefaultSnakeColor = "#00FF00"

// Snake is the player's body on the grid. Segments[0] is the head.
type Snake struct {
	segments  []Position
	direction Direction
	next      Direction // pending direction, committed by Advance
	color     string
	occ       *occupancy
}

// NewSnake creates a StartSegments-long snake at the default anchor, facing right
func NewSnake() *Snake {
	s := &Snake{
		color: DefaultSnakeColor,
		occ:   newOccupancy(),
	}
	s.Reset()
	return s
}

// Reset restores the initial three-segment snake. The color is kept.
func (s *Snake) Reset() {
	s.segments = make([]Position, StartSegments)
	for i := range s.segments {
		s.segments[i] = Position{X: StartX - i, Y: StartY}
	}
	s.direction = Right
	s.next = Right
	s.occ.Rebuild(s.segments)
}

// Head returns the head segment
func (s *Snake) Head() Position {
	return s.segments[0]
}

// Tail returns the last segment
func (s *Snake) Tail() Position {
	return s.segments[len(s.segments)-1]
}

// Len returns the segment count
func (s *Snake) Len() int {
	return len(s.segments)
}

// Segments returns a copy of the body, head first
func (s *Snake) Segments() []Position {
	out := make([]Position, len(s.segments))
	copy(out, s.segments)
	return out
}

// Segment returns segment i without copying the body
func (s *Snake) Segment(i int) Position {
	return s.segments[i]
}

// Direction is the direction committed by the last Advance
func (s *Snake) Direction() Direction {
	return s.direction
}

// NextDirection is the direction the next Advance will take
func (s *Snake) NextDirection() Direction {
	return s.next
}

// Color is the current recolor hint
func (s *Snake) Color() string {
	return s.color
}

// SetColor updates the recolor hint
func (s *Snake) SetColor(c string) {
	if c != "" {
		s.color = c
	}
}

// SetIntendedDirection records d for the next Advance. A request to reverse
// the current direction is ignored.
func (s *Snake) SetIntendedDirection(d Direction) {
	if d == s.direction.Opposite() {
		return
	}
	s.next = d
}

// Advance commits the pending direction and prepends the new head.
// The body grows by one; callers pair it with ShrinkTail for plain moves.
func (s *Snake) Advance() Position {
	s.direction = s.next
	head := s.Head().add(s.direction.Delta())

	s.segments = append(s.segments, Position{})
	copy(s.segments[1:], s.segments)
	s.segments[0] = head
	s.occ.Insert(head)
	return head
}

// ShrinkTail removes and returns the last segment. A single-segment snake
// is left untouched.
func (s *Snake) ShrinkTail() Position {
	tail := s.Tail()
	if len(s.segments) == 1 {
		return tail
	}
	s.segments = s.segments[:len(s.segments)-1]
	s.occ.Remove(tail)
	return tail
}

// GrowTail appends n copies of the tail segment
func (s *Snake) GrowTail(n int) {
	tail := s.Tail()
	for i := 0; i < n; i++ {
		s.segments = append(s.segments, tail)
		s.occ.Insert(tail)
	}
}

// SetHead moves the head in place (used to wrap it onto the grid)
func (s *Snake) SetHead(p Position) {
	s.occ.Remove(s.segments[0])
	s.segments[0] = p
	s.occ.Insert(p)
}

// Occupies reports whether any segment sits on p
func (s *Snake) Occupies(p Position) bool {
	return s.occ.Count(p) > 0
}

// bodyOccupies reports whether a non-head segment sits on p
func (s *Snake) bodyOccupies(p Position) bool {
	n := s.occ.Count(p)
	if p == s.Head() {
		n--
	}
	return n > 0
}

// HasSelfCollision reports whether the head overlaps the body
func (s *Snake) HasSelfCollision() bool {
	return s.bodyOccupies(s.Head())
}

// Reposition rebuilds the body at anchor with the same length. Segments run
// leftward from the anchor; once that would leave the grid they run downward
// instead. Direction resets to right.
func (s *Snake) Reposition(anchor Position) {
	n := len(s.segments)
	segs := make([]Position, n)
	segs[0] = anchor
	for i := 1; i < n; i++ {
		if x := anchor.X - i; x >= 0 {
			segs[i] = Position{X: x, Y: anchor.Y}
		} else {
			segs[i] = Position{X: anchor.X, Y: anchor.Y + i}
		}
	}
	s.segments = segs
	s.direction = Right
	s.next = Right
	s.occ.Rebuild(segs)
}

// Teleport translates the whole body so the head lands on target. It is
// rejected (false, no change) when target overlaps a non-head segment.
// Direction is unchanged.
func (s *Snake) Teleport(target Position) bool {
	if s.bodyOccupies(target) {
		return false
	}
	head := s.Head()
	offset := Position{X: target.X - head.X, Y: target.Y - head.Y}
	for i := range s.segments {
		s.segments[i] = s.segments[i].add(offset)
	}
	s.occ.Rebuild(s.segments)
	return true
}

package game

// State is the engine lifecycle state
type State int

const (
	StateReady State = iota
	StateRunning
	StatePaused // waiting on a difficulty-transition choice
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "game_over"
	}
	return "unknown"
}

// Snapshot is an immutable copy of a session, handed to renderers.
type Snapshot struct {
	State       State
	Mode        Mode
	Skin        Skin
	Segments    []Position
	Direction   Direction
	SnakeColor  string
	Food        Position
	Fruit       Fruit
	ShowFood    bool
	Score       int
	Health      int
	Level       int
	Tier        Tier
	Speed       float64
	FruitsEaten int
	Deaths      int
	Background  string
	// RangeCatch is the segment that caught food from range this tick
	RangeCatch *Position
	// PendingTier is the tier offered by a paused transition
	PendingTier Tier
}

// Head returns the head cell, or the zero Position for an empty snapshot
func (s Snapshot) Head() Position {
	if len(s.Segments) == 0 {
		return Position{}
	}
	return s.Segments[0]
}

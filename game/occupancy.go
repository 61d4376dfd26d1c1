package game

// occupancy is a per-cell segment counter for O(1) "is this cell on the
// snake" queries. Segments may overlap (duplicated tail cells, passes
// through the body in immortal mode), hence counts rather than a set.
type occupancy struct {
	cells map[Position]int
}

func newOccupancy() *occupancy {
	return &occupancy{cells: make(map[Position]int)}
}

// Clear resets all cells
func (o *occupancy) Clear() {
	o.cells = make(map[Position]int)
}

// Rebuild replaces the index with the given segments
func (o *occupancy) Rebuild(segments []Position) {
	o.Clear()
	for _, p := range segments {
		o.cells[p]++
	}
}

// Insert records one more segment at p
func (o *occupancy) Insert(p Position) {
	o.cells[p]++
}

// Remove drops one segment at p
func (o *occupancy) Remove(p Position) {
	n := o.cells[p]
	if n <= 1 {
		delete(o.cells, p)
		return
	}
	o.cells[p] = n - 1
}

// Count returns how many segments sit on p
func (o *occupancy) Count(p Position) int {
	return o.cells[p]
}

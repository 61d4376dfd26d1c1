package game

import (
	"time"

	"golang.org/x/exp/rand"
)

// Autopilot tuning
const (
	AutopilotGiveUpTicks = 120 // seeking the same food this long means we are circling
	AutopilotWanderMin   = 4
	AutopilotWanderMax   = 12
)

// Autopilot steers a snake from snapshots: avoid walls and the body first,
// then head for the food, otherwise wander. It keeps no reference to the
// engine, so callers feed it a snapshot and apply the direction it returns.
type Autopilot struct {
	rng         *rand.Rand
	lastFood    Position
	seekTicks   int
	wander      Direction
	wanderTicks int
}

// NewAutopilot creates an autopilot drawing wander choices from rng, or
// from a clock-seeded source when rng is nil.
func NewAutopilot(rng *rand.Rand) *Autopilot {
	if rng == nil {
		rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return &Autopilot{rng: rng, wander: Right}
}

// Decide returns the direction to take on the next tick.
func (a *Autopilot) Decide(s Snapshot) Direction {
	if len(s.Segments) == 0 {
		return s.Direction
	}
	cur := s.Direction
	body := bodyCells(s.Segments)

	var safe []Direction
	for _, d := range directions {
		if d == cur.Opposite() {
			continue
		}
		if isSafe(s, body, d) {
			safe = append(safe, d)
		}
	}
	if len(safe) == 0 {
		// boxed in: nothing helps, keep going
		return cur
	}

	// Priority 1: seek food, unless we have been chasing it for too long
	if s.Food != a.lastFood {
		a.lastFood = s.Food
		a.seekTicks = 0
	}
	if s.ShowFood && a.seekTicks < AutopilotGiveUpTicks {
		a.seekTicks++
		head := s.Head()
		best, bestDist := safe[0], -1
		for _, d := range safe {
			dist := step(s.Mode, head, d).Manhattan(s.Food)
			if bestDist < 0 || dist < bestDist || (dist == bestDist && d == cur) {
				best, bestDist = d, dist
			}
		}
		return best
	}

	// Priority 2: wander, re-rolling the heading every few ticks
	if a.wanderTicks > 0 && contains(safe, a.wander) {
		a.wanderTicks--
		return a.wander
	}
	a.wander = safe[a.rng.Intn(len(safe))]
	a.wanderTicks = AutopilotWanderMin + a.rng.Intn(AutopilotWanderMax-AutopilotWanderMin+1)
	if a.seekTicks >= AutopilotGiveUpTicks {
		a.seekTicks = 0
	}
	return a.wander
}

// bodyCells indexes the cells that will still be occupied after the next
// move. The tail leaves its cell, so it is excluded.
func bodyCells(segs []Position) map[Position]bool {
	cells := make(map[Position]bool, len(segs))
	for _, p := range segs[:len(segs)-1] {
		cells[p] = true
	}
	return cells
}

func step(m Mode, head Position, d Direction) Position {
	next := head.add(d.Delta())
	if m.Wraps() {
		next = next.Wrap()
	}
	return next
}

func isSafe(s Snapshot, body map[Position]bool, d Direction) bool {
	if s.Mode == ModeImmortal {
		return true
	}
	next := step(s.Mode, s.Head(), d)
	if !next.InBounds() {
		return false
	}
	return !body[next]
}

func contains(ds []Direction, d Direction) bool {
	for _, x := range ds {
		if x == d {
			return true
		}
	}
	return false
}

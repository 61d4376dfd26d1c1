package game

import (
	"testing"

	"golang.org/x/exp/rand"
)

func TestAutopilotAvoidsWall(t *testing.T) {
	a := NewAutopilot(rand.New(rand.NewSource(1)))
	snap := Snapshot{
		Segments:  []Position{{GridWidth - 1, 10}, {GridWidth - 2, 10}, {GridWidth - 3, 10}},
		Direction: Right,
		Food:      Position{GridWidth - 1, 20},
		ShowFood:  true,
	}
	if got := a.Decide(snap); got != Down {
		t.Errorf("Decide = %v, want down toward food and away from the wall", got)
	}
}

func TestAutopilotAvoidsBody(t *testing.T) {
	a := NewAutopilot(rand.New(rand.NewSource(1)))
	// body wraps around above the head; food is straight up
	snap := Snapshot{
		Segments:  []Position{{5, 5}, {4, 5}, {4, 4}, {5, 4}, {6, 4}, {7, 4}},
		Direction: Right,
		Food:      Position{5, 0},
		ShowFood:  true,
	}
	got := a.Decide(snap)
	if got == Up || got == Left {
		t.Errorf("Decide = %v steers into the body", got)
	}
}

func TestAutopilotWrapModeCrossesEdge(t *testing.T) {
	a := NewAutopilot(rand.New(rand.NewSource(1)))
	snap := Snapshot{
		Mode:      ModeWrap,
		Segments:  []Position{{GridWidth - 1, 10}, {GridWidth - 2, 10}},
		Direction: Right,
		Food:      Position{0, 10},
		ShowFood:  true,
	}
	if got := a.Decide(snap); got != Right {
		t.Errorf("Decide = %v, want right across the wrapped edge", got)
	}
}

func TestAutopilotPlaysSafely(t *testing.T) {
	te := newTestEngine(t)
	te.Start()
	a := NewAutopilot(rand.New(rand.NewSource(9)))
	for i := 0; i < 400 && te.State() == StateRunning; i++ {
		te.SetDirection(a.Decide(te.Snapshot()))
		te.Tick()
	}
	if te.Score() == 0 {
		t.Errorf("autopilot never reached food")
	}
	if te.State() == StatePaused {
		if err := te.ResolveTransition(ChoiceContinue); err != nil {
			t.Fatal(err)
		}
	}
}

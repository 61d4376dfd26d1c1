package game

import (
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestLoopTicks(t *testing.T) {
	var ticks atomic.Int32
	l := NewLoop(func(uint64) { ticks.Add(1) })
	l.Start(5 * time.Millisecond)
	defer l.Stop()

	waitFor(t, func() bool { return ticks.Load() >= 3 }, time.Second)
	if !l.Running() {
		t.Error("loop not running")
	}
}

func TestLoopStopHaltsTicks(t *testing.T) {
	var ticks atomic.Int32
	l := NewLoop(func(uint64) { ticks.Add(1) })
	l.Start(2 * time.Millisecond)
	waitFor(t, func() bool { return ticks.Load() >= 1 }, time.Second)

	l.Stop()
	if l.Running() {
		t.Fatal("loop still running after Stop")
	}
	// an in-flight tick may still land; after that the count must freeze
	time.Sleep(10 * time.Millisecond)
	n := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if got := ticks.Load(); got != n {
		t.Errorf("ticks grew from %d to %d after Stop", n, got)
	}
}

func TestLoopStopFromInsideTick(t *testing.T) {
	var l *Loop
	var ticks atomic.Int32
	l = NewLoop(func(uint64) {
		ticks.Add(1)
		l.Stop()
	})
	l.Start(2 * time.Millisecond)

	waitFor(t, func() bool { return !l.Running() }, time.Second)
	time.Sleep(20 * time.Millisecond)
	if got := ticks.Load(); got != 1 {
		t.Errorf("ticks = %d, want 1", got)
	}
}

func TestLoopReschedule(t *testing.T) {
	l := NewLoop(func(uint64) {})
	l.Reschedule(50 * time.Millisecond)
	if l.Running() {
		t.Error("Reschedule started a stopped loop")
	}
	if l.Interval() != 50*time.Millisecond {
		t.Errorf("interval = %v", l.Interval())
	}

	l.Start(time.Hour)
	defer l.Stop()
	l.Reschedule(10 * time.Millisecond)
	if l.Interval() != 10*time.Millisecond {
		t.Errorf("interval = %v after reschedule", l.Interval())
	}
}

func TestLoopRestart(t *testing.T) {
	var ticks atomic.Int32
	l := NewLoop(func(uint64) { ticks.Add(1) })
	l.Start(time.Hour)
	l.Start(2 * time.Millisecond)
	defer l.Stop()
	waitFor(t, func() bool { return ticks.Load() >= 2 }, time.Second)
}

func TestLoopTokensPerRun(t *testing.T) {
	seen := make(chan uint64, 16)
	l := NewLoop(func(token uint64) {
		select {
		case seen <- token:
		default:
		}
	})
	first := l.Start(time.Hour)
	second := l.Start(2 * time.Millisecond)
	defer l.Stop()
	if first == 0 || second == first {
		t.Fatalf("tokens = %d, %d; want distinct and non-zero", first, second)
	}
	select {
	case got := <-seen:
		if got != second {
			t.Errorf("tick token = %d, want %d", got, second)
		}
	case <-time.After(time.Second):
		t.Fatal("no tick")
	}
}

// A tick fired by the run before a reset may be blocked on the engine lock
// while Reset and Start run. When it finally gets the lock it must leave the
// new session alone.
func TestStaleTickAfterResetIsDropped(t *testing.T) {
	te := newTestEngine(t)
	te.Start()
	stale := te.armed

	te.Reset()
	te.Start()
	if te.armed == stale {
		t.Fatalf("restart reused token %d", stale)
	}

	te.runTick(stale)
	if got := te.snake.Head(); got != (Position{X: StartX, Y: StartY}) {
		t.Fatalf("stale tick ran on the reset session: head %v", got)
	}
	te.runTick(te.armed)
	if got := te.snake.Head(); got != (Position{X: StartX + 1, Y: StartY}) {
		t.Errorf("current tick: head %v, want %v", got, Position{X: StartX + 1, Y: StartY})
	}
}

func TestStaleTickAfterResetOnRealLoop(t *testing.T) {
	e := New(WithSeed(5))
	e.Start()
	defer e.Stop()

	// hold the lock across a tick boundary so the loop goroutine blocks
	// inside runTick with the old token
	e.mu.Lock()
	time.Sleep(3 * TickInterval(InitialSpeed))
	e.disarm()
	e.resetLocked()
	e.state = StateRunning
	e.armed = e.sched.Start(time.Hour)
	e.mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	if got := e.Snapshot().Head(); got != (Position{X: StartX, Y: StartY}) {
		t.Errorf("stale tick ran on the reset session: head %v, want %v", got, Position{X: StartX, Y: StartY})
	}
}

func TestTickAfterStopIsDropped(t *testing.T) {
	te := newTestEngine(t)
	te.Start()
	token := te.armed
	te.Stop()
	te.runTick(token)
	if got := te.snake.Head(); got != (Position{X: StartX, Y: StartY}) {
		t.Errorf("tick from a stopped run moved the head to %v", got)
	}
}

func TestEngineOnRealLoop(t *testing.T) {
	frames := make(chan Snapshot, 64)
	e := New(
		WithSeed(11),
		WithMode(ModeImmortal),
		WithRenderer(RendererFunc(func(s Snapshot) {
			select {
			case frames <- s:
			default:
			}
		})),
	)
	e.Start()
	defer e.Stop()

	deadline := time.After(2 * time.Second)
	for n := 0; n < 3; {
		select {
		case <-frames:
			n++
		case <-deadline:
			t.Fatal("engine did not tick on its own loop")
		}
	}
}

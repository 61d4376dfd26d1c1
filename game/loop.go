package game

import (
	"sync"
	"time"
)

// Scheduler drives the engine's ticks. Start returns a token identifying
// the run; the loop hands that token to every tick it fires so a tick from
// a cancelled run can be told apart. Reschedule replaces the current
// interval without letting two intervals race; Stop may be called from
// inside a tick.
type Scheduler interface {
	Start(interval time.Duration) uint64
	Reschedule(interval time.Duration)
	Stop()
}

// Loop is a ticker-backed Scheduler. One goroutine dispatches ticks in
// sequence, so a tick always completes before the next one fires.
type Loop struct {
	tick func(token uint64)

	mu       sync.Mutex
	ticker   *time.Ticker
	done     chan struct{}
	interval time.Duration
	runs     uint64
}

// NewLoop creates a stopped loop that calls tick with the run's token on
// every interval
func NewLoop(tick func(token uint64)) *Loop {
	return &Loop{tick: tick}
}

// Start (re)starts the loop at interval and returns the new run's token.
// A previous run is cancelled first. Tokens start at 1.
func (l *Loop) Start(interval time.Duration) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()

	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	l.runs++
	l.ticker = ticker
	l.done = done
	l.interval = interval
	go l.run(ticker, done, l.runs)
	return l.runs
}

// Reschedule changes the interval of a running loop. On a stopped loop it
// only records the interval for the next Start.
func (l *Loop) Reschedule(interval time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.interval = interval
	if l.ticker != nil {
		l.ticker.Reset(interval)
	}
}

// Stop cancels the loop. It does not wait for an in-flight tick.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

// Running reports whether the loop is ticking
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticker != nil
}

// Interval returns the current tick interval
func (l *Loop) Interval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.interval
}

func (l *Loop) stopLocked() {
	if l.ticker == nil {
		return
	}
	l.ticker.Stop()
	close(l.done)
	l.ticker = nil
	l.done = nil
}

func (l *Loop) run(ticker *time.Ticker, done <-chan struct{}, token uint64) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			// a stop may race with a ready tick
			select {
			case <-done:
				return
			default:
			}
			l.tick(token)
		}
	}
}

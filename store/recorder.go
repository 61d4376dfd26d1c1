package store

import (
	"context"
	"log"
	"sync"
	"time"
)

// Recorder defaults
const (
	DefaultQueueSize   = 64
	DefaultCallTimeout = 5 * time.Second
)

type job struct {
	desc string
	run  func(ctx context.Context) error
}

// AsyncRecorder forwards game events to a Store from a single background
// worker. Calls never block the caller: a full queue drops the event, and
// store failures are logged and swallowed.
type AsyncRecorder struct {
	store   Store
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	done   chan struct{}
}

// RecorderOption configures an AsyncRecorder
type RecorderOption func(*AsyncRecorder)

// WithQueueSize sets the number of pending events before drops begin
func WithQueueSize(n int) RecorderOption {
	return func(r *AsyncRecorder) {
		if n > 0 {
			r.jobs = make(chan job, n)
		}
	}
}

// WithCallTimeout bounds each store call
func WithCallTimeout(d time.Duration) RecorderOption {
	return func(r *AsyncRecorder) { r.timeout = d }
}

// NewAsyncRecorder starts the worker. Close it to drain and stop.
func NewAsyncRecorder(s Store, opts ...RecorderOption) *AsyncRecorder {
	r := &AsyncRecorder{
		store:   s,
		timeout: DefaultCallTimeout,
		jobs:    make(chan job, DefaultQueueSize),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.worker()
	return r
}

// RecordScore queues a score submission. Guests (empty id) are skipped.
func (r *AsyncRecorder) RecordScore(playerID string, score, level int) {
	if playerID == "" {
		return
	}
	r.enqueue(job{
		desc: "save score for " + playerID,
		run: func(ctx context.Context) error {
			return r.store.SaveScore(ctx, playerID, score, level)
		},
	})
}

// UnlockAchievement queues an achievement unlock. Guests are skipped.
func (r *AsyncRecorder) UnlockAchievement(playerID, name string) {
	if playerID == "" {
		return
	}
	r.enqueue(job{
		desc: "unlock " + name + " for " + playerID,
		run: func(ctx context.Context) error {
			return r.store.UnlockAchievement(ctx, playerID, name)
		},
	})
}

func (r *AsyncRecorder) enqueue(j job) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		log.Printf("recorder closed, dropping: %s", j.desc)
		return
	}
	select {
	case r.jobs <- j:
	default:
		log.Printf("recorder queue full, dropping: %s", j.desc)
	}
}

func (r *AsyncRecorder) worker() {
	defer close(r.done)
	for j := range r.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := j.run(ctx); err != nil {
			log.Printf("recorder: %s: %v", j.desc, err)
		}
		cancel()
	}
}

// Close stops accepting events and waits for queued ones to finish, or for
// ctx to expire.
func (r *AsyncRecorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.jobs)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

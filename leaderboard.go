package main

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/renantrendt/snake-gms/store"
)

// Leaderboard periodically reloads the top scores and pushes them to every
// connection.
type Leaderboard struct {
	store    store.Store
	hub      *Hub
	interval time.Duration

	mu      sync.RWMutex
	current LeaderboardMsg
}

// NewLeaderboard creates a refresher bound to st and hub
func NewLeaderboard(st store.Store, hub *Hub, interval time.Duration) *Leaderboard {
	return &Leaderboard{
		store:    st,
		hub:      hub,
		interval: interval,
		current:  LeaderboardMsg{Type: MsgLeaderboard, Entries: []LeaderboardEntry{}},
	}
}

// Run refreshes on every interval until ctx is cancelled.
func (lb *Leaderboard) Run(ctx context.Context) {
	ticker := time.NewTicker(lb.interval)
	defer ticker.Stop()
	log.Printf("leaderboard refresher started every %v", lb.interval)

	lb.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lb.refresh(ctx)
		}
	}
}

// refresh loads the top scores and broadcasts them
func (lb *Leaderboard) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, StoreTimeout)
	defer cancel()

	scores, err := lb.store.TopScores(ctx, LeaderboardSize)
	if err != nil {
		log.Printf("leaderboard refresh: %v", err)
		return
	}
	msg := newLeaderboardMsg(scores)

	lb.mu.Lock()
	lb.current = msg
	lb.mu.Unlock()

	lb.hub.Broadcast(msg)
}

// Current returns the last loaded leaderboard
func (lb *Leaderboard) Current() LeaderboardMsg {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return lb.current
}

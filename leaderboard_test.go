package main

import (
	"context"
	"testing"
	"time"

	"github.com/renantrendt/snake-gms/store"
)

func TestLeaderboardRefreshBroadcasts(t *testing.T) {
	ts := newTestServer(t, Config{}, 0)
	ws := ts.dial(t, "")
	readUntil(t, ws, MsgLeaderboard)

	ctx := context.Background()
	p, _, err := ts.store.GetOrCreatePlayer(ctx, "ana")
	if err != nil {
		t.Fatal(err)
	}
	if err := ts.store.SaveScore(ctx, p.ID, 4200, 5); err != nil {
		t.Fatal(err)
	}

	lb := NewLeaderboard(ts.store, ts.hub, time.Hour)
	lb.refresh(ctx)

	if cur := lb.Current(); len(cur.Entries) != 1 || cur.Entries[0].Name != "ana" {
		t.Errorf("Current = %+v", cur)
	}
	l := readUntil(t, ws, MsgLeaderboard)
	entries, _ := l["l"].([]any)
	if len(entries) != 1 {
		t.Fatalf("broadcast = %v", l)
	}
	if e := entries[0].(map[string]any); e["n"] != "ana" || e["p"].(float64) != 4200 {
		t.Errorf("entry = %v", e)
	}
}

type brokenStore struct{ store.Store }

func (brokenStore) TopScores(context.Context, int) ([]store.ScoreEntry, error) {
	return nil, context.DeadlineExceeded
}

func TestLeaderboardKeepsLastOnError(t *testing.T) {
	lb := NewLeaderboard(brokenStore{}, NewHub(store.NewMemoryStore(), nil), time.Hour)
	lb.refresh(context.Background())
	if cur := lb.Current(); cur.Type != MsgLeaderboard || len(cur.Entries) != 0 {
		t.Errorf("Current = %+v", cur)
	}
}

func TestLeaderboardRunStopsOnCancel(t *testing.T) {
	lb := NewLeaderboard(store.NewMemoryStore(), NewHub(store.NewMemoryStore(), nil), 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		lb.Run(ctx)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

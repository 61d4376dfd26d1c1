package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. It backs the server when
// no remote database is configured, and the tests.
type MemoryStore struct {
	mu           sync.RWMutex
	now          func() time.Time
	players      map[string]*Player // id -> player
	byName       map[string]string  // username -> id
	best         map[string]ScoreEntry
	achievements map[string]map[string]time.Time // player id -> name -> earned at
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:          time.Now,
		players:      make(map[string]*Player),
		byName:       make(map[string]string),
		best:         make(map[string]ScoreEntry),
		achievements: make(map[string]map[string]time.Time),
	}
}

func (m *MemoryStore) GetOrCreatePlayer(ctx context.Context, username string) (Player, bool, error) {
	name, err := NormalizeUsername(username)
	if err != nil {
		return Player{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return Player{}, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if id, ok := m.byName[name]; ok {
		p := m.players[id]
		p.LastLogin = now
		return *p, false, nil
	}
	p := &Player{
		ID:        uuid.New().String(),
		Username:  name,
		CreatedAt: now,
		LastLogin: now,
	}
	m.players[p.ID] = p
	m.byName[name] = p.ID
	return *p, true, nil
}

func (m *MemoryStore) SaveScore(ctx context.Context, playerID string, score, level int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[playerID]
	if !ok {
		return ErrNotFound
	}
	if prev, ok := m.best[playerID]; ok && score <= prev.Score {
		return nil
	}
	m.best[playerID] = ScoreEntry{
		PlayerID:  playerID,
		Username:  p.Username,
		Score:     score,
		Level:     level,
		CreatedAt: m.now(),
	}
	return nil
}

func (m *MemoryStore) TopScores(ctx context.Context, limit int) ([]ScoreEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]ScoreEntry, 0, len(m.best))
	for _, e := range m.best {
		out = append(out, e)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) UnlockAchievement(ctx context.Context, playerID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[playerID]; !ok {
		return ErrNotFound
	}
	set, ok := m.achievements[playerID]
	if !ok {
		set = make(map[string]time.Time)
		m.achievements[playerID] = set
	}
	if _, ok := set[name]; !ok {
		set[name] = m.now()
	}
	return nil
}

func (m *MemoryStore) Achievements(ctx context.Context, playerID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := m.achievements[playerID]
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

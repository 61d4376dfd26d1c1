// Package store persists player profiles, best scores and achievements.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxUsernameLen is the longest accepted username, in characters
const MaxUsernameLen = 50

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidUsername = errors.New("invalid username")
)

// Player is a persisted player profile
type Player struct {
	ID              string    `json:"id" msgpack:"id"`
	Username        string    `json:"username" msgpack:"username"`
	CreatedAt       time.Time `json:"created_at" msgpack:"created_at"`
	LastLogin       time.Time `json:"last_login" msgpack:"last_login"`
	HasSeenTutorial bool      `json:"has_seen_tutorial" msgpack:"has_seen_tutorial"`
}

// ScoreEntry is one player's best score
type ScoreEntry struct {
	PlayerID  string    `json:"player_id" msgpack:"p"`
	Username  string    `json:"username" msgpack:"n"`
	Score     int       `json:"score" msgpack:"s"`
	Level     int       `json:"level" msgpack:"l"`
	CreatedAt time.Time `json:"created_at" msgpack:"t"`
}

// Store is the persistence contract the game needs. Every call is
// context-aware; implementations must be safe for concurrent use.
type Store interface {
	// GetOrCreatePlayer returns the profile for username, creating it if
	// needed. created reports whether a new profile was made.
	GetOrCreatePlayer(ctx context.Context, username string) (p Player, created bool, err error)
	// SaveScore keeps score only if it beats the player's personal best.
	SaveScore(ctx context.Context, playerID string, score, level int) error
	// TopScores returns one best entry per player, highest first.
	TopScores(ctx context.Context, limit int) ([]ScoreEntry, error)
	// UnlockAchievement is idempotent.
	UnlockAchievement(ctx context.Context, playerID, name string) error
	Achievements(ctx context.Context, playerID string) ([]string, error)
}

// NormalizeUsername trims name and checks its length
func NormalizeUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidUsername)
	}
	if utf8.RuneCountInString(name) > MaxUsernameLen {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidUsername, MaxUsernameLen)
	}
	return name, nil
}

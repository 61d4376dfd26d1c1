package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// PostgREST error code for a unique violation
const codeUniqueViolation = "23505"

// APIError is a non-2xx response from the REST endpoint
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: %d %s", e.Status, e.Message)
}

// isConflict reports whether err is a duplicate-row rejection
func isConflict(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusConflict || apiErr.Code == codeUniqueViolation
}

// SupabaseStore talks to a Supabase project's PostgREST API. Tables:
// players, scores, achievements and player_achievements.
type SupabaseStore struct {
	baseURL string
	key     string
	client  *http.Client
	now     func() time.Time
}

// NewSupabaseStore creates a client for the project at projectURL using
// the given API key.
func NewSupabaseStore(projectURL, key string, client *http.Client) *SupabaseStore {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SupabaseStore{
		baseURL: strings.TrimRight(projectURL, "/") + "/rest/v1/",
		key:     key,
		client:  client,
		now:     time.Now,
	}
}

// do sends one request. body is JSON-encoded when non-nil and the response
// is decoded into out when non-nil.
func (s *SupabaseStore) do(ctx context.Context, method, table string, query url.Values, body, out any) error {
	u := s.baseURL + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", table, err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s response: %w", table, err)
	}
	return nil
}

func eq(v string) string { return "eq." + v }

type playerRow struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	CreatedAt       time.Time  `json:"created_at"`
	LastLogin       *time.Time `json:"last_login"`
	HasSeenTutorial bool       `json:"has_seen_tutorial"`
}

func (r playerRow) player() Player {
	p := Player{ID: r.ID, Username: r.Username, CreatedAt: r.CreatedAt, HasSeenTutorial: r.HasSeenTutorial}
	if r.LastLogin != nil {
		p.LastLogin = *r.LastLogin
	}
	return p
}

func (s *SupabaseStore) GetOrCreatePlayer(ctx context.Context, username string) (Player, bool, error) {
	name, err := NormalizeUsername(username)
	if err != nil {
		return Player{}, false, err
	}

	var rows []playerRow
	q := url.Values{"select": {"*"}, "username": {eq(name)}, "limit": {"1"}}
	if err := s.do(ctx, http.MethodGet, "players", q, nil, &rows); err != nil {
		return Player{}, false, fmt.Errorf("fetch player: %w", err)
	}

	if len(rows) > 0 {
		var updated []playerRow
		q := url.Values{"id": {eq(rows[0].ID)}}
		body := map[string]any{"last_login": s.now().UTC().Format(time.RFC3339)}
		if err := s.do(ctx, http.MethodPatch, "players", q, body, &updated); err != nil {
			return Player{}, false, fmt.Errorf("update last login: %w", err)
		}
		if len(updated) > 0 {
			return updated[0].player(), false, nil
		}
		return rows[0].player(), false, nil
	}

	var created []playerRow
	body := []map[string]any{{"username": name}}
	if err := s.do(ctx, http.MethodPost, "players", nil, body, &created); err != nil {
		return Player{}, false, fmt.Errorf("create player: %w", err)
	}
	if len(created) == 0 {
		return Player{}, false, fmt.Errorf("create player: %w", ErrNotFound)
	}
	return created[0].player(), true, nil
}

type scoreRow struct {
	ID        int64     `json:"id,omitempty"`
	PlayerID  string    `json:"player_id"`
	Score     int       `json:"score"`
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	Players   *struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"players,omitempty"`
}

// SaveScore replaces the player's score rows with the new one when it
// beats every existing row.
func (s *SupabaseStore) SaveScore(ctx context.Context, playerID string, score, level int) error {
	var existing []scoreRow
	q := url.Values{"select": {"id,score"}, "player_id": {eq(playerID)}}
	if err := s.do(ctx, http.MethodGet, "scores", q, nil, &existing); err != nil {
		return fmt.Errorf("fetch scores: %w", err)
	}

	best := 0
	for _, r := range existing {
		if r.Score > best {
			best = r.Score
		}
	}
	if score <= best {
		return nil
	}

	if len(existing) > 0 {
		q := url.Values{"player_id": {eq(playerID)}}
		if err := s.do(ctx, http.MethodDelete, "scores", q, nil, nil); err != nil {
			return fmt.Errorf("delete old scores: %w", err)
		}
	}

	body := []map[string]any{{"player_id": playerID, "score": score, "level": level}}
	if err := s.do(ctx, http.MethodPost, "scores", nil, body, nil); err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (s *SupabaseStore) TopScores(ctx context.Context, limit int) ([]ScoreEntry, error) {
	var rows []scoreRow
	q := url.Values{
		"select": {"id,score,level,created_at,player_id,players(id,username)"},
		"order":  {"score.desc"},
	}
	if err := s.do(ctx, http.MethodGet, "scores", q, nil, &rows); err != nil {
		return nil, fmt.Errorf("fetch top scores: %w", err)
	}

	best := make(map[string]ScoreEntry, len(rows))
	for _, r := range rows {
		if prev, ok := best[r.PlayerID]; ok && prev.Score >= r.Score {
			continue
		}
		e := ScoreEntry{PlayerID: r.PlayerID, Score: r.Score, Level: r.Level, CreatedAt: r.CreatedAt}
		if r.Players != nil {
			e.Username = r.Players.Username
		}
		best[r.PlayerID] = e
	}

	out := make([]ScoreEntry, 0, len(best))
	for _, e := range best {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type achievementRow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// achievementID looks up an achievement row, creating it on first use
func (s *SupabaseStore) achievementID(ctx context.Context, name string) (int64, error) {
	var rows []achievementRow
	q := url.Values{"select": {"id"}, "name": {eq(name)}, "limit": {"1"}}
	if err := s.do(ctx, http.MethodGet, "achievements", q, nil, &rows); err != nil {
		return 0, fmt.Errorf("fetch achievement %q: %w", name, err)
	}
	if len(rows) > 0 {
		return rows[0].ID, nil
	}

	body := []map[string]any{{
		"name":        name,
		"description": "Achievement: " + name,
		"icon_url":    "🏆",
	}}
	if err := s.do(ctx, http.MethodPost, "achievements", nil, body, &rows); err != nil {
		return 0, fmt.Errorf("create achievement %q: %w", name, err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("create achievement %q: %w", name, ErrNotFound)
	}
	return rows[0].ID, nil
}

func (s *SupabaseStore) UnlockAchievement(ctx context.Context, playerID, name string) error {
	id, err := s.achievementID(ctx, name)
	if err != nil {
		return err
	}
	body := []map[string]any{{"player_id": playerID, "achievement_id": id}}
	err = s.do(ctx, http.MethodPost, "player_achievements", nil, body, nil)
	if err != nil && !isConflict(err) {
		return fmt.Errorf("unlock %q: %w", name, err)
	}
	return nil
}

func (s *SupabaseStore) Achievements(ctx context.Context, playerID string) ([]string, error) {
	var rows []struct {
		Achievements *struct {
			Name string `json:"name"`
		} `json:"achievements"`
	}
	q := url.Values{"select": {"earned_at,achievements(name)"}, "player_id": {eq(playerID)}}
	if err := s.do(ctx, http.MethodGet, "player_achievements", q, nil, &rows); err != nil {
		return nil, fmt.Errorf("fetch achievements: %w", err)
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Achievements != nil {
			names = append(names, r.Achievements.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

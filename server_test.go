package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/renantrendt/snake-gms/game"
	"github.com/renantrendt/snake-gms/store"
	"github.com/vmihailenco/msgpack/v5"
)

// idleScheduler never ticks, so the only frames are the ones a test provokes
type idleScheduler struct{}

func (idleScheduler) Start(time.Duration) uint64 { return 1 }
func (idleScheduler) Reschedule(time.Duration)   {}
func (idleScheduler) Stop()                      {}

type testServer struct {
	*httptest.Server
	hub   *Hub
	store *store.MemoryStore
	rec   *store.AsyncRecorder
}

func newTestServer(t *testing.T, cfg Config, cooldown time.Duration) *testServer {
	t.Helper()
	st := store.NewMemoryStore()
	rec := store.NewAsyncRecorder(st)
	hub := NewHub(st, rec, game.WithScheduler(idleScheduler{}), game.WithSeed(7))
	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = 10
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = t.TempDir()
	}
	s := &server{
		cfg:     cfg,
		hub:     hub,
		store:   st,
		board:   NewLeaderboard(st, hub, time.Hour),
		limiter: newIPRateLimiter(cooldown),
	}
	srv := httptest.NewServer(s.routes())
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = rec.Close(ctx)
	})
	return &testServer{Server: srv, hub: hub, store: st, rec: rec}
}

func (ts *testServer) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + WebSocketPath
	if query != "" {
		u += "?" + query
	}
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return m
}

// readUntil skips frames until one of type typ arrives
func readUntil(t *testing.T, ws *websocket.Conn, typ string) map[string]any {
	t.Helper()
	for i := 0; i < 20; i++ {
		if m := readFrame(t, ws); m["t"] == typ {
			return m
		}
	}
	t.Fatalf("no %q frame within 20 frames", typ)
	return nil
}

func send(t *testing.T, ws *websocket.Conn, msg string) {
	t.Helper()
	if err := ws.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWelcomeAndLeaderboardOnConnect(t *testing.T) {
	ts := newTestServer(t, Config{}, 0)
	ws := ts.dial(t, "")

	w := readFrame(t, ws)
	if w["t"] != MsgWelcome || w["i"] == "" {
		t.Fatalf("first frame = %v", w)
	}
	if w["gw"].(float64) != game.GridWidth || w["gh"].(float64) != game.GridHeight {
		t.Errorf("grid = %vx%v", w["gw"], w["gh"])
	}
	if l := readFrame(t, ws); l["t"] != MsgLeaderboard {
		t.Errorf("second frame = %v", l)
	}
}

func TestJoinSendsProfileAndState(t *testing.T) {
	ts := newTestServer(t, Config{}, 0)
	ws := ts.dial(t, "")
	readUntil(t, ws, MsgLeaderboard)

	send(t, ws, `{"t":"j","n":"  ana ","s":"rainbow","m":"wrap"}`)
	p := readUntil(t, ws, MsgProfile)
	if p["n"] != "ana" {
		t.Errorf("name = %v", p["n"])
	}
	// Rainbow is locked for a new player
	if p["s"] != game.SkinDefault.String() {
		t.Errorf("skin = %v, want fallback to default", p["s"])
	}
	if p["m"] != "wrap" {
		t.Errorf("mode = %v", p["m"])
	}
	achievements, _ := p["a"].([]any)
	if len(achievements) != 1 || achievements[0] != game.AchievementFirstTimer {
		t.Errorf("achievements = %v", p["a"])
	}

	s := readUntil(t, ws, MsgState)
	if s["st"] != "running" || s["l"].(float64) != 1 || s["h"].(float64) != game.MaxHealth {
		t.Errorf("state = %v", s)
	}
	if segs := s["s"].([]any); len(segs) != game.StartSegments {
		t.Errorf("segments = %v", segs)
	}
	if ts.hub.Count() != 1 {
		t.Errorf("Count = %d", ts.hub.Count())
	}
}

func TestMessagesBeforeJoinAreRejected(t *testing.T) {
	ts := newTestServer(t, Config{}, 0)
	ws := ts.dial(t, "")
	readUntil(t, ws, MsgLeaderboard)

	send(t, ws, `{"t":"d","d":"u"}`)
	e := readUntil(t, ws, MsgError)
	if e["m"] != "join first" {
		t.Errorf("error = %v", e["m"])
	}
}

func TestInvalidRequestsAfterJoin(t *testing.T) {
	ts := newTestServer(t, Config{}, 0)
	ws := ts.dial(t, "")
	send(t, ws, `{"t":"j","n":"bo"}`)
	readUntil(t, ws, MsgState)

	cases := []struct {
		msg  string
		want string
	}{
		{`{"t":"d","d":"sideways"}`, "unknown direction"},
		{`{"t":"c","c":"c"}`, game.ErrNoTransitionPending.Error()},
		{`{"t":"c","c":"maybe"}`, "unknown choice"},
		{`{"t":"p","x":5,"y":5}`, "teleport rejected"},
		{`{"t":"z"}`, "unknown message type z"},
	}
	for _, c := range cases {
		send(t, ws, c.msg)
		e := readUntil(t, ws, MsgError)
		if m, _ := e["m"].(string); !strings.Contains(m, c.want) {
			t.Errorf("%s: error = %q, want %q", c.msg, m, c.want)
		}
	}
}

func TestRestartRedrawsFreshGame(t *testing.T) {
	ts := newTestServer(t, Config{}, 0)
	ws := ts.dial(t, "")
	send(t, ws, `{"t":"j","n":"cy"}`)
	readUntil(t, ws, MsgState)

	send(t, ws, `{"t":"r"}`)
	s := readUntil(t, ws, MsgState)
	if s["p"].(float64) != 0 {
		t.Errorf("score after restart = %v", s["p"])
	}
}

func TestMsgpackEncoding(t *testing.T) {
	ts := newTestServer(t, Config{}, 0)
	ws := ts.dial(t, "enc=msgpack")

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	frame, raw, err := ws.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if frame != websocket.BinaryMessage {
		t.Fatalf("frame type = %d, want binary", frame)
	}
	var w WelcomeMsg
	if err := msgpack.Unmarshal(raw, &w); err != nil {
		t.Fatal(err)
	}
	if w.Type != MsgWelcome || w.GridW != game.GridWidth || w.ID == "" {
		t.Errorf("welcome = %+v", w)
	}
}

func TestConnectionLimits(t *testing.T) {
	t.Run("server full", func(t *testing.T) {
		ts := newTestServer(t, Config{MaxPlayers: 1}, 0)
		first := ts.dial(t, "")
		readUntil(t, first, MsgLeaderboard)

		second := ts.dial(t, "")
		e := readFrame(t, second)
		if e["t"] != MsgError || !strings.Contains(e["m"].(string), "Server full") {
			t.Errorf("second connection got %v", e)
		}
	})

	t.Run("ip cooldown", func(t *testing.T) {
		ts := newTestServer(t, Config{}, time.Minute)
		first := ts.dial(t, "")
		readUntil(t, first, MsgLeaderboard)

		second := ts.dial(t, "")
		e := readFrame(t, second)
		if e["t"] != MsgError || !strings.Contains(e["m"].(string), "Too many connections") {
			t.Errorf("second connection got %v", e)
		}
	})
}

func TestDisconnectForgetsSession(t *testing.T) {
	ts := newTestServer(t, Config{}, 0)
	ws := ts.dial(t, "")
	send(t, ws, `{"t":"j","n":"di"}`)
	readUntil(t, ws, MsgState)
	ws.Close()

	deadline := time.Now().Add(2 * time.Second)
	for ts.hub.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection still registered after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestScoresEndpoint(t *testing.T) {
	ts := newTestServer(t, Config{}, 0)
	ctx := context.Background()
	for i, name := range []string{"ana", "bo", "cy"} {
		p, _, err := ts.store.GetOrCreatePlayer(ctx, name)
		if err != nil {
			t.Fatal(err)
		}
		if err := ts.store.SaveScore(ctx, p.ID, (i+1)*1000, i+1); err != nil {
			t.Fatal(err)
		}
	}

	resp, err := http.Get(ts.URL + ScoresPath + "?limit=2")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var scores []store.ScoreEntry
	if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
		t.Fatal(err)
	}
	if len(scores) != 2 || scores[0].Username != "cy" || scores[0].Score != 3000 {
		t.Errorf("scores = %+v", scores)
	}

	for _, q := range []string{"?limit=0", "?limit=abc", "?limit=1000"} {
		resp, err := http.Get(ts.URL + ScoresPath + q)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d", q, resp.StatusCode)
		}
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+ScoresPath, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d", resp.StatusCode)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	if got := clientIP(r); got != "10.0.0.9" {
		t.Errorf("RemoteAddr ip = %q", got)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(r); got != "203.0.113.7" {
		t.Errorf("forwarded ip = %q", got)
	}
}

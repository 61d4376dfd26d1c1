package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/renantrendt/snake-gms/game"
	"github.com/renantrendt/snake-gms/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development; tighten in production
		return true
	},
	ReadBufferSize:    1024,
	WriteBufferSize:   4096,
	EnableCompression: true,
}

// sendErrorAndClose sends an error message via WebSocket then closes the connection
func sendErrorAndClose(ws *websocket.Conn, msg string) {
	data, _ := json.Marshal(ErrorMsg{Type: MsgError, Message: msg})
	_ = ws.WriteMessage(websocket.TextMessage, data)
	ws.Close()
}

// clientIP extracts the caller address, honoring X-Forwarded-For for reverse proxies
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// server bundles what the HTTP handlers need
type server struct {
	cfg     Config
	hub     *Hub
	store   store.Store
	board   *Leaderboard
	limiter *ipRateLimiter
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	codec := codecFor(r.URL.Query().Get("enc"))

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	// Check limits after upgrade so client can receive error messages
	if s.hub.Count() >= s.cfg.MaxPlayers {
		sendErrorAndClose(ws, "Server full. Please try again later.")
		return
	}
	if !s.limiter.allow(ip) {
		sendErrorAndClose(ws, "Too many connections. Please wait a moment.")
		return
	}

	ws.EnableWriteCompression(true)

	conn := NewConn(ws, ip, codec)
	s.hub.Register(conn)

	// Send welcome immediately so client knows its ID and the grid size
	if err := conn.Send(WelcomeMsg{
		Type:  MsgWelcome,
		ID:    conn.ID,
		GridW: game.GridWidth,
		GridH: game.GridHeight,
	}); err != nil {
		log.Printf("send welcome to %s: %v", conn.ID, err)
	}
	if err := conn.Send(s.board.Current()); err != nil {
		log.Printf("send leaderboard to %s: %v", conn.ID, err)
	}

	// Blocking read loop, runs until client disconnects
	conn.ReadLoop(s.hub.HandleMessage, s.hub.Disconnect)
}

func (s *server) handleScores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := LeaderboardSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), StoreTimeout)
	defer cancel()
	scores, err := s.store.TopScores(ctx, limit)
	if err != nil {
		log.Printf("top scores: %v", err)
		http.Error(w, "scores unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(scores); err != nil {
		log.Printf("encode scores: %v", err)
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(WebSocketPath, s.handleWS)
	mux.HandleFunc(ScoresPath, s.handleScores)
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.StaticDir)))
	return mux
}

// openStore picks the Supabase backend when configured, memory otherwise
func openStore(cfg Config) store.Store {
	if cfg.SupabaseURL == "" {
		log.Printf("SUPABASE_URL not set, using in-memory store")
		return store.NewMemoryStore()
	}
	return store.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, nil)
}

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := openStore(cfg)
	recorder := store.NewAsyncRecorder(st)
	hub := NewHub(st, recorder)
	board := NewLeaderboard(st, hub, LeaderboardInterval)
	limiter := newIPRateLimiter(cfg.IPCooldown)

	s := &server{cfg: cfg, hub: hub, store: st, board: board, limiter: limiter}
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go board.Run(ctx)
	go limiter.runCleanup(ctx)

	go func() {
		log.Printf("server listening on %s (grid %dx%d)", cfg.Addr, game.GridWidth, game.GridHeight)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	hub.Close()
	if err := recorder.Close(shutdownCtx); err != nil {
		log.Printf("recorder drain: %v", err)
	}
}

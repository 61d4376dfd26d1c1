package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Server defaults
const (
	DefaultAddr       = ":8080"
	DefaultStaticDir  = "../client"
	WebSocketPath     = "/ws"
	ScoresPath        = "/api/scores"
	DefaultMaxPlayers = 200
	DefaultIPCooldown = 2 * time.Second

	// Leaderboard
	LeaderboardSize     = 10
	LeaderboardInterval = 10 * time.Second

	// Store calls made on the request path
	StoreTimeout = 5 * time.Second

	// Websocket writes
	WriteTimeout = 5 * time.Second
)

// Config is the runtime configuration of the server
type Config struct {
	Addr        string
	StaticDir   string
	SupabaseURL string
	SupabaseKey string
	MaxPlayers  int
	IPCooldown  time.Duration
}

// LoadConfig reads .env (if present) and the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("could not load .env: %v", err)
	}

	cfg := Config{
		Addr:        envOr("SNAKE_ADDR", DefaultAddr),
		StaticDir:   envOr("SNAKE_STATIC_DIR", DefaultStaticDir),
		SupabaseURL: os.Getenv("SUPABASE_URL"),
		SupabaseKey: os.Getenv("SUPABASE_KEY"),
		MaxPlayers:  DefaultMaxPlayers,
		IPCooldown:  DefaultIPCooldown,
	}

	if v := os.Getenv("SNAKE_MAX_PLAYERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("SNAKE_MAX_PLAYERS: invalid value %q", v)
		}
		cfg.MaxPlayers = n
	}
	if v := os.Getenv("SNAKE_IP_COOLDOWN_SEC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("SNAKE_IP_COOLDOWN_SEC: invalid value %q", v)
		}
		cfg.IPCooldown = time.Duration(n) * time.Second
	}
	if cfg.SupabaseURL != "" && cfg.SupabaseKey == "" {
		return cfg, fmt.Errorf("SUPABASE_KEY is required when SUPABASE_URL is set")
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

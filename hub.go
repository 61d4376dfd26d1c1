package main

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/renantrendt/snake-gms/game"
	"github.com/renantrendt/snake-gms/store"
)

// Session is one joined player: the connection, its engine and profile
type Session struct {
	Conn   *Conn
	Engine *game.Engine
	Player store.Player
	Skin   game.Skin
}

// Hub owns the per-connection engines. Each connection plays its own game;
// the hub only routes messages and fans out broadcasts.
type Hub struct {
	store    store.Store
	recorder game.Recorder
	conns    *ConnManager
	opts     []game.Option // extra engine options, applied last

	mu       sync.Mutex
	sessions map[string]*Session // conn id -> session
}

// NewHub creates a hub persisting through st and reporting through rec
func NewHub(st store.Store, rec game.Recorder, opts ...game.Option) *Hub {
	return &Hub{
		store:    st,
		recorder: rec,
		conns:    NewConnManager(),
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Register adds a freshly upgraded connection
func (h *Hub) Register(c *Conn) {
	h.conns.Add(c)
	log.Printf("player connected: %s", c.ID)
}

// Count returns the number of open connections
func (h *Hub) Count() int {
	return h.conns.Count()
}

// Session returns the session of a connection, if it has joined
func (h *Hub) Session(connID string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[connID]
	return s, ok
}

// Disconnect stops the connection's engine and forgets it
func (h *Hub) Disconnect(c *Conn) {
	h.conns.Remove(c.ID)
	h.mu.Lock()
	s, ok := h.sessions[c.ID]
	delete(h.sessions, c.ID)
	h.mu.Unlock()
	if ok {
		s.Engine.Stop()
	}
	log.Printf("player disconnected: %s", c.ID)
}

// Broadcast sends msg to every open connection
func (h *Hub) Broadcast(msg any) {
	for _, c := range h.conns.Snapshot() {
		if err := c.Send(msg); err != nil {
			log.Printf("broadcast to %s: %v", c.ID, err)
		}
	}
}

// Close stops every engine
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		s.Engine.Stop()
		delete(h.sessions, id)
	}
}

// HandleMessage dispatches one client message
func (h *Hub) HandleMessage(c *Conn, msg ClientMessage) {
	if msg.Type == MsgJoin {
		h.join(c, msg)
		return
	}

	s, ok := h.Session(c.ID)
	if !ok {
		c.SendError("join first")
		return
	}

	switch msg.Type {
	case MsgDirection:
		d, err := game.ParseDirection(msg.Direction)
		if err != nil {
			c.SendError(err.Error())
			return
		}
		s.Engine.SetDirection(d)

	case MsgChoice:
		choice, err := parseChoice(msg.Choice)
		if err != nil {
			c.SendError(err.Error())
			return
		}
		if err := s.Engine.ResolveTransition(choice); err != nil {
			c.SendError(err.Error())
		}

	case MsgTeleport:
		if !s.Engine.Teleport(game.Position{X: msg.X, Y: msg.Y}) {
			c.SendError("teleport rejected")
		}

	case MsgRestart:
		s.Engine.Reset()
		s.Engine.Start()

	default:
		c.SendError("unknown message type " + msg.Type)
	}
}

var errUnknownChoice = errors.New("unknown choice")

func parseChoice(s string) (game.Choice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "continue":
		return game.ChoiceContinue, nil
	case "f", "fresh":
		return game.ChoiceFresh, nil
	}
	return game.ChoiceContinue, errUnknownChoice
}

// join resolves the player profile, builds an engine for the connection and
// starts it. A second join replaces the previous game.
func (h *Hub) join(c *Conn, msg ClientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), StoreTimeout)
	defer cancel()

	name, err := store.NormalizeUsername(msg.Name)
	if err != nil {
		c.SendError(err.Error())
		return
	}
	player, created, err := h.store.GetOrCreatePlayer(ctx, name)
	if err != nil {
		log.Printf("join %s as %q: %v", c.ID, name, err)
		c.SendError("could not load player profile")
		return
	}
	achievements, err := h.store.Achievements(ctx, player.ID)
	if err != nil {
		log.Printf("achievements for %s: %v", player.ID, err)
	}
	if created {
		h.recorder.UnlockAchievement(player.ID, game.AchievementFirstTimer)
		achievements = append(achievements, game.AchievementFirstTimer)
	}

	skin := resolveSkin(msg.Skin, achievements)
	mode, err := game.ParseMode(msg.Mode)
	if err != nil {
		c.SendError(err.Error())
		mode = game.ModeNormal
	}

	opts := []game.Option{
		game.WithPlayer(player.ID),
		game.WithSkin(skin),
		game.WithMode(mode),
		game.WithRecorder(h.recorder),
		game.WithUnlocked(achievements...),
		game.WithRenderer(game.RendererFunc(func(snap game.Snapshot) {
			if err := c.Send(newStateMsg(snap)); err != nil {
				log.Printf("send state to %s: %v", c.ID, err)
			}
		})),
	}
	// events only flow after Start, by which time s is set
	var s *Session
	opts = append(opts, game.WithEvents(func(ev game.Event) { h.forward(s, ev) }))
	engine := game.New(append(opts, h.opts...)...)
	s = &Session{Conn: c, Engine: engine, Player: player, Skin: skin}

	h.mu.Lock()
	prev, had := h.sessions[c.ID]
	h.sessions[c.ID] = s
	h.mu.Unlock()
	if had {
		prev.Engine.Stop()
	}

	if err := c.Send(ProfileMsg{
		Type:         MsgProfile,
		PlayerID:     player.ID,
		Name:         player.Username,
		Skin:         skin.String(),
		Mode:         engine.Mode().String(),
		Achievements: achievements,
	}); err != nil {
		log.Printf("send profile to %s: %v", c.ID, err)
	}
	log.Printf("player joined: %s (%s) skin=%s mode=%s", player.Username, c.ID, skin, engine.Mode())
	engine.Start()
}

// resolveSkin parses the requested skin and falls back to the default
// when it is unknown or its unlocking achievement is missing.
func resolveSkin(name string, achievements []string) game.Skin {
	skin, err := game.ParseSkin(name)
	if err != nil {
		return game.SkinDefault
	}
	need, ok := skin.UnlockedBy()
	if !ok {
		return skin
	}
	for _, a := range achievements {
		if a == need {
			return skin
		}
	}
	return game.SkinDefault
}

// forward relays engine events the browser shows as dialogs or toasts
func (h *Hub) forward(s *Session, ev game.Event) {
	c := s.Conn
	var msg any
	switch ev.Type {
	case game.EventTransitionPrompt:
		msg = PromptMsg{Type: MsgPrompt, Tier: ev.Tier.String()}
	case game.EventGameOver:
		log.Printf("game over: %s score=%d level=%d deaths=%d mode=%s",
			s.Player.Username, ev.Score, ev.Level, s.Engine.Deaths(), s.Engine.Mode())
		msg = GameOverMsg{Type: MsgGameOver, Score: ev.Score, Level: ev.Level}
	case game.EventAchievement:
		msg = AchievementMsg{Type: MsgAchievement, Name: ev.Achievement}
	default:
		return
	}
	if err := c.Send(msg); err != nil {
		log.Printf("send %s to %s: %v", ev.Type, c.ID, err)
	}
}

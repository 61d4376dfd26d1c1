package main

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/renantrendt/snake-gms/game"
	"github.com/renantrendt/snake-gms/store"
	"github.com/vmihailenco/msgpack/v5"
)

// Protocol uses single-character keys to keep frames small.
//
// Message type constants (value of "t" field):
//   Client → Server (always JSON text frames):
//     "j" = join       {"t":"j","n":"name","s":"skin","m":"mode"}
//     "d" = direction  {"t":"d","d":"u"}             (u/d/l/r)
//     "c" = choice     {"t":"c","c":"c"}             (c=continue, f=fresh)
//     "p" = teleport   {"t":"p","x":12,"y":7}
//     "r" = restart    {"t":"r"}
//   Server → Client (JSON text, or msgpack binary with ?enc=msgpack):
//     "w" = welcome     {"t":"w","i":"conn id","gw":40,"gh":30}
//     "p" = profile     {"t":"p","i":"player id","n":"name","s":"skin","m":"mode","a":[...]}
//     "s" = state       see StateMsg
//     "q" = prompt      {"t":"q","d":"medium"}
//     "o" = game over   {"t":"o","p":score,"l":level}
//     "a" = achievement {"t":"a","n":"Snake Master"}
//     "l" = leaderboard {"t":"l","l":[{"n":"name","p":score,"v":level}]}
//     "e" = error       {"t":"e","m":"message"}

const (
	MsgJoin      = "j"
	MsgDirection = "d"
	MsgChoice    = "c"
	MsgTeleport  = "p"
	MsgRestart   = "r"

	MsgWelcome     = "w"
	MsgProfile     = "p"
	MsgState       = "s"
	MsgPrompt      = "q"
	MsgGameOver    = "o"
	MsgAchievement = "a"
	MsgLeaderboard = "l"
	MsgError       = "e"
)

// ClientMessage is any incoming message from the browser
type ClientMessage struct {
	Type      string `json:"t"`
	Name      string `json:"n,omitempty"`
	Skin      string `json:"s,omitempty"`
	Mode      string `json:"m,omitempty"`
	Direction string `json:"d,omitempty"`
	Choice    string `json:"c,omitempty"`
	X         int    `json:"x,omitempty"`
	Y         int    `json:"y,omitempty"`
}

// WelcomeMsg is sent right after the websocket upgrade
type WelcomeMsg struct {
	Type  string `json:"t" msgpack:"t"`
	ID    string `json:"i" msgpack:"i"`
	GridW int    `json:"gw" msgpack:"gw"`
	GridH int    `json:"gh" msgpack:"gh"`
}

// ProfileMsg confirms a join with the resolved profile
type ProfileMsg struct {
	Type         string   `json:"t" msgpack:"t"`
	PlayerID     string   `json:"i" msgpack:"i"`
	Name         string   `json:"n" msgpack:"n"`
	Skin         string   `json:"s" msgpack:"s"`
	Mode         string   `json:"m" msgpack:"m"`
	Achievements []string `json:"a" msgpack:"a"`
}

// StateMsg is one rendered frame.
// Segments are flat [x,y] pairs, head first.
type StateMsg struct {
	Type       string   `json:"t" msgpack:"t"`
	State      string   `json:"st" msgpack:"st"`
	Segments   [][2]int `json:"s" msgpack:"s"`
	Direction  string   `json:"d" msgpack:"d"`
	Color      string   `json:"c" msgpack:"c"`
	Food       [2]int   `json:"f" msgpack:"f"`
	FruitName  string   `json:"fn" msgpack:"fn"`
	FruitColor string   `json:"fc" msgpack:"fc"`
	FruitGlyph string   `json:"fg,omitempty" msgpack:"fg,omitempty"`
	ShowFood   int      `json:"sf" msgpack:"sf"` // 0 or 1
	Score      int      `json:"p" msgpack:"p"`
	Health     int      `json:"h" msgpack:"h"`
	Level      int      `json:"l" msgpack:"l"`
	Tier       string   `json:"tr" msgpack:"tr"`
	Speed      float64  `json:"v" msgpack:"v"`
	Deaths     int      `json:"k" msgpack:"k"`
	Background string   `json:"b" msgpack:"b"`
	RangeCatch *[2]int  `json:"rc,omitempty" msgpack:"rc,omitempty"`
}

// PromptMsg asks the player to choose how to enter a new tier
type PromptMsg struct {
	Type string `json:"t" msgpack:"t"`
	Tier string `json:"d" msgpack:"d"`
}

// GameOverMsg carries the final result
type GameOverMsg struct {
	Type  string `json:"t" msgpack:"t"`
	Score int    `json:"p" msgpack:"p"`
	Level int    `json:"l" msgpack:"l"`
}

// AchievementMsg announces a newly unlocked achievement
type AchievementMsg struct {
	Type string `json:"t" msgpack:"t"`
	Name string `json:"n" msgpack:"n"`
}

// LeaderboardEntry is a single leaderboard row.
type LeaderboardEntry struct {
	Name  string `json:"n" msgpack:"n"`
	Score int    `json:"p" msgpack:"p"`
	Level int    `json:"v" msgpack:"v"`
}

// LeaderboardMsg is pushed periodically to every connection
type LeaderboardMsg struct {
	Type    string             `json:"t" msgpack:"t"`
	Entries []LeaderboardEntry `json:"l" msgpack:"l"`
}

// ErrorMsg reports a rejected request
type ErrorMsg struct {
	Type    string `json:"t" msgpack:"t"`
	Message string `json:"m" msgpack:"m"`
}

func newStateMsg(s game.Snapshot) StateMsg {
	segs := make([][2]int, len(s.Segments))
	for i, p := range s.Segments {
		segs[i] = [2]int{p.X, p.Y}
	}
	msg := StateMsg{
		Type:       MsgState,
		State:      s.State.String(),
		Segments:   segs,
		Direction:  s.Direction.String(),
		Color:      s.SnakeColor,
		Food:       [2]int{s.Food.X, s.Food.Y},
		FruitName:  s.Fruit.Name,
		FruitColor: s.Fruit.Color,
		FruitGlyph: s.Fruit.Glyph,
		Score:      s.Score,
		Health:     s.Health,
		Level:      s.Level,
		Tier:       s.Tier.String(),
		Speed:      s.Speed,
		Deaths:     s.Deaths,
		Background: s.Background,
	}
	if s.ShowFood {
		msg.ShowFood = 1
	}
	if s.RangeCatch != nil {
		msg.RangeCatch = &[2]int{s.RangeCatch.X, s.RangeCatch.Y}
	}
	return msg
}

func newLeaderboardMsg(scores []store.ScoreEntry) LeaderboardMsg {
	entries := make([]LeaderboardEntry, len(scores))
	for i, s := range scores {
		entries[i] = LeaderboardEntry{Name: s.Username, Score: s.Score, Level: s.Level}
	}
	return LeaderboardMsg{Type: MsgLeaderboard, Entries: entries}
}

// Codec turns outgoing messages into websocket frames
type Codec interface {
	Encode(msg any) (frameType int, data []byte, err error)
}

type jsonCodec struct{}

func (jsonCodec) Encode(msg any) (int, []byte, error) {
	data, err := json.Marshal(msg)
	return websocket.TextMessage, data, err
}

type msgpackCodec struct{}

func (msgpackCodec) Encode(msg any) (int, []byte, error) {
	data, err := msgpack.Marshal(msg)
	return websocket.BinaryMessage, data, err
}

// codecFor picks the frame encoding requested with ?enc=
func codecFor(enc string) Codec {
	if enc == "msgpack" {
		return msgpackCodec{}
	}
	return jsonCodec{}
}

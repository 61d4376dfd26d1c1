package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownDirection    = errors.New("unknown direction")
	ErrUnknownSkin         = errors.New("unknown skin")
	ErrUnknownMode         = errors.New("unknown mode")
	ErrNoTransitionPending = errors.New("no difficulty transition pending")
)

// Position is a grid cell
type Position struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// InBounds reports whether p lies on the grid
func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < GridWidth && p.Y >= 0 && p.Y < GridHeight
}

// Wrap folds p back onto the grid modulo its dimensions
func (p Position) Wrap() Position {
	return Position{
		X: ((p.X % GridWidth) + GridWidth) % GridWidth,
		Y: ((p.Y % GridHeight) + GridHeight) % GridHeight,
	}
}

// Manhattan returns the taxicab distance between p and q
func (p Position) Manhattan(q Position) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

func (p Position) add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Direction is one of the four movement directions
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directions = [...]Direction{Up, Down, Left, Right}

// Opposite returns the reverse direction
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	}
	return Left
}

// Delta is the unit step for d
func (d Direction) Delta() Position {
	switch d {
	case Up:
		return Position{Y: -1}
	case Down:
		return Position{Y: 1}
	case Left:
		return Position{X: -1}
	}
	return Position{X: 1}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// ParseDirection accepts "up|down|left|right" and the one-letter forms.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Mode is the session-level movement mode.
type Mode int

const (
	// ModeNormal: walls and self-collision cost health.
	ModeNormal Mode = iota
	// ModeWrap: the grid wraps, self-collision still costs health, level is uncapped.
	ModeWrap
	// ModeImmortal: the grid wraps, collisions are ignored, steering is randomized.
	ModeImmortal
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeWrap:
		return "wrap"
	case ModeImmortal:
		return "immortal"
	}
	return "unknown"
}

// Wraps reports whether movement wraps around the grid edges
func (m Mode) Wraps() bool {
	return m == ModeWrap || m == ModeImmortal
}

// ParseMode accepts the String forms plus the original names "infinite"
// and "paranoid".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return ModeNormal, nil
	case "wrap", "infinite":
		return ModeWrap, nil
	case "immortal", "paranoid":
		return ModeImmortal, nil
	}
	return ModeNormal, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/renantrendt/snake-gms/game"
)

type action int

const (
	actNone action = iota
	actMove
	actContinue
	actFresh
	actRestart
	actTeleport
	actMute
	actDemo
	actQuit
)

type command struct {
	act action
	dir game.Direction
}

// commandFor maps a key press to a command. Arrows, WASD and hjkl steer.
func commandFor(key tcell.Key, r rune) command {
	switch key {
	case tcell.KeyUp:
		return command{act: actMove, dir: game.Up}
	case tcell.KeyDown:
		return command{act: actMove, dir: game.Down}
	case tcell.KeyLeft:
		return command{act: actMove, dir: game.Left}
	case tcell.KeyRight:
		return command{act: actMove, dir: game.Right}
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return command{act: actQuit}
	case tcell.KeyRune:
	default:
		return command{}
	}

	switch r {
	case 'w', 'W', 'k':
		return command{act: actMove, dir: game.Up}
	case 's', 'S', 'j':
		return command{act: actMove, dir: game.Down}
	case 'a', 'A', 'h':
		return command{act: actMove, dir: game.Left}
	case 'd', 'D', 'l':
		return command{act: actMove, dir: game.Right}
	case 'c', 'C':
		return command{act: actContinue}
	case 'f', 'F':
		return command{act: actFresh}
	case 'r', 'R':
		return command{act: actRestart}
	case 't', 'T':
		return command{act: actTeleport}
	case 'm', 'M':
		return command{act: actMute}
	case 'p', 'P':
		return command{act: actDemo}
	case 'q', 'Q':
		return command{act: actQuit}
	}
	return command{}
}

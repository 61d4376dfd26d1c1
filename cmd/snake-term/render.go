package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/renantrendt/snake-gms/game"
)

// Board layout: one HUD row, then the bordered grid with every cell two
// columns wide so the board looks square.
const (
	cellW   = 2
	hudRow  = 0
	boardX  = 0
	boardY  = 1
	originX = boardX + 1
	originY = boardY + 1
)

// Terminal size needed to show the whole board
const (
	minWidth  = game.GridWidth*cellW + 2
	minHeight = game.GridHeight + 4
)

// view draws snapshots onto a tcell screen
type view struct {
	screen tcell.Screen
}

func cellOrigin(p game.Position) (int, int) {
	return originX + p.X*cellW, originY + p.Y
}

func (v *view) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (v *view) cell(p game.Position, r rune, style tcell.Style) {
	x, y := cellOrigin(p)
	for i := 0; i < cellW; i++ {
		v.screen.SetContent(x+i, y, r, nil, style)
	}
}

// draw renders one frame. status is a transient message for the bottom row.
func (v *view) draw(s game.Snapshot, status string) {
	v.screen.Clear()

	w, h := v.screen.Size()
	if w < minWidth || h < minHeight {
		v.text(0, 0, fmt.Sprintf("terminal too small: need %dx%d", minWidth, minHeight), tcell.StyleDefault.Foreground(tcell.ColorRed))
		v.screen.Show()
		return
	}

	v.text(0, hudRow, hudLine(s), tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))
	v.border()

	bg := tcell.StyleDefault.Background(tcell.GetColor(s.Background))
	for y := 0; y < game.GridHeight; y++ {
		for x := 0; x < game.GridWidth; x++ {
			v.cell(game.Position{X: x, Y: y}, ' ', bg)
		}
	}

	if s.ShowFood {
		x, y := cellOrigin(s.Food)
		fruit := bg.Foreground(tcell.GetColor(s.Fruit.Color)).Bold(true)
		v.screen.SetContent(x, y, '●', nil, fruit)
		v.screen.SetContent(x+1, y, ' ', nil, bg)
	}

	body := bg.Foreground(tcell.GetColor(s.SnakeColor))
	for i := len(s.Segments) - 1; i >= 0; i-- {
		r := '▓'
		if i == 0 {
			r = '█'
		}
		v.cell(s.Segments[i], r, body)
	}
	if s.RangeCatch != nil {
		v.cell(*s.RangeCatch, '*', bg.Foreground(tcell.ColorWhite).Bold(true))
	}

	if msg := stateLine(s); msg != "" {
		status = msg
	}
	v.text(0, originY+game.GridHeight+1, status, tcell.StyleDefault.Foreground(tcell.ColorYellow))
	v.screen.Show()
}

func (v *view) border() {
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	right := originX + game.GridWidth*cellW
	bottom := originY + game.GridHeight
	for x := originX; x < right; x++ {
		v.screen.SetContent(x, boardY, '─', nil, style)
		v.screen.SetContent(x, bottom, '─', nil, style)
	}
	for y := originY; y < bottom; y++ {
		v.screen.SetContent(boardX, y, '│', nil, style)
		v.screen.SetContent(right, y, '│', nil, style)
	}
	v.screen.SetContent(boardX, boardY, '┌', nil, style)
	v.screen.SetContent(right, boardY, '┐', nil, style)
	v.screen.SetContent(boardX, bottom, '└', nil, style)
	v.screen.SetContent(right, bottom, '┘', nil, style)
}

func hudLine(s game.Snapshot) string {
	hearts := strings.Repeat("♥", max(s.Health, 0)) + strings.Repeat("·", max(game.MaxHealth-s.Health, 0))
	if s.Mode == game.ModeImmortal {
		hearts = "∞"
	}
	return fmt.Sprintf("score %d  level %d %s  %s  speed %.0f  deaths %d  %s/%s",
		s.Score, s.Level, s.Tier, hearts, s.Speed, s.Deaths, s.Mode, s.Skin)
}

func stateLine(s game.Snapshot) string {
	switch s.State {
	case game.StatePaused:
		return fmt.Sprintf("Entering %s difficulty: [c]ontinue or [f]resh start", s.PendingTier)
	case game.StateGameOver:
		return fmt.Sprintf("GAME OVER  score %d  level %d  [r]estart [q]uit", s.Score, s.Level)
	case game.StateReady:
		return "ready"
	}
	return ""
}

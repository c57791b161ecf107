package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/okian/coinrush/internal/domain/arena"
	"github.com/okian/coinrush/internal/domain/round"
	"github.com/okian/coinrush/internal/game"
)

const (
	headerRows  = 2
	boardRows   = 10
	avatarGlyph = '@'
	walkGlyph   = '&'
	coinGlyph   = '$'
	bananaGlyph = ')'
)

var (
	styleArena   = tcell.StyleDefault
	styleBlurred = tcell.StyleDefault.Background(tcell.ColorMaroon)
	styleCoin    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleBanana  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleAvatar  = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleHeader  = tcell.StyleDefault.Bold(true)
)

type view struct {
	screen tcell.Screen
	seq    uint64
}

// draw renders snap unless a newer snapshot was already drawn.
func (v *view) draw(snap game.Snapshot) {
	if snap.Seq != 0 && snap.Seq < v.seq {
		return
	}
	v.seq = snap.Seq

	w, h := v.screen.Size()
	base := styleArena
	if !snap.HasFocus {
		base = styleBlurred
	}
	v.screen.SetStyle(base)
	v.screen.Clear()

	v.text(0, 0, styleHeader, header(snap))
	v.text(0, 1, base, hint(snap))

	rows := h - headerRows
	for _, c := range snap.Coins {
		x, y := project(c.Position, w, rows)
		v.screen.SetContent(x, y+headerRows, coinGlyph, nil, styleCoin.Background(bg(base)))
	}
	for _, b := range snap.Bananas {
		x, y := project(b.Position, w, rows)
		v.screen.SetContent(x, y+headerRows, bananaGlyph, nil, styleBanana.Background(bg(base)))
	}
	x, y := project(snap.Avatar.Position, w, rows)
	glyph := avatarGlyph
	if snap.Walking() {
		glyph = walkGlyph
	}
	v.screen.SetContent(x, y+headerRows, glyph, nil, styleAvatar.Background(bg(base)))

	if snap.Phase == round.Ended {
		for i, line := range boardLines(snap) {
			v.text(2, headerRows+1+i, styleHeader, line)
		}
	}
	v.screen.Show()
}

func (v *view) text(x, y int, style tcell.Style, s string) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func bg(s tcell.Style) tcell.Color {
	_, b, _ := s.Decompose()
	return b
}

// project maps an arena position onto a w by h cell grid.
func project(p arena.Position, w, h int) (x, y int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	x = int(math.Round(p.Left / arena.MaxCoord * float64(w-1)))
	y = int(math.Round(p.Top / arena.MaxCoord * float64(h-1)))
	return x, y
}

func header(s game.Snapshot) string {
	return fmt.Sprintf("%s  score %d  time %d:%02d", s.Player, s.Score, s.Remaining/60, s.Remaining%60)
}

func hint(s game.Snapshot) string {
	switch {
	case s.Phase == round.Ended:
		return "round over, q to quit"
	case !s.HasFocus:
		return "terminal lost focus"
	default:
		return "arrows move, space stops, q quits"
	}
}

// boardLines renders the post-round leaderboard.
func boardLines(s game.Snapshot) []string {
	switch s.BoardStatus {
	case game.BoardPending:
		return []string{"submitting score..."}
	case game.BoardUnavailable:
		return []string{fmt.Sprintf("final score %d", s.Score), "leaderboard unavailable"}
	}
	lines := []string{fmt.Sprintf("final score %d", s.Score), "leaderboard"}
	for i, e := range s.Board {
		if i == boardRows {
			break
		}
		lines = append(lines, fmt.Sprintf("%2d. %-20s %5d", i+1, e.Player, e.Score))
	}
	return lines
}

package tui

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/ballbattle/internal/arena"
)

const (
	ballRune   = '●'
	scoredRune = '○'
	wallRune   = '█'
	aimRune    = '·'
)

var (
	borderStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	wallStyle   = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	aimStyle    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	homeStyle   = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	awayStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Draw renders one snapshot. It does not call Show.
func Draw(s tcell.Screen, vp Viewport, snap arena.Snapshot) {
	s.Clear()
	drawBox(s, vp.X0-1, vp.Y0-1, vp.Cols+2, vp.Rows+2, borderStyle)
	drawWall(s, vp, snap.Obstacle)

	if snap.Drag.Active {
		drawLine(s, vp, snap.Drag.Anchor, snap.Drag.Current)
	}

	// Scored bodies first so live ones win a shared cell.
	for _, b := range snap.Bodies {
		if b.Scored {
			col, row := vp.ToCell(arena.NewVec2(b.X, b.Y))
			s.SetContent(col, row, scoredRune, nil, sideStyle(b.Side).Dim(true))
		}
	}
	for _, b := range snap.Bodies {
		if !b.Scored {
			col, row := vp.ToCell(arena.NewVec2(b.X, b.Y))
			s.SetContent(col, row, ballRune, nil, sideStyle(b.Side))
		}
	}

	drawText(s, vp.X0-1, vp.Y0+vp.Rows+1, StatusLine(snap), statusStyle)
}

// StatusLine summarizes score and turn state.
func StatusLine(snap arena.Snapshot) string {
	line := fmt.Sprintf("HOME %d  AWAY %d  ", snap.Remaining.Home, snap.Remaining.Away)
	if snap.GameOver {
		switch snap.Winner {
		case arena.SideHome:
			line += "You win!"
		case arena.SideAway:
			line += "Computer wins"
		default:
			line += "Draw"
		}
		return line + "  [r] play again  [q] quit"
	}
	if snap.State == arena.StateAwaitingHuman || snap.State == arena.StateHumanActing {
		line += "Your turn: drag a blue ball"
	} else {
		line += "Waiting..."
	}
	return line + "  [r] restart  [q] quit"
}

func sideStyle(side arena.Side) tcell.Style {
	if side == arena.SideHome {
		return homeStyle
	}
	return awayStyle
}

func drawWall(s tcell.Screen, vp Viewport, obs arena.Obstacle) {
	col, _ := vp.ToCell(arena.NewVec2(obs.X, 0))
	for row := vp.Y0; row < vp.Y0+vp.Rows; row++ {
		y := vp.ToField(col, row).Y
		if math.Abs(y-obs.GapY) <= obs.GapRadius {
			continue
		}
		s.SetContent(col, row, wallRune, nil, wallStyle)
	}
}

func drawLine(s tcell.Screen, vp Viewport, from, to arena.Vec2) {
	c0, r0 := vp.ToCell(from)
	c1, r1 := vp.ToCell(to)
	steps := max(abs(c1-c0), abs(r1-r0))
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		col := c0 + int(math.Round(t*float64(c1-c0)))
		row := r0 + int(math.Round(t*float64(r1-r0)))
		s.SetContent(col, row, aimRune, nil, aimStyle)
	}
}

func drawBox(s tcell.Screen, x, y, w, h int, style tcell.Style) {
	s.SetContent(x, y, '┌', nil, style)
	s.SetContent(x+w-1, y, '┐', nil, style)
	s.SetContent(x, y+h-1, '└', nil, style)
	s.SetContent(x+w-1, y+h-1, '┘', nil, style)
	for i := x + 1; i < x+w-1; i++ {
		s.SetContent(i, y, '─', nil, style)
		s.SetContent(i, y+h-1, '─', nil, style)
	}
	for j := y + 1; j < y+h-1; j++ {
		s.SetContent(x, j, '│', nil, style)
		s.SetContent(x+w-1, j, '│', nil, style)
	}
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	i := 0
	for _, r := range text {
		s.SetContent(x+i, y, r, nil, style)
		i++
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

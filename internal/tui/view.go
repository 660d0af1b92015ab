package tui

import (
	"math"

	"github.com/playmatatu/ballbattle/internal/arena"
)

// Viewport maps field coordinates onto a block of terminal cells. The field
// is stretched to fill the block, so one cell is usually wider in field units
// than it is tall.
type Viewport struct {
	X0, Y0     int // top-left cell of the field area
	Cols, Rows int
	Bounds     arena.Bounds
}

// NewViewport fits the field inside a screen of w by h cells, leaving room
// for a border and the status line.
func NewViewport(w, h int, bounds arena.Bounds) Viewport {
	cols, rows := w-2, h-3
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return Viewport{X0: 1, Y0: 1, Cols: cols, Rows: rows, Bounds: bounds}
}

// ToField returns the field point at the center of a screen cell.
func (v Viewport) ToField(col, row int) arena.Vec2 {
	cx := float64(col-v.X0) + 0.5
	cy := float64(row-v.Y0) + 0.5
	return arena.NewVec2(cx*v.Bounds.Width/float64(v.Cols), cy*v.Bounds.Height/float64(v.Rows))
}

// ToCell returns the screen cell containing a field point, clamped to the
// field area.
func (v Viewport) ToCell(p arena.Vec2) (col, row int) {
	c := int(math.Floor(p.X * float64(v.Cols) / v.Bounds.Width))
	r := int(math.Floor(p.Y * float64(v.Rows) / v.Bounds.Height))
	return v.X0 + clamp(c, 0, v.Cols-1), v.Y0 + clamp(r, 0, v.Rows-1)
}

// Inside reports whether a screen cell lies in the field area.
func (v Viewport) Inside(col, row int) bool {
	return col >= v.X0 && col < v.X0+v.Cols && row >= v.Y0 && row < v.Y0+v.Rows
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

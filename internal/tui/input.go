package tui

import "github.com/gdamore/tcell/v2"

// PressKind is what a mouse event means for the drag gesture.
type PressKind int

const (
	PressNone PressKind = iota
	PressStart
	PressMove
	PressEnd
)

// PointerTracker turns raw mouse button masks into press start, move and end
// events. tcell reports the button state on every event, not transitions.
type PointerTracker struct {
	down bool
}

// Handle classifies one mouse event.
func (pt *PointerTracker) Handle(buttons tcell.ButtonMask) PressKind {
	pressed := buttons&tcell.Button1 != 0
	switch {
	case pressed && !pt.down:
		pt.down = true
		return PressStart
	case pressed:
		return PressMove
	case pt.down:
		pt.down = false
		return PressEnd
	}
	return PressNone
}

// Reset forgets a drag in progress.
func (pt *PointerTracker) Reset() {
	pt.down = false
}

// IsQuitKey returns true if the key should quit the application
func IsQuitKey(key tcell.Key, r rune) bool {
	if key == tcell.KeyEscape || key == tcell.KeyCtrlC {
		return true
	}
	return key == tcell.KeyRune && (r == 'q' || r == 'Q')
}

// IsRestartKey returns true if the key should re-rack the match
func IsRestartKey(key tcell.Key, r rune) bool {
	return key == tcell.KeyRune && (r == 'r' || r == 'R')
}

package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/ballbattle/internal/arena"
)

// App plays one local match in the terminal: the human drives the home side
// with the mouse and the built-in actor plays away.
type App struct {
	screen  tcell.Screen
	match   *arena.Match
	pointer PointerTracker
	quit    chan struct{}
}

// NewApp wraps an initialized screen and a match.
func NewApp(s tcell.Screen, m *arena.Match) *App {
	return &App{screen: s, match: m, quit: make(chan struct{})}
}

// Run starts a terminal screen for a fresh match and blocks until the user
// quits.
func Run(cfg arena.Config, opts ...arena.Option) error {
	m, err := arena.NewMatch(cfg, opts...)
	if err != nil {
		return err
	}
	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer s.Fini()
	s.EnableMouse()
	s.HideCursor()

	return NewApp(s, m).Loop()
}

// Loop steps the match at its tick rate and redraws after every step.
func (a *App) Loop() error {
	events := make(chan tcell.Event)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-a.quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(a.match.Config().TickDuration())
	defer ticker.Stop()

	for {
		select {
		case <-a.quit:
			return nil
		case ev := <-events:
			if a.HandleEvent(ev) {
				close(a.quit)
				return nil
			}
		case <-ticker.C:
			a.match.Step()
			a.draw()
		}
	}
}

// HandleEvent applies one terminal event and reports whether to quit.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if IsQuitKey(ev.Key(), ev.Rune()) {
			return true
		}
		if IsRestartKey(ev.Key(), ev.Rune()) {
			a.pointer.Reset()
			a.match.Restart()
		}
	case *tcell.EventMouse:
		col, row := ev.Position()
		p := a.viewport().ToField(col, row)
		switch a.pointer.Handle(ev.Buttons()) {
		case PressStart:
			a.match.OnPressStart(p)
		case PressMove:
			a.match.OnPressMove(p)
		case PressEnd:
			a.match.OnPressEnd(p)
		}
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return false
}

func (a *App) viewport() Viewport {
	w, h := a.screen.Size()
	return NewViewport(w, h, a.match.Bounds())
}

func (a *App) draw() {
	Draw(a.screen, a.viewport(), a.match.Snapshot())
	a.screen.Show()
}

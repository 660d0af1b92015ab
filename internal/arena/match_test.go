package arena

import (
	"math/rand"
	"reflect"
	"testing"
)

type recordingObserver struct {
	launches []Launch
	scores   []Remaining
	gameOver []Side
	restarts []int
}

func (o *recordingObserver) OnLaunch(l Launch) { o.launches = append(o.launches, l) }
func (o *recordingObserver) OnScore(r Remaining) { o.scores = append(o.scores, r) }
func (o *recordingObserver) OnGameOver(w Side, _ Remaining) { o.gameOver = append(o.gameOver, w) }
func (o *recordingObserver) OnRestart(n int) { o.restarts = append(o.restarts, n) }

func newTestMatch(t *testing.T, cfg Config) (*Match, *recordingObserver) {
	t.Helper()
	obs := &recordingObserver{}
	m, err := NewMatch(cfg, WithRand(rand.New(rand.NewSource(1))), WithObserver(obs))
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return m, obs
}

func stepUntil(t *testing.T, m *Match, limit int, done func() bool) {
	t.Helper()
	for i := 0; i < limit; i++ {
		if done() {
			return
		}
		m.Step()
	}
	if !done() {
		t.Fatalf("condition not reached within %d ticks (state %s)", limit, m.State())
	}
}

func TestNewMatchRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GapRadius = cfg.BallRadius
	if _, err := NewMatch(cfg); err == nil {
		t.Error("expected error for a gap no wider than a body")
	}

	cfg = DefaultConfig()
	cfg.BallsPerSide = 0
	if _, err := NewMatch(cfg); err == nil {
		t.Error("expected error for an empty roster")
	}
}

func TestStartingPositions(t *testing.T) {
	cfg := DefaultConfig()
	home, away := StartingPositions(cfg)
	if len(home) != cfg.BallsPerSide || len(away) != cfg.BallsPerSide {
		t.Fatalf("expected %d positions per side, got %d/%d", cfg.BallsPerSide, len(home), len(away))
	}
	for i := range home {
		if home[i].X >= cfg.Width/2 || away[i].X <= cfg.Width/2 {
			t.Errorf("position %d on the wrong half: home=%v away=%v", i, home[i], away[i])
		}
		if home[i].Y != away[i].Y {
			t.Errorf("rows should mirror each other: %v vs %v", home[i], away[i])
		}
	}
	if home[0].Y != 100 || home[3].Y != 400 {
		t.Errorf("expected rows at 100..400, got %v..%v", home[0].Y, home[3].Y)
	}
}

func TestNewMatchInitialState(t *testing.T) {
	m, _ := newTestMatch(t, DefaultConfig())
	s := m.Snapshot()

	if s.State != StateAwaitingHuman {
		t.Errorf("expected %s, got %s", StateAwaitingHuman, s.State)
	}
	if s.Remaining.Home != 4 || s.Remaining.Away != 4 {
		t.Errorf("expected 4/4 remaining, got %+v", s.Remaining)
	}
	if len(s.Bodies) != 8 {
		t.Fatalf("expected 8 bodies, got %d", len(s.Bodies))
	}
	for i, b := range s.Bodies {
		if b.ID != i {
			t.Errorf("expected ID %d at index %d, got %d", i, i, b.ID)
		}
		if b.Moving || b.Scored {
			t.Errorf("body %d should start at rest and in play", b.ID)
		}
	}
	if s.GameOver || s.Winner != SideNone {
		t.Error("new match should not be over")
	}
}

// A shot lined up with the gap crosses the centerline untouched and scores.
func TestScenarioCleanGoal(t *testing.T) {
	cfg := flatConfig()
	cfg.BallsPerSide = 1
	m, obs := newTestMatch(t, cfg)

	b := m.home[0]
	b.Pos = NewVec2(100, 250)
	b.Launch(NewVec2(30, 0))

	for i := 0; i < 100 && !b.Scored(); i++ {
		m.Step()
		if b.Vel.X < 0 {
			t.Fatalf("tick %d: shot was deflected, vx=%.4f", i, b.Vel.X)
		}
		if b.Pos.Y != 250 {
			t.Fatalf("tick %d: shot drifted off line, y=%.4f", i, b.Pos.Y)
		}
	}

	if !b.Scored() {
		t.Fatalf("body should have scored, x=%.4f", b.Pos.X)
	}
	if b.Pos.X <= cfg.Width/2 {
		t.Errorf("scored body should be past the centerline, x=%.4f", b.Pos.X)
	}
	if b.Moving {
		t.Error("scored body should be frozen")
	}
	if m.State() != StateGameOver || m.Winner() != SideHome {
		t.Errorf("expected home win, got state=%s winner=%q", m.State(), m.Winner())
	}
	if len(obs.scores) != 1 || len(obs.gameOver) != 1 || obs.gameOver[0] != SideHome {
		t.Errorf("unexpected observer events: scores=%v gameOver=%v", obs.scores, obs.gameOver)
	}
}

// The same shot on a row that misses the gap bounces back off the wall.
func TestScenarioWallDeflection(t *testing.T) {
	cfg := flatConfig()
	cfg.BallsPerSide = 1
	m, _ := newTestMatch(t, cfg)

	b := m.home[0]
	b.Pos = NewVec2(100, 100)
	b.Launch(NewVec2(30, 0))

	face := m.obstacle.X - m.obstacle.HalfThickness() - b.Radius()
	reflected := false
	for i := 0; i < 300; i++ {
		m.Step()
		if b.Pos.X > face+1e-9 {
			t.Fatalf("tick %d: body entered the wall, x=%.4f", i, b.Pos.X)
		}
		if b.Vel.X < 0 {
			reflected = true
		}
	}

	if !reflected {
		t.Error("body should have been reflected by the wall")
	}
	if b.Scored() || m.Remaining().Home != 1 {
		t.Error("deflected shot must not score")
	}
}

func TestBothRostersEmptyOnSameTick(t *testing.T) {
	cfg := flatConfig()
	cfg.BallsPerSide = 1
	m, obs := newTestMatch(t, cfg)

	m.home[0].Pos = NewVec2(450, 50)
	m.away[0].Pos = NewVec2(350, 450)
	m.Step()

	if m.State() != StateGameOver {
		t.Fatalf("expected game over, got %s", m.State())
	}
	if m.Winner() != SideNone {
		t.Errorf("expected no winner for a simultaneous finish, got %q", m.Winner())
	}
	if len(obs.gameOver) != 1 {
		t.Errorf("expected one game over event, got %d", len(obs.gameOver))
	}
}

func TestGameOverIgnoresInput(t *testing.T) {
	cfg := flatConfig()
	cfg.BallsPerSide = 2
	m, _ := newTestMatch(t, cfg)

	for _, b := range m.away {
		b.Pos.X = 300
	}
	m.Step()

	if m.State() != StateGameOver || m.Winner() != SideAway {
		t.Fatalf("expected away win, got state=%s winner=%q", m.State(), m.Winner())
	}
	if drag := m.OnPressStart(m.home[0].Pos); drag.Active {
		t.Error("press should be ignored after game over")
	}
	if m.sched.Pending() != 0 {
		t.Error("no actor task may remain after game over")
	}
}

func TestFullTurnCycle(t *testing.T) {
	m, obs := newTestMatch(t, DefaultConfig())

	body := m.home[0]
	if drag := m.OnPressStart(body.Pos); !drag.Active {
		t.Fatal("expected drag to start")
	}
	m.OnPressMove(body.Pos.Plus(NewVec2(7, 0)))
	l := m.OnPressEnd(body.Pos.Plus(NewVec2(14, 0)))
	if l == nil {
		t.Fatal("expected a human launch")
	}
	if m.State() != StateSettlingHuman {
		t.Fatalf("expected %s, got %s", StateSettlingHuman, m.State())
	}

	// Input is locked out while the shot plays out.
	if drag := m.OnPressStart(m.home[1].Pos); drag.Active {
		t.Error("second press during settling should be ignored")
	}

	stepUntil(t, m, 2000, func() bool { return m.State() != StateSettlingHuman })
	if m.State() != StateActorPending {
		t.Fatalf("expected %s once settled, got %s", StateActorPending, m.State())
	}

	stepUntil(t, m, 500, func() bool { return m.State() == StateSettlingActor })
	if len(obs.launches) != 2 || obs.launches[1].Actor != ActorAutomated {
		t.Fatalf("expected human then automated launch, got %+v", obs.launches)
	}

	stepUntil(t, m, 2000, func() bool { return m.State() == StateAwaitingHuman })
	if !m.Settled() {
		t.Error("control should only return once everything is at rest")
	}
	if m.sched.Pending() != 0 {
		t.Errorf("expected no queued tasks, got %d", m.sched.Pending())
	}
}

func TestRestartCancelsPendingActor(t *testing.T) {
	m, obs := newTestMatch(t, DefaultConfig())

	body := m.home[0]
	m.OnPressStart(body.Pos)
	if m.OnPressEnd(body.Pos.Plus(NewVec2(14, 0))) == nil {
		t.Fatal("expected a launch")
	}
	stepUntil(t, m, 2000, func() bool { return m.State() == StateActorPending })

	m.Restart()
	if m.State() != StateAwaitingHuman || m.turn.ActorPending() {
		t.Fatalf("restart should return control to the human, state=%s", m.State())
	}

	for i := 0; i < 300; i++ {
		m.Step()
	}
	for _, l := range obs.launches {
		if l.Actor == ActorAutomated {
			t.Fatal("actor task fired after restart")
		}
	}
	if !m.Settled() {
		t.Error("nothing should move after a restart without input")
	}
}

func TestRestartIsIdempotent(t *testing.T) {
	m, obs := newTestMatch(t, DefaultConfig())

	m.home[2].Launch(NewVec2(5, 5))
	for i := 0; i < 10; i++ {
		m.Step()
	}

	m.Restart()
	first := m.Snapshot()
	m.Restart()
	second := m.Snapshot()

	if !reflect.DeepEqual(first.Bodies, second.Bodies) {
		t.Error("two restarts should leave identical bodies")
	}
	if first.State != StateAwaitingHuman || second.State != StateAwaitingHuman {
		t.Error("restart should leave the match awaiting input")
	}
	if second.Tick != 0 || second.Restarts != 2 {
		t.Errorf("expected tick 0 and 2 restarts, got %d and %d", second.Tick, second.Restarts)
	}
	if !reflect.DeepEqual(obs.restarts, []int{1, 2}) {
		t.Errorf("unexpected restart events %v", obs.restarts)
	}

	home, away := StartingPositions(m.Config())
	for i, p := range append(home, away...) {
		b, ok := second.Body(i)
		if !ok || b.X != p.X || b.Y != p.Y {
			t.Errorf("body %d not re-racked: %+v", i, b)
		}
	}
}

func TestRestartAfterGameOver(t *testing.T) {
	cfg := flatConfig()
	cfg.BallsPerSide = 1
	m, _ := newTestMatch(t, cfg)

	m.home[0].Pos.X = 450
	m.Step()
	if m.State() != StateGameOver {
		t.Fatalf("expected game over, got %s", m.State())
	}

	m.Restart()
	if m.State() != StateAwaitingHuman || m.Winner() != SideNone {
		t.Errorf("restart should clear the result, state=%s winner=%q", m.State(), m.Winner())
	}
	if r := m.Remaining(); r.Home != 1 || r.Away != 1 {
		t.Errorf("expected full rosters, got %+v", r)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	m, _ := newTestMatch(t, DefaultConfig())
	s := m.Snapshot()
	s.Bodies[0].X = -1

	if m.home[0].Pos.X == -1 {
		t.Error("snapshot shares memory with the match")
	}
	if _, ok := s.Body(99); ok {
		t.Error("lookup of a missing body should fail")
	}
}

func TestScoredBodiesStayOutOfPlay(t *testing.T) {
	cfg := flatConfig()
	m, _ := newTestMatch(t, cfg)

	scored := m.home[0]
	scored.Pos = NewVec2(450, 60)
	m.Step()
	if !scored.Scored() {
		t.Fatal("body past the centerline should be scored")
	}

	// Park a moving away body on top of it; they must not interact.
	mover := m.away[0]
	mover.Pos = NewVec2(455, 60)
	mover.Launch(NewVec2(-0.5, 0))
	m.Step()

	if scored.Pos.X != 450 || scored.Moving {
		t.Errorf("scored body was disturbed: pos=%v moving=%v", scored.Pos, scored.Moving)
	}
	if m.Remaining().Home != cfg.BallsPerSide-1 {
		t.Errorf("expected %d home remaining, got %d", cfg.BallsPerSide-1, m.Remaining().Home)
	}
}

package arena

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func newTestController(cfg Config) (*TurnController, *Scheduler) {
	sched := &Scheduler{}
	tc := NewTurnController(cfg, sched, rand.New(rand.NewSource(1)), NewVec2(400, 250))
	return tc, sched
}

func restingRoster(side Side, firstID int, xs ...float64) []*Body {
	bodies := make([]*Body, len(xs))
	for i, x := range xs {
		bodies[i] = NewBody(firstID+i, NewVec2(x, 100+float64(i)*100), 15, 1, side)
	}
	return bodies
}

func TestPressStartSelectsHomeBody(t *testing.T) {
	tc, _ := newTestController(DefaultConfig())
	home := restingRoster(SideHome, 0, 200, 200)

	drag := tc.PressStart(NewVec2(205, 205), home)
	if !drag.Active || drag.BodyID != 1 {
		t.Fatalf("expected drag on body 1, got %+v", drag)
	}
	if tc.State() != StateHumanActing {
		t.Errorf("expected %s, got %s", StateHumanActing, tc.State())
	}
}

func TestPressStartMissesEmptySpace(t *testing.T) {
	tc, _ := newTestController(DefaultConfig())
	home := restingRoster(SideHome, 0, 200)

	drag := tc.PressStart(NewVec2(50, 50), home)
	if drag.Active {
		t.Error("press on empty space should not start a drag")
	}
	if tc.State() != StateAwaitingHuman {
		t.Errorf("expected %s, got %s", StateAwaitingHuman, tc.State())
	}
}

func TestPressStartSkipsIneligibleBodies(t *testing.T) {
	tc, _ := newTestController(DefaultConfig())
	home := restingRoster(SideHome, 0, 200, 200)
	home[0].Launch(NewVec2(1, 0))
	home[1].markScored()

	if drag := tc.PressStart(home[0].Pos, home); drag.Active {
		t.Error("moving body should not be selectable")
	}
	if drag := tc.PressStart(home[1].Pos, home); drag.Active {
		t.Error("scored body should not be selectable")
	}
}

func TestShortDragCancels(t *testing.T) {
	cases := []struct {
		name string
		end  Vec2
	}{
		{"zero length", NewVec2(200, 100)},
		{"under threshold", NewVec2(203, 103)},
	}

	for _, c := range cases {
		tc, _ := newTestController(DefaultConfig())
		home := restingRoster(SideHome, 0, 200)
		tc.PressStart(NewVec2(200, 100), home)
		if d := tc.PressMove(c.end); d.Current != NewVec2(200, 100) {
			t.Errorf("%s: aim point should ignore non-finite moves, got %+v", c.name, d.Current)
		}

		if l := tc.PressEnd(c.end, 10); l != nil {
			t.Errorf("%s: expected no launch, got %+v", c.name, l)
		}
		if tc.State() != StateAwaitingHuman {
			t.Errorf("%s: expected %s, got %s", c.name, StateAwaitingHuman, tc.State())
		}
		if tc.Drag().Active {
			t.Errorf("%s: drag should be cleared", c.name)
		}
		if home[0].Moving {
			t.Errorf("%s: body should not move", c.name)
		}
	}
}

func TestNonFiniteReleaseCancels(t *testing.T) {
	cases := []struct {
		name string
		end  Vec2
	}{
		{"nan", NewVec2(math.NaN(), math.NaN())},
		{"nan x", NewVec2(math.NaN(), 100)},
		{"+inf", NewVec2(math.Inf(1), 100)},
		{"-inf y", NewVec2(200, math.Inf(-1))},
	}

	for _, c := range cases {
		tc, _ := newTestController(DefaultConfig())
		home := restingRoster(SideHome, 0, 200)
		tc.PressStart(NewVec2(200, 100), home)

		if l := tc.PressEnd(c.end, 10); l != nil {
			t.Errorf("%s: expected no launch, got %+v", c.name, l)
		}
		if tc.State() != StateAwaitingHuman {
			t.Errorf("%s: expected %s, got %s", c.name, StateAwaitingHuman, tc.State())
		}
		if home[0].Moving || home[0].Vel != (Vec2{}) {
			t.Errorf("%s: body should stay at rest, vel=%+v", c.name, home[0].Vel)
		}
	}
}

func TestNonFiniteReleaseLeavesMatchPlayable(t *testing.T) {
	m, err := NewMatch(DefaultConfig(), WithRand(rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	start := m.home[0].Pos

	m.OnPressStart(start)
	if l := m.OnPressEnd(NewVec2(math.NaN(), math.NaN())); l != nil {
		t.Fatalf("expected no launch, got %+v", l)
	}
	for i := 0; i < 200; i++ {
		m.Step()
	}

	for _, b := range m.Snapshot().Bodies {
		if math.IsNaN(b.X) || math.IsNaN(b.Y) || math.IsNaN(b.VX) || math.IsNaN(b.VY) {
			t.Fatalf("body %d picked up a NaN: %+v", b.ID, b)
		}
	}
	if m.State() != StateAwaitingHuman {
		t.Fatalf("expected %s, got %s", StateAwaitingHuman, m.State())
	}
	m.OnPressStart(start)
	if l := m.OnPressEnd(start.Plus(NewVec2(-70, 0))); l == nil {
		t.Error("a normal drag should still launch afterwards")
	}
}

func TestDragLaunchesOppositeDirection(t *testing.T) {
	tc, _ := newTestController(DefaultConfig())
	home := restingRoster(SideHome, 0, 200)

	tc.PressStart(NewVec2(200, 100), home)
	tc.PressMove(NewVec2(180, 100))
	if tc.Drag().Current.X != 180 {
		t.Errorf("press move should update the aim point, got %+v", tc.Drag().Current)
	}

	l := tc.PressEnd(NewVec2(130, 100), 42)
	if l == nil {
		t.Fatal("expected a launch")
	}
	// 70px drag to the left -> speed 10 to the right.
	if !approx(l.Velocity.X, 10, 1e-9) || !approx(l.Velocity.Y, 0, 1e-9) {
		t.Errorf("expected velocity (10, 0), got (%.4f, %.4f)", l.Velocity.X, l.Velocity.Y)
	}
	if l.Tick != 42 || l.Actor != ActorHuman || l.Side != SideHome || l.BodyID != 0 {
		t.Errorf("unexpected launch record %+v", l)
	}
	if !home[0].Moving {
		t.Error("launched body should be moving")
	}
	if tc.State() != StateSettlingHuman {
		t.Errorf("expected %s, got %s", StateSettlingHuman, tc.State())
	}
}

func TestDragSpeedIsCapped(t *testing.T) {
	tc, _ := newTestController(DefaultConfig())
	home := restingRoster(SideHome, 0, 200)

	tc.PressStart(NewVec2(200, 100), home)
	l := tc.PressEnd(NewVec2(200, 1000), 1)
	if l == nil {
		t.Fatal("expected a launch")
	}
	if !approx(l.Velocity.Magnitude(), MaxLaunchSpeed, 1e-9) {
		t.Errorf("expected speed capped at %.1f, got %.4f", MaxLaunchSpeed, l.Velocity.Magnitude())
	}
	if l.Velocity.Y >= 0 {
		t.Errorf("downward drag should launch upward, vy=%.4f", l.Velocity.Y)
	}
}

func TestPressEndWithoutDragIsIgnored(t *testing.T) {
	tc, _ := newTestController(DefaultConfig())
	if l := tc.PressEnd(NewVec2(100, 100), 0); l != nil {
		t.Error("release without a press should do nothing")
	}
}

func TestSettledHumanTurnSchedulesActorOnce(t *testing.T) {
	tc, sched := newTestController(DefaultConfig())
	bodies := restingRoster(SideHome, 0, 200, 200)
	bodies[0].Launch(NewVec2(1, 0))
	tc.state = StateSettlingHuman

	tc.Update(5, bodies)
	if tc.State() != StateSettlingHuman || sched.Pending() != 0 {
		t.Fatal("actor must wait while bodies are moving")
	}

	bodies[0].Stop()
	tc.Update(6, bodies)
	if tc.State() != StateActorPending || !tc.ActorPending() {
		t.Fatalf("expected %s, got %s", StateActorPending, tc.State())
	}
	if sched.Pending() != 1 {
		t.Fatalf("expected one scheduled task, got %d", sched.Pending())
	}

	tc.Update(7, bodies)
	tc.state = StateSettlingHuman // a second settle observation must not queue again
	tc.Update(8, bodies)
	if sched.Pending() != 1 {
		t.Errorf("actor was scheduled twice: %d tasks pending", sched.Pending())
	}
}

func TestActorDelayWithinRange(t *testing.T) {
	cfg := DefaultConfig()
	tc, sched := newTestController(cfg)
	lo := cfg.ticksFor(cfg.ActorDelayMin)
	hi := cfg.ticksFor(cfg.ActorDelayMax)

	for i := 0; i < 50; i++ {
		tc.Reset()
		tc.state = StateSettlingHuman
		tc.Update(100, nil)
		if len(sched.Due(100+lo-1)) != 0 {
			t.Fatalf("actor fired before the minimum delay of %d ticks", lo)
		}
		if len(sched.Due(100+hi)) != 1 {
			t.Fatalf("actor did not fire by the maximum delay of %d ticks", hi)
		}
	}
}

func TestActorRequeuesWhileBodiesMove(t *testing.T) {
	cfg := DefaultConfig()
	tc, sched := newTestController(cfg)
	home := restingRoster(SideHome, 0, 200)
	away := restingRoster(SideAway, 1, 600)
	all := append(append([]*Body{}, home...), away...)

	tc.state = StateActorPending
	tc.actorPending = true
	home[0].Launch(NewVec2(0.5, 0))

	if l := tc.RunActor(20, all, away); l != nil {
		t.Fatal("actor must not act while a body is moving")
	}
	if tc.State() != StateActorPending {
		t.Errorf("expected %s, got %s", StateActorPending, tc.State())
	}
	poll := cfg.ticksFor(cfg.ActorPollInterval)
	if len(sched.Due(20+poll-1)) != 0 || len(sched.Due(20+poll)) != 1 {
		t.Errorf("expected re-poll exactly %d ticks later", poll)
	}

	home[0].Stop()
	l := tc.RunActor(20+poll, all, away)
	if l == nil {
		t.Fatal("actor should act once everything is at rest")
	}
	if l.Actor != ActorAutomated || l.Side != SideAway {
		t.Errorf("unexpected launch %+v", l)
	}
	if tc.State() != StateSettlingActor {
		t.Errorf("expected %s, got %s", StateSettlingActor, tc.State())
	}
}

func TestActorWaitsForOpenDrag(t *testing.T) {
	tc, sched := newTestController(DefaultConfig())
	away := restingRoster(SideAway, 4, 600)

	tc.state = StateActorPending
	tc.drag = DragState{Active: true}
	if l := tc.RunActor(0, away, away); l != nil {
		t.Fatal("actor must not act while a drag is open")
	}
	if sched.Pending() != 1 {
		t.Errorf("expected a re-poll, got %d tasks", sched.Pending())
	}
}

func TestActorHandsBackWithNothingEligible(t *testing.T) {
	tc, _ := newTestController(DefaultConfig())
	away := restingRoster(SideAway, 4, 600, 600)
	for _, b := range away {
		b.markScored()
	}

	tc.state = StateActorPending
	tc.actorPending = true
	if l := tc.RunActor(0, away, away); l != nil {
		t.Fatal("no eligible body means no launch")
	}
	if tc.State() != StateAwaitingHuman || tc.ActorPending() {
		t.Errorf("control should return to the human, state=%s pending=%v", tc.State(), tc.ActorPending())
	}
}

func TestActorSettleDelay(t *testing.T) {
	cfg := DefaultConfig()
	tc, _ := newTestController(cfg)
	away := restingRoster(SideAway, 4, 600)

	tc.state = StateActorPending
	tc.actorPending = true
	if tc.RunActor(100, away, away) == nil {
		t.Fatal("expected actor launch")
	}
	away[0].Stop()

	wait := cfg.ticksFor(cfg.ActorSettleDelay)
	tc.Update(100+wait-1, away)
	if tc.State() != StateSettlingActor {
		t.Fatalf("control returned before the settle delay: %s", tc.State())
	}
	tc.Update(100+wait, away)
	if tc.State() != StateAwaitingHuman {
		t.Errorf("expected %s after the settle delay, got %s", StateAwaitingHuman, tc.State())
	}
}

func TestEndDisablesInput(t *testing.T) {
	tc, sched := newTestController(DefaultConfig())
	home := restingRoster(SideHome, 0, 200)
	sched.After(0, 10, taskActorAct)

	tc.End()
	if tc.State() != StateGameOver {
		t.Fatalf("expected %s, got %s", StateGameOver, tc.State())
	}
	if sched.Pending() != 0 {
		t.Error("game over should cancel queued actor tasks")
	}
	if drag := tc.PressStart(home[0].Pos, home); drag.Active {
		t.Error("input should be ignored once the game is over")
	}
}

func TestActorChoosePrefersNearest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ActorPreferNearest = 1
	a := NewActor(cfg, rand.New(rand.NewSource(3)))
	roster := []*Body{
		NewBody(4, NewVec2(700, 100), 15, 1, SideAway),
		NewBody(5, NewVec2(450, 260), 15, 1, SideAway),
		NewBody(6, NewVec2(600, 400), 15, 1, SideAway),
	}

	for i := 0; i < 20; i++ {
		if got := a.Choose(roster, NewVec2(400, 250)); got == nil || got.ID != 5 {
			t.Fatalf("expected nearest body 5, got %+v", got)
		}
	}

	roster[1].markScored()
	if got := a.Choose(roster, NewVec2(400, 250)); got == nil || got.ID != 6 {
		t.Errorf("expected next nearest body 6 once 5 scored, got %+v", got)
	}
}

func TestActorChooseRandomStaysEligible(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ActorPreferNearest = 0
	a := NewActor(cfg, rand.New(rand.NewSource(9)))
	roster := restingRoster(SideAway, 4, 600, 600, 600)
	roster[0].Launch(NewVec2(1, 1))

	for i := 0; i < 50; i++ {
		got := a.Choose(roster, NewVec2(400, 250))
		if got == nil || !got.Eligible() {
			t.Fatalf("random pick returned an ineligible body: %+v", got)
		}
	}
}

func TestActorAimWithinJitterAndSpeed(t *testing.T) {
	cfg := DefaultConfig()
	a := NewActor(cfg, rand.New(rand.NewSource(11)))
	b := NewBody(4, NewVec2(600, 100), 15, 1, SideAway)
	target := NewVec2(400, 250)
	want := target.Minus(b.Pos).Angle()

	for i := 0; i < 100; i++ {
		v := a.Aim(b, target)
		speed := v.Magnitude()
		if speed < cfg.ActorSpeedMin-1e-9 || speed > cfg.ActorSpeedMax+1e-9 {
			t.Fatalf("speed %.4f outside [%.1f, %.1f]", speed, cfg.ActorSpeedMin, cfg.ActorSpeedMax)
		}
		diff := math.Abs(math.Remainder(v.Angle()-want, 2*math.Pi))
		if diff > cfg.ActorAimJitter+1e-9 {
			t.Fatalf("heading off by %.4f rad, jitter is %.4f", diff, cfg.ActorAimJitter)
		}
	}
}

func TestTicksForNeverZero(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ticksFor(500 * time.Millisecond); got != 30 {
		t.Errorf("expected 30 ticks for 500ms at 60Hz, got %d", got)
	}
	if got := cfg.ticksFor(time.Millisecond); got != 1 {
		t.Errorf("expected at least one tick, got %d", got)
	}
}

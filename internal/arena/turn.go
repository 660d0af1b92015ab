package arena

import (
	"math"
	"math/rand"
	"time"
)

// TurnState is the phase of the turn cycle.
type TurnState string

const (
	StateAwaitingHuman TurnState = "AWAITING_HUMAN_INPUT"
	StateHumanActing   TurnState = "HUMAN_ACTING"
	StateSettlingHuman TurnState = "SETTLING_AFTER_HUMAN_TURN"
	StateActorPending  TurnState = "AUTOMATED_ACTOR_PENDING"
	StateActorActing   TurnState = "AUTOMATED_ACTOR_ACTING"
	StateSettlingActor TurnState = "SETTLING_AFTER_AUTOMATED_TURN"
	StateGameOver      TurnState = "GAME_OVER"
)

// ActorKind says who launched a body.
type ActorKind string

const (
	ActorHuman     ActorKind = "human"
	ActorAutomated ActorKind = "automated"
)

// DragState is what an input collaborator needs to draw the aim indicator.
type DragState struct {
	Active  bool `json:"active" msgpack:"active"`
	BodyID  int  `json:"body_id" msgpack:"body_id"`
	Anchor  Vec2 `json:"anchor" msgpack:"anchor"`
	Current Vec2 `json:"current" msgpack:"current"`
}

// Launch records one shot.
type Launch struct {
	Tick     int       `json:"tick" msgpack:"tick"`
	BodyID   int       `json:"body_id" msgpack:"body_id"`
	Side     Side      `json:"side" msgpack:"side"`
	Actor    ActorKind `json:"actor" msgpack:"actor"`
	Origin   Vec2      `json:"origin" msgpack:"origin"`
	Velocity Vec2      `json:"velocity" msgpack:"velocity"`
}

// TurnController decides who may launch and when the automated actor moves.
// It reads the shared bodies to check eligibility and settling; the only
// writes it makes are the launches themselves.
type TurnController struct {
	cfg    Config
	sched  *Scheduler
	actor  *Actor
	rng    *rand.Rand
	target Vec2

	state        TurnState
	drag         DragState
	selected     *Body
	actorPending bool
	settleSince  int
}

// NewTurnController starts in StateAwaitingHuman. target is where the
// automated actor aims.
func NewTurnController(cfg Config, sched *Scheduler, rng *rand.Rand, target Vec2) *TurnController {
	return &TurnController{
		cfg:    cfg,
		sched:  sched,
		actor:  NewActor(cfg, rng),
		rng:    rng,
		target: target,
		state:  StateAwaitingHuman,
	}
}

func (tc *TurnController) State() TurnState { return tc.state }
func (tc *TurnController) Drag() DragState { return tc.drag }
func (tc *TurnController) ActorPending() bool { return tc.actorPending }

// PressStart selects the eligible home body under p, if any.
func (tc *TurnController) PressStart(p Vec2, home []*Body) DragState {
	if tc.state != StateAwaitingHuman {
		return tc.drag
	}
	for _, b := range home {
		if b.Eligible() && b.Contains(p) {
			tc.selected = b
			tc.drag = DragState{Active: true, BodyID: b.ID, Anchor: p, Current: p}
			tc.state = StateHumanActing
			break
		}
	}
	return tc.drag
}

// PressMove tracks the pointer while a drag is in progress.
func (tc *TurnController) PressMove(p Vec2) DragState {
	if tc.state == StateHumanActing && isFinite(p.X) && isFinite(p.Y) {
		tc.drag.Current = p
	}
	return tc.drag
}

// PressEnd releases the drag. A short (or zero-length) drag cancels; a long
// one launches the selected body opposite the drag vector with speed
// proportional to its length, capped at MaxLaunchSpeed.
func (tc *TurnController) PressEnd(p Vec2, tick int) *Launch {
	if tc.state != StateHumanActing {
		return nil
	}
	b := tc.selected
	d := p.Minus(tc.drag.Anchor)
	dist := d.Magnitude()

	tc.clearDrag()
	if !isFinite(dist) || dist < tc.cfg.MinDragDistance || dist == 0 || !b.Eligible() {
		tc.state = StateAwaitingHuman
		return nil
	}

	speed := dist / tc.cfg.DragScale
	if speed > tc.cfg.MaxLaunchSpeed {
		speed = tc.cfg.MaxLaunchSpeed
	}
	vel := d.Times(-speed / dist)
	origin := b.Pos
	b.Launch(vel)

	tc.state = StateSettlingHuman
	tc.settleSince = tick
	return &Launch{Tick: tick, BodyID: b.ID, Side: b.Side, Actor: ActorHuman, Origin: origin, Velocity: vel}
}

// Update re-checks the settle predicates. It runs once per tick, after
// physics, so a poll never relies on a single stale observation.
func (tc *TurnController) Update(tick int, bodies []*Body) {
	switch tc.state {
	case StateSettlingHuman:
		if anyMoving(bodies) || tc.actorPending {
			return
		}
		tc.state = StateActorPending
		tc.actorPending = true
		tc.sched.After(tick, tc.actorDelayTicks(), taskActorAct)

	case StateSettlingActor:
		if tick-tc.settleSince < tc.cfg.ticksFor(tc.cfg.ActorSettleDelay) || anyMoving(bodies) {
			return
		}
		tc.handBack()
	}
}

// RunActor is the delayed actor task. If something is still moving or a
// drag is open it re-queues itself instead of acting.
func (tc *TurnController) RunActor(tick int, bodies, away []*Body) *Launch {
	if tc.state != StateActorPending {
		return nil
	}
	if anyMoving(bodies) || tc.drag.Active {
		tc.sched.After(tick, tc.cfg.ticksFor(tc.cfg.ActorPollInterval), taskActorAct)
		return nil
	}

	tc.state = StateActorActing
	b := tc.actor.Choose(away, tc.target)
	if b == nil {
		tc.handBack()
		return nil
	}

	origin := b.Pos
	vel := tc.actor.Aim(b, tc.target)
	b.Launch(vel)

	tc.state = StateSettlingActor
	tc.settleSince = tick
	return &Launch{Tick: tick, BodyID: b.ID, Side: b.Side, Actor: ActorAutomated, Origin: origin, Velocity: vel}
}

// End freezes the turn cycle: no more input, no more actor tasks.
func (tc *TurnController) End() {
	tc.state = StateGameOver
	tc.clearDrag()
	tc.actorPending = false
	tc.sched.Cancel()
}

// Reset returns control to the human and drops any queued actor task.
func (tc *TurnController) Reset() {
	tc.state = StateAwaitingHuman
	tc.clearDrag()
	tc.actorPending = false
	tc.settleSince = 0
	tc.sched.Cancel()
}

func (tc *TurnController) handBack() {
	tc.state = StateAwaitingHuman
	tc.actorPending = false
}

func (tc *TurnController) clearDrag() {
	tc.drag = DragState{}
	tc.selected = nil
}

func (tc *TurnController) actorDelayTicks() int {
	lo, hi := tc.cfg.ActorDelayMin, tc.cfg.ActorDelayMax
	d := lo
	if hi > lo {
		d += time.Duration(tc.rng.Int63n(int64(hi - lo)))
	}
	return tc.cfg.ticksFor(d)
}

// isFinite rejects NaN and infinite pointer input, which would otherwise
// spread through every body it touches.
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func anyMoving(bodies []*Body) bool {
	for _, b := range bodies {
		if b.Moving {
			return true
		}
	}
	return false
}

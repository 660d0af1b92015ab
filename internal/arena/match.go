package arena

import (
	"log"
	"math/rand"
	"sync"
	"time"
)

// SideNone is reported as the winner while a match is running, and for the
// rare tick where both rosters empty at once.
const SideNone Side = ""

// Remaining is the number of unscored bodies per side.
type Remaining struct {
	Home int `json:"home" msgpack:"home"`
	Away int `json:"away" msgpack:"away"`
}

// Observer receives match events. Calls are made synchronously while the
// match lock is held, so implementations must not call back into the Match.
type Observer interface {
	OnLaunch(l Launch)
	OnScore(r Remaining)
	OnGameOver(winner Side, r Remaining)
	OnRestart(restarts int)
}

// Option configures a Match.
type Option func(*Match)

// WithRand sets the random source used by the actor and the anti-stick
// impulse. Tests pass a seeded source for repeatable runs.
func WithRand(r *rand.Rand) Option {
	return func(m *Match) { m.rng = r }
}

// WithObserver registers an event observer.
func WithObserver(o Observer) Option {
	return func(m *Match) { m.observer = o }
}

// Match is the full simulation state of one game: both rosters, the field,
// and the turn cycle. Every exported method takes the same lock, so ticks,
// pointer input and restarts from different goroutines are applied one at
// a time.
type Match struct {
	mu sync.Mutex

	cfg      Config
	bounds   Bounds
	obstacle Obstacle
	home     []*Body
	away     []*Body
	all      []*Body

	engine   *MotionEngine
	resolver *Resolver
	turn     *TurnController
	sched    *Scheduler
	rng      *rand.Rand
	observer Observer

	tick     int
	winner   Side
	restarts int
}

// NewMatch validates cfg and racks both rosters.
func NewMatch(cfg Config, opts ...Option) (*Match, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Match{
		cfg:    cfg,
		bounds: Bounds{Width: cfg.Width, Height: cfg.Height},
		sched:  &Scheduler{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	m.obstacle = NewCenterObstacle(m.bounds, cfg.WallThickness, cfg.GapRadius)
	m.engine = NewMotionEngine(cfg)
	m.resolver = NewResolver(cfg, m.rng)
	m.turn = NewTurnController(cfg, m.sched, m.rng, m.obstacle.GapCenter())
	m.rack()
	return m, nil
}

// StartingPositions returns where each side's bodies are placed: a column at
// a quarter of the width into each half, spread evenly top to bottom.
func StartingPositions(cfg Config) (home, away []Vec2) {
	n := cfg.BallsPerSide
	for i := 0; i < n; i++ {
		y := cfg.Height * float64(i+1) / float64(n+1)
		home = append(home, Vec2{X: cfg.Width / 4, Y: y})
		away = append(away, Vec2{X: cfg.Width * 3 / 4, Y: y})
	}
	return home, away
}

func (m *Match) rack() {
	homePos, awayPos := StartingPositions(m.cfg)
	n := m.cfg.BallsPerSide

	m.home = make([]*Body, n)
	m.away = make([]*Body, n)
	for i := 0; i < n; i++ {
		m.home[i] = NewBody(i, homePos[i], m.cfg.BallRadius, m.cfg.BallMass, SideHome)
		m.away[i] = NewBody(n+i, awayPos[i], m.cfg.BallRadius, m.cfg.BallMass, SideAway)
	}
	m.all = append(append(make([]*Body, 0, 2*n), m.home...), m.away...)
}

// Step advances the simulation by one tick: due actor tasks, motion for
// every body, pairwise contact, scoring, then the turn cycle.
func (m *Match) Step() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, kind := range m.sched.Due(m.tick) {
		m.runTask(kind)
	}

	for _, b := range m.all {
		m.engine.Advance(b, m.bounds, m.obstacle)
	}
	m.resolver.ResolveAll(m.all)

	m.checkScoring()
	if m.turn.State() != StateGameOver {
		m.turn.Update(m.tick, m.all)
	}
	m.tick++
}

func (m *Match) runTask(kind taskKind) {
	switch kind {
	case taskActorAct:
		if l := m.turn.RunActor(m.tick, m.all, m.away); l != nil {
			m.launched(*l)
		}
	}
}

// checkScoring marks bodies that reached the opposing half and ends the
// match when a roster has nothing left to score.
func (m *Match) checkScoring() {
	mid := m.bounds.MidX()
	changed := false
	for _, b := range m.all {
		if b.Scored() {
			continue
		}
		if (b.Side == SideHome && b.Pos.X > mid) || (b.Side == SideAway && b.Pos.X < mid) {
			b.markScored()
			changed = true
			log.Printf("[ARENA] Body %d (%s) scored at tick %d", b.ID, b.Side, m.tick)
		}
	}
	if !changed {
		return
	}

	r := m.remainingLocked()
	if m.observer != nil {
		m.observer.OnScore(r)
	}
	if m.turn.State() == StateGameOver || (r.Home > 0 && r.Away > 0) {
		return
	}

	switch {
	case r.Home == 0 && r.Away == 0:
		m.winner = SideNone
	case r.Home == 0:
		m.winner = SideHome
	default:
		m.winner = SideAway
	}
	m.turn.End()
	log.Printf("[ARENA] Game over at tick %d, winner=%q home=%d away=%d", m.tick, m.winner, r.Home, r.Away)
	if m.observer != nil {
		m.observer.OnGameOver(m.winner, r)
	}
}

func (m *Match) launched(l Launch) {
	log.Printf("[ARENA] %s launch body=%d v=(%.2f, %.2f) tick=%d", l.Actor, l.BodyID, l.Velocity.X, l.Velocity.Y, l.Tick)
	if m.observer != nil {
		m.observer.OnLaunch(l)
	}
}

// OnPressStart begins a drag if p is on one of the human's settled bodies.
func (m *Match) OnPressStart(p Vec2) DragState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turn.PressStart(p, m.home)
}

// OnPressMove updates the aim point of an open drag.
func (m *Match) OnPressMove(p Vec2) DragState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turn.PressMove(p)
}

// OnPressEnd releases the drag, launching the body if the drag was long
// enough. It returns the launch, or nil when nothing was launched.
func (m *Match) OnPressEnd(p Vec2) *Launch {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.turn.PressEnd(p, m.tick)
	if l != nil {
		m.launched(*l)
	}
	return l
}

// Restart re-racks both rosters and drops every pending actor task before
// returning.
func (m *Match) Restart() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rack()
	m.engine.Reset()
	m.turn.Reset()
	m.tick = 0
	m.winner = SideNone
	m.restarts++
	log.Printf("[ARENA] Match restarted (restart #%d)", m.restarts)
	if m.observer != nil {
		m.observer.OnRestart(m.restarts)
	}
}

// Remaining returns unscored counts for both sides.
func (m *Match) Remaining() Remaining {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remainingLocked()
}

func (m *Match) remainingLocked() Remaining {
	var r Remaining
	for _, b := range m.home {
		if !b.Scored() {
			r.Home++
		}
	}
	for _, b := range m.away {
		if !b.Scored() {
			r.Away++
		}
	}
	return r
}

// State returns the current turn phase.
func (m *Match) State() TurnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turn.State()
}

// Winner is SideNone until the match is over.
func (m *Match) Winner() Side {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.winner
}

// Tick is the number of steps since the last (re)start.
func (m *Match) Tick() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tick
}

// Settled reports whether no body is moving.
func (m *Match) Settled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !anyMoving(m.all)
}

func (m *Match) Config() Config { return m.cfg }
func (m *Match) Bounds() Bounds { return m.bounds }
func (m *Match) Obstacle() Obstacle { return m.obstacle }

package arena

import "math"

// MotionEngine advances single bodies by one tick. It keeps per-body
// counters (consecutive boundary bounces, ticks in motion) keyed by body ID;
// Reset clears them when a match restarts.
type MotionEngine struct {
	cfg         Config
	bounces     map[int]int
	movingTicks map[int]int
}

// NewMotionEngine creates an engine with the given tuning.
func NewMotionEngine(cfg Config) *MotionEngine {
	return &MotionEngine{
		cfg:         cfg,
		bounces:     make(map[int]int),
		movingTicks: make(map[int]int),
	}
}

// Reset drops all per-body counters.
func (me *MotionEngine) Reset() {
	me.bounces = make(map[int]int)
	me.movingTicks = make(map[int]int)
}

// Advance integrates one tick for b. Settled and scored bodies are left
// untouched. Position is integrated first so both collision passes correct
// the position just produced; the wall is resolved before the field edges.
func (me *MotionEngine) Advance(b *Body, bounds Bounds, obs Obstacle) {
	if !b.Moving || b.Scored() {
		return
	}

	prevX := b.Pos.X
	b.Pos = b.Pos.Plus(b.Vel)

	me.applySlope(b, bounds)
	b.Vel = b.Vel.Times(me.cfg.Friction)

	me.movingTicks[b.ID]++
	if b.Speed() < me.cfg.RestSpeed || me.movingTicks[b.ID] >= me.cfg.MaxMovingTicks {
		me.settle(b)
	}

	me.collideObstacle(b, prevX, obs)
	me.collideBounds(b, bounds)
}

// applySlope pushes the body away from the centerline, harder the further
// out it is. A shot that misses the gap rolls back to its own half; one that
// made it across keeps going.
func (me *MotionEngine) applySlope(b *Body, bounds Bounds) {
	mid := bounds.MidX()
	if mid == 0 {
		return
	}
	b.Vel.X += me.cfg.Gravity * (b.Pos.X - mid) / mid
}

func (me *MotionEngine) settle(b *Body) {
	b.Stop()
	delete(me.movingTicks, b.ID)
	delete(me.bounces, b.ID)
}

// collideObstacle clamps a body that overlaps (or jumped across) the wall
// back to the face it approached from. Bodies lined up with the gap pass.
func (me *MotionEngine) collideObstacle(b *Body, prevX float64, obs Obstacle) {
	r := b.Radius()
	if obs.InGap(b.Pos.Y, r) {
		return
	}

	reach := r + obs.HalfThickness()
	fromLeft := prevX < obs.X
	crossed := fromLeft != (b.Pos.X < obs.X)
	if math.Abs(b.Pos.X-obs.X) >= reach && !crossed {
		return
	}

	e := me.cfg.Restitution
	if fromLeft {
		b.Pos.X = obs.X - reach
		b.Vel.X = -math.Abs(b.Vel.X) * e
	} else {
		b.Pos.X = obs.X + reach
		b.Vel.X = math.Abs(b.Vel.X) * e
	}
}

// collideBounds keeps the body inside the field. A body that keeps hitting
// edges on consecutive ticks is rattling in a corner: it gets extra damping
// from the second hit on and is stopped outright at the cap.
func (me *MotionEngine) collideBounds(b *Body, bounds Bounds) {
	r := b.Radius()
	e := me.cfg.Restitution
	hit := false

	if b.Pos.X-r < 0 {
		b.Pos.X = r
		b.Vel.X = math.Abs(b.Vel.X) * e
		hit = true
	} else if b.Pos.X+r > bounds.Width {
		b.Pos.X = bounds.Width - r
		b.Vel.X = -math.Abs(b.Vel.X) * e
		hit = true
	}

	if b.Pos.Y-r < 0 {
		b.Pos.Y = r
		b.Vel.Y = math.Abs(b.Vel.Y) * e
		hit = true
	} else if b.Pos.Y+r > bounds.Height {
		b.Pos.Y = bounds.Height - r
		b.Vel.Y = -math.Abs(b.Vel.Y) * e
		hit = true
	}

	if !hit || !b.Moving {
		delete(me.bounces, b.ID)
		return
	}

	me.bounces[b.ID]++
	n := me.bounces[b.ID]
	if b.Speed() < me.cfg.BounceSpeedFloor || n >= me.cfg.MaxWallBounces {
		me.settle(b)
		return
	}
	if n >= 2 {
		b.Vel = b.Vel.Times(me.cfg.CornerDamping)
	}
}

// BounceCount returns the current consecutive-bounce counter for a body.
func (me *MotionEngine) BounceCount(id int) int {
	return me.bounces[id]
}

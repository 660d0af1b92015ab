package arena

import (
	"math"
	"math/rand"
)

// Resolver handles disc-disc contact.
type Resolver struct {
	cfg Config
	rng *rand.Rand
}

// NewResolver creates a resolver; rng supplies the anti-stick impulse
// direction.
func NewResolver(cfg Config, rng *rand.Rand) *Resolver {
	return &Resolver{cfg: cfg, rng: rng}
}

// Resolve separates two overlapping bodies and exchanges momentum along the
// contact normal. It returns false when the bodies do not touch.
//
// Velocities are split into normal and tangential parts; the tangential
// parts pass through unchanged and the normal parts follow the 1-D elastic
// formula for unequal masses. The exchange only happens while the pair is
// closing, so a pair that is already separating is just pushed apart.
// Restitution then scales both velocities and both bodies are set moving.
func (r *Resolver) Resolve(a, b *Body) bool {
	delta := b.Pos.Minus(a.Pos)
	dist := delta.Magnitude()
	sumR := a.Radius() + b.Radius()
	if dist >= sumR {
		return false
	}

	// Coincident centers have no normal; push them apart along x.
	normal := Vec2{X: 1}
	if dist > 0 {
		normal = delta.Times(1 / dist)
	}
	tangent := normal.LeftNormal()

	an, at := a.Vel.Dot(normal), a.Vel.Dot(tangent)
	bn, bt := b.Vel.Dot(normal), b.Vel.Dot(tangent)

	if an > bn {
		ma, mb := a.Mass(), b.Mass()
		total := ma + mb
		an, bn = ((ma-mb)*an+2*mb*bn)/total, ((mb-ma)*bn+2*ma*an)/total
	}

	overlap := sumR - dist + r.cfg.SeparationEpsilon
	a.Pos = a.Pos.Minus(normal.Times(overlap * a.Radius() / sumR))
	b.Pos = b.Pos.Plus(normal.Times(overlap * b.Radius() / sumR))

	e := r.cfg.Restitution
	a.Vel = normal.Times(an).Plus(tangent.Times(at)).Times(e)
	b.Vel = normal.Times(bn).Plus(tangent.Times(bt)).Times(e)

	a.Moving = true
	b.Moving = true

	r.unstick(a)
	r.unstick(b)
	return true
}

// unstick gives a near-motionless body a small kick in a random direction
// so two settled, overlapping bodies cannot lock together.
func (r *Resolver) unstick(b *Body) {
	if r.cfg.StallSpeed <= 0 || b.Speed() >= r.cfg.StallSpeed {
		return
	}
	angle := r.rng.Float64() * 2 * math.Pi
	b.Vel = Vec2{X: math.Cos(angle), Y: math.Sin(angle)}.Times(r.cfg.StallJitter)
}

// ResolveAll runs Resolve over every unordered pair of live bodies.
func (r *Resolver) ResolveAll(bodies []*Body) int {
	hits := 0
	for i := 0; i < len(bodies); i++ {
		if bodies[i].Scored() {
			continue
		}
		for j := i + 1; j < len(bodies); j++ {
			if bodies[j].Scored() {
				continue
			}
			if r.Resolve(bodies[i], bodies[j]) {
				hits++
			}
		}
	}
	return hits
}

package arena

import (
	"math"
	"math/rand"
	"sort"
)

// Actor is the automated opponent's shot policy.
type Actor struct {
	cfg Config
	rng *rand.Rand
}

func NewActor(cfg Config, rng *rand.Rand) *Actor {
	return &Actor{cfg: cfg, rng: rng}
}

// Choose picks the body to launch: usually the eligible one closest to the
// target, sometimes any eligible one at random. Returns nil when nothing on
// the roster can be launched.
func (a *Actor) Choose(roster []*Body, target Vec2) *Body {
	var eligible []*Body
	for _, b := range roster {
		if b.Eligible() {
			eligible = append(eligible, b)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Pos.DistanceTo(target) < eligible[j].Pos.DistanceTo(target)
	})

	if a.rng.Float64() < a.cfg.ActorPreferNearest {
		return eligible[0]
	}
	return eligible[a.rng.Intn(len(eligible))]
}

// Aim returns a launch velocity from b toward target with a speed drawn from
// the configured range and a small random error on the heading.
func (a *Actor) Aim(b *Body, target Vec2) Vec2 {
	dir := target.Minus(b.Pos)
	if dir.IsZero() {
		dir = Vec2{X: -1}
		if b.Side == SideHome {
			dir = Vec2{X: 1}
		}
	}

	speed := a.cfg.ActorSpeedMin + a.rng.Float64()*(a.cfg.ActorSpeedMax-a.cfg.ActorSpeedMin)
	angle := dir.Angle() + (a.rng.Float64()-0.5)*2*a.cfg.ActorAimJitter
	return Vec2{X: math.Cos(angle), Y: math.Sin(angle)}.Times(speed)
}

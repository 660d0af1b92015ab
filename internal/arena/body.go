package arena

// Side identifies which roster a body belongs to.
type Side string

const (
	SideHome Side = "HOME" // human-controlled, starts on the left half
	SideAway Side = "AWAY" // automated actor, starts on the right half
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

// Body is one disc on the field. Radius and mass are fixed at construction;
// Scored only ever goes from false to true.
type Body struct {
	ID     int
	Pos    Vec2
	Vel    Vec2
	Side   Side
	Moving bool

	radius float64
	mass   float64
	scored bool
}

// NewBody creates a body at rest.
func NewBody(id int, pos Vec2, radius, mass float64, side Side) *Body {
	return &Body{
		ID:     id,
		Pos:    pos,
		Side:   side,
		radius: radius,
		mass:   mass,
	}
}

func (b *Body) Radius() float64 { return b.radius }
func (b *Body) Mass() float64 { return b.mass }
func (b *Body) Scored() bool { return b.scored }

// Speed is the magnitude of the current velocity.
func (b *Body) Speed() float64 {
	return b.Vel.Magnitude()
}

// Stop zeroes velocity and marks the body settled.
func (b *Body) Stop() {
	b.Vel = Vec2{}
	b.Moving = false
}

// Launch sets a new velocity and puts the body in motion.
func (b *Body) Launch(v Vec2) {
	b.Vel = v
	b.Moving = true
}

// Eligible reports whether the body may be selected for a launch.
func (b *Body) Eligible() bool {
	return !b.scored && !b.Moving
}

// Contains reports whether p lies strictly inside the disc.
func (b *Body) Contains(p Vec2) bool {
	return b.Pos.DistanceTo(p) < b.radius
}

// KineticEnergy is ½mv².
func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.mass * b.Vel.MagnitudeSquared()
}

// markScored freezes the body where it crossed; it has left play.
func (b *Body) markScored() {
	b.scored = true
	b.Stop()
}

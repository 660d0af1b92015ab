package arena

import (
	"errors"
	"fmt"
	"time"
)

// Default tuning.
const (
	DefaultWidth         = 800.0
	DefaultHeight        = 500.0
	DefaultBallRadius    = 15.0
	DefaultBallMass      = 1.0
	DefaultBallsPerSide  = 4
	DefaultWallThickness = 10.0
	DefaultTickRate      = 60

	DefaultGravity     = 0.1
	DefaultFriction    = 0.98
	DefaultRestitution = 0.8
	DefaultRestSpeed   = 0.05
	MaxMovingTicks     = 600

	BounceSpeedFloor  = 0.3
	MaxWallBounces    = 6
	CornerDamping     = 0.7
	SeparationEpsilon = 0.01
	StallSpeed        = 0.05
	StallJitter       = 0.3

	MinDragDistance = 5.0
	DragScale       = 7.0
	MaxLaunchSpeed  = 35.0

	ActorSpeedMin      = 32.0
	ActorSpeedMax      = 35.0
	ActorAimJitter     = 0.04
	ActorPreferNearest = 0.8
)

// Config holds every tunable of a match. A zero Config is not usable; start
// from DefaultConfig and override fields.
type Config struct {
	Width         float64
	Height        float64
	BallRadius    float64
	BallMass      float64
	BallsPerSide  int
	WallThickness float64
	GapRadius     float64
	TickRate      int

	Gravity        float64
	Friction       float64
	Restitution    float64
	RestSpeed      float64
	MaxMovingTicks int

	BounceSpeedFloor  float64
	MaxWallBounces    int
	CornerDamping     float64
	SeparationEpsilon float64
	StallSpeed        float64
	StallJitter       float64

	MinDragDistance float64
	DragScale       float64
	MaxLaunchSpeed  float64

	ActorDelayMin      time.Duration
	ActorDelayMax      time.Duration
	ActorSettleDelay   time.Duration
	ActorPollInterval  time.Duration
	ActorSpeedMin      float64
	ActorSpeedMax      float64
	ActorAimJitter     float64
	ActorPreferNearest float64
}

// DefaultConfig returns the standard 800x500 arena with four discs per side.
func DefaultConfig() Config {
	return Config{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		BallRadius:    DefaultBallRadius,
		BallMass:      DefaultBallMass,
		BallsPerSide:  DefaultBallsPerSide,
		WallThickness: DefaultWallThickness,
		GapRadius:     2 * DefaultBallRadius,
		TickRate:      DefaultTickRate,

		Gravity:        DefaultGravity,
		Friction:       DefaultFriction,
		Restitution:    DefaultRestitution,
		RestSpeed:      DefaultRestSpeed,
		MaxMovingTicks: MaxMovingTicks,

		BounceSpeedFloor:  BounceSpeedFloor,
		MaxWallBounces:    MaxWallBounces,
		CornerDamping:     CornerDamping,
		SeparationEpsilon: SeparationEpsilon,
		StallSpeed:        StallSpeed,
		StallJitter:       StallJitter,

		MinDragDistance: MinDragDistance,
		DragScale:       DragScale,
		MaxLaunchSpeed:  MaxLaunchSpeed,

		ActorDelayMin:      500 * time.Millisecond,
		ActorDelayMax:      1000 * time.Millisecond,
		ActorSettleDelay:   1000 * time.Millisecond,
		ActorPollInterval:  500 * time.Millisecond,
		ActorSpeedMin:      ActorSpeedMin,
		ActorSpeedMax:      ActorSpeedMax,
		ActorAimJitter:     ActorAimJitter,
		ActorPreferNearest: ActorPreferNearest,
	}
}

// Validate reports the first setting that would make the simulation
// degenerate.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("arena size must be positive, got %.1fx%.1f", c.Width, c.Height)
	case c.BallRadius <= 0:
		return errors.New("ball radius must be positive")
	case c.BallMass <= 0:
		return errors.New("ball mass must be positive")
	case c.BallsPerSide < 1:
		return fmt.Errorf("balls per side must be at least 1, got %d", c.BallsPerSide)
	case c.GapRadius <= c.BallRadius:
		return fmt.Errorf("gap radius %.1f must exceed ball radius %.1f", c.GapRadius, c.BallRadius)
	case c.Friction <= 0 || c.Friction >= 1:
		return fmt.Errorf("friction must be in (0,1), got %f", c.Friction)
	case c.Restitution <= 0 || c.Restitution > 1:
		return fmt.Errorf("restitution must be in (0,1], got %f", c.Restitution)
	case c.TickRate < 1:
		return errors.New("tick rate must be positive")
	case c.MaxMovingTicks < 1:
		return errors.New("max moving ticks must be positive")
	case c.MaxLaunchSpeed <= 0 || c.DragScale <= 0:
		return errors.New("launch speed and drag scale must be positive")
	case c.ActorDelayMax < c.ActorDelayMin:
		return errors.New("actor delay max is below min")
	case c.ActorSpeedMax < c.ActorSpeedMin:
		return errors.New("actor speed max is below min")
	}
	return nil
}

// TickDuration is the wall-clock length of one simulation step.
func (c Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// ticksFor converts a delay into whole ticks, never less than one.
func (c Config) ticksFor(d time.Duration) int {
	n := int(d / c.TickDuration())
	if n < 1 {
		return 1
	}
	return n
}

package arena

import "math"

// Bounds is the rectangular field, origin at the top-left corner.
type Bounds struct {
	Width  float64 `json:"width" msgpack:"width"`
	Height float64 `json:"height" msgpack:"height"`
}

// MidX is the x coordinate of the centerline.
func (b Bounds) MidX() float64 {
	return b.Width / 2
}

// Contains reports whether a disc of radius r centered at p lies inside.
func (b Bounds) Contains(p Vec2, r float64) bool {
	return p.X-r >= 0 && p.X+r <= b.Width && p.Y-r >= 0 && p.Y+r <= b.Height
}

// Obstacle is the vertical center wall with a circular gap. The wall runs
// along the y axis at X; the gap is centered at GapY on that same line.
type Obstacle struct {
	X         float64 `json:"x" msgpack:"x"`
	Thickness float64 `json:"thickness" msgpack:"thickness"`
	Height    float64 `json:"height" msgpack:"height"`
	GapY      float64 `json:"gap_y" msgpack:"gap_y"`
	GapRadius float64 `json:"gap_radius" msgpack:"gap_radius"`
}

// NewCenterObstacle builds the wall on the centerline of bounds with the gap
// at mid-height.
func NewCenterObstacle(bounds Bounds, thickness, gapRadius float64) Obstacle {
	return Obstacle{
		X:         bounds.MidX(),
		Thickness: thickness,
		Height:    bounds.Height,
		GapY:      bounds.Height / 2,
		GapRadius: gapRadius,
	}
}

// GapCenter is the point bodies are aimed at.
func (o Obstacle) GapCenter() Vec2 {
	return Vec2{X: o.X, Y: o.GapY}
}

// InGap reports whether a body of radius r at cross-axis coordinate y fits
// through the gap.
func (o Obstacle) InGap(y, r float64) bool {
	return math.Abs(y-o.GapY) < o.GapRadius-r
}

// HalfThickness is the distance from the wall centerline to either face.
func (o Obstacle) HalfThickness() float64 {
	return o.Thickness / 2
}

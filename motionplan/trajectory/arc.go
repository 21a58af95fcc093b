package trajectory

import (
	"math"
	"time"

	"github.com/golang/geo/r2"

	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/spatialmath"
)

// ArcPath moves along a circle around a center, covering a signed sweep starting at startAngle.
// Positive sweeps turn counterclockwise. Speed follows a trapezoidal profile over arc length,
// capped so the angular speed about the center stays within the limit. Past its duration it holds
// the final sample.
type ArcPath struct {
	stamp
	center     r2.Point
	radius     float64
	startAngle float64
	sweep      float64
	profile    Profile
}

// NewArcPath builds an arc starting and ending at the given tangential speeds. A non-positive
// radius yields a zero length arc at the center.
func NewArcPath(
	center r2.Point,
	radius, startAngle, sweep, startSpeed, endSpeed float64,
	constraints motiontypes.MotionConstraints,
) *ArcPath {
	constraints = constraints.Sanitized()
	ap := &ArcPath{center: center, radius: math.Max(0, radius), startAngle: startAngle, sweep: sweep}
	maxSpeed := constraints.MaxSpeed
	if ap.radius > 0 {
		maxSpeed = math.Max(math.Min(maxSpeed, constraints.MaxAngleSpeed*ap.radius), motiontypes.MinSpeed)
	}
	ap.profile = NewProfile(math.Abs(sweep)*ap.radius, startSpeed, endSpeed, maxSpeed, constraints.MaxAcceleration)
	return ap
}

func (ap *ArcPath) at(s, v float64) motiontypes.MotionInstant {
	if ap.radius == 0 {
		return motiontypes.NewMotionInstant(ap.center, r2.Point{})
	}
	turn := 1.0
	if ap.sweep < 0 {
		turn = -1
	}
	angle := ap.startAngle + turn*s/ap.radius
	pos := ap.center.Add(spatialmath.FromPolar(ap.radius, angle))
	tangent := spatialmath.FromPolar(turn, angle+math.Pi/2)
	return motiontypes.NewMotionInstant(pos, tangent.Mul(v))
}

// Sample returns the instant elapsed after the start.
func (ap *ArcPath) Sample(elapsed time.Duration) motiontypes.MotionInstant {
	return ap.at(ap.profile.At(elapsed.Seconds()))
}

// Duration returns the travel time along the arc.
func (ap *ArcPath) Duration() time.Duration {
	return fromSeconds(ap.profile.Duration())
}

// Destination returns the end of the arc at the end speed.
func (ap *ArcPath) Destination() (motiontypes.MotionInstant, bool) {
	return ap.at(ap.profile.Distance, ap.profile.EndSpeed), true
}

// Center returns the center of the circle.
func (ap *ArcPath) Center() r2.Point {
	return ap.center
}

// Sweep returns the signed swept angle in radians.
func (ap *ArcPath) Sweep() float64 {
	return ap.sweep
}

// Profile returns the speed profile over arc length.
func (ap *ArcPath) Profile() Profile {
	return ap.profile
}

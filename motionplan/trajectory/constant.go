package trajectory

import (
	"time"

	"github.com/golang/geo/r2"

	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/spatialmath"
)

// ConstantVelocityPath ramps from the start velocity to a target velocity at the acceleration
// limit and then holds it forever. Duration is the length of the ramp. Past it the motion is
// extrapolated at the target velocity, and there is no destination.
type ConstantVelocityPath struct {
	stamp
	start  motiontypes.MotionInstant
	target r2.Point
	acc    r2.Point
	ramp   float64
}

// NewConstantVelocityPath returns a path holding target, clamped to the speed limit.
func NewConstantVelocityPath(
	start motiontypes.MotionInstant,
	target r2.Point,
	constraints motiontypes.MotionConstraints,
) *ConstantVelocityPath {
	constraints = constraints.Sanitized()
	target = spatialmath.ClampNorm(target, constraints.MaxSpeed)
	dv := target.Sub(start.Vel)
	return &ConstantVelocityPath{
		start:  start,
		target: target,
		acc:    spatialmath.Unit(dv).Mul(constraints.MaxAcceleration),
		ramp:   dv.Norm() / constraints.MaxAcceleration,
	}
}

// Sample returns the instant elapsed after the start. Negative elapsed times return the start.
func (cv *ConstantVelocityPath) Sample(elapsed time.Duration) motiontypes.MotionInstant {
	t := elapsed.Seconds()
	if t <= 0 {
		return motiontypes.NewMotionInstant(cv.start.Pos, cv.start.Vel)
	}
	rt := t
	if rt > cv.ramp {
		rt = cv.ramp
	}
	pos := cv.start.Pos.Add(cv.start.Vel.Mul(rt)).Add(cv.acc.Mul(0.5 * rt * rt))
	if t <= cv.ramp {
		return motiontypes.NewMotionInstant(pos, cv.start.Vel.Add(cv.acc.Mul(t)))
	}
	return motiontypes.NewMotionInstant(pos.Add(cv.target.Mul(t-cv.ramp)), cv.target)
}

// Duration returns the time spent reaching the target velocity.
func (cv *ConstantVelocityPath) Duration() time.Duration {
	return fromSeconds(cv.ramp)
}

// Destination is always absent.
func (cv *ConstantVelocityPath) Destination() (motiontypes.MotionInstant, bool) {
	return motiontypes.MotionInstant{}, false
}

// TargetVelocity returns the velocity held after the ramp.
func (cv *ConstantVelocityPath) TargetVelocity() r2.Point {
	return cv.target
}

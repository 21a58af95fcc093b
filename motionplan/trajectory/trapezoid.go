package trajectory

import (
	"fmt"
	"time"

	"github.com/golang/geo/r2"

	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/spatialmath"
)

// TrapezoidalPath is a straight line motion following a trapezoidal velocity profile. Past its
// duration it holds the final sample.
type TrapezoidalPath struct {
	stamp
	start   r2.Point
	dir     r2.Point
	goal    motiontypes.MotionInstant
	profile Profile
}

// NewTrapezoidalPath builds the fastest straight line motion from startPos to goal. startSpeed is
// the current speed along the direction of travel. The goal speed is the magnitude of the goal
// velocity and is reached exactly at the goal position. Constraints are sanitized first.
func NewTrapezoidalPath(
	startPos r2.Point,
	startSpeed float64,
	goal motiontypes.MotionInstant,
	constraints motiontypes.MotionConstraints,
) *TrapezoidalPath {
	constraints = constraints.Sanitized()
	delta := goal.Pos.Sub(startPos)
	return &TrapezoidalPath{
		start:   startPos,
		dir:     spatialmath.Unit(delta),
		goal:    goal,
		profile: NewProfile(delta.Norm(), startSpeed, goal.Speed(), constraints.MaxSpeed, constraints.MaxAcceleration),
	}
}

// NewStopPath builds a motion that brings start to rest along its current velocity at the
// acceleration limit.
func NewStopPath(start motiontypes.MotionInstant, constraints motiontypes.MotionConstraints) *TrapezoidalPath {
	constraints = constraints.Sanitized()
	speed := start.Speed()
	stopDist := speed * speed / (2 * constraints.MaxAcceleration)
	end := start.Pos.Add(spatialmath.Unit(start.Vel).Mul(stopDist))
	return NewTrapezoidalPath(start.Pos, speed, motiontypes.NewMotionInstant(end, r2.Point{}), constraints)
}

// StartSpeedAlong returns the component of vel along the direction from start to goal. A zero
// length move uses the full speed.
func StartSpeedAlong(vel, start, goal r2.Point) float64 {
	dir := spatialmath.Unit(goal.Sub(start))
	if dir == (r2.Point{}) {
		return vel.Norm()
	}
	return vel.Dot(dir)
}

// Sample returns the instant elapsed after the start. Before the start it returns the start
// position, past the end it holds the goal position at the goal speed.
func (tp *TrapezoidalPath) Sample(elapsed time.Duration) motiontypes.MotionInstant {
	s, v := tp.profile.At(elapsed.Seconds())
	if elapsed >= tp.Duration() {
		return motiontypes.NewMotionInstant(tp.goal.Pos, tp.dir.Mul(v))
	}
	return motiontypes.NewMotionInstant(tp.start.Add(tp.dir.Mul(s)), tp.dir.Mul(v))
}

// Duration returns the total travel time.
func (tp *TrapezoidalPath) Duration() time.Duration {
	return fromSeconds(tp.profile.Duration())
}

// Destination returns the goal it was built for, unchanged.
func (tp *TrapezoidalPath) Destination() (motiontypes.MotionInstant, bool) {
	return tp.goal, true
}

// Start returns the starting position.
func (tp *TrapezoidalPath) Start() r2.Point {
	return tp.start
}

// Profile returns the velocity profile along the line.
func (tp *TrapezoidalPath) Profile() Profile {
	return tp.profile
}

// Overdriven reports whether the goal speed could not be reached at the acceleration limit.
func (tp *TrapezoidalPath) Overdriven() bool {
	return tp.profile.Overdriven
}

func (tp *TrapezoidalPath) String() string {
	return fmt.Sprintf("trapezoid from (%.3f, %.3f) to %v in %v", tp.start.X, tp.start.Y, tp.goal, tp.Duration())
}

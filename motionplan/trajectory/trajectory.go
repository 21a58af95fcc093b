// Package trajectory defines time parameterized planar motions and the generators planners use to
// build them.
package trajectory

import (
	"time"

	"github.com/pkg/errors"

	"go.viam.com/soccer/motionplan/motiontypes"
)

var (
	// ErrStartTimeAlreadySet is returned when a trajectory is stamped a second time.
	ErrStartTimeAlreadySet = errors.New("trajectory start time already set")
	// ErrStartTimeUnset is returned when a trajectory is evaluated before it was stamped.
	ErrStartTimeUnset = errors.New("trajectory evaluated before its start time was set")
	errNilTrajectory  = errors.New("cannot evaluate a nil trajectory")
)

// Trajectory is a planned motion: a function from the time elapsed since its start time to a
// MotionInstant. Sample is defined on [0, Duration]; each implementation documents what it
// returns past Duration.
type Trajectory interface {
	Sample(elapsed time.Duration) motiontypes.MotionInstant
	Duration() time.Duration
	// Destination is the final instant of the motion. It is absent for unbounded motions.
	Destination() (motiontypes.MotionInstant, bool)
	StartTime() time.Time
	// SetStartTime stamps the absolute start time. It may only be called once.
	SetStartTime(t time.Time) error
}

// stamp is embedded by every trajectory to hold its start time.
type stamp struct {
	start time.Time
}

func (s *stamp) StartTime() time.Time {
	return s.start
}

func (s *stamp) SetStartTime(t time.Time) error {
	if !s.start.IsZero() {
		return ErrStartTimeAlreadySet
	}
	if t.IsZero() {
		return errors.New("cannot stamp a trajectory with the zero time")
	}
	s.start = t
	return nil
}

// EvaluateAt samples traj at the absolute time now. The returned instant carries now as its time.
func EvaluateAt(traj Trajectory, now time.Time) (motiontypes.MotionInstant, error) {
	if traj == nil {
		return motiontypes.MotionInstant{}, errNilTrajectory
	}
	start := traj.StartTime()
	if start.IsZero() {
		return motiontypes.MotionInstant{}, ErrStartTimeUnset
	}
	return traj.Sample(now.Sub(start)).At(now), nil
}

// Remaining returns the time left on traj at now, zero once it has finished.
func Remaining(traj Trajectory, now time.Time) time.Duration {
	left := traj.Duration() - now.Sub(traj.StartTime())
	if left < 0 {
		return 0
	}
	return left
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

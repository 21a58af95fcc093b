package motionplan

import (
	"math"
	"time"

	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/motionplan/trajectory"
	"go.viam.com/soccer/spatialmath"
)

// DefaultGoalChangeThreshold is the default for both goal thresholds, in meters and m/s.
const DefaultGoalChangeThreshold = 0.025

// ReplanOptions holds the thresholds that decide when a previous trajectory must be discarded.
// A value is shared read only by every planner of a Dispatcher.
type ReplanOptions struct {
	// GoalPositionThreshold is the largest goal displacement, in meters, that keeps a trajectory.
	GoalPositionThreshold float64
	// GoalSpeedThreshold is the largest goal speed change, in m/s, that keeps a trajectory.
	GoalSpeedThreshold float64
	// OffPathThreshold is the largest distance, in meters, between the robot and where its
	// trajectory says it should be. Zero disables the check.
	OffPathThreshold float64
}

// DefaultReplanOptions uses the same value for both goal thresholds.
func DefaultReplanOptions() ReplanOptions {
	return ReplanOptions{
		GoalPositionThreshold: DefaultGoalChangeThreshold,
		GoalSpeedThreshold:    DefaultGoalChangeThreshold,
	}
}

// goalChanged reports whether target moved away from a previous destination. A displacement
// exactly equal to a threshold keeps the destination.
func (ro ReplanOptions) goalChanged(dest, target motiontypes.MotionInstant) bool {
	if spatialmath.Distance(dest.Pos, target.Pos) > ro.GoalPositionThreshold {
		return true
	}
	return math.Abs(dest.Speed()-target.Speed()) > ro.GoalSpeedThreshold
}

// offPath reports whether the robot at start has drifted away from where prev puts it at now.
func (ro ReplanOptions) offPath(prev trajectory.Trajectory, start motiontypes.MotionInstant, now time.Time) bool {
	if ro.OffPathThreshold <= 0 {
		return false
	}
	expected, err := trajectory.EvaluateAt(prev, now)
	if err != nil {
		return true
	}
	return spatialmath.Distance(expected.Pos, start.Pos) > ro.OffPathThreshold
}

// shouldReplanDirect is the policy of the direct planner: replan when there is no previous
// trajectory or when the commanded goal moved past either threshold.
func shouldReplanDirect(ro ReplanOptions, target motiontypes.MotionInstant, prev trajectory.Trajectory) bool {
	if prev == nil {
		return true
	}
	dest, ok := prev.Destination()
	if !ok {
		return true
	}
	return ro.goalChanged(dest, target)
}

// blocked reports whether prev runs into an obstacle after the elapsed time from.
func blocked(prev trajectory.Trajectory, obstacles *spatialmath.ShapeSet, inflate float64, from time.Duration) bool {
	if obstacles.Len() == 0 {
		return false
	}
	_, hit := trajectory.Hit(prev, obstacles, inflate, from, 0)
	return hit
}

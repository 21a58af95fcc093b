package trajectory

import (
	"time"

	"go.viam.com/soccer/spatialmath"
)

// DefaultHitStep is the sampling step used by Hit when none is given.
const DefaultHitStep = 20 * time.Millisecond

// Hit walks traj from the elapsed time from to its end in increments of step and returns the
// first elapsed time whose sampled segment comes within inflate of an obstacle.
func Hit(traj Trajectory, obstacles *spatialmath.ShapeSet, inflate float64, from, step time.Duration) (time.Duration, bool) {
	if obstacles.Len() == 0 || traj == nil {
		return 0, false
	}
	if step <= 0 {
		step = DefaultHitStep
	}
	if from < 0 {
		from = 0
	}
	end := traj.Duration()
	prev := traj.Sample(from).Pos
	if from >= end {
		return from, obstacles.Hit(prev, inflate)
	}
	for t := from; t < end; {
		next := t + step
		if next > end {
			next = end
		}
		cur := traj.Sample(next).Pos
		if obstacles.HitSegment(prev, cur, inflate) {
			return t, true
		}
		prev = cur
		t = next
	}
	return 0, false
}

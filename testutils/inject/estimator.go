// Package inject provides test doubles whose methods can be replaced per test.
package inject

import (
	"context"

	"go.viam.com/soccer/control"
	"go.viam.com/soccer/motionplan/motiontypes"
)

// StateEstimator is an injected state estimator.
type StateEstimator struct {
	control.StateEstimator
	StateFunc func(ctx context.Context) (motiontypes.MotionInstant, error)
}

// State calls the injected State or the real version.
func (e *StateEstimator) State(ctx context.Context) (motiontypes.MotionInstant, error) {
	if e.StateFunc == nil {
		return e.StateEstimator.State(ctx)
	}
	return e.StateFunc(ctx)
}

package inject

import (
	"context"

	"go.viam.com/soccer/control"
	"go.viam.com/soccer/motionplan/motiontypes"
)

// Actuator is an injected actuator.
type Actuator struct {
	control.Actuator
	SetTargetFunc func(ctx context.Context, target motiontypes.MotionInstant) error
	StopFunc      func(ctx context.Context) error
}

// SetTarget calls the injected SetTarget or the real version.
func (a *Actuator) SetTarget(ctx context.Context, target motiontypes.MotionInstant) error {
	if a.SetTargetFunc == nil {
		return a.Actuator.SetTarget(ctx, target)
	}
	return a.SetTargetFunc(ctx, target)
}

// Stop calls the injected Stop or the real version.
func (a *Actuator) Stop(ctx context.Context) error {
	if a.StopFunc == nil {
		return a.Actuator.Stop(ctx)
	}
	return a.StopFunc(ctx)
}

// Package sim implements an ideal simulated robot that lands exactly on every commanded target.
package sim

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"

	"go.viam.com/soccer/motionplan/motiontypes"
)

// Robot is both the state estimator and the actuator of a simulated robot.
type Robot struct {
	mu      sync.Mutex
	clk     clock.Clock
	state   motiontypes.MotionInstant
	targets int
	stopped bool
}

// NewRobot returns a robot resting at pos.
func NewRobot(start motiontypes.MotionInstant, clk clock.Clock) *Robot {
	if clk == nil {
		clk = clock.New()
	}
	return &Robot{clk: clk, state: start}
}

// State returns the last commanded target stamped with the current time.
func (r *Robot) State(ctx context.Context) (motiontypes.MotionInstant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.At(r.clk.Now()), nil
}

// SetTarget moves the robot onto target.
func (r *Robot) SetTarget(ctx context.Context, target motiontypes.MotionInstant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = target
	r.targets++
	r.stopped = false
	return nil
}

// Stop brings the robot to rest where it is.
func (r *Robot) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Vel = r2.Point{}
	r.stopped = true
	return nil
}

// Targets returns how many targets the robot has received.
func (r *Robot) Targets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.targets
}

// Stopped reports whether Stop was the last call.
func (r *Robot) Stopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

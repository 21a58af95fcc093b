package control

import (
	"context"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/soccer/components/kicker"
	"go.viam.com/soccer/motionplan"
	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/motionplan/trajectory"
	"go.viam.com/soccer/spatialmath"
)

// StateEstimator reports a robot's current position and velocity.
type StateEstimator interface {
	State(ctx context.Context) (motiontypes.MotionInstant, error)
}

// Actuator drives a robot toward sampled trajectory points.
type Actuator interface {
	SetTarget(ctx context.Context, target motiontypes.MotionInstant) error
	Stop(ctx context.Context) error
}

// CommandSource returns the command a robot should currently follow. A nil command requests no
// motion.
type CommandSource func() motiontypes.Command

// Robot is one robot driven by a Loop. The loop owns its trajectory and command history.
type Robot struct {
	Name        string
	Constraints motiontypes.MotionConstraints
	Estimator   StateEstimator
	Actuator    Actuator
	Commands    CommandSource
	// Kicker is optional.
	Kicker kicker.Kicker

	dispatcher *motionplan.Dispatcher
	prevPath   trajectory.Trajectory
	prevCmd    motiontypes.Command
	kicked     bool
	// kickTarget is the line kick target the kicker last fired for.
	kickTarget r2.Point
}

// Validate ensures the robot can be driven.
func (r *Robot) Validate() error {
	if r.Name == "" {
		return errors.New("robot needs a name")
	}
	if r.Estimator == nil {
		return errors.Errorf("robot %q needs a state estimator", r.Name)
	}
	if r.Actuator == nil {
		return errors.Errorf("robot %q needs an actuator", r.Name)
	}
	if r.Commands == nil {
		return errors.Errorf("robot %q needs a command source", r.Name)
	}
	return nil
}

// Trajectory returns the trajectory the robot followed on the last tick, nil if it has none.
func (r *Robot) Trajectory() trajectory.Trajectory {
	return r.prevPath
}

// Command returns a copy of the command planned on the last tick.
func (r *Robot) Command() motiontypes.Command {
	if r.prevCmd == nil {
		return nil
	}
	return r.prevCmd.Clone()
}

// forget drops the trajectory and command history, so the next tick plans from scratch.
func (r *Robot) forget() {
	r.prevPath = nil
	r.prevCmd = nil
	r.kicked = false
}

// rearm releases the kick latch once cmd is no longer a line kick at the target the kicker
// fired for, within threshold.
func (r *Robot) rearm(cmd motiontypes.Command, threshold float64) {
	if !r.kicked {
		return
	}
	kick, ok := cmd.(motiontypes.LineKickCommand)
	if !ok || spatialmath.Distance(kick.Target, r.kickTarget) > threshold {
		r.kicked = false
	}
}

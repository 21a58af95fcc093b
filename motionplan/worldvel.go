package motionplan

import (
	"github.com/benbjohnson/clock"

	"go.viam.com/soccer/logging"
	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/motionplan/trajectory"
	"go.viam.com/soccer/spatialmath"
)

// WorldVelPlanner holds a world frame velocity. Its trajectories have no destination.
type WorldVelPlanner struct {
	plannerBase
}

// NewWorldVelPlanner returns a planner for WorldVel commands.
func NewWorldVelPlanner(opts ReplanOptions, clk clock.Clock, logger logging.Logger) *WorldVelPlanner {
	return &WorldVelPlanner{plannerBase: newPlannerBase(opts, clk, logger, "worldvel")}
}

// CommandType returns WorldVel.
func (p *WorldVelPlanner) CommandType() motiontypes.CommandType {
	return motiontypes.WorldVel
}

// Run keeps req.PrevPath while it holds a velocity within the speed threshold of the command.
func (p *WorldVelPlanner) Run(req *PlanRequest) (trajectory.Trajectory, error) {
	cmd, ok := req.Command.(motiontypes.WorldVelCommand)
	if !ok {
		return nil, NewCommandMismatchError(p.CommandType(), req.Command)
	}
	target := spatialmath.ClampNorm(cmd.Vel, req.Constraints.Sanitized().MaxSpeed)
	if prev, ok := req.PrevPath.(*trajectory.ConstantVelocityPath); ok {
		if spatialmath.Distance(prev.TargetVelocity(), target) <= p.replan.GoalSpeedThreshold {
			return prev, nil
		}
	}
	p.logger.Debugw("replanning world velocity", "vel", target)
	return p.stamp(trajectory.NewConstantVelocityPath(req.Start, target, req.Constraints))
}

package motionplan

import (
	"github.com/benbjohnson/clock"

	"go.viam.com/soccer/logging"
	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/motionplan/trajectory"
)

// DirectTargetPlanner drives straight at the goal with a trapezoidal profile. It ignores
// obstacles.
type DirectTargetPlanner struct {
	plannerBase
}

// NewDirectTargetPlanner returns a planner for DirectPathTarget commands.
func NewDirectTargetPlanner(opts ReplanOptions, clk clock.Clock, logger logging.Logger) *DirectTargetPlanner {
	return &DirectTargetPlanner{plannerBase: newPlannerBase(opts, clk, logger, "direct")}
}

// CommandType returns DirectPathTarget.
func (p *DirectTargetPlanner) CommandType() motiontypes.CommandType {
	return motiontypes.DirectPathTarget
}

// ShouldReplan reports whether req.PrevPath must be replaced for the command in req.
func (p *DirectTargetPlanner) ShouldReplan(req *PlanRequest) (bool, error) {
	cmd, ok := req.Command.(motiontypes.DirectPathTargetCommand)
	if !ok {
		return false, NewCommandMismatchError(p.CommandType(), req.Command)
	}
	return shouldReplanDirect(p.replan, cmd.Goal, req.PrevPath), nil
}

// Run returns req.PrevPath unchanged while its destination matches the goal, and a new stamped
// trapezoidal path otherwise.
func (p *DirectTargetPlanner) Run(req *PlanRequest) (trajectory.Trajectory, error) {
	replan, err := p.ShouldReplan(req)
	if err != nil {
		return nil, err
	}
	if !replan {
		return req.PrevPath, nil
	}
	goal := req.Command.(motiontypes.DirectPathTargetCommand).Goal
	path := straightPath(req, goal)
	p.logger.Debugw("replanning direct path", "goal", goal.String(), "duration", path.Duration())
	return p.stamp(path)
}

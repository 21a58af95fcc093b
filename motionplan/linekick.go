package motionplan

import (
	"math"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"

	"go.viam.com/soccer/logging"
	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/motionplan/trajectory"
	"go.viam.com/soccer/spatialmath"
)

// LineKickPath drives through a strike point at the approach speed and then stops beyond it on
// the same line.
type LineKickPath struct {
	*trajectory.CompositePath
	strike r2.Point
}

// Strike returns the point the robot crosses at the approach speed.
func (lk *LineKickPath) Strike() r2.Point {
	return lk.strike
}

// LineKickPlanner builds LineKickPaths.
type LineKickPlanner struct {
	plannerBase
	opts PlannerOptions
}

// NewLineKickPlanner returns a planner for LineKick commands.
func NewLineKickPlanner(opts PlannerOptions, clk clock.Clock, logger logging.Logger) *LineKickPlanner {
	return &LineKickPlanner{plannerBase: newPlannerBase(opts.Replan, clk, logger, "linekick"), opts: opts}
}

// CommandType returns LineKick.
func (p *LineKickPlanner) CommandType() motiontypes.CommandType {
	return motiontypes.LineKick
}

// Run keeps req.PrevPath while it strikes the same point and the robot follows it.
func (p *LineKickPlanner) Run(req *PlanRequest) (trajectory.Trajectory, error) {
	cmd, ok := req.Command.(motiontypes.LineKickCommand)
	if !ok {
		return nil, NewCommandMismatchError(p.CommandType(), req.Command)
	}
	if prev, ok := req.PrevPath.(*LineKickPath); ok {
		if spatialmath.Distance(prev.strike, cmd.Target) <= p.replan.GoalPositionThreshold &&
			!p.replan.offPath(prev, req.Start, p.clk.Now()) {
			return prev, nil
		}
	}

	constraints := req.Constraints.Sanitized()
	dir := spatialmath.Unit(cmd.Target.Sub(req.Start.Pos))
	if dir == (r2.Point{}) {
		dir = spatialmath.Unit(req.Start.Vel)
	}
	if dir == (r2.Point{}) {
		dir = r2.Point{X: 1}
	}
	speed := math.Min(math.Max(p.opts.LineKick.ApproachSpeed, 0), constraints.MaxSpeed)
	// Follow through at least as far as it takes to stop at the acceleration limit.
	through := math.Max(p.opts.LineKick.FollowThrough, speed*speed/(2*constraints.MaxAcceleration))

	strike := motiontypes.NewMotionInstant(cmd.Target, dir.Mul(speed))
	approach := straightPath(req, strike)
	stop := motiontypes.NewMotionInstant(cmd.Target.Add(dir.Mul(through)), r2.Point{})
	follow := trajectory.NewTrapezoidalPath(cmd.Target, speed, stop, constraints)

	p.logger.Debugw("replanning line kick", "target", cmd.Target, "approach_speed", speed)
	return p.stamp(&LineKickPath{CompositePath: trajectory.NewCompositePath(approach, follow), strike: cmd.Target})
}

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

// onCircleTolerance is how far from the circle, in meters, the robot may be for the arc to start
// where it stands. Further out a straight leg takes it onto the circle first.
const onCircleTolerance = 1e-6

// PivotPlanner circles the pivot point at the commanded radius until the robot sits on the far
// side of the pivot from the target, facing it through the pivot.
type PivotPlanner struct {
	plannerBase
	opts PlannerOptions
}

// NewPivotPlanner returns a planner for Pivot commands.
func NewPivotPlanner(opts PlannerOptions, clk clock.Clock, logger logging.Logger) *PivotPlanner {
	return &PivotPlanner{plannerBase: newPlannerBase(opts.Replan, clk, logger, "pivot"), opts: opts}
}

// CommandType returns Pivot.
func (p *PivotPlanner) CommandType() motiontypes.CommandType {
	return motiontypes.Pivot
}

// PivotEndPoint returns where a pivot started at from ends: on the circle, opposite the target.
// When the target is the pivot point itself the robot stays at its current bearing.
func PivotEndPoint(cmd motiontypes.PivotCommand, from r2.Point) r2.Point {
	dir := spatialmath.Unit(cmd.PivotPoint.Sub(cmd.Target))
	if dir == (r2.Point{}) {
		dir = spatialmath.Unit(from.Sub(cmd.PivotPoint))
	}
	if dir == (r2.Point{}) {
		dir = r2.Point{X: 1}
	}
	return cmd.PivotPoint.Add(dir.Mul(math.Max(0, cmd.Radius)))
}

// Run keeps req.PrevPath while it still ends at the pivot end point and the robot follows it.
func (p *PivotPlanner) Run(req *PlanRequest) (trajectory.Trajectory, error) {
	cmd, ok := req.Command.(motiontypes.PivotCommand)
	if !ok {
		return nil, NewCommandMismatchError(p.CommandType(), req.Command)
	}
	end := motiontypes.NewMotionInstant(PivotEndPoint(cmd, req.Start.Pos), r2.Point{})
	if !shouldReplanDirect(p.replan, end, req.PrevPath) && !p.replan.offPath(req.PrevPath, req.Start, p.clk.Now()) {
		return req.PrevPath, nil
	}

	if cmd.Radius <= 0 {
		p.logger.Debugw("replanning pivot in place", "pivot", cmd.PivotPoint)
		return p.stamp(straightPath(req, end))
	}

	var approach trajectory.Trajectory
	entry := req.Start.Pos
	startSpeed := 0.0
	offset := req.Start.Pos.Sub(cmd.PivotPoint)
	if math.Abs(offset.Norm()-cmd.Radius) > onCircleTolerance {
		entry = cmd.PivotPoint.Add(spatialmath.Unit(offset).Mul(cmd.Radius))
		if offset.Norm() < spatialmath.Epsilon {
			// On the pivot itself, head straight for the end point.
			entry = end.Pos
		}
		approach = straightPath(req, motiontypes.NewMotionInstant(entry, r2.Point{}))
	}

	startAngle := spatialmath.Angle(entry.Sub(cmd.PivotPoint))
	sweep := spatialmath.NormalizeAngle(spatialmath.Angle(end.Pos.Sub(cmd.PivotPoint)) - startAngle)
	if approach == nil {
		turn := math.Pi / 2
		if sweep < 0 {
			turn = -turn
		}
		startSpeed = req.Start.Vel.Dot(spatialmath.Rotate(spatialmath.Unit(offset), turn))
	}
	arc := trajectory.NewArcPath(cmd.PivotPoint, cmd.Radius, startAngle, sweep, startSpeed, 0, req.Constraints)
	p.logger.Debugw("replanning pivot", "pivot", cmd.PivotPoint, "sweep", sweep)
	if approach == nil {
		return p.stamp(arc)
	}
	return p.stamp(trajectory.NewCompositePath(approach, arc))
}

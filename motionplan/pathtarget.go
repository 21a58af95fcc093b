package motionplan

import (
	"context"
	"math/rand"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"

	"go.viam.com/soccer/logging"
	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/motionplan/trajectory"
)

// PathTargetPlanner reaches the goal around obstacles. A clear straight line becomes a single
// trapezoid, anything else is searched with RRT-connect and played as a chain of trapezoids that
// stop at every corner.
type PathTargetPlanner struct {
	plannerBase
	opts     PlannerOptions
	randseed *rand.Rand
}

// NewPathTargetPlanner returns a planner for PathTarget commands.
func NewPathTargetPlanner(opts PlannerOptions, clk clock.Clock, logger logging.Logger) *PathTargetPlanner {
	return &PathTargetPlanner{
		plannerBase: newPlannerBase(opts.Replan, clk, logger, "path"),
		opts:        opts,
		//nolint:gosec
		randseed: rand.New(rand.NewSource(opts.Seed)),
	}
}

// CommandType returns PathTarget.
func (p *PathTargetPlanner) CommandType() motiontypes.CommandType {
	return motiontypes.PathTarget
}

// unreachableRetry is how long a stop for an unreachable goal is kept before searching again.
const unreachableRetry = time.Second

// SearchedPath is what PathTargetPlanner returns when the straight line is blocked: a chain of
// legs through searched waypoints, or a stop when no path to the goal was found.
type SearchedPath struct {
	trajectory.Trajectory
	goal      motiontypes.MotionInstant
	reachable bool
	// clearAt is the elapsed time at which the path has left the obstacle it started in.
	clearAt time.Duration
}

// Goal returns the goal the path was searched for.
func (sp *SearchedPath) Goal() motiontypes.MotionInstant {
	return sp.goal
}

// Reachable is false for the stop returned when no path was found.
func (sp *SearchedPath) Reachable() bool {
	return sp.reachable
}

// Segments returns the legs of a reachable path, nil for a stop.
func (sp *SearchedPath) Segments() []trajectory.Trajectory {
	if cp, ok := sp.Trajectory.(*trajectory.CompositePath); ok {
		return cp.Segments()
	}
	return nil
}

func (p *PathTargetPlanner) shouldReplan(req *PlanRequest, goal motiontypes.MotionInstant) bool {
	now := p.clk.Now()
	searched, isSearched := req.PrevPath.(*SearchedPath)
	if isSearched && !searched.reachable {
		return p.replan.goalChanged(searched.goal, goal) ||
			now.Sub(searched.StartTime()) >= unreachableRetry ||
			p.replan.offPath(searched, req.Start, now)
	}
	if shouldReplanDirect(p.replan, goal, req.PrevPath) {
		return true
	}
	from := now.Sub(req.PrevPath.StartTime())
	// The escape leg runs through the obstacle the robot started in.
	if isSearched && from < searched.clearAt {
		from = searched.clearAt
	}
	return p.replan.offPath(req.PrevPath, req.Start, now) ||
		blocked(req.PrevPath, req.Obstacles, p.opts.RobotRadius, from)
}

// Run keeps req.PrevPath while its goal still matches, the robot follows it and nothing blocks
// what is left of it. Otherwise it plans again. When no path exists the robot is brought to a
// stop, which is kept for the same goal until unreachableRetry has passed.
func (p *PathTargetPlanner) Run(req *PlanRequest) (trajectory.Trajectory, error) {
	cmd, ok := req.Command.(motiontypes.PathTargetCommand)
	if !ok {
		return nil, NewCommandMismatchError(p.CommandType(), req.Command)
	}
	if !p.shouldReplan(req, cmd.Goal) {
		return req.PrevPath, nil
	}

	if !req.Obstacles.HitSegment(req.Start.Pos, cmd.Goal.Pos, p.opts.RobotRadius) {
		p.logger.Debugw("replanning straight path", "goal", cmd.Goal.String())
		return p.stamp(straightPath(req, cmd.Goal))
	}

	start := req.Start.Pos
	var prefix []r2.Point
	if req.Obstacles.Hit(start, p.opts.RobotRadius) {
		escape, found := escapePoint(start, req.Obstacles, p.opts.RobotRadius, p.opts.Field)
		if found {
			prefix = []r2.Point{start}
			start = escape
		}
	}

	search := newRRTConnect(p.opts, req.Obstacles, p.randseed)
	waypoints, err := search.plan(context.Background(), start, cmd.Goal.Pos)
	if err != nil {
		if prev, ok := req.PrevPath.(*SearchedPath); ok && !prev.reachable && !p.replan.goalChanged(prev.goal, cmd.Goal) {
			p.logger.Debugw("goal still unreachable", "goal", cmd.Goal.String(), "error", err)
		} else {
			p.logger.Warnw("no path to goal, stopping", "goal", cmd.Goal.String(), "error", err)
		}
		return p.stamp(&SearchedPath{Trajectory: trajectory.NewStopPath(req.Start, req.Constraints), goal: cmd.Goal})
	}
	waypoints = append(prefix, waypoints...)
	p.logger.Debugw("replanning searched path", "goal", cmd.Goal.String(), "waypoints", len(waypoints))
	path := waypointPath(req, waypoints, cmd.Goal)
	var clearAt time.Duration
	if len(prefix) > 0 {
		clearAt = path.Segments()[0].Duration()
	}
	return p.stamp(&SearchedPath{Trajectory: path, goal: cmd.Goal, reachable: true, clearAt: clearAt})
}

// waypointPath chains trapezoids through waypoints. The robot stops at every interior waypoint
// and reaches goal, the last waypoint, at the goal velocity.
func waypointPath(req *PlanRequest, waypoints []r2.Point, goal motiontypes.MotionInstant) *trajectory.CompositePath {
	legs := make([]trajectory.Trajectory, 0, len(waypoints)-1)
	for i := 0; i+1 < len(waypoints); i++ {
		from, to := waypoints[i], waypoints[i+1]
		legGoal := motiontypes.NewMotionInstant(to, r2.Point{})
		if i+2 == len(waypoints) {
			legGoal = goal
		}
		var startSpeed float64
		if i == 0 {
			startSpeed = trajectory.StartSpeedAlong(req.Start.Vel, from, to)
		}
		legs = append(legs, trajectory.NewTrapezoidalPath(from, startSpeed, legGoal, req.Constraints))
	}
	return trajectory.NewCompositePath(legs...)
}

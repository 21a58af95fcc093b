// Package motionplan turns motion commands into trajectories. There is one planner per command
// variant, each deciding on every call whether the previous trajectory can be kept.
package motionplan

import (
	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"

	"go.viam.com/soccer/logging"
	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/motionplan/trajectory"
	"go.viam.com/soccer/spatialmath"
)

const (
	defaultRobotRadius   = 0.09
	defaultPlanIter      = 2000
	defaultStepSize      = 0.25
	defaultApproachSpeed = 1.0
	defaultFollowThrough = 0.2
)

// SingleRobotPlanner maps one robot's current state and command to a trajectory. Run either
// builds and stamps a new trajectory or returns req.PrevPath itself.
type SingleRobotPlanner interface {
	CommandType() motiontypes.CommandType
	Run(req *PlanRequest) (trajectory.Trajectory, error)
}

// PlanRequest is the input of a single planning call.
type PlanRequest struct {
	Start       motiontypes.MotionInstant
	Command     motiontypes.Command
	Constraints motiontypes.MotionConstraints
	// Obstacles is shared read only between robots. Nil means no obstacles.
	Obstacles *spatialmath.ShapeSet
	// PrevPath is the trajectory returned by the previous call, nil on the first one.
	PrevPath trajectory.Trajectory
}

// RRTOptions tunes the path search.
type RRTOptions struct {
	MaxIterations int
	StepSize      float64
}

// LineKickOptions tunes the line kick approach.
type LineKickOptions struct {
	// ApproachSpeed is the speed at which the robot crosses the target.
	ApproachSpeed float64
	// FollowThrough is the minimum distance travelled past the target before stopping.
	FollowThrough float64
}

// PlannerOptions configures every planner of a Dispatcher.
type PlannerOptions struct {
	Replan      ReplanOptions
	RobotRadius float64
	// Seed seeds the path search so runs are reproducible.
	Seed     int64
	RRT      RRTOptions
	LineKick LineKickOptions
	// Field bounds the path search. An empty rectangle derives bounds from the request.
	Field r2.Rect
}

// DefaultPlannerOptions returns the options used when none are configured.
func DefaultPlannerOptions() PlannerOptions {
	return PlannerOptions{
		Replan:      DefaultReplanOptions(),
		RobotRadius: defaultRobotRadius,
		Seed:        1,
		RRT:         RRTOptions{MaxIterations: defaultPlanIter, StepSize: defaultStepSize},
		LineKick:    LineKickOptions{ApproachSpeed: defaultApproachSpeed, FollowThrough: defaultFollowThrough},
		Field:       r2.EmptyRect(),
	}
}

// plannerConstructor builds a planner from shared options.
type plannerConstructor func(opts PlannerOptions, clk clock.Clock, logger logging.Logger) SingleRobotPlanner

var registeredPlanners = map[motiontypes.CommandType]plannerConstructor{
	motiontypes.None: func(opts PlannerOptions, clk clock.Clock, logger logging.Logger) SingleRobotPlanner {
		return NewEmptyPlanner(opts, clk, logger)
	},
	motiontypes.PathTarget: func(opts PlannerOptions, clk clock.Clock, logger logging.Logger) SingleRobotPlanner {
		return NewPathTargetPlanner(opts, clk, logger)
	},
	motiontypes.DirectPathTarget: func(opts PlannerOptions, clk clock.Clock, logger logging.Logger) SingleRobotPlanner {
		return NewDirectTargetPlanner(opts.Replan, clk, logger)
	},
	motiontypes.WorldVel: func(opts PlannerOptions, clk clock.Clock, logger logging.Logger) SingleRobotPlanner {
		return NewWorldVelPlanner(opts.Replan, clk, logger)
	},
	motiontypes.Pivot: func(opts PlannerOptions, clk clock.Clock, logger logging.Logger) SingleRobotPlanner {
		return NewPivotPlanner(opts, clk, logger)
	},
	motiontypes.LineKick: func(opts PlannerOptions, clk clock.Clock, logger logging.Logger) SingleRobotPlanner {
		return NewLineKickPlanner(opts, clk, logger)
	},
}

// plannerBase holds what every planner needs to stamp and report trajectories.
type plannerBase struct {
	clk    clock.Clock
	logger logging.Logger
	replan ReplanOptions
}

func newPlannerBase(replan ReplanOptions, clk clock.Clock, logger logging.Logger, name string) plannerBase {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.NewBlankLogger(name)
	} else {
		logger = logger.Sublogger(name)
	}
	return plannerBase{clk: clk, logger: logger, replan: replan}
}

// stamp sets the start time of a freshly built trajectory to now.
func (pb *plannerBase) stamp(traj trajectory.Trajectory) (trajectory.Trajectory, error) {
	if err := traj.SetStartTime(pb.clk.Now()); err != nil {
		return nil, err
	}
	return traj, nil
}

// stopPath is the fallback when nothing better can be planned.
func (pb *plannerBase) stopPath(req *PlanRequest) (trajectory.Trajectory, error) {
	return pb.stamp(trajectory.NewStopPath(req.Start, req.Constraints))
}

// straightPath builds a trapezoid from the request start to goal.
func straightPath(req *PlanRequest, goal motiontypes.MotionInstant) *trajectory.TrapezoidalPath {
	startSpeed := trajectory.StartSpeedAlong(req.Start.Vel, req.Start.Pos, goal.Pos)
	return trajectory.NewTrapezoidalPath(req.Start.Pos, startSpeed, goal, req.Constraints)
}

package motionplan

import (
	"context"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/soccer/logging"
	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/motionplan/trajectory"
)

func TestDispatcherRoutes(t *testing.T) {
	d := NewDispatcher(testPlannerOptions(), newTestClock(), logging.NewTestLogger(t))
	goal := atRest(1, 1)
	testCases := []struct {
		cmd     motiontypes.Command
		hasDest bool
	}{
		{motiontypes.NewEmptyCommand(), true},
		{motiontypes.NewPathTargetCommand(goal), true},
		{motiontypes.NewDirectPathTargetCommand(goal), true},
		{motiontypes.NewWorldVelCommand(r2.Point{X: 1}), false},
		{motiontypes.NewPivotCommand(r2.Point{}, r2.Point{X: 1}, 0.3), true},
		{motiontypes.NewLineKickCommand(r2.Point{X: 1}), true},
	}
	for _, tc := range testCases {
		t.Run(tc.cmd.Type().String(), func(t *testing.T) {
			planner, ok := d.Planner(tc.cmd.Type())
			test.That(t, ok, test.ShouldBeTrue)
			test.That(t, planner.CommandType(), test.ShouldEqual, tc.cmd.Type())

			traj, err := d.Plan(context.Background(), &PlanRequest{
				Start:       atRest(0, 0),
				Command:     tc.cmd,
				Constraints: motiontypes.DefaultMotionConstraints(),
			}, nil)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, traj.StartTime().IsZero(), test.ShouldBeFalse)
			_, ok = traj.Destination()
			test.That(t, ok, test.ShouldEqual, tc.hasDest)
		})
	}
}

func TestDispatcherDestination(t *testing.T) {
	d := NewDispatcher(testPlannerOptions(), newTestClock(), logging.NewTestLogger(t))
	goal := motiontypes.NewMotionInstant(r2.Point{X: 2, Y: -1}, r2.Point{X: 0.3})
	for _, cmd := range []motiontypes.Command{
		motiontypes.NewPathTargetCommand(goal),
		motiontypes.NewDirectPathTargetCommand(goal),
	} {
		traj, err := d.Plan(context.Background(), &PlanRequest{
			Start:       atRest(0, 0),
			Command:     cmd,
			Constraints: motiontypes.DefaultMotionConstraints(),
		}, nil)
		test.That(t, err, test.ShouldBeNil)
		dest, ok := traj.Destination()
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, dest, test.ShouldResemble, goal)
	}
}

func TestDispatcherCommandChange(t *testing.T) {
	d := NewDispatcher(testPlannerOptions(), newTestClock(), logging.NewTestLogger(t))
	goal := atRest(2, 0)
	direct := motiontypes.NewDirectPathTargetCommand(goal)
	req := &PlanRequest{Start: atRest(0, 0), Command: direct, Constraints: motiontypes.DefaultMotionConstraints()}

	prev, err := d.Plan(context.Background(), req, nil)
	test.That(t, err, test.ShouldBeNil)

	req.PrevPath = prev
	same, err := d.Plan(context.Background(), req, direct.Clone())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, same == prev, test.ShouldBeTrue)

	// A path target with the same goal would accept prev, but the variant changed.
	req.Command = motiontypes.NewPathTargetCommand(goal)
	switched, err := d.Plan(context.Background(), req, direct)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, switched == prev, test.ShouldBeFalse)
	test.That(t, req.PrevPath == prev, test.ShouldBeTrue)

	kept, err := d.Plan(context.Background(), req, motiontypes.NewPathTargetCommand(goal))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, kept == prev, test.ShouldBeTrue)

	// Without a previous command nothing is reused.
	fresh, err := d.Plan(context.Background(), req, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fresh == prev, test.ShouldBeFalse)
}

func TestDispatcherNilCommandAndCancel(t *testing.T) {
	d := NewDispatcher(testPlannerOptions(), newTestClock(), logging.NewTestLogger(t))
	req := &PlanRequest{
		Start:       motiontypes.NewMotionInstant(r2.Point{}, r2.Point{X: 1}),
		Constraints: motiontypes.DefaultMotionConstraints(),
	}
	traj, err := d.Plan(context.Background(), req, nil)
	test.That(t, err, test.ShouldBeNil)
	dest, _ := traj.Destination()
	test.That(t, dest.Speed(), test.ShouldEqual, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Plan(ctx, req, nil)
	test.That(t, err, test.ShouldBeError, context.Canceled)
}

func TestDispatcherSetOptions(t *testing.T) {
	d := NewDispatcher(testPlannerOptions(), newTestClock(), logging.NewTestLogger(t))
	req := &PlanRequest{
		Start:       atRest(0, 0),
		Command:     motiontypes.NewDirectPathTargetCommand(atRest(2, 0)),
		Constraints: motiontypes.DefaultMotionConstraints(),
	}
	prev, err := d.Plan(context.Background(), req, nil)
	test.That(t, err, test.ShouldBeNil)

	req.PrevPath = prev
	req.Command = motiontypes.NewDirectPathTargetCommand(atRest(2.5, 0))
	opts := d.Options()
	opts.Replan.GoalPositionThreshold = 1
	d.SetOptions(opts)
	test.That(t, d.Options().Replan.GoalPositionThreshold, test.ShouldEqual, 1)

	got, err := d.Plan(context.Background(), req, req.Command)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got == prev, test.ShouldBeTrue)
}

func TestPlanAll(t *testing.T) {
	logger := logging.NewTestLogger(t)
	clk := newTestClock()
	obstacles := circleSet(t, 1, 1, 0.2)
	goals := []motiontypes.MotionInstant{atRest(2, 0), atRest(0, 2), atRest(-1, -1)}

	jobs := make([]RobotJob, 0, len(goals)+1)
	for i, goal := range goals {
		jobs = append(jobs, RobotJob{
			Name:       string(rune('a' + i)),
			Dispatcher: NewDispatcher(testPlannerOptions(), clk, logger),
			Request: &PlanRequest{
				Start:       atRest(0, 0),
				Command:     motiontypes.NewPathTargetCommand(goal),
				Constraints: motiontypes.DefaultMotionConstraints(),
				Obstacles:   obstacles,
			},
		})
	}
	jobs = append(jobs, RobotJob{
		Name:       "broken",
		Dispatcher: &Dispatcher{planners: map[motiontypes.CommandType]SingleRobotPlanner{}},
		Request:    &PlanRequest{Command: motiontypes.NewEmptyCommand()},
	})

	trajectories, err := PlanAll(context.Background(), jobs)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `planning robot "broken"`)
	test.That(t, trajectories, test.ShouldHaveLength, len(jobs))
	for i, goal := range goals {
		dest, ok := trajectories[i].Destination()
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, dest, test.ShouldResemble, goal)
	}
	test.That(t, trajectories[len(goals)], test.ShouldBeNil)

	_, err = PlanAll(context.Background(), jobs[:len(goals)])
	test.That(t, err, test.ShouldBeNil)
}

var _ trajectory.Trajectory = (*LineKickPath)(nil)

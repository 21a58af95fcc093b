package control_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/soccer/components/kicker/fake"
	"go.viam.com/soccer/control"
	"go.viam.com/soccer/logging"
	"go.viam.com/soccer/motionplan"
	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/sim"
	"go.viam.com/soccer/spatialmath"
	"go.viam.com/soccer/testutils/inject"
)

func newTestClock() *clock.Mock {
	mock := clock.NewMock()
	mock.Add(time.Hour)
	return mock
}

func testLoopConfig() control.LoopConfig {
	return control.LoopConfig{
		Frequency:    60,
		KickDistance: 0.12,
		Planner:      motionplan.DefaultPlannerOptions(),
	}
}

// simRobot returns a robot resting at the origin that follows whatever cmd points to.
func simRobot(name string, clk clock.Clock, cmd *motiontypes.Command) (*control.Robot, *sim.Robot) {
	body := sim.NewRobot(motiontypes.NewMotionInstant(r2.Point{}, r2.Point{}), clk)
	return &control.Robot{
		Name:        name,
		Constraints: motiontypes.DefaultMotionConstraints(),
		Estimator:   body,
		Actuator:    body,
		Commands:    func() motiontypes.Command { return *cmd },
	}, body
}

func runTicks(t *testing.T, loop *control.Loop, clk *clock.Mock, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		clk.Add(loop.Period())
		test.That(t, loop.Tick(context.Background()), test.ShouldBeNil)
	}
}

func TestNewLoop(t *testing.T) {
	clk := newTestClock()
	logger := logging.NewTestLogger(t)
	var cmd motiontypes.Command
	robot, _ := simRobot("r0", clk, &cmd)

	for _, freq := range []float64{0, -5, 250} {
		cfg := testLoopConfig()
		cfg.Frequency = freq
		_, err := control.NewLoop(cfg, []*control.Robot{robot}, nil, clk, logger)
		test.That(t, err, test.ShouldBeError, "loop frequency shouldn't be 0 or above 200Hz")
	}

	_, err := control.NewLoop(testLoopConfig(), []*control.Robot{{Name: "broken"}}, nil, clk, logger)
	test.That(t, err, test.ShouldBeError, `robot "broken" needs a state estimator`)

	twin, _ := simRobot("r0", clk, &cmd)
	_, err = control.NewLoop(testLoopConfig(), []*control.Robot{robot, twin}, nil, clk, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate robot names")

	loop, err := control.NewLoop(testLoopConfig(), []*control.Robot{robot}, nil, clk, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loop.Period(), test.ShouldEqual, time.Second/60)
	test.That(t, loop.Robots(), test.ShouldHaveLength, 1)
}

func TestTickFollowsTrajectory(t *testing.T) {
	clk := newTestClock()
	var cmd motiontypes.Command = motiontypes.NewDirectPathTargetCommand(
		motiontypes.NewMotionInstant(r2.Point{X: 1}, r2.Point{}))
	robot, body := simRobot("r0", clk, &cmd)
	loop, err := control.NewLoop(testLoopConfig(), []*control.Robot{robot}, nil, clk, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, robot.Trajectory(), test.ShouldBeNil)
	test.That(t, loop.Tick(context.Background()), test.ShouldBeNil)
	first := robot.Trajectory()
	test.That(t, first, test.ShouldNotBeNil)
	test.That(t, first.StartTime(), test.ShouldEqual, clk.Now())
	test.That(t, robot.Command(), test.ShouldResemble, cmd)

	runTicks(t, loop, clk, 10)
	// The goal did not move, so the first trajectory is still followed.
	test.That(t, robot.Trajectory() == first, test.ShouldBeTrue)
	state, err := body.State(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, state.Pos.X, test.ShouldBeGreaterThan, 0)
	test.That(t, state.Pos.X, test.ShouldBeLessThan, 1)

	runTicks(t, loop, clk, 200)
	state, err = body.State(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PointAlmostEqualEps(state.Pos, r2.Point{X: 1}, 1e-6), test.ShouldBeTrue)
	test.That(t, state.Vel.Norm(), test.ShouldAlmostEqual, 0)
	test.That(t, body.Targets(), test.ShouldEqual, 211)

	// A new goal replaces the trajectory.
	cmd = motiontypes.NewDirectPathTargetCommand(motiontypes.NewMotionInstant(r2.Point{X: 1, Y: 1}, r2.Point{}))
	runTicks(t, loop, clk, 1)
	test.That(t, robot.Trajectory() == first, test.ShouldBeFalse)
}

func TestTickNilCommand(t *testing.T) {
	clk := newTestClock()
	var cmd motiontypes.Command
	robot, body := simRobot("r0", clk, &cmd)
	loop, err := control.NewLoop(testLoopConfig(), []*control.Robot{robot}, nil, clk, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	runTicks(t, loop, clk, 3)
	test.That(t, robot.Command(), test.ShouldResemble, motiontypes.NewEmptyCommand())
	state, err := body.State(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, state.Pos, test.ShouldResemble, r2.Point{})
}

func TestTickKicksOncePerCommand(t *testing.T) {
	clk := newTestClock()
	logger := logging.NewTestLogger(t)
	var cmd motiontypes.Command = motiontypes.NewLineKickCommand(r2.Point{X: 0.5})
	robot, body := simRobot("r0", clk, &cmd)
	kicker := fake.NewKicker(fake.Config{}, logger)
	robot.Kicker = kicker
	loop, err := control.NewLoop(testLoopConfig(), []*control.Robot{robot}, nil, clk, logger)
	test.That(t, err, test.ShouldBeNil)

	runTicks(t, loop, clk, 240)
	test.That(t, kicker.Kicks(), test.ShouldEqual, 1)
	state, err := body.State(context.Background())
	test.That(t, err, test.ShouldBeNil)
	// The robot followed through past the target.
	test.That(t, state.Pos.X, test.ShouldBeGreaterThan, 0.5)
	test.That(t, state.Vel.Norm(), test.ShouldAlmostEqual, 0)

	cmd = motiontypes.NewLineKickCommand(state.Pos.Add(r2.Point{Y: 1}))
	runTicks(t, loop, clk, 240)
	test.That(t, kicker.Kicks(), test.ShouldEqual, 2)
}

func TestTickKickerRearmsOnCreepingTarget(t *testing.T) {
	clk := newTestClock()
	logger := logging.NewTestLogger(t)
	var cmd motiontypes.Command = motiontypes.NewLineKickCommand(r2.Point{X: 0.5})
	robot, _ := simRobot("r0", clk, &cmd)
	kicker := fake.NewKicker(fake.Config{}, logger)
	robot.Kicker = kicker
	loop, err := control.NewLoop(testLoopConfig(), []*control.Robot{robot}, nil, clk, logger)
	test.That(t, err, test.ShouldBeNil)

	runTicks(t, loop, clk, 240)
	test.That(t, kicker.Kicks(), test.ShouldEqual, 1)

	// Each step is under the threshold but the total is not.
	for i := 1; i <= 10; i++ {
		cmd = motiontypes.NewLineKickCommand(r2.Point{X: 0.5 + 0.01*float64(i)})
		runTicks(t, loop, clk, 1)
	}
	runTicks(t, loop, clk, 240)
	test.That(t, kicker.Kicks(), test.ShouldEqual, 2)
}

func TestTickEstimatorError(t *testing.T) {
	clk := newTestClock()
	logger, logs := logging.NewObservedTestLogger(t)
	var stops atomic.Int32
	robot := &control.Robot{
		Name:        "blind",
		Constraints: motiontypes.DefaultMotionConstraints(),
		Estimator: &inject.StateEstimator{StateFunc: func(ctx context.Context) (motiontypes.MotionInstant, error) {
			return motiontypes.MotionInstant{}, errors.New("no vision")
		}},
		Actuator: &inject.Actuator{
			StopFunc: func(ctx context.Context) error {
				stops.Add(1)
				return nil
			},
		},
		Commands: func() motiontypes.Command { return motiontypes.NewWorldVelCommand(r2.Point{X: 1}) },
	}
	var cmd motiontypes.Command = motiontypes.NewWorldVelCommand(r2.Point{X: 1})
	healthy, body := simRobot("healthy", clk, &cmd)
	loop, err := control.NewLoop(testLoopConfig(), []*control.Robot{robot, healthy}, nil, clk, logger)
	test.That(t, err, test.ShouldBeNil)

	clk.Add(loop.Period())
	err = loop.Tick(context.Background())
	test.That(t, err, test.ShouldBeError, `reading state of robot "blind": no vision`)
	test.That(t, int(stops.Load()), test.ShouldEqual, 1)
	test.That(t, robot.Trajectory(), test.ShouldBeNil)
	test.That(t, logs.FilterMessage("stopping robot").Len(), test.ShouldEqual, 1)

	// The other robot is unaffected.
	test.That(t, healthy.Trajectory(), test.ShouldNotBeNil)
	test.That(t, body.Targets(), test.ShouldEqual, 1)
}

func TestTickActuatorError(t *testing.T) {
	clk := newTestClock()
	body := sim.NewRobot(motiontypes.NewMotionInstant(r2.Point{}, r2.Point{}), clk)
	robot := &control.Robot{
		Name:        "r0",
		Constraints: motiontypes.DefaultMotionConstraints(),
		Estimator:   body,
		Actuator: &inject.Actuator{
			Actuator: body,
			SetTargetFunc: func(ctx context.Context, target motiontypes.MotionInstant) error {
				return errors.New("motor fault")
			},
		},
		Commands: func() motiontypes.Command {
			return motiontypes.NewDirectPathTargetCommand(motiontypes.NewMotionInstant(r2.Point{X: 1}, r2.Point{}))
		},
	}
	loop, err := control.NewLoop(testLoopConfig(), []*control.Robot{robot}, nil, clk, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	err = loop.Tick(context.Background())
	test.That(t, err, test.ShouldBeError, `commanding robot "r0": motor fault`)
	// The trajectory is still the one to follow next tick.
	test.That(t, robot.Trajectory(), test.ShouldNotBeNil)
}

func TestUpdatePlannerOptions(t *testing.T) {
	clk := newTestClock()
	logger, logs := logging.NewObservedTestLogger(t)
	var cmd motiontypes.Command = motiontypes.NewDirectPathTargetCommand(
		motiontypes.NewMotionInstant(r2.Point{X: 2}, r2.Point{}))
	robot, _ := simRobot("r0", clk, &cmd)
	loop, err := control.NewLoop(testLoopConfig(), []*control.Robot{robot}, nil, clk, logger)
	test.That(t, err, test.ShouldBeNil)

	runTicks(t, loop, clk, 1)
	first := robot.Trajectory()

	opts := motionplan.DefaultPlannerOptions()
	opts.Replan.GoalPositionThreshold = 0.5
	loop.UpdatePlannerOptions(opts)
	test.That(t, logs.FilterMessage("planner options updated").Len(), test.ShouldEqual, 0)

	// Moving the goal by less than the new threshold keeps the trajectory.
	cmd = motiontypes.NewDirectPathTargetCommand(motiontypes.NewMotionInstant(r2.Point{X: 2.3}, r2.Point{}))
	runTicks(t, loop, clk, 1)
	test.That(t, logs.FilterMessage("planner options updated").Len(), test.ShouldEqual, 1)
	test.That(t, robot.Trajectory() == first, test.ShouldBeTrue)
}

func TestSetObstacles(t *testing.T) {
	clk := newTestClock()
	var cmd motiontypes.Command = motiontypes.NewPathTargetCommand(
		motiontypes.NewMotionInstant(r2.Point{X: 2}, r2.Point{}))
	robot, _ := simRobot("r0", clk, &cmd)
	loop, err := control.NewLoop(testLoopConfig(), []*control.Robot{robot}, nil, clk, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	runTicks(t, loop, clk, 1)
	first := robot.Trajectory()

	wall, err := spatialmath.NewRectangle(r2.Point{X: 1}, r2.Point{X: 0.1, Y: 1}, "wall")
	test.That(t, err, test.ShouldBeNil)
	loop.SetObstacles(spatialmath.NewShapeSet(wall))
	runTicks(t, loop, clk, 1)
	// The straight line is now blocked.
	test.That(t, robot.Trajectory() == first, test.ShouldBeFalse)
}

func TestStopConcurrent(t *testing.T) {
	clk := newTestClock()
	var cmd motiontypes.Command = motiontypes.NewWorldVelCommand(r2.Point{X: 1})
	robot, _ := simRobot("r0", clk, &cmd)
	loop, err := control.NewLoop(testLoopConfig(), []*control.Robot{robot}, nil, clk, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loop.Start(), test.ShouldBeNil)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			errs <- loop.Stop(context.Background())
		}()
	}
	test.That(t, <-errs, test.ShouldBeNil)
	test.That(t, <-errs, test.ShouldBeNil)
	test.That(t, loop.Start(), test.ShouldBeNil)
	test.That(t, loop.Stop(context.Background()), test.ShouldBeNil)
}

func TestStartStop(t *testing.T) {
	clk := newTestClock()
	body := sim.NewRobot(motiontypes.NewMotionInstant(r2.Point{}, r2.Point{}), clk)
	targets := make(chan motiontypes.MotionInstant, 100)
	robot := &control.Robot{
		Name:        "r0",
		Constraints: motiontypes.DefaultMotionConstraints(),
		Estimator:   body,
		Actuator: &inject.Actuator{
			Actuator: body,
			SetTargetFunc: func(ctx context.Context, target motiontypes.MotionInstant) error {
				select {
				case targets <- target:
				default:
				}
				return body.SetTarget(ctx, target)
			},
		},
		Commands: func() motiontypes.Command { return motiontypes.NewWorldVelCommand(r2.Point{Y: 1}) },
	}
	loop, err := control.NewLoop(testLoopConfig(), []*control.Robot{robot}, nil, clk, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, loop.Stop(context.Background()), test.ShouldBeNil)
	test.That(t, loop.Start(), test.ShouldBeNil)
	test.That(t, loop.Start(), test.ShouldBeError, "control loop already running")

	received := 0
	deadline := time.After(5 * time.Second)
	for received < 3 {
		clk.Add(loop.Period())
		select {
		case <-targets:
			received++
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatal("timed out waiting for ticks")
		}
	}

	test.That(t, loop.Stop(context.Background()), test.ShouldBeNil)
	test.That(t, body.Stopped(), test.ShouldBeTrue)
}

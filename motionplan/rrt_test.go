package motionplan

import (
	"context"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/soccer/spatialmath"
)

func Test2DPlan(t *testing.T) {
	// Test Map:
	//      - bounds are from (-10, -10) to (10, 10)
	//      - obstacle from (-4, 2) to (4, 10)
	// ------------------------
	// | *      |    |      + |
	// |        |    |        |
	// |        |    |        |
	// |        |    |        |
	// |        ------        |
	// |                      |
	// |                      |
	// |                      |
	// |                      |
	// ------------------------
	start := r2.Point{X: -9, Y: 9}
	goal := r2.Point{X: 9, Y: 9}
	box, err := spatialmath.NewRectangle(r2.Point{Y: 6}, r2.Point{X: 8, Y: 8}, "box")
	test.That(t, err, test.ShouldBeNil)
	obstacles := spatialmath.NewShapeSet(box)

	opts := DefaultPlannerOptions()
	opts.RobotRadius = 0.5
	opts.Field = r2.RectFromPoints(r2.Point{X: -10, Y: -10}, r2.Point{X: 10, Y: 10})

	//nolint:gosec
	mp := newRRTConnect(opts, obstacles, rand.New(rand.NewSource(1)))
	waypoints, err := mp.plan(context.Background(), start, goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(waypoints), test.ShouldBeGreaterThanOrEqualTo, 3)
	test.That(t, waypoints[0], test.ShouldResemble, start)
	test.That(t, waypoints[len(waypoints)-1], test.ShouldResemble, goal)

	for i := 0; i+1 < len(waypoints); i++ {
		test.That(t, opts.Field.ContainsPoint(waypoints[i]), test.ShouldBeTrue)
		test.That(t, obstacles.HitSegment(waypoints[i], waypoints[i+1], opts.RobotRadius), test.ShouldBeFalse)
	}
}

func TestRRTDeterministic(t *testing.T) {
	obstacles := circleSet(t, 0, 0, 1)
	opts := DefaultPlannerOptions()
	plan := func() []r2.Point {
		//nolint:gosec
		mp := newRRTConnect(opts, obstacles, rand.New(rand.NewSource(7)))
		waypoints, err := mp.plan(context.Background(), r2.Point{X: -2}, r2.Point{X: 2})
		test.That(t, err, test.ShouldBeNil)
		return waypoints
	}
	test.That(t, plan(), test.ShouldResemble, plan())
}

func TestRRTFailures(t *testing.T) {
	obstacles := circleSet(t, 0, 0, 1)
	opts := DefaultPlannerOptions()
	//nolint:gosec
	mp := newRRTConnect(opts, obstacles, rand.New(rand.NewSource(1)))

	_, err := mp.plan(context.Background(), r2.Point{}, r2.Point{X: 3})
	test.That(t, err, test.ShouldBeError, errStartInCollision)
	_, err = mp.plan(context.Background(), r2.Point{X: 3}, r2.Point{X: 0.5})
	test.That(t, err, test.ShouldBeError, errGoalInCollision)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = mp.plan(ctx, r2.Point{X: -2}, r2.Point{X: 2})
	test.That(t, err, test.ShouldBeError, context.Canceled)

	// A wall across the whole field cannot be passed.
	wall, err := spatialmath.NewRectangle(r2.Point{}, r2.Point{X: 0.2, Y: 20}, "wall")
	test.That(t, err, test.ShouldBeNil)
	opts.RRT.MaxIterations = 50
	opts.Field = r2.RectFromPoints(r2.Point{X: -5, Y: -5}, r2.Point{X: 5, Y: 5})
	//nolint:gosec
	mp = newRRTConnect(opts, spatialmath.NewShapeSet(wall), rand.New(rand.NewSource(1)))
	_, err = mp.plan(context.Background(), r2.Point{X: -2}, r2.Point{X: 2})
	test.That(t, err, test.ShouldBeError, NewPlannerFailedError())
}

func TestSmoothPath(t *testing.T) {
	mp := newRRTConnect(DefaultPlannerOptions(), nil, nil)
	path := []r2.Point{{X: 0}, {X: 1}, {X: 2}, {X: 3}}
	test.That(t, mp.smoothPath(path), test.ShouldResemble, []r2.Point{{X: 0}, {X: 3}})

	blocker, err := spatialmath.NewRectangle(r2.Point{X: 1}, r2.Point{X: 0.2, Y: 0.2}, "blocker")
	test.That(t, err, test.ShouldBeNil)
	mp = newRRTConnect(DefaultPlannerOptions(), spatialmath.NewShapeSet(blocker), nil)
	detour := []r2.Point{{X: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2}}
	smoothed := mp.smoothPath(detour)
	test.That(t, smoothed[0], test.ShouldResemble, r2.Point{X: 0})
	test.That(t, smoothed[len(smoothed)-1], test.ShouldResemble, r2.Point{X: 2})
	test.That(t, len(smoothed), test.ShouldBeLessThan, len(detour))
}

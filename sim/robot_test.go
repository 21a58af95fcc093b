package sim

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/soccer/motionplan/motiontypes"
)

func TestRobot(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	clk.Add(time.Hour)
	r := NewRobot(motiontypes.NewMotionInstant(r2.Point{X: 1}, r2.Point{}), clk)

	state, err := r.State(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, state.Pos, test.ShouldResemble, r2.Point{X: 1})
	test.That(t, state.Time, test.ShouldEqual, clk.Now())

	target := motiontypes.NewMotionInstant(r2.Point{X: 2, Y: 1}, r2.Point{X: 0.5})
	test.That(t, r.SetTarget(ctx, target), test.ShouldBeNil)
	clk.Add(time.Second)
	state, err = r.State(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, state.Pos, test.ShouldResemble, target.Pos)
	test.That(t, state.Vel, test.ShouldResemble, target.Vel)
	test.That(t, state.Time, test.ShouldEqual, clk.Now())
	test.That(t, r.Targets(), test.ShouldEqual, 1)

	test.That(t, r.Stop(ctx), test.ShouldBeNil)
	state, err = r.State(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, state.Vel.Norm(), test.ShouldEqual, 0)
	test.That(t, state.Pos, test.ShouldResemble, target.Pos)
	test.That(t, r.Stopped(), test.ShouldBeTrue)
}

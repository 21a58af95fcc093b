package spatialmath

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestCircle(t *testing.T) {
	c, err := NewCircle(r2.Point{X: 1, Y: 1}, 0.5, "ball")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Label(), test.ShouldEqual, "ball")
	test.That(t, c.DistanceFrom(r2.Point{X: 1, Y: 1}), test.ShouldEqual, 0)
	test.That(t, c.DistanceFrom(r2.Point{X: 3, Y: 1}), test.ShouldAlmostEqual, 1.5)

	// Horizontal segment passing 0.5 below the rim.
	test.That(t, c.SegmentDistance(r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 0}), test.ShouldAlmostEqual, 0.5)
	test.That(t, c.SegmentDistance(r2.Point{X: 0, Y: 1}, r2.Point{X: 2, Y: 1}), test.ShouldEqual, 0)

	bounds := c.Bounds()
	test.That(t, PointAlmostEqual(bounds.Lo(), r2.Point{X: 0.5, Y: 0.5}), test.ShouldBeTrue)
	test.That(t, PointAlmostEqual(bounds.Hi(), r2.Point{X: 1.5, Y: 1.5}), test.ShouldBeTrue)

	grown := c.Inflated(0.5)
	test.That(t, grown.DistanceFrom(r2.Point{X: 3, Y: 1}), test.ShouldAlmostEqual, 1.0)

	_, err = NewCircle(r2.Point{}, -1, "")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRectangle(t *testing.T) {
	r, err := NewRectangle(r2.Point{}, r2.Point{X: 2, Y: 1}, "goal")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.DistanceFrom(r2.Point{X: 0.2, Y: 0.2}), test.ShouldEqual, 0)
	test.That(t, r.DistanceFrom(r2.Point{X: 2, Y: 0}), test.ShouldAlmostEqual, 1)
	test.That(t, r.DistanceFrom(r2.Point{X: 4, Y: 4.5}), test.ShouldAlmostEqual, 5)

	// Crosses straight through, no endpoint inside.
	test.That(t, r.SegmentDistance(r2.Point{X: -3, Y: 0}, r2.Point{X: 3, Y: 0}), test.ShouldEqual, 0)
	// Endpoint inside.
	test.That(t, r.SegmentDistance(r2.Point{X: 0, Y: 0}, r2.Point{X: 0, Y: 5}), test.ShouldEqual, 0)
	// Passes above.
	test.That(t, r.SegmentDistance(r2.Point{X: -3, Y: 1.5}, r2.Point{X: 3, Y: 1.5}), test.ShouldAlmostEqual, 1)

	grown := r.Inflated(0.25)
	test.That(t, grown.DistanceFrom(r2.Point{X: 2, Y: 0}), test.ShouldAlmostEqual, 0.75)

	_, err = NewRectangle(r2.Point{}, r2.Point{X: -1, Y: 1}, "")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGeometryConfig(t *testing.T) {
	testCases := []struct {
		name    string
		config  GeometryConfig
		success bool
	}{
		{"circle", GeometryConfig{Type: CircleType, R: 0.2, Center: r2.Point{X: 1, Y: 2}, Label: "circle"}, true},
		{"infer circle", GeometryConfig{R: 0.2, Label: "infer circle"}, true},
		{"rectangle", GeometryConfig{Type: RectangleType, X: 1, Y: 0.5, Label: "rectangle"}, true},
		{"infer rectangle", GeometryConfig{X: 1, Label: "infer rectangle"}, true},
		{"circle bad dims", GeometryConfig{Type: CircleType, R: -1}, false},
		{"empty", GeometryConfig{}, false},
		{"bad type", GeometryConfig{Type: "hexagon"}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := tc.config.ParseConfig()
			if !tc.success {
				test.That(t, err, test.ShouldNotBeNil)
				return
			}
			test.That(t, err, test.ShouldBeNil)
			gc, err := NewGeometryConfig(g)
			test.That(t, err, test.ShouldBeNil)
			data, err := json.Marshal(gc)
			test.That(t, err, test.ShouldBeNil)

			var parsed GeometryConfig
			test.That(t, json.Unmarshal(data, &parsed), test.ShouldBeNil)
			again, err := parsed.ParseConfig()
			test.That(t, err, test.ShouldBeNil)
			test.That(t, again.String(), test.ShouldEqual, g.String())
			test.That(t, parsed.Label, test.ShouldEqual, tc.name)
		})
	}
}

func TestGeometryConfigJSONKeys(t *testing.T) {
	var gc GeometryConfig
	err := json.Unmarshal([]byte(`{"type":"circle","center":{"x":1,"y":-2},"r":0.3}`), &gc)
	test.That(t, err, test.ShouldBeNil)
	g, err := gc.ParseConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, PointAlmostEqual(g.Center(), r2.Point{X: 1, Y: -2}), test.ShouldBeTrue)
}

func TestShapeSet(t *testing.T) {
	var empty *ShapeSet
	test.That(t, empty.Len(), test.ShouldEqual, 0)
	test.That(t, empty.Hit(r2.Point{}, 1), test.ShouldBeFalse)
	test.That(t, empty.HitSegment(r2.Point{}, r2.Point{X: 1}, 1), test.ShouldBeFalse)
	test.That(t, empty.Bounds().IsEmpty(), test.ShouldBeTrue)

	c, err := NewCircle(r2.Point{X: 2}, 0.5, "a")
	test.That(t, err, test.ShouldBeNil)
	r, err := NewRectangle(r2.Point{Y: 3}, r2.Point{X: 1, Y: 1}, "b")
	test.That(t, err, test.ShouldBeNil)

	set := NewShapeSet(c)
	bigger := set.Add(r)
	test.That(t, set.Len(), test.ShouldEqual, 1)
	test.That(t, bigger.Len(), test.ShouldEqual, 2)

	test.That(t, set.Hit(r2.Point{X: 2.4}, 0), test.ShouldBeTrue)
	test.That(t, set.Hit(r2.Point{X: 2.7}, 0), test.ShouldBeFalse)
	test.That(t, set.Hit(r2.Point{X: 2.7}, 0.3), test.ShouldBeTrue)
	test.That(t, set.HitSegment(r2.Point{}, r2.Point{X: 4}, 0), test.ShouldBeTrue)
	test.That(t, set.HitSegment(r2.Point{Y: 1}, r2.Point{X: 4, Y: 1}, 0.1), test.ShouldBeFalse)
	test.That(t, bigger.HitSegment(r2.Point{X: -1, Y: 3}, r2.Point{X: 1, Y: 3}, 0), test.ShouldBeTrue)

	bounds := bigger.Bounds()
	test.That(t, PointAlmostEqual(bounds.Lo(), r2.Point{X: -0.5, Y: -0.5}), test.ShouldBeTrue)
	test.That(t, PointAlmostEqual(bounds.Hi(), r2.Point{X: 2.5, Y: 3.5}), test.ShouldBeTrue)
}

func TestPointHelpers(t *testing.T) {
	test.That(t, PointAlmostEqual(Unit(r2.Point{X: 3, Y: 4}), r2.Point{X: 0.6, Y: 0.8}), test.ShouldBeTrue)
	test.That(t, Unit(r2.Point{}), test.ShouldResemble, r2.Point{})
	test.That(t, Angle(r2.Point{Y: 1}), test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, PointAlmostEqual(Rotate(r2.Point{X: 1}, math.Pi/2), r2.Point{Y: 1}), test.ShouldBeTrue)
	test.That(t, PointAlmostEqual(FromPolar(2, math.Pi), r2.Point{X: -2}), test.ShouldBeTrue)
	test.That(t, ClampNorm(r2.Point{X: 3, Y: 4}, 1).Norm(), test.ShouldAlmostEqual, 1)
	test.That(t, ClampNorm(r2.Point{X: 0.3}, 1), test.ShouldResemble, r2.Point{X: 0.3})
	test.That(t, NormalizeAngle(3*math.Pi/2), test.ShouldAlmostEqual, -math.Pi/2)
	test.That(t, NormalizeAngle(-math.Pi), test.ShouldAlmostEqual, math.Pi)

	a, b := r2.Point{}, r2.Point{X: 2, Y: 2}
	test.That(t, SegmentsIntersect(a, b, r2.Point{X: 0, Y: 2}, r2.Point{X: 2, Y: 0}), test.ShouldBeTrue)
	test.That(t, SegmentsIntersect(a, b, r2.Point{X: 3, Y: 0}, r2.Point{X: 4, Y: 0}), test.ShouldBeFalse)
	test.That(t, SegmentPointDistance(a, r2.Point{X: 2}, r2.Point{X: 1, Y: 1}), test.ShouldAlmostEqual, 1)
	test.That(t, SegmentPointDistance(a, r2.Point{X: 2}, r2.Point{X: 3}), test.ShouldAlmostEqual, 1)
}

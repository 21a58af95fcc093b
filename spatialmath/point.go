// Package spatialmath defines the planar geometry used by the planners: point helpers on top of
// r2.Point, obstacle geometries and the obstacle set.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

// Epsilon is the tolerance used for planar comparisons, in meters.
const Epsilon = 1e-9

// PointAlmostEqual returns true if two points are within Epsilon of each other on both axes.
func PointAlmostEqual(a, b r2.Point) bool {
	return PointAlmostEqualEps(a, b, Epsilon)
}

// PointAlmostEqualEps returns true if two points are within eps of each other on both axes.
func PointAlmostEqualEps(a, b r2.Point, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

// Distance returns the euclidean distance between two points.
func Distance(a, b r2.Point) float64 {
	return a.Sub(b).Norm()
}

// Unit returns the normalized vector or the zero vector if v has no length.
func Unit(v r2.Point) r2.Point {
	n := v.Norm()
	if n < Epsilon {
		return r2.Point{}
	}
	return v.Mul(1 / n)
}

// Angle returns the heading of v in radians, in (-pi, pi].
func Angle(v r2.Point) float64 {
	return math.Atan2(v.Y, v.X)
}

// FromPolar builds the vector of the given length pointing along angle.
func FromPolar(length, angle float64) r2.Point {
	return r2.Point{X: length * math.Cos(angle), Y: length * math.Sin(angle)}
}

// Rotate rotates v counterclockwise by angle radians.
func Rotate(v r2.Point, angle float64) r2.Point {
	s, c := math.Sincos(angle)
	return r2.Point{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}

// ClampNorm scales v down so its length does not exceed limit.
func ClampNorm(v r2.Point, limit float64) r2.Point {
	n := v.Norm()
	if n <= limit || n < Epsilon {
		return v
	}
	return v.Mul(limit / n)
}

// NormalizeAngle wraps angle into (-pi, pi].
func NormalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle <= -math.Pi {
		angle += 2 * math.Pi
	} else if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	return angle
}

// SegmentPointDistance returns the distance from p to the closed segment ab.
func SegmentPointDistance(a, b, p r2.Point) float64 {
	return Distance(p, ClosestPointOnSegment(a, b, p))
}

// ClosestPointOnSegment returns the point on the closed segment ab nearest to p.
func ClosestPointOnSegment(a, b, p r2.Point) r2.Point {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq < Epsilon*Epsilon {
		return a
	}
	t := p.Sub(a).Dot(ab) / lenSq
	t = math.Max(0, math.Min(1, t))
	return a.Add(ab.Mul(t))
}

// SegmentsIntersect returns true if the closed segments ab and cd touch.
func SegmentsIntersect(a, b, c, d r2.Point) bool {
	d1 := orientation(c, d, a)
	d2 := orientation(c, d, b)
	d3 := orientation(a, b, c)
	d4 := orientation(a, b, d)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(c, d, a)) ||
		(d2 == 0 && onSegment(c, d, b)) ||
		(d3 == 0 && onSegment(a, b, c)) ||
		(d4 == 0 && onSegment(a, b, d))
}

// SegmentSegmentDistance returns the shortest distance between the closed segments ab and cd.
func SegmentSegmentDistance(a, b, c, d r2.Point) float64 {
	if SegmentsIntersect(a, b, c, d) {
		return 0
	}
	return math.Min(
		math.Min(SegmentPointDistance(a, b, c), SegmentPointDistance(a, b, d)),
		math.Min(SegmentPointDistance(c, d, a), SegmentPointDistance(c, d, b)),
	)
}

func orientation(a, b, c r2.Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

func onSegment(a, b, p r2.Point) bool {
	return p.X >= math.Min(a.X, b.X) && p.X <= math.Max(a.X, b.X) &&
		p.Y >= math.Min(a.Y, b.Y) && p.Y <= math.Max(a.Y, b.Y)
}

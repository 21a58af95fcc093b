package spatialmath

import (
	"github.com/golang/geo/r2"
)

// ShapeSet is the obstacle set handed to planners. It is built once per tick and only read
// afterwards, so it can be shared across concurrently planned robots. A nil *ShapeSet behaves as
// the empty set.
type ShapeSet struct {
	geometries []Geometry
}

// NewShapeSet returns a set holding the given geometries.
func NewShapeSet(geometries ...Geometry) *ShapeSet {
	return &ShapeSet{geometries: append([]Geometry(nil), geometries...)}
}

// Add returns a new set with the geometries appended. The receiver is not modified.
func (s *ShapeSet) Add(geometries ...Geometry) *ShapeSet {
	return NewShapeSet(append(s.Geometries(), geometries...)...)
}

// Len returns the number of geometries in the set.
func (s *ShapeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.geometries)
}

// Geometries returns a copy of the geometries.
func (s *ShapeSet) Geometries() []Geometry {
	if s == nil {
		return nil
	}
	return append([]Geometry(nil), s.geometries...)
}

// Hit returns true if p lies within inflate of any geometry. A robot of radius inflate centered
// at p would overlap the obstacle.
func (s *ShapeSet) Hit(p r2.Point, inflate float64) bool {
	if s == nil {
		return false
	}
	for _, g := range s.geometries {
		if d := g.DistanceFrom(p); d < inflate || d == 0 {
			return true
		}
	}
	return false
}

// HitSegment returns true if the segment ab passes within inflate of any geometry.
func (s *ShapeSet) HitSegment(a, b r2.Point, inflate float64) bool {
	if s == nil {
		return false
	}
	for _, g := range s.geometries {
		if d := g.SegmentDistance(a, b); d < inflate || d == 0 {
			return true
		}
	}
	return false
}

// Bounds returns the bounding rectangle of every geometry in the set, or an empty rectangle.
func (s *ShapeSet) Bounds() r2.Rect {
	bounds := r2.EmptyRect()
	for _, g := range s.Geometries() {
		bounds = bounds.Union(g.Bounds())
	}
	return bounds
}

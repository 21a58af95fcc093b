package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Geometry is an obstacle region in the field plane.
type Geometry interface {
	Label() string
	Center() r2.Point
	// Bounds is the axis-aligned bounding rectangle of the region.
	Bounds() r2.Rect
	// DistanceFrom returns the distance from p to the region, zero when p is inside.
	DistanceFrom(p r2.Point) float64
	// SegmentDistance returns the distance from the closed segment ab to the region, zero when they overlap.
	SegmentDistance(a, b r2.Point) float64
	// Inflated returns a copy of the region grown by margin on every side.
	Inflated(margin float64) Geometry
	String() string
}

func newBadGeometryDimensionsError(g Geometry) error {
	return fmt.Errorf("invalid dimension(s) for geometry type %T", g)
}

// circle is a disk defined by its center and radius.
type circle struct {
	center r2.Point
	radius float64
	label  string
}

// NewCircle instantiates a new circle Geometry.
func NewCircle(center r2.Point, radius float64, label string) (Geometry, error) {
	if radius < 0 {
		return nil, newBadGeometryDimensionsError(&circle{})
	}
	return &circle{center: center, radius: radius, label: label}, nil
}

func (c *circle) Label() string {
	return c.label
}

func (c *circle) Center() r2.Point {
	return c.center
}

func (c *circle) Radius() float64 {
	return c.radius
}

func (c *circle) Bounds() r2.Rect {
	return r2.RectFromCenterSize(c.center, r2.Point{X: 2 * c.radius, Y: 2 * c.radius})
}

func (c *circle) DistanceFrom(p r2.Point) float64 {
	return math.Max(0, Distance(c.center, p)-c.radius)
}

func (c *circle) SegmentDistance(a, b r2.Point) float64 {
	return math.Max(0, SegmentPointDistance(a, b, c.center)-c.radius)
}

func (c *circle) Inflated(margin float64) Geometry {
	return &circle{center: c.center, radius: math.Max(0, c.radius+margin), label: c.label}
}

func (c *circle) String() string {
	return fmt.Sprintf("circle %q center %v radius %.3f", c.label, c.center, c.radius)
}

// rectangle is an axis-aligned box.
type rectangle struct {
	rect  r2.Rect
	label string
}

// NewRectangle instantiates a new axis-aligned rectangle Geometry from its center and full size.
func NewRectangle(center, size r2.Point, label string) (Geometry, error) {
	// Zero sizes are allowed for degenerate walls.
	if size.X < 0 || size.Y < 0 {
		return nil, newBadGeometryDimensionsError(&rectangle{})
	}
	return &rectangle{rect: r2.RectFromCenterSize(center, size), label: label}, nil
}

func (r *rectangle) Label() string {
	return r.label
}

func (r *rectangle) Center() r2.Point {
	return r.rect.Center()
}

func (r *rectangle) Size() r2.Point {
	return r.rect.Size()
}

func (r *rectangle) Bounds() r2.Rect {
	return r.rect
}

func (r *rectangle) DistanceFrom(p r2.Point) float64 {
	return Distance(p, r.rect.ClampPoint(p))
}

func (r *rectangle) SegmentDistance(a, b r2.Point) float64 {
	if r.rect.ContainsPoint(a) || r.rect.ContainsPoint(b) {
		return 0
	}
	verts := r.rect.Vertices()
	best := math.Inf(1)
	for i := range verts {
		d := SegmentSegmentDistance(a, b, verts[i], verts[(i+1)%len(verts)])
		if d == 0 {
			return 0
		}
		best = math.Min(best, d)
	}
	return best
}

// Inflated grows the box by margin. Corners stay square so the result slightly over-approximates
// the true Minkowski sum.
func (r *rectangle) Inflated(margin float64) Geometry {
	size := r.rect.Size().Add(r2.Point{X: 2 * margin, Y: 2 * margin})
	size.X = math.Max(0, size.X)
	size.Y = math.Max(0, size.Y)
	return &rectangle{rect: r2.RectFromCenterSize(r.rect.Center(), size), label: r.label}
}

func (r *rectangle) String() string {
	return fmt.Sprintf("rectangle %q lo %v hi %v", r.label, r.rect.Lo(), r.rect.Hi())
}

// GeometryType is the type of a configured geometry.
type GeometryType string

// The set of allowed representations for geometries.
const (
	CircleType    = GeometryType("circle")
	RectangleType = GeometryType("rectangle")
)

// GeometryConfig specifies the format of geometries specified through the configuration file.
type GeometryConfig struct {
	Type GeometryType `json:"type"`

	// parameters used for defining a rectangle's full size
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// parameter used for defining a circle's radius
	R float64 `json:"r,omitempty"`

	Center r2.Point `json:"center"`
	Label  string   `json:"label,omitempty"`
}

// ParseConfig converts a GeometryConfig into the correct Geometry. An empty type is inferred from
// which dimensions are set.
func (config *GeometryConfig) ParseConfig() (Geometry, error) {
	switch config.Type {
	case RectangleType:
		return NewRectangle(config.Center, r2.Point{X: config.X, Y: config.Y}, config.Label)
	case CircleType:
		return NewCircle(config.Center, config.R, config.Label)
	case "":
		switch {
		case config.X > 0 || config.Y > 0:
			config.Type = RectangleType
		case config.R > 0:
			config.Type = CircleType
		default:
			return nil, errors.New("cannot infer geometry type from empty dimensions")
		}
		return config.ParseConfig()
	default:
		return nil, errors.Errorf("geometry type %q is unsupported", config.Type)
	}
}

// NewGeometryConfig returns the config that recreates the input geometry.
func NewGeometryConfig(g Geometry) (*GeometryConfig, error) {
	switch gType := g.(type) {
	case *circle:
		return &GeometryConfig{Type: CircleType, R: gType.radius, Center: gType.center, Label: gType.label}, nil
	case *rectangle:
		size := gType.rect.Size()
		return &GeometryConfig{Type: RectangleType, X: size.X, Y: size.Y, Center: gType.rect.Center(), Label: gType.label}, nil
	default:
		return nil, errors.Errorf("geometry type %T is unsupported", g)
	}
}

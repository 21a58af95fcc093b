package motionplan

import (
	"math"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"

	"go.viam.com/soccer/logging"
	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/motionplan/trajectory"
	"go.viam.com/soccer/spatialmath"
)

const (
	escapeRingStep = 0.05
	escapeRings    = 40
	// Candidate points on the innermost ring, scaled up with the ring index.
	escapeRingSamples = 8
)

// EmptyPlanner handles the None command. The robot comes to rest, after first leaving any
// obstacle it is inside of.
type EmptyPlanner struct {
	plannerBase
	opts PlannerOptions
}

// NewEmptyPlanner returns a planner for None commands.
func NewEmptyPlanner(opts PlannerOptions, clk clock.Clock, logger logging.Logger) *EmptyPlanner {
	return &EmptyPlanner{plannerBase: newPlannerBase(opts.Replan, clk, logger, "empty"), opts: opts}
}

// CommandType returns None.
func (p *EmptyPlanner) CommandType() motiontypes.CommandType {
	return motiontypes.None
}

// Run keeps req.PrevPath while it still ends at rest outside every obstacle.
func (p *EmptyPlanner) Run(req *PlanRequest) (trajectory.Trajectory, error) {
	if _, ok := req.Command.(motiontypes.EmptyCommand); !ok {
		return nil, NewCommandMismatchError(p.CommandType(), req.Command)
	}
	if req.PrevPath != nil {
		if dest, ok := req.PrevPath.Destination(); ok && dest.Speed() == 0 &&
			!req.Obstacles.Hit(dest.Pos, p.opts.RobotRadius) &&
			!p.replan.offPath(req.PrevPath, req.Start, p.clk.Now()) {
			return req.PrevPath, nil
		}
	}

	if req.Obstacles.Hit(req.Start.Pos, p.opts.RobotRadius) {
		if escape, found := escapePoint(req.Start.Pos, req.Obstacles, p.opts.RobotRadius, p.opts.Field); found {
			p.logger.Debugw("escaping obstacle", "from", req.Start.String(), "to", escape)
			return p.stamp(straightPath(req, motiontypes.NewMotionInstant(escape, r2.Point{})))
		}
		p.logger.Warnw("no free point found near robot", "pos", req.Start.String())
	}
	return p.stopPath(req)
}

// escapePoint looks for the closest point to from that is clear of obstacles by inflate,
// searching rings of growing radius. Points outside a non empty field are skipped.
func escapePoint(from r2.Point, obstacles *spatialmath.ShapeSet, inflate float64, field r2.Rect) (r2.Point, bool) {
	for ring := 1; ring <= escapeRings; ring++ {
		radius := float64(ring) * escapeRingStep
		samples := escapeRingSamples * ring
		for i := 0; i < samples; i++ {
			candidate := from.Add(spatialmath.FromPolar(radius, 2*math.Pi*float64(i)/float64(samples)))
			if !field.IsEmpty() && !field.ContainsPoint(candidate) {
				continue
			}
			if !obstacles.Hit(candidate, inflate) {
				return candidate, true
			}
		}
	}
	return r2.Point{}, false
}

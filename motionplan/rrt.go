package motionplan

import (
	"context"
	"math"
	"math/rand"

	"github.com/golang/geo/r2"

	"go.viam.com/soccer/spatialmath"
)

const (
	// How far past the start, goal and obstacles the search may roam when no field is configured.
	defaultSearchMargin = 1.0
	// Upper bound on steps taken by a single extension.
	maxExtendSteps = 100
)

// node is a position in one of the search trees.
type node struct {
	pos r2.Point
}

// rrtConnect is a bidirectional RRT in the field plane. It grows one tree from the start and one
// from the goal, alternating which one extends toward a random sample, and stops once they meet.
type rrtConnect struct {
	obstacles *spatialmath.ShapeSet
	inflate   float64
	bounds    r2.Rect
	iter      int
	stepSize  float64
	randseed  *rand.Rand
}

func newRRTConnect(opts PlannerOptions, obstacles *spatialmath.ShapeSet, randseed *rand.Rand) *rrtConnect {
	iter := opts.RRT.MaxIterations
	if iter <= 0 {
		iter = defaultPlanIter
	}
	step := opts.RRT.StepSize
	if step <= 0 {
		step = defaultStepSize
	}
	return &rrtConnect{
		obstacles: obstacles,
		inflate:   opts.RobotRadius,
		bounds:    opts.Field,
		iter:      iter,
		stepSize:  step,
		randseed:  randseed,
	}
}

// plan returns waypoints from start to goal, both included, along collision free segments.
func (mp *rrtConnect) plan(ctx context.Context, start, goal r2.Point) ([]r2.Point, error) {
	if mp.obstacles.Hit(start, mp.inflate) {
		return nil, errStartInCollision
	}
	if mp.obstacles.Hit(goal, mp.inflate) {
		return nil, errGoalInCollision
	}
	if mp.checkPath(start, goal) {
		return []r2.Point{start, goal}, nil
	}
	if mp.bounds.IsEmpty() {
		mp.bounds = mp.obstacles.Bounds().ExpandedByMargin(defaultSearchMargin)
	}
	mp.bounds = mp.bounds.AddPoint(start).AddPoint(goal)

	// Initialize maps for start and goal
	startMap := map[*node]*node{{pos: start}: nil}
	goalMap := map[*node]*node{{pos: goal}: nil}

	// for the first iteration, we try the midpoint between start and goal
	target := start.Add(goal).Mul(0.5)

	// Create a reference to the two maps so that we can alternate which one is grown
	map1, map2 := startMap, goalMap

	for i := 0; i < mp.iter; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// extend map1 toward the target, then map2 toward whatever map1 reached
		reached1 := mp.extend(map1, nearestNeighbor(target, map1), target)
		reached2 := mp.extend(map2, nearestNeighbor(reached1.pos, map2), reached1.pos)

		if spatialmath.PointAlmostEqual(reached1.pos, reached2.pos) {
			path := extractPath(startMap, goalMap, reached1, reached2)
			return mp.smoothPath(path), nil
		}

		target = mp.sample()
		map1, map2 = map2, map1
	}
	return nil, NewPlannerFailedError()
}

func (mp *rrtConnect) sample() r2.Point {
	size := mp.bounds.Size()
	return mp.bounds.Lo().Add(r2.Point{X: mp.randseed.Float64() * size.X, Y: mp.randseed.Float64() * size.Y})
}

// checkPath returns true if the robot can travel the segment ab.
func (mp *rrtConnect) checkPath(a, b r2.Point) bool {
	return !mp.obstacles.HitSegment(a, b, mp.inflate)
}

// extend steps from near toward target in increments of the step size, adding a node per step,
// until the target is reached or the next step collides. It returns the last node added.
func (mp *rrtConnect) extend(rrtMap map[*node]*node, near *node, target r2.Point) *node {
	cur := near
	for i := 0; i < maxExtendSteps; i++ {
		dist := spatialmath.Distance(cur.pos, target)
		if dist < spatialmath.Epsilon {
			return cur
		}
		next := target
		if dist > mp.stepSize {
			next = cur.pos.Add(spatialmath.Unit(target.Sub(cur.pos)).Mul(mp.stepSize))
		}
		if !mp.bounds.ContainsPoint(next) || !mp.checkPath(cur.pos, next) {
			return cur
		}
		n := &node{pos: next}
		rrtMap[n] = cur
		cur = n
	}
	return cur
}

// smoothPath greedily shortcuts the path: from each kept waypoint it jumps to the farthest
// waypoint reachable in a straight line.
func (mp *rrtConnect) smoothPath(path []r2.Point) []r2.Point {
	if len(path) < 3 {
		return path
	}
	smoothed := []r2.Point{path[0]}
	for i := 0; i < len(path)-1; {
		j := len(path) - 1
		for ; j > i+1; j-- {
			if mp.checkPath(path[i], path[j]) {
				break
			}
		}
		smoothed = append(smoothed, path[j])
		i = j
	}
	return smoothed
}

func nearestNeighbor(target r2.Point, rrtMap map[*node]*node) *node {
	bestDist := math.Inf(1)
	var best *node
	for k := range rrtMap {
		dist := spatialmath.Distance(target, k.pos)
		if dist < bestDist {
			bestDist = dist
			best = k
		}
	}
	return best
}

// extractPath joins the branch of the start tree ending at one node with the branch of the goal
// tree ending at the other. The two nodes are at the same position.
func extractPath(startMap, goalMap map[*node]*node, a, b *node) []r2.Point {
	// need to figure out which of the two nodes is in the start map
	startReached, goalReached := a, b
	if _, ok := startMap[a]; !ok {
		startReached, goalReached = b, a
	}

	// extract the path to the seed
	path := make([]r2.Point, 0)
	for startReached != nil {
		path = append(path, startReached.pos)
		startReached = startMap[startReached]
	}

	// reverse the slice
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	// skip goalReached and go directly to its parent in order to not repeat this position
	for goalReached = goalMap[goalReached]; goalReached != nil; goalReached = goalMap[goalReached] {
		path = append(path, goalReached.pos)
	}
	return path
}

package trajectory

import (
	"sort"
	"time"

	"go.viam.com/soccer/motionplan/motiontypes"
)

// CompositePath plays a list of segments back to back. Segment start times are ignored, only the
// composite is stamped. Past its duration it holds the final sample of the last segment.
type CompositePath struct {
	stamp
	segments []Trajectory
	// ends[i] is the elapsed time at which segments[i] finishes.
	ends []time.Duration
}

// NewCompositePath returns a path made of the given segments in order.
func NewCompositePath(segments ...Trajectory) *CompositePath {
	cp := &CompositePath{}
	for _, seg := range segments {
		cp.append(seg)
	}
	return cp
}

func (cp *CompositePath) append(seg Trajectory) {
	if seg == nil {
		return
	}
	cp.segments = append(cp.segments, seg)
	cp.ends = append(cp.ends, cp.Duration()+seg.Duration())
}

// Sample returns the instant elapsed after the start of the first segment.
func (cp *CompositePath) Sample(elapsed time.Duration) motiontypes.MotionInstant {
	if len(cp.segments) == 0 {
		return motiontypes.MotionInstant{}
	}
	if elapsed >= cp.Duration() {
		last := cp.segments[len(cp.segments)-1]
		return last.Sample(last.Duration())
	}
	i := sort.Search(len(cp.ends), func(i int) bool { return elapsed < cp.ends[i] })
	var offset time.Duration
	if i > 0 {
		offset = cp.ends[i-1]
	}
	return cp.segments[i].Sample(elapsed - offset)
}

// Duration returns the summed duration of the segments.
func (cp *CompositePath) Duration() time.Duration {
	if len(cp.ends) == 0 {
		return 0
	}
	return cp.ends[len(cp.ends)-1]
}

// Destination returns the destination of the last segment.
func (cp *CompositePath) Destination() (motiontypes.MotionInstant, bool) {
	if len(cp.segments) == 0 {
		return motiontypes.MotionInstant{}, false
	}
	return cp.segments[len(cp.segments)-1].Destination()
}

// Segments returns a copy of the segment list.
func (cp *CompositePath) Segments() []Trajectory {
	return append([]Trajectory(nil), cp.segments...)
}

// Len returns the number of segments.
func (cp *CompositePath) Len() int {
	return len(cp.segments)
}

// Package motiontypes holds the value types exchanged between the behavior layer, the planners and
// the trajectory follower: motion instants, kinematic constraints and motion commands.
package motiontypes

import (
	"fmt"
	"time"

	"github.com/golang/geo/r2"
)

// MotionInstant is a snapshot of a robot's planar position and velocity. Time is optional and is
// the zero value for untimed instants such as command goals.
type MotionInstant struct {
	Pos  r2.Point  `json:"pos"`
	Vel  r2.Point  `json:"vel"`
	Time time.Time `json:"time,omitempty"`
}

// NewMotionInstant returns an untimed instant.
func NewMotionInstant(pos, vel r2.Point) MotionInstant {
	return MotionInstant{Pos: pos, Vel: vel}
}

// Speed returns the magnitude of the velocity.
func (mi MotionInstant) Speed() float64 {
	return mi.Vel.Norm()
}

// At returns a copy of the instant stamped with t.
func (mi MotionInstant) At(t time.Time) MotionInstant {
	mi.Time = t
	return mi
}

func (mi MotionInstant) String() string {
	return fmt.Sprintf("pos (%.3f, %.3f) vel (%.3f, %.3f)", mi.Pos.X, mi.Pos.Y, mi.Vel.X, mi.Vel.Y)
}

package motiontypes

import (
	"math"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

const (
	// MinSpeed is the smallest speed limit a planner will use. Lower limits are raised to it.
	MinSpeed = 1e-3
	// MinAcceleration is the smallest acceleration limit a planner will use.
	MinAcceleration = 1e-3
	// MinAngleSpeed is the smallest angular speed limit a planner will use.
	MinAngleSpeed = 1e-3
)

// MotionConstraints is a robot's kinematic capability profile. It is supplied per tick and
// is never modified by planners.
type MotionConstraints struct {
	// Max linear speed, in m/s.
	MaxSpeed float64 `json:"max_speed"`
	// Max linear acceleration, in m/s^2.
	MaxAcceleration float64 `json:"max_acceleration"`
	// Max angular speed about a pivot, in rad/s.
	MaxAngleSpeed float64 `json:"max_angle_speed"`
}

// DefaultMotionConstraints returns the constraints of a stock robot.
func DefaultMotionConstraints() MotionConstraints {
	return MotionConstraints{
		MaxSpeed:        2.0,
		MaxAcceleration: 1.5,
		MaxAngleSpeed:   4.0,
	}
}

// Validate ensures the configured limits are usable.
func (mc *MotionConstraints) Validate(path string) error {
	if !(mc.MaxSpeed > 0) || math.IsInf(mc.MaxSpeed, 0) {
		return utils.NewConfigValidationError(path, errors.Errorf("max_speed must be positive and finite, got %v", mc.MaxSpeed))
	}
	if !(mc.MaxAcceleration > 0) || math.IsInf(mc.MaxAcceleration, 0) {
		return utils.NewConfigValidationError(path,
			errors.Errorf("max_acceleration must be positive and finite, got %v", mc.MaxAcceleration))
	}
	if mc.MaxAngleSpeed < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("max_angle_speed cannot be negative, got %v", mc.MaxAngleSpeed))
	}
	return nil
}

// Sanitized returns a copy whose limits are at least the minimum positive bounds. NaN limits are
// treated as zero. An unset angle speed is left unlimited.
func (mc MotionConstraints) Sanitized() MotionConstraints {
	clampMin := func(v, min float64) float64 {
		if math.IsNaN(v) || v < min {
			return min
		}
		return v
	}
	mc.MaxSpeed = clampMin(mc.MaxSpeed, MinSpeed)
	mc.MaxAcceleration = clampMin(mc.MaxAcceleration, MinAcceleration)
	if mc.MaxAngleSpeed == 0 {
		mc.MaxAngleSpeed = math.Inf(1)
	}
	mc.MaxAngleSpeed = clampMin(mc.MaxAngleSpeed, MinAngleSpeed)
	return mc
}

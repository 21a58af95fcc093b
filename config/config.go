// Package config defines the structures to configure the planners, the control loop and the
// robots, and reads them from JSON files.
package config

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/soccer/logging"
	"go.viam.com/soccer/motionplan"
	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/spatialmath"
)

const (
	// DefaultFrequencyHz is the loop rate used when none is configured.
	DefaultFrequencyHz = 60.0
	// DefaultKickDistance is how close a robot gets to a line kick target before kicking.
	DefaultKickDistance = 0.12
	maxFrequencyHz      = 200.0
)

// A Config describes the planners, the robots they drive and the static obstacles of the field.
type Config struct {
	ConfigFilePath string                        `json:"-"`
	FrequencyHz    float64                       `json:"frequency_hz,omitempty"`
	Planner        PlannerConfig                 `json:"planner"`
	Robots         []RobotConfig                 `json:"robots"`
	Obstacles      []spatialmath.GeometryConfig  `json:"obstacles,omitempty"`
	Log            []logging.LoggerPatternConfig `json:"log,omitempty"`
}

// PlannerConfig tunes every planner. Zero values take defaults; a zero off_path_threshold
// disables the off path check.
type PlannerConfig struct {
	GoalPositionThreshold float64        `json:"goal_position_threshold,omitempty"`
	GoalSpeedThreshold    float64        `json:"goal_speed_threshold,omitempty"`
	OffPathThreshold      float64        `json:"off_path_threshold,omitempty"`
	RobotRadius           float64        `json:"robot_radius,omitempty"`
	Seed                  int64          `json:"seed,omitempty"`
	RRT                   RRTConfig      `json:"rrt"`
	LineKick              LineKickConfig `json:"line_kick"`
	Field                 *FieldConfig   `json:"field,omitempty"`
}

// RRTConfig tunes the path search.
type RRTConfig struct {
	MaxIterations int     `json:"max_iterations,omitempty"`
	StepSize      float64 `json:"step_size,omitempty"`
}

// LineKickConfig tunes line kicks.
type LineKickConfig struct {
	ApproachSpeed float64 `json:"approach_speed,omitempty"`
	FollowThrough float64 `json:"follow_through,omitempty"`
	KickDistance  float64 `json:"kick_distance,omitempty"`
}

// FieldConfig is the rectangle the path search stays in.
type FieldConfig struct {
	Min r2.Point `json:"min"`
	Max r2.Point `json:"max"`
}

// RobotConfig describes one robot.
type RobotConfig struct {
	Name string `json:"name"`
	// Constraints default to motiontypes.DefaultMotionConstraints when unset.
	Constraints *motiontypes.MotionConstraints `json:"constraints,omitempty"`
	Kicker      *KickerConfig                  `json:"kicker,omitempty"`
}

// KickerConfig selects a kicker model and carries its attributes.
type KickerConfig struct {
	Type       string       `json:"type"`
	Attributes AttributeMap `json:"attributes,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (config *KickerConfig) Validate(path string) error {
	if config.Type == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "type")
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (config *RobotConfig) Validate(path string) error {
	if config.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if config.Constraints != nil {
		if err := config.Constraints.Validate(fmt.Sprintf("%s.constraints", path)); err != nil {
			return err
		}
	}
	if config.Kicker != nil {
		if err := config.Kicker.Validate(fmt.Sprintf("%s.kicker", path)); err != nil {
			return err
		}
	}
	return nil
}

// RobotConstraints returns the configured constraints or the defaults.
func (config *RobotConfig) RobotConstraints() motiontypes.MotionConstraints {
	if config.Constraints == nil {
		return motiontypes.DefaultMotionConstraints()
	}
	return *config.Constraints
}

// Validate ensures all parts of the config are valid.
func (config *PlannerConfig) Validate(path string) error {
	var errs []error
	nonNegative := func(name string, v float64) {
		if v < 0 || math.IsNaN(v) {
			errs = append(errs, utils.NewConfigValidationError(path, errors.Errorf("%s cannot be negative, got %v", name, v)))
		}
	}
	nonNegative("goal_position_threshold", config.GoalPositionThreshold)
	nonNegative("goal_speed_threshold", config.GoalSpeedThreshold)
	nonNegative("off_path_threshold", config.OffPathThreshold)
	nonNegative("robot_radius", config.RobotRadius)
	nonNegative("rrt.step_size", config.RRT.StepSize)
	nonNegative("line_kick.approach_speed", config.LineKick.ApproachSpeed)
	nonNegative("line_kick.follow_through", config.LineKick.FollowThrough)
	nonNegative("line_kick.kick_distance", config.LineKick.KickDistance)
	if config.RRT.MaxIterations < 0 {
		errs = append(errs, utils.NewConfigValidationError(path, errors.New("rrt.max_iterations cannot be negative")))
	}
	if f := config.Field; f != nil && (f.Min.X >= f.Max.X || f.Min.Y >= f.Max.Y) {
		errs = append(errs, utils.NewConfigValidationError(path, errors.Errorf("field min %v must be below max %v", f.Min, f.Max)))
	}
	return multierr.Combine(errs...)
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	var errs []error
	if c.FrequencyHz <= 0 || c.FrequencyHz > maxFrequencyHz {
		errs = append(errs, utils.NewConfigValidationError("frequency_hz",
			errors.Errorf("must be in (0, %v], got %v", maxFrequencyHz, c.FrequencyHz)))
	}
	errs = append(errs, c.Planner.Validate("planner"))

	if len(c.Robots) == 0 {
		errs = append(errs, utils.NewConfigValidationFieldRequiredError("", "robots"))
	}
	for idx := range c.Robots {
		errs = append(errs, c.Robots[idx].Validate(fmt.Sprintf("%s.%d", "robots", idx)))
	}
	names := lo.Map(c.Robots, func(r RobotConfig, _ int) string { return r.Name })
	if dups := lo.FindDuplicates(lo.Compact(names)); len(dups) > 0 {
		errs = append(errs, utils.NewConfigValidationError("robots", errors.Errorf("duplicate robot names %v", dups)))
	}

	for idx := range c.Obstacles {
		if _, err := c.Obstacles[idx].ParseConfig(); err != nil {
			errs = append(errs, utils.NewConfigValidationError(fmt.Sprintf("%s.%d", "obstacles", idx), err))
		}
	}
	for idx, lpc := range c.Log {
		path := fmt.Sprintf("%s.%d", "log", idx)
		if !logging.ValidatePattern(lpc.Pattern) {
			errs = append(errs, utils.NewConfigValidationError(path, errors.Errorf("invalid logger pattern %q", lpc.Pattern)))
		}
		if _, err := logging.LevelFromString(lpc.Level); err != nil {
			errs = append(errs, utils.NewConfigValidationError(path, err))
		}
	}
	return multierr.Combine(errs...)
}

// ApplyDefaults fills unset values.
func (c *Config) ApplyDefaults() {
	if c.FrequencyHz == 0 {
		c.FrequencyHz = DefaultFrequencyHz
	}
	p := &c.Planner
	defaults := motionplan.DefaultPlannerOptions()
	if p.GoalPositionThreshold == 0 {
		p.GoalPositionThreshold = defaults.Replan.GoalPositionThreshold
	}
	if p.GoalSpeedThreshold == 0 {
		p.GoalSpeedThreshold = defaults.Replan.GoalSpeedThreshold
	}
	if p.RobotRadius == 0 {
		p.RobotRadius = defaults.RobotRadius
	}
	if p.Seed == 0 {
		p.Seed = defaults.Seed
	}
	if p.RRT.MaxIterations == 0 {
		p.RRT.MaxIterations = defaults.RRT.MaxIterations
	}
	if p.RRT.StepSize == 0 {
		p.RRT.StepSize = defaults.RRT.StepSize
	}
	if p.LineKick.ApproachSpeed == 0 {
		p.LineKick.ApproachSpeed = defaults.LineKick.ApproachSpeed
	}
	if p.LineKick.FollowThrough == 0 {
		p.LineKick.FollowThrough = defaults.LineKick.FollowThrough
	}
	if p.LineKick.KickDistance == 0 {
		p.LineKick.KickDistance = DefaultKickDistance
	}
}

// PlannerOptions converts the planner section into planner options.
func (config *PlannerConfig) PlannerOptions() motionplan.PlannerOptions {
	opts := motionplan.DefaultPlannerOptions()
	opts.Replan = motionplan.ReplanOptions{
		GoalPositionThreshold: config.GoalPositionThreshold,
		GoalSpeedThreshold:    config.GoalSpeedThreshold,
		OffPathThreshold:      config.OffPathThreshold,
	}
	opts.RobotRadius = config.RobotRadius
	opts.Seed = config.Seed
	opts.RRT = motionplan.RRTOptions{MaxIterations: config.RRT.MaxIterations, StepSize: config.RRT.StepSize}
	opts.LineKick = motionplan.LineKickOptions{
		ApproachSpeed: config.LineKick.ApproachSpeed,
		FollowThrough: config.LineKick.FollowThrough,
	}
	if config.Field != nil {
		opts.Field = r2.RectFromPoints(config.Field.Min, config.Field.Max)
	}
	return opts
}

// ObstacleSet parses the configured obstacles.
func (c *Config) ObstacleSet() (*spatialmath.ShapeSet, error) {
	geometries := make([]spatialmath.Geometry, 0, len(c.Obstacles))
	for idx := range c.Obstacles {
		g, err := c.Obstacles[idx].ParseConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "obstacle %d", idx)
		}
		geometries = append(geometries, g)
	}
	return spatialmath.NewShapeSet(geometries...), nil
}

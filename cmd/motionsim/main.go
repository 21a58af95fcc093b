// Package main runs the control loop against simulated robots and prints where they go.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"gopkg.in/natefinch/lumberjack.v2"

	"go.viam.com/soccer/components/kicker"
	// register the fake kicker.
	_ "go.viam.com/soccer/components/kicker/fake"
	"go.viam.com/soccer/config"
	"go.viam.com/soccer/control"
	"go.viam.com/soccer/logging"
	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/sim"
	"go.viam.com/soccer/spatialmath"
)

const (
	flagConfig   = "config"
	flagCommand  = "command"
	flagX        = "x"
	flagY        = "y"
	flagSpeed    = "speed"
	flagRadius   = "radius"
	flagPivotX   = "px"
	flagPivotY   = "py"
	flagTicks    = "ticks"
	flagEvery    = "every"
	flagRealtime = "realtime"
	flagDebug    = "debug"
	flagLogFile  = "log-file"

	robotSpacing = 0.5
)

func main() {
	app := &cli.App{
		Name:  "motionsim",
		Usage: "plan and follow a motion command with simulated robots",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  flagCommand,
				Value: "direct",
				Usage: "command to run: direct, path, worldvel, pivot, linekick or none",
			},
			&cli.Float64Flag{Name: flagX, Usage: "goal or target x, or the x velocity for worldvel"},
			&cli.Float64Flag{Name: flagY, Usage: "goal or target y, or the y velocity for worldvel"},
			&cli.Float64Flag{
				Name:  flagSpeed,
				Usage: "speed at the goal, directed away from the origin; approach speed for linekick",
			},
			&cli.Float64Flag{Name: flagRadius, Value: 0.2, Usage: "pivot radius"},
			&cli.Float64Flag{Name: flagPivotX, Usage: "pivot point x"},
			&cli.Float64Flag{Name: flagPivotY, Usage: "pivot point y"},
			&cli.IntFlag{Name: flagTicks, Value: 240, Usage: "number of ticks to simulate"},
			&cli.IntFlag{Name: flagEvery, Value: 10, Usage: "print one row every `N` ticks"},
			&cli.BoolFlag{
				Name:  flagRealtime,
				Usage: "run the loop in the background on the wall clock and follow config file changes",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to `FILE`, rotated as it grows",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	logger := logging.NewLogger("motionsim")
	if c.Bool(flagDebug) {
		logger = logging.NewDebugLogger("motionsim")
	}
	if path := c.String(flagLogFile); path != "" {
		rotating := &lumberjack.Logger{Filename: path, MaxSize: 10, MaxBackups: 3}
		defer utils.UncheckedErrorFunc(rotating.Close)
		logger.AddAppender(logging.NewWriterAppender(rotating))
	}
	defer utils.UncheckedErrorFunc(logger.Sync)

	cfg, err := loadConfig(c.String(flagConfig))
	if err != nil {
		return err
	}
	registry := logging.NewRegistry()
	registry.GetOrRegister(logger.Name(), logger)
	if len(cfg.Log) > 0 {
		if err := registry.UpdateConfig(cfg.Log, logger); err != nil {
			return err
		}
	}

	cmd, err := buildCommand(
		c.String(flagCommand),
		r2.Point{X: c.Float64(flagX), Y: c.Float64(flagY)},
		r2.Point{X: c.Float64(flagPivotX), Y: c.Float64(flagPivotY)},
		c.Float64(flagSpeed),
		c.Float64(flagRadius),
	)
	if err != nil {
		return err
	}
	if kick, ok := cmd.(motiontypes.LineKickCommand); ok && c.Float64(flagSpeed) > 0 {
		cfg.Planner.LineKick.ApproachSpeed = c.Float64(flagSpeed)
		logger.Debugw("overriding approach speed", "target", kick.Target, "speed", c.Float64(flagSpeed))
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infow("starting simulation", "run_id", uuid.NewString(), "command", cmd, "robots", len(cfg.Robots))

	if c.Bool(flagRealtime) {
		return runRealtime(ctx, cfg, cmd, c.Int(flagTicks), logger, c.App.Writer)
	}
	_, err = simulate(ctx, cfg, cmd, c.Int(flagTicks), c.Int(flagEvery), logger, c.App.Writer)
	return err
}

// loadConfig reads the config at path, or returns a single default robot when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Read(path)
	}
	cfg := &config.Config{Robots: []config.RobotConfig{{Name: "r0"}}}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

// buildCommand maps the command flags to a motion command.
func buildCommand(kind string, xy, pivot r2.Point, speed, radius float64) (motiontypes.Command, error) {
	goal := motiontypes.NewMotionInstant(xy, spatialmath.Unit(xy).Mul(speed))
	switch kind {
	case "direct":
		return motiontypes.NewDirectPathTargetCommand(goal), nil
	case "path":
		return motiontypes.NewPathTargetCommand(goal), nil
	case "worldvel":
		return motiontypes.NewWorldVelCommand(xy), nil
	case "pivot":
		return motiontypes.NewPivotCommand(pivot, xy, radius), nil
	case "linekick":
		return motiontypes.NewLineKickCommand(xy), nil
	case "none", "":
		return motiontypes.NewEmptyCommand(), nil
	default:
		return nil, errors.Errorf("unknown command %q", kind)
	}
}

// fleet is the set of simulated robots built from a config.
type fleet struct {
	robots  []*control.Robot
	bodies  []*sim.Robot
	kickers []kicker.Kicker
}

func newFleet(
	ctx context.Context,
	cfg *config.Config,
	cmd motiontypes.Command,
	clk clock.Clock,
	logger logging.Logger,
) (*fleet, error) {
	f := &fleet{}
	for i, rc := range cfg.Robots {
		start := motiontypes.NewMotionInstant(r2.Point{Y: float64(i) * robotSpacing}, r2.Point{})
		body := sim.NewRobot(start, clk)
		robot := &control.Robot{
			Name:        rc.Name,
			Constraints: rc.RobotConstraints(),
			Estimator:   body,
			Actuator:    body,
			Commands:    func() motiontypes.Command { return cmd },
		}
		if rc.Kicker != nil {
			k, err := kicker.New(ctx, *rc.Kicker, logger.Sublogger(rc.Name))
			if err != nil {
				return nil, multierr.Combine(errors.Wrapf(err, "robot %q", rc.Name), f.close(ctx))
			}
			robot.Kicker = k
			f.kickers = append(f.kickers, k)
		}
		f.robots = append(f.robots, robot)
		f.bodies = append(f.bodies, body)
	}
	return f, nil
}

func (f *fleet) close(ctx context.Context) error {
	var errs []error
	for _, k := range f.kickers {
		errs = append(errs, k.Close(ctx))
	}
	return multierr.Combine(errs...)
}

func (f *fleet) states(ctx context.Context) ([]motiontypes.MotionInstant, error) {
	states := make([]motiontypes.MotionInstant, 0, len(f.bodies))
	for _, b := range f.bodies {
		s, err := b.State(ctx)
		if err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	return states, nil
}

func newLoop(cfg *config.Config, f *fleet, clk clock.Clock, logger logging.Logger) (*control.Loop, error) {
	obstacles, err := cfg.ObstacleSet()
	if err != nil {
		return nil, err
	}
	loopCfg := control.LoopConfig{
		Frequency:    cfg.FrequencyHz,
		KickDistance: cfg.Planner.LineKick.KickDistance,
		Planner:      cfg.Planner.PlannerOptions(),
	}
	return control.NewLoop(loopCfg, f.robots, obstacles, clk, logger)
}

// simulate steps the loop ticks times on a mock clock, printing a row per robot every `every`
// ticks, and returns the final robot states.
func simulate(
	ctx context.Context,
	cfg *config.Config,
	cmd motiontypes.Command,
	ticks, every int,
	logger logging.Logger,
	out io.Writer,
) (states []motiontypes.MotionInstant, err error) {
	clk := clock.NewMock()
	f, err := newFleet(ctx, cfg, cmd, clk, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, f.close(ctx))
	}()
	loop, err := newLoop(cfg, f, clk, logger)
	if err != nil {
		return nil, err
	}
	if every <= 0 {
		every = 1
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Tick", "Time", "Robot", "X", "Y", "VX", "VY", "Speed"})
	begin := clk.Now()
	for tick := 0; tick < ticks; tick++ {
		if ctx.Err() != nil {
			break
		}
		if tick > 0 {
			clk.Add(loop.Period())
		}
		if err := loop.Tick(ctx); err != nil {
			logger.Warnw("tick failed", "tick", tick, "error", err)
		}
		if tick%every != 0 && tick != ticks-1 {
			continue
		}
		states, err = f.states(ctx)
		if err != nil {
			return nil, err
		}
		for i, s := range states {
			t.AppendRow(stateRow(tick, clk.Since(begin), f.robots[i].Name, s))
		}
	}
	fmt.Fprintln(out, t.Render())
	return f.states(ctx)
}

func stateRow(tick int, elapsed time.Duration, name string, s motiontypes.MotionInstant) table.Row {
	return table.Row{
		tick,
		fmt.Sprintf("%.3fs", elapsed.Seconds()),
		name,
		fmt.Sprintf("%.3f", s.Pos.X),
		fmt.Sprintf("%.3f", s.Pos.Y),
		fmt.Sprintf("%.3f", s.Vel.X),
		fmt.Sprintf("%.3f", s.Vel.Y),
		fmt.Sprintf("%.3f", s.Speed()),
	}
}

// runRealtime runs the loop in the background for ticks periods of wall time, applying config
// file changes as they happen.
func runRealtime(
	ctx context.Context,
	cfg *config.Config,
	cmd motiontypes.Command,
	ticks int,
	logger logging.Logger,
	out io.Writer,
) (err error) {
	clk := clock.New()
	f, err := newFleet(ctx, cfg, cmd, clk, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.close(ctx))
	}()
	loop, err := newLoop(cfg, f, clk, logger)
	if err != nil {
		return err
	}

	watchCtx, cancelWatch := context.WithCancel(ctx)
	watchDone := make(chan error, 1)
	if cfg.ConfigFilePath != "" {
		go func() {
			watchDone <- config.Watch(watchCtx, cfg.ConfigFilePath, logger.Sublogger("config"), func(newCfg *config.Config) {
				loop.UpdatePlannerOptions(newCfg.Planner.PlannerOptions())
				obstacles, err := newCfg.ObstacleSet()
				if err != nil {
					logger.Warnw("keeping previous obstacles", "error", err)
					return
				}
				loop.SetObstacles(obstacles)
			})
		}()
	} else {
		watchDone <- nil
	}

	if err := loop.Start(); err != nil {
		cancelWatch()
		return multierr.Combine(err, <-watchDone)
	}
	select {
	case <-ctx.Done():
	case <-clk.After(time.Duration(ticks) * loop.Period()):
	}
	err = loop.Stop(context.Background())
	cancelWatch()
	err = multierr.Combine(err, <-watchDone)

	states, stateErr := f.states(context.Background())
	if stateErr != nil {
		return multierr.Combine(err, stateErr)
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Tick", "Time", "Robot", "X", "Y", "VX", "VY", "Speed"})
	for i, s := range states {
		t.AppendRow(stateRow(ticks, time.Duration(ticks)*loop.Period(), f.robots[i].Name, s))
	}
	fmt.Fprintln(out, t.Render())
	return err
}

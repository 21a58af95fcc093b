// Package control runs the fixed rate loop that turns commands into actuator targets: read
// state, plan, sample the trajectory at the current time and hand the sample to the actuator.
package control

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/soccer/logging"
	"go.viam.com/soccer/motionplan"
	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/motionplan/trajectory"
	"go.viam.com/soccer/spatialmath"
)

// LoopConfig configures a Loop.
type LoopConfig struct {
	// Frequency is the tick rate in Hz.
	Frequency float64
	// KickDistance is how close to a line kick target the robot must be to trigger its kicker.
	KickDistance float64
	Planner      motionplan.PlannerOptions
}

// Loop drives a set of robots at a fixed rate.
type Loop struct {
	cfg    LoopConfig
	robots []*Robot
	clk    clock.Clock
	logger logging.Logger
	dt     time.Duration

	// tickMu serializes ticks.
	tickMu sync.Mutex

	mu          sync.Mutex
	obstacles   *spatialmath.ShapeSet
	pendingOpts *motionplan.PlannerOptions

	// runMu guards the background worker state below.
	runMu                   sync.Mutex
	activeBackgroundWorkers sync.WaitGroup
	cancelCtx               context.Context
	cancel                  context.CancelFunc
	ticker                  *clock.Ticker
	running                 bool
}

// NewLoop returns a loop driving robots around obstacles.
func NewLoop(
	cfg LoopConfig,
	robots []*Robot,
	obstacles *spatialmath.ShapeSet,
	clk clock.Clock,
	logger logging.Logger,
) (*Loop, error) {
	if cfg.Frequency <= 0 || cfg.Frequency > 200 {
		return nil, errors.New("loop frequency shouldn't be 0 or above 200Hz")
	}
	for _, r := range robots {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	if dups := lo.FindDuplicates(lo.Map(robots, func(r *Robot, _ int) string { return r.Name })); len(dups) > 0 {
		return nil, errors.Errorf("duplicate robot names: %v", dups)
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.NewBlankLogger("control")
	}
	l := &Loop{
		cfg:       cfg,
		robots:    robots,
		clk:       clk,
		logger:    logger,
		dt:        time.Duration(float64(time.Second) * (1.0 / cfg.Frequency)),
		obstacles: obstacles,
	}
	for _, r := range robots {
		r.dispatcher = motionplan.NewDispatcher(cfg.Planner, clk, logger.Sublogger(r.Name))
		r.forget()
	}
	return l, nil
}

// Period returns the time between ticks.
func (l *Loop) Period() time.Duration {
	return l.dt
}

// Robots returns the driven robots.
func (l *Loop) Robots() []*Robot {
	return l.robots
}

// SetObstacles replaces the obstacle set used from the next tick on.
func (l *Loop) SetObstacles(obstacles *spatialmath.ShapeSet) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.obstacles = obstacles
}

// UpdatePlannerOptions swaps the planner options before the next tick. Trajectories already
// being followed are kept and judged against the new thresholds.
func (l *Loop) UpdatePlannerOptions(opts motionplan.PlannerOptions) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pendingOpts = &opts
}

func (l *Loop) snapshot() (*spatialmath.ShapeSet, *motionplan.PlannerOptions) {
	l.mu.Lock()
	defer l.mu.Unlock()
	opts := l.pendingOpts
	l.pendingOpts = nil
	return l.obstacles, opts
}

// Tick runs one step for every robot. Robots whose state, plan or sample fails are stopped for
// the tick and plan from scratch on the next one. The failures are combined into the returned
// error.
func (l *Loop) Tick(ctx context.Context) error {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()

	obstacles, opts := l.snapshot()
	if opts != nil {
		l.cfg.Planner = *opts
		for _, r := range l.robots {
			r.dispatcher.SetOptions(*opts)
		}
		l.logger.Infow("planner options updated", "goal_position_threshold", opts.Replan.GoalPositionThreshold,
			"goal_speed_threshold", opts.Replan.GoalSpeedThreshold)
	}

	var errs []error
	jobs := make([]motionplan.RobotJob, 0, len(l.robots))
	planned := make([]*Robot, 0, len(l.robots))
	states := make([]motiontypes.MotionInstant, 0, len(l.robots))
	for _, r := range l.robots {
		state, err := r.Estimator.State(ctx)
		if err != nil {
			errs = append(errs, l.halt(ctx, r, errors.Wrapf(err, "reading state of robot %q", r.Name)))
			continue
		}
		cmd := r.Commands()
		if cmd == nil {
			cmd = motiontypes.NewEmptyCommand()
		}
		r.rearm(cmd, l.cfg.Planner.Replan.GoalPositionThreshold)
		jobs = append(jobs, motionplan.RobotJob{
			Name:       r.Name,
			Dispatcher: r.dispatcher,
			Request: &motionplan.PlanRequest{
				Start:       state,
				Command:     cmd,
				Constraints: r.Constraints,
				Obstacles:   obstacles,
				PrevPath:    r.prevPath,
			},
			PrevCommand: r.prevCmd,
		})
		planned = append(planned, r)
		states = append(states, state)
	}

	trajectories, planErr := motionplan.PlanAll(ctx, jobs)
	if planErr != nil {
		l.logger.Errorw("planning failed", "error", planErr)
		errs = append(errs, planErr)
	}

	now := l.clk.Now()
	for i, r := range planned {
		traj := trajectories[i]
		if traj == nil {
			errs = append(errs, l.halt(ctx, r, nil))
			continue
		}
		cmd := jobs[i].Request.Command
		r.prevPath = traj
		r.prevCmd = cmd.Clone()

		target, err := trajectory.EvaluateAt(traj, now)
		if err != nil {
			errs = append(errs, l.halt(ctx, r, errors.Wrapf(err, "sampling trajectory of robot %q", r.Name)))
			continue
		}
		if err := r.Actuator.SetTarget(ctx, target); err != nil {
			errs = append(errs, errors.Wrapf(err, "commanding robot %q", r.Name))
			continue
		}
		if err := l.maybeKick(ctx, r, cmd, states[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return multierr.Combine(errs...)
}

// halt stops r for this tick and drops its history. cause, when set, is logged and returned
// along with any error stopping the actuator.
func (l *Loop) halt(ctx context.Context, r *Robot, cause error) error {
	if cause != nil {
		l.logger.Errorw("stopping robot", "robot", r.Name, "error", cause)
	}
	r.forget()
	if err := r.Actuator.Stop(ctx); err != nil {
		return multierr.Combine(cause, errors.Wrapf(err, "stopping robot %q", r.Name))
	}
	return cause
}

// maybeKick fires the kicker when the robot gets close to a line kick target, once until the
// latch is released by rearm.
func (l *Loop) maybeKick(ctx context.Context, r *Robot, cmd motiontypes.Command, state motiontypes.MotionInstant) error {
	kick, ok := cmd.(motiontypes.LineKickCommand)
	if !ok || r.Kicker == nil || r.kicked {
		return nil
	}
	if spatialmath.Distance(state.Pos, kick.Target) > l.cfg.KickDistance {
		return nil
	}
	r.kicked = true
	r.kickTarget = kick.Target
	l.logger.Infow("kicking", "robot", r.Name, "target", kick.Target)
	return errors.Wrapf(r.Kicker.Kick(ctx), "kicking with robot %q", r.Name)
}

// Start runs Tick in the background on every period until Stop is called.
func (l *Loop) Start() error {
	l.runMu.Lock()
	defer l.runMu.Unlock()
	if l.running {
		return errors.New("control loop already running")
	}
	l.logger.Infof("running loop at %.1f Hz (%v)", l.cfg.Frequency, l.dt)
	l.cancelCtx, l.cancel = context.WithCancel(context.Background())
	l.ticker = l.clk.Ticker(l.dt)

	waitCh := make(chan struct{})
	l.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		ticker := l.ticker
		close(waitCh)
		for {
			select {
			case <-l.cancelCtx.Done():
				return
			case <-ticker.C:
			}
			if err := l.Tick(l.cancelCtx); err != nil && l.cancelCtx.Err() == nil {
				l.logger.Errorw("tick failed", "error", err)
			}
		}
	}, l.activeBackgroundWorkers.Done)
	<-waitCh
	l.running = true
	return nil
}

// Stop stops the background loop and every actuator.
func (l *Loop) Stop(ctx context.Context) error {
	l.runMu.Lock()
	defer l.runMu.Unlock()
	if !l.running {
		return nil
	}
	l.logger.Info("closing loop")
	l.ticker.Stop()
	l.cancel()
	l.activeBackgroundWorkers.Wait()
	l.running = false

	var errs []error
	for _, r := range l.robots {
		errs = append(errs, errors.Wrapf(r.Actuator.Stop(ctx), "stopping robot %q", r.Name))
	}
	return multierr.Combine(errs...)
}

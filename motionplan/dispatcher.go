package motionplan

import (
	"context"

	"github.com/benbjohnson/clock"

	"go.viam.com/soccer/logging"
	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/motionplan/trajectory"
)

// Dispatcher owns one planner per command variant for a single robot and routes each request
// to the planner matching its command.
type Dispatcher struct {
	clk      clock.Clock
	logger   logging.Logger
	opts     PlannerOptions
	planners map[motiontypes.CommandType]SingleRobotPlanner
}

// NewDispatcher returns a Dispatcher whose planners share opts.
func NewDispatcher(opts PlannerOptions, clk clock.Clock, logger logging.Logger) *Dispatcher {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.NewBlankLogger("motionplan")
	}
	d := &Dispatcher{clk: clk, logger: logger}
	d.SetOptions(opts)
	return d
}

// SetOptions rebuilds every planner with opts. It must not be called concurrently with Plan.
func (d *Dispatcher) SetOptions(opts PlannerOptions) {
	d.opts = opts
	d.planners = make(map[motiontypes.CommandType]SingleRobotPlanner, len(registeredPlanners))
	for ct, constructor := range registeredPlanners {
		d.planners[ct] = constructor(opts, d.clk, d.logger)
	}
}

// Options returns the options the planners were built with.
func (d *Dispatcher) Options() PlannerOptions {
	return d.opts
}

// Planner returns the planner handling ct.
func (d *Dispatcher) Planner(ct motiontypes.CommandType) (SingleRobotPlanner, bool) {
	p, ok := d.planners[ct]
	return p, ok
}

// Plan runs the planner for req.Command. prevCmd is the command the previous trajectory was
// planned for. When it is nil or of another variant the previous trajectory is dropped, since a
// new kind of intent supersedes it. A nil command requests no motion. req is not modified.
func (d *Dispatcher) Plan(ctx context.Context, req *PlanRequest, prevCmd motiontypes.Command) (trajectory.Trajectory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := *req
	if r.Command == nil {
		r.Command = motiontypes.NewEmptyCommand()
	}
	if prevCmd == nil || prevCmd.Type() != r.Command.Type() {
		r.PrevPath = nil
	}
	planner, ok := d.planners[r.Command.Type()]
	if !ok {
		return nil, newNoPlannerError(r.Command.Type())
	}
	return planner.Run(&r)
}

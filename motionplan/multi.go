package motionplan

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"go.viam.com/soccer/motionplan/motiontypes"
	"go.viam.com/soccer/motionplan/trajectory"
)

// RobotJob is one robot's share of a multi robot planning round.
type RobotJob struct {
	Name        string
	Dispatcher  *Dispatcher
	Request     *PlanRequest
	PrevCommand motiontypes.Command
}

// PlanAll plans every job concurrently. Jobs share nothing but the read only obstacle set, and
// each must have its own Dispatcher. A failing job leaves a nil trajectory at its index and does
// not stop the others; the failures are combined into the returned error.
func PlanAll(ctx context.Context, jobs []RobotJob) ([]trajectory.Trajectory, error) {
	trajectories := make([]trajectory.Trajectory, len(jobs))
	jobErrs := make([]error, len(jobs))

	var g errgroup.Group
	for i := range jobs {
		job := jobs[i]
		g.Go(func() error {
			traj, err := job.Dispatcher.Plan(ctx, job.Request, job.PrevCommand)
			if err != nil {
				jobErrs[i] = errors.Wrapf(err, "planning robot %q", job.Name)
				return nil
			}
			trajectories[i] = traj
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trajectories, multierr.Combine(jobErrs...)
}

package motionplan

import (
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/soccer/motionplan/motiontypes"
)

// CommandMismatchError is returned when a planner is run with a command of a variant it does not
// handle. It signals a wiring bug in the caller.
type CommandMismatchError struct {
	Expected motiontypes.CommandType
	Got      motiontypes.CommandType
}

// NewCommandMismatchError returns a CommandMismatchError for a planner expecting expected.
func NewCommandMismatchError(expected motiontypes.CommandType, got motiontypes.Command) error {
	e := &CommandMismatchError{Expected: expected, Got: motiontypes.None}
	if got != nil {
		e.Got = got.Type()
	}
	return e
}

func (e *CommandMismatchError) Error() string {
	return fmt.Sprintf("%v planner cannot run a %v command", e.Expected, e.Got)
}

// NewPlannerFailedError is returned when the path search cannot connect start and goal.
func NewPlannerFailedError() error {
	return errors.New("motion planner failed to find path")
}

func newNoPlannerError(ct motiontypes.CommandType) error {
	return errors.Errorf("no planner registered for %v commands", ct)
}

var errStartInCollision = errors.New("start position is inside an obstacle")

var errGoalInCollision = errors.New("goal position is inside an obstacle")

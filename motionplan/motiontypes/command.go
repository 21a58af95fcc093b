package motiontypes

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// CommandType identifies the variant of a Command.
type CommandType int

// The closed set of motion command variants.
const (
	None CommandType = iota
	PathTarget
	DirectPathTarget
	WorldVel
	Pivot
	LineKick
)

// CommandTypes lists every variant in declaration order.
var CommandTypes = []CommandType{None, PathTarget, DirectPathTarget, WorldVel, Pivot, LineKick}

func (ct CommandType) String() string {
	switch ct {
	case None:
		return "None"
	case PathTarget:
		return "PathTarget"
	case DirectPathTarget:
		return "DirectPathTarget"
	case WorldVel:
		return "WorldVel"
	case Pivot:
		return "Pivot"
	case LineKick:
		return "LineKick"
	default:
		return fmt.Sprintf("CommandType(%d)", int(ct))
	}
}

// Command is a motion intent. Only the variants defined in this package implement it, and each
// reports a fixed Type.
type Command interface {
	Type() CommandType
	// Clone returns an independent copy of the command.
	Clone() Command
	isCommand()
}

// EmptyCommand requests no motion.
type EmptyCommand struct{}

// NewEmptyCommand returns a command requesting no motion.
func NewEmptyCommand() EmptyCommand { return EmptyCommand{} }

// Type returns None.
func (EmptyCommand) Type() CommandType { return None }

// Clone returns a copy of the command.
func (c EmptyCommand) Clone() Command { return c }

func (EmptyCommand) isCommand() {}

func (EmptyCommand) String() string { return "None" }

// PathTargetCommand requests reaching Goal while avoiding obstacles.
type PathTargetCommand struct {
	Goal MotionInstant
}

// NewPathTargetCommand returns a command to reach goal around obstacles.
func NewPathTargetCommand(goal MotionInstant) PathTargetCommand {
	return PathTargetCommand{Goal: goal}
}

// Type returns PathTarget.
func (PathTargetCommand) Type() CommandType { return PathTarget }

// Clone returns a copy of the command.
func (c PathTargetCommand) Clone() Command { return c }

func (PathTargetCommand) isCommand() {}

func (c PathTargetCommand) String() string { return fmt.Sprintf("PathTarget{%v}", c.Goal) }

// DirectPathTargetCommand requests reaching Goal along a straight line, ignoring obstacles.
type DirectPathTargetCommand struct {
	Goal MotionInstant
}

// NewDirectPathTargetCommand returns a command to reach goal in a straight line.
func NewDirectPathTargetCommand(goal MotionInstant) DirectPathTargetCommand {
	return DirectPathTargetCommand{Goal: goal}
}

// Type returns DirectPathTarget.
func (DirectPathTargetCommand) Type() CommandType { return DirectPathTarget }

// Clone returns a copy of the command.
func (c DirectPathTargetCommand) Clone() Command { return c }

func (DirectPathTargetCommand) isCommand() {}

func (c DirectPathTargetCommand) String() string { return fmt.Sprintf("DirectPathTarget{%v}", c.Goal) }

// WorldVelCommand requests holding a world frame velocity indefinitely.
type WorldVelCommand struct {
	Vel r2.Point
}

// NewWorldVelCommand returns a command holding vel.
func NewWorldVelCommand(vel r2.Point) WorldVelCommand {
	return WorldVelCommand{Vel: vel}
}

// Type returns WorldVel.
func (WorldVelCommand) Type() CommandType { return WorldVel }

// Clone returns a copy of the command.
func (c WorldVelCommand) Clone() Command { return c }

func (WorldVelCommand) isCommand() {}

func (c WorldVelCommand) String() string {
	return fmt.Sprintf("WorldVel{(%.3f, %.3f)}", c.Vel.X, c.Vel.Y)
}

// PivotCommand requests circling PivotPoint at Radius until facing Target through it.
type PivotCommand struct {
	PivotPoint r2.Point
	Target     r2.Point
	Radius     float64
}

// NewPivotCommand returns a command pivoting about pivotPoint toward target.
func NewPivotCommand(pivotPoint, target r2.Point, radius float64) PivotCommand {
	return PivotCommand{PivotPoint: pivotPoint, Target: target, Radius: radius}
}

// Type returns Pivot.
func (PivotCommand) Type() CommandType { return Pivot }

// Clone returns a copy of the command.
func (c PivotCommand) Clone() Command { return c }

func (PivotCommand) isCommand() {}

func (c PivotCommand) String() string {
	return fmt.Sprintf("Pivot{pivot (%.3f, %.3f) target (%.3f, %.3f) radius %.3f}",
		c.PivotPoint.X, c.PivotPoint.Y, c.Target.X, c.Target.Y, c.Radius)
}

// LineKickCommand requests approaching and striking through Target.
type LineKickCommand struct {
	Target r2.Point
}

// NewLineKickCommand returns a command to strike through target.
func NewLineKickCommand(target r2.Point) LineKickCommand {
	return LineKickCommand{Target: target}
}

// Type returns LineKick.
func (LineKickCommand) Type() CommandType { return LineKick }

// Clone returns a copy of the command.
func (c LineKickCommand) Clone() Command { return c }

func (LineKickCommand) isCommand() {}

func (c LineKickCommand) String() string {
	return fmt.Sprintf("LineKick{(%.3f, %.3f)}", c.Target.X, c.Target.Y)
}

// CommandGoal returns the goal instant of a command that has one.
func CommandGoal(cmd Command) (MotionInstant, bool) {
	switch c := cmd.(type) {
	case PathTargetCommand:
		return c.Goal, true
	case DirectPathTargetCommand:
		return c.Goal, true
	case LineKickCommand:
		return NewMotionInstant(c.Target, r2.Point{}), true
	default:
		return MotionInstant{}, false
	}
}

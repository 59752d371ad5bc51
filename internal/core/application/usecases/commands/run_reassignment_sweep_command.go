package commands

import (
	"errors"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrRunReassignmentSweepCommandIsNotConstructed = errors.New(
	"RunReassignmentSweepCommand must be created via NewRunReassignmentSweepCommand constructor",
)

// RunReassignmentSweepCommand processes up to batchSize stale assignments.
type RunReassignmentSweepCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

// NewRunReassignmentSweepCommand creates the command. batchSize must be positive.
func NewRunReassignmentSweepCommand(batchSize int) (RunReassignmentSweepCommand, error) {
	if batchSize <= 0 {
		return RunReassignmentSweepCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "unbounded")
	}
	return RunReassignmentSweepCommand{batchSize: batchSize, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRunReassignmentSweepCommandIsNotConstructed if validation fails.
func (c RunReassignmentSweepCommand) Validate() error {
	return c.guard.Validate(ErrRunReassignmentSweepCommandIsNotConstructed)
}

// BatchSize returns the maximum number of stale jobs one sweep handles.
func (c RunReassignmentSweepCommand) BatchSize() int {
	return c.batchSize
}

package commands

import (
	"errors"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrAssignPendingJobsCommandIsNotConstructed = errors.New(
	"AssignPendingJobsCommand must be created via NewAssignPendingJobsCommand constructor",
)

// AssignPendingJobsCommand picks up direct-dispatch jobs that are waiting for a
// contractor, including jobs the sweep could not hand to anybody else.
type AssignPendingJobsCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

// NewAssignPendingJobsCommand creates the command. batchSize bounds how many waiting jobs
// one run looks at and must be positive.
func NewAssignPendingJobsCommand(batchSize int) (AssignPendingJobsCommand, error) {
	if batchSize <= 0 {
		return AssignPendingJobsCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "unbounded")
	}
	return AssignPendingJobsCommand{batchSize: batchSize, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c AssignPendingJobsCommand) Validate() error {
	return c.guard.Validate(ErrAssignPendingJobsCommandIsNotConstructed)
}

// BatchSize returns the maximum number of jobs handled per run.
func (c AssignPendingJobsCommand) BatchSize() int {
	return c.batchSize
}

package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAssignJobCommandIsNotConstructed = errors.New(
	"AssignJobCommand must be created via NewAssignJobCommand constructor",
)

// AssignJobCommand asks the selector to pick a contractor for a new direct-dispatch job.
//
// Example:
//
//	cmd, _ := NewAssignJobCommand(jobID)
//	assignment, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrNoCandidate) {
//	    // nobody can take the job right now
//	}
type AssignJobCommand struct {
	jobID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignJobCommand creates the command. Returns an error when jobID is not a valid UUID.
func NewAssignJobCommand(jobID kernel.UUID) (AssignJobCommand, error) {
	if err := jobID.Validate(); err != nil {
		return AssignJobCommand{}, err
	}
	return AssignJobCommand{jobID: jobID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAssignJobCommandIsNotConstructed if validation fails.
func (c AssignJobCommand) Validate() error {
	return c.guard.Validate(ErrAssignJobCommandIsNotConstructed)
}

// JobID returns the job to place.
func (c AssignJobCommand) JobID() kernel.UUID {
	return c.jobID
}

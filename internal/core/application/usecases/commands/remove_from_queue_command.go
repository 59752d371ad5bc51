package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRemoveFromQueueCommandIsNotConstructed = errors.New(
	"RemoveFromQueueCommand must be created via NewRemoveFromQueueCommand constructor",
)

// RemoveFromQueueCommand takes a job out of whichever queue holds it.
//
// Example:
//
//	cmd, _ := NewRemoveFromQueueCommand(jobID)
//	removed, err := handler.Handle(ctx, cmd)
//	if err == nil && !removed {
//	    // the job was never queued
//	}
type RemoveFromQueueCommand struct {
	jobID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRemoveFromQueueCommand creates the command. The job id must be a valid UUID.
func NewRemoveFromQueueCommand(jobID kernel.UUID) (RemoveFromQueueCommand, error) {
	if err := jobID.Validate(); err != nil {
		return RemoveFromQueueCommand{}, err
	}
	return RemoveFromQueueCommand{jobID: jobID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRemoveFromQueueCommandIsNotConstructed if validation fails.
func (c RemoveFromQueueCommand) Validate() error {
	return c.guard.Validate(ErrRemoveFromQueueCommandIsNotConstructed)
}

// JobID returns the job to remove.
func (c RemoveFromQueueCommand) JobID() kernel.UUID {
	return c.jobID
}

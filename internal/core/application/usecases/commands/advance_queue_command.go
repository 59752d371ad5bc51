package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAdvanceQueueCommandIsNotConstructed = errors.New(
	"AdvanceQueueCommand must be created via NewAdvanceQueueCommand constructor",
)

// AdvanceQueueCommand completes the contractor's current job and moves the queue forward.
type AdvanceQueueCommand struct {
	contractorID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAdvanceQueueCommand creates the command for one contractor's queue.
func NewAdvanceQueueCommand(contractorID kernel.UUID) (AdvanceQueueCommand, error) {
	if err := contractorID.Validate(); err != nil {
		return AdvanceQueueCommand{}, err
	}
	return AdvanceQueueCommand{contractorID: contractorID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c AdvanceQueueCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceQueueCommandIsNotConstructed)
}

// ContractorID returns the owner of the queue to advance.
func (c AdvanceQueueCommand) ContractorID() kernel.UUID {
	return c.contractorID
}

package commands

import (
	"errors"
	"slices"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrReorderQueueCommandIsNotConstructed = errors.New(
	"ReorderQueueCommand must be created via NewReorderQueueCommand constructor",
)

// ReorderQueueCommand gives the listed queued jobs positions 2..N+1 in the listed order.
type ReorderQueueCommand struct {
	contractorID kernel.UUID
	jobIDs       []kernel.UUID

	guard guard.ConstructorGuard
}

// NewReorderQueueCommand requires at least one job id. Duplicates are caught when the
// queue applies the order.
func NewReorderQueueCommand(contractorID kernel.UUID, jobIDs []kernel.UUID) (ReorderQueueCommand, error) {
	var listErr error
	if len(jobIDs) == 0 {
		listErr = errs.NewValueIsRequiredError("jobIds")
	}
	for _, id := range jobIDs {
		if err := id.Validate(); err != nil {
			listErr = errors.Join(listErr, err)
		}
	}
	if err := errors.Join(contractorID.Validate(), listErr); err != nil {
		return ReorderQueueCommand{}, err
	}

	return ReorderQueueCommand{
		contractorID: contractorID,
		jobIDs:       slices.Clone(jobIDs),
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ReorderQueueCommand) Validate() error {
	return c.guard.Validate(ErrReorderQueueCommandIsNotConstructed)
}

func (c ReorderQueueCommand) ContractorID() kernel.UUID { return c.contractorID }
func (c ReorderQueueCommand) JobIDs() []kernel.UUID     { return slices.Clone(c.jobIDs) }

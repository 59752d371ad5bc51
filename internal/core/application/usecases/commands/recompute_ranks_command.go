package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRecomputeRanksCommandIsNotConstructed = errors.New(
	"RecomputeRanksCommand must be created via NewRecomputeRanksCommand constructor",
)

// RecomputeRanksCommand asks for the pending bids of a job to be ranked again.
type RecomputeRanksCommand struct {
	jobID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRecomputeRanksCommand creates the command for one job.
func NewRecomputeRanksCommand(jobID kernel.UUID) (RecomputeRanksCommand, error) {
	if err := jobID.Validate(); err != nil {
		return RecomputeRanksCommand{}, err
	}
	return RecomputeRanksCommand{jobID: jobID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c RecomputeRanksCommand) Validate() error {
	return c.guard.Validate(ErrRecomputeRanksCommandIsNotConstructed)
}

// JobID returns the job whose bids are ranked.
func (c RecomputeRanksCommand) JobID() kernel.UUID {
	return c.jobID
}

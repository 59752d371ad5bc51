package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAutoAcceptLowestBidCommandIsNotConstructed = errors.New(
	"AutoAcceptLowestBidCommand must be created via NewAutoAcceptLowestBidCommand constructor",
)

// AutoAcceptLowestBidCommand settles a bidding job by taking its cheapest pending bid.
// It is sent by the bidding-close job once the deadline passes, or by the customer.
type AutoAcceptLowestBidCommand struct {
	jobID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAutoAcceptLowestBidCommand creates the command for one bidding job.
func NewAutoAcceptLowestBidCommand(jobID kernel.UUID) (AutoAcceptLowestBidCommand, error) {
	if err := jobID.Validate(); err != nil {
		return AutoAcceptLowestBidCommand{}, err
	}
	return AutoAcceptLowestBidCommand{jobID: jobID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c AutoAcceptLowestBidCommand) Validate() error {
	return c.guard.Validate(ErrAutoAcceptLowestBidCommandIsNotConstructed)
}

// JobID returns the bidding job to settle.
func (c AutoAcceptLowestBidCommand) JobID() kernel.UUID {
	return c.jobID
}

package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRejectBidCommandIsNotConstructed = errors.New(
	"RejectBidCommand must be created via NewRejectBidCommand constructor",
)

// RejectBidCommand is the customer turning down one pending bid.
type RejectBidCommand struct {
	bidID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRejectBidCommand creates the command. The bid id must be a valid UUID.
func NewRejectBidCommand(bidID kernel.UUID) (RejectBidCommand, error) {
	if err := bidID.Validate(); err != nil {
		return RejectBidCommand{}, err
	}
	return RejectBidCommand{bidID: bidID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c RejectBidCommand) Validate() error {
	return c.guard.Validate(ErrRejectBidCommandIsNotConstructed)
}

// BidID returns the bid to reject.
func (c RejectBidCommand) BidID() kernel.UUID {
	return c.bidID
}

package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateBidCommandIsNotConstructed = errors.New(
	"UpdateBidCommand must be created via NewUpdateBidCommand constructor",
)

// UpdateBidCommand replaces the offer of a pending bid.
type UpdateBidCommand struct {
	bidID kernel.UUID
	bidOffer

	guard guard.ConstructorGuard
}

// NewUpdateBidCommand validates the new offer with the rules used for submitting one.
func NewUpdateBidCommand(bidID kernel.UUID, amountCents int64, estimatedDuration *time.Duration, message string) (UpdateBidCommand, error) {
	offer, offerErr := newBidOffer(amountCents, estimatedDuration, message)
	if err := errors.Join(bidID.Validate(), offerErr); err != nil {
		return UpdateBidCommand{}, err
	}
	return UpdateBidCommand{bidID: bidID, bidOffer: offer, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateBidCommand) Validate() error {
	return c.guard.Validate(ErrUpdateBidCommandIsNotConstructed)
}

// BidID returns the bid being changed.
func (c UpdateBidCommand) BidID() kernel.UUID {
	return c.bidID
}

package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCounterBidCommandIsNotConstructed = errors.New(
	"CounterBidCommand must be created via NewCounterBidCommand constructor",
)

// CounterBidCommand answers a pending bid with a different offer on behalf of the customer.
type CounterBidCommand struct {
	bidID kernel.UUID
	bidOffer

	guard guard.ConstructorGuard
}

// NewCounterBidCommand validates the counter-offer the same way a new bid is validated:
// the amount must be positive, a duration must be positive when given and the message
// is bounded in length.
func NewCounterBidCommand(bidID kernel.UUID, amountCents int64, estimatedDuration *time.Duration, message string) (CounterBidCommand, error) {
	offer, offerErr := newBidOffer(amountCents, estimatedDuration, message)
	if err := errors.Join(bidID.Validate(), offerErr); err != nil {
		return CounterBidCommand{}, err
	}
	return CounterBidCommand{bidID: bidID, bidOffer: offer, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c CounterBidCommand) Validate() error {
	return c.guard.Validate(ErrCounterBidCommandIsNotConstructed)
}

// BidID returns the bid being countered.
func (c CounterBidCommand) BidID() kernel.UUID {
	return c.bidID
}

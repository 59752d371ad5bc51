package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAcceptBidCommandIsNotConstructed = errors.New(
	"AcceptBidCommand must be created via NewAcceptBidCommand constructor",
)

// AcceptBidCommand is the customer's choice of a winning bid. Only a pending bid on a job
// that is still new and unbound can be accepted.
//
// Example:
//
//	cmd, err := NewAcceptBidCommand(bidID)
//	if err != nil {
//	    return err
//	}
//	entry, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrInvalidState) {
//	    // bid is not pending or the job is no longer open
//	}
//	fmt.Printf("job %s is at position %d", entry.JobID(), entry.Position())
type AcceptBidCommand struct {
	bidID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAcceptBidCommand creates the command. The bid id must be a valid UUID.
func NewAcceptBidCommand(bidID kernel.UUID) (AcceptBidCommand, error) {
	if err := bidID.Validate(); err != nil {
		return AcceptBidCommand{}, err
	}
	return AcceptBidCommand{bidID: bidID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAcceptBidCommandIsNotConstructed if validation fails.
func (c AcceptBidCommand) Validate() error {
	return c.guard.Validate(ErrAcceptBidCommandIsNotConstructed)
}

// BidID returns the bid being accepted.
func (c AcceptBidCommand) BidID() kernel.UUID {
	return c.bidID
}

package commands

import (
	"errors"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCloseExpiredBiddingCommandIsNotConstructed = errors.New(
	"CloseExpiredBiddingCommand must be created via NewCloseExpiredBiddingCommand constructor",
)

// CloseExpiredBiddingCommand settles bidding jobs whose deadline has passed.
type CloseExpiredBiddingCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

// NewCloseExpiredBiddingCommand creates the command. batchSize must be positive.
func NewCloseExpiredBiddingCommand(batchSize int) (CloseExpiredBiddingCommand, error) {
	if batchSize <= 0 {
		return CloseExpiredBiddingCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "unbounded")
	}
	return CloseExpiredBiddingCommand{batchSize: batchSize, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c CloseExpiredBiddingCommand) Validate() error {
	return c.guard.Validate(ErrCloseExpiredBiddingCommandIsNotConstructed)
}

// BatchSize returns how many expired jobs one run settles at most.
func (c CloseExpiredBiddingCommand) BatchSize() int {
	return c.batchSize
}

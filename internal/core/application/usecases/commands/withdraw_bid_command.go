package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrWithdrawBidCommandIsNotConstructed = errors.New(
	"WithdrawBidCommand must be created via NewWithdrawBidCommand constructor",
)

// WithdrawBidCommand is issued by the contractor who placed the bid.
type WithdrawBidCommand struct {
	bidID        kernel.UUID
	contractorID kernel.UUID

	guard guard.ConstructorGuard
}

// NewWithdrawBidCommand validates both ids.
func NewWithdrawBidCommand(bidID, contractorID kernel.UUID) (WithdrawBidCommand, error) {
	var bidErr, contractorErr error
	if err := bidID.Validate(); err != nil {
		bidErr = errs.NewValueIsRequiredErrorWithCause("bidId", err)
	}
	if err := contractorID.Validate(); err != nil {
		contractorErr = errs.NewValueIsRequiredErrorWithCause("contractorId", err)
	}
	if err := errors.Join(bidErr, contractorErr); err != nil {
		return WithdrawBidCommand{}, err
	}
	return WithdrawBidCommand{bidID: bidID, contractorID: contractorID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c WithdrawBidCommand) Validate() error {
	return c.guard.Validate(ErrWithdrawBidCommandIsNotConstructed)
}

func (c WithdrawBidCommand) BidID() kernel.UUID        { return c.bidID }
func (c WithdrawBidCommand) ContractorID() kernel.UUID { return c.contractorID }

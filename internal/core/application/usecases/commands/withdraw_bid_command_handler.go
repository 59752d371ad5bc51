package commands

import (
	"context"

	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// WithdrawBidCommandHandler lets a contractor take back a pending bid.
//
// Only the contractor who placed the bid may withdraw it. The remaining pending bids are
// re-ranked in the same unit of work.
//
// Example:
//
//	handler := NewWithdrawBidCommandHandler(uowFactory, ports.SystemClock{})
//	cmd, _ := NewWithdrawBidCommand(bidID, contractorID)
//	withdrawn, err := handler.Handle(ctx, cmd)
type WithdrawBidCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

// NewWithdrawBidCommandHandler creates the handler.
func NewWithdrawBidCommandHandler(uowFactory UoWFactory, clock ports.Clock) WithdrawBidCommandHandler {
	return WithdrawBidCommandHandler{uowFactory: uowFactory, clock: clock}
}

// Handle withdraws a pending bid on behalf of its contractor and re-ranks the job.
func (h WithdrawBidCommandHandler) Handle(ctx context.Context, cmd WithdrawBidCommand) (*bid.Bid, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	_, bids, b, err := lockBidJob(ctx, uow, cmd.BidID())
	if err != nil {
		return nil, err
	}
	if !b.ContractorID().IsEqual(cmd.ContractorID()) {
		return nil, errs.NewInvalidStateError("bid", "only the bidding contractor can withdraw the bid")
	}
	if err = b.Withdraw(h.clock.Now()); err != nil {
		return nil, err
	}
	if err = rerank(ctx, uow, bids); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

package commands

import (
	"context"

	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// UpdateBidCommandHandler lets a contractor change a pending offer.
//
// Example:
//
//	eta := 90 * time.Minute
//	cmd, err := NewUpdateBidCommand(bidID, 11500, &eta, "can start tomorrow")
//	if err != nil {
//		return err
//	}
//	updated, err := NewUpdateBidCommandHandler(uowFactory, clock).Handle(ctx, cmd)
type UpdateBidCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

// NewUpdateBidCommandHandler creates the handler.
func NewUpdateBidCommandHandler(uowFactory UoWFactory, clock ports.Clock) UpdateBidCommandHandler {
	return UpdateBidCommandHandler{uowFactory: uowFactory, clock: clock}
}

// Handle changes a pending bid while its job still accepts bids and re-ranks the job.
func (h UpdateBidCommandHandler) Handle(ctx context.Context, cmd UpdateBidCommand) (*bid.Bid, error) {
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

	now := h.clock.Now()

	j, bids, b, err := lockBidJob(ctx, uow, cmd.BidID())
	if err != nil {
		return nil, err
	}
	if !j.AcceptsBids(now) {
		return nil, errs.NewInvalidStateError("job", "job is not accepting bids")
	}
	if err = b.Update(cmd.Amount(), cmd.EstimatedDuration(), cmd.Message(), now); err != nil {
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

package commands

import (
	"context"

	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/ports"
)

// RejectBidCommandHandler turns down a pending bid and re-ranks the remaining ones.
//
// The contractor is notified after commit.
//
// Example:
//
//	cmd, _ := NewRejectBidCommand(bidID)
//	rejected, err := NewRejectBidCommandHandler(uowFactory, clock, notifier).Handle(ctx, cmd)
type RejectBidCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	notifier   ports.Notifier
}

// NewRejectBidCommandHandler creates the handler with its clock and notifier.
func NewRejectBidCommandHandler(uowFactory UoWFactory, clock ports.Clock, notifier ports.Notifier) RejectBidCommandHandler {
	return RejectBidCommandHandler{uowFactory: uowFactory, clock: clock, notifier: notifier}
}

// Handle returns ErrInvalidState when the bid is no longer pending. The contractor is
// notified after commit.
func (h RejectBidCommandHandler) Handle(ctx context.Context, cmd RejectBidCommand) (*bid.Bid, error) {
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

	var out outbox

	j, bids, b, err := lockBidJob(ctx, uow, cmd.BidID())
	if err != nil {
		return nil, err
	}
	if err = b.Reject(h.clock.Now()); err != nil {
		return nil, err
	}
	if err = rerank(ctx, uow, bids); err != nil {
		return nil, err
	}
	out.add(b.ContractorID(), ports.EventBidRejected, map[string]any{
		"jobId": j.ID().String(),
		"bidId": b.ID().String(),
	})

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	out.flush(ctx, h.notifier)
	return b, nil
}

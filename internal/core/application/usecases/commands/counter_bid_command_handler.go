package commands

import (
	"context"

	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// CounterBidCommandHandler marks the original bid countered and stores a pending
// counter-offer for the same contractor. The contractor is told about the new terms.
//
// Example:
//
//	cmd, err := NewCounterBidCommand(bidID, 9900, nil, "we can offer 99.00")
//	if err != nil {
//		return err
//	}
//	counter, err := handler.Handle(ctx, cmd)
//	// counter.OriginalBidID() points at bidID
type CounterBidCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	notifier   ports.Notifier
}

// NewCounterBidCommandHandler creates the handler with its clock and notifier.
func NewCounterBidCommandHandler(uowFactory UoWFactory, clock ports.Clock, notifier ports.Notifier) CounterBidCommandHandler {
	return CounterBidCommandHandler{uowFactory: uowFactory, clock: clock, notifier: notifier}
}

// Handle returns the new pending counter-offer. The job must still accept bids and the
// original bid must be pending, otherwise ErrInvalidState is returned.
func (h CounterBidCommandHandler) Handle(ctx context.Context, cmd CounterBidCommand) (*bid.Bid, error) {
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
	var out outbox

	j, bids, original, err := lockBidJob(ctx, uow, cmd.BidID())
	if err != nil {
		return nil, err
	}
	if !j.CanAwardBid() {
		return nil, errs.NewInvalidStateError("job", "job is no longer open for bidding")
	}

	counter, err := original.Counter(kernel.NewUUID(), cmd.Amount(), cmd.EstimatedDuration(), cmd.Message(), now)
	if err != nil {
		return nil, err
	}
	if err = uow.BidRepository().Add(ctx, counter); err != nil {
		return nil, err
	}
	if err = rerank(ctx, uow, append(bids, counter)); err != nil {
		return nil, err
	}

	out.add(counter.ContractorID(), ports.EventBidCountered, map[string]any{
		"jobId":         j.ID().String(),
		"bidId":         counter.ID().String(),
		"originalBidId": original.ID().String(),
		"amount":        counter.Amount().String(),
	})

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	out.flush(ctx, h.notifier)
	return counter, nil
}

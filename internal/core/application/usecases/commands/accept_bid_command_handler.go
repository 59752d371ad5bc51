package commands

import (
	"context"

	"dispatch/internal/core/domain/model/queue"
	"dispatch/internal/core/ports"
)

// AcceptBidCommandHandler accepts one bid, rejects every other pending bid of the job and
// enqueues the job to the winning contractor at the bid amount, all in one unit of work.
// Accepting a bid on a job that is no longer open fails with ErrInvalidState.
//
// Example:
//
//	cmd, _ := NewAcceptBidCommand(bidID)
//	entry, err := NewAcceptBidCommandHandler(uowFactory, clock, notifier).Handle(ctx, cmd)
//	if err != nil {
//		return err
//	}
//	// entry.Status() is Current when the winner was free, Queued otherwise
type AcceptBidCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	notifier   ports.Notifier
}

// NewAcceptBidCommandHandler creates the handler. Notifications go out through notifier
// once the unit of work has committed.
func NewAcceptBidCommandHandler(uowFactory UoWFactory, clock ports.Clock, notifier ports.Notifier) AcceptBidCommandHandler {
	return AcceptBidCommandHandler{uowFactory: uowFactory, clock: clock, notifier: notifier}
}

// Handle locks the job before its bids, awards the chosen bid and places the job in the
// winner's queue. The returned entry is current when the winner was idle and queued
// otherwise; in the second case the job stays new and reserved for the winner until
// the entry is promoted.
func (h AcceptBidCommandHandler) Handle(ctx context.Context, cmd AcceptBidCommand) (*queue.Entry, error) {
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
	entry, err := awardBid(ctx, uow, j, bids, b, h.clock.Now(), &out)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	out.flush(ctx, h.notifier)
	return entry, nil
}

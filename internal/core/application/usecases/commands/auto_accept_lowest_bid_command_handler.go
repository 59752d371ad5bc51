package commands

import (
	"context"

	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// AutoAcceptLowestBidCommandHandler accepts the cheapest pending bid of a job whose
// policy is "lowest". It returns nil without error when the job is not eligible, has no
// pending bids or the cheapest bid is above the reserve price.
//
// Example:
//
//	cmd, _ := NewAutoAcceptLowestBidCommand(jobID)
//	winner, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return err
//	}
//	if winner == nil {
//	    log.Println("nothing accepted")
//	}
type AutoAcceptLowestBidCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	notifier   ports.Notifier
}

// NewAutoAcceptLowestBidCommandHandler creates the handler.
func NewAutoAcceptLowestBidCommandHandler(
	uowFactory UoWFactory,
	clock ports.Clock,
	notifier ports.Notifier,
) AutoAcceptLowestBidCommandHandler {
	return AutoAcceptLowestBidCommandHandler{uowFactory: uowFactory, clock: clock, notifier: notifier}
}

// Handle re-ranks the pending bids, picks price rank 1 and awards it the same way a
// customer acceptance does.
func (h AutoAcceptLowestBidCommandHandler) Handle(ctx context.Context, cmd AutoAcceptLowestBidCommand) (*bid.Bid, error) {
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

	j, err := uow.JobRepository().GetForUpdate(ctx, cmd.JobID())
	if err != nil {
		return nil, err
	}
	if j.AutoAcceptPolicy() != job.AutoAcceptLowest || !j.CanAwardBid() {
		return nil, nil
	}

	bids, err := uow.BidRepository().ListByJob(ctx, j.ID())
	if err != nil {
		return nil, err
	}
	ranker := services.NewBidRanker()
	if err = ranker.Rank(bids); err != nil {
		return nil, err
	}
	winner := ranker.Lowest(bids)
	if winner == nil || aboveReserve(winner.Amount(), j.ReservePrice()) {
		return nil, nil
	}

	if _, err = awardBid(ctx, uow, j, bids, winner, h.clock.Now(), &out); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	out.flush(ctx, h.notifier)
	return winner, nil
}

// aboveReserve reports whether amount exceeds an optional reserve price.
func aboveReserve(amount kernel.Money, reserve *kernel.Money) bool {
	return reserve != nil && amount.Compare(*reserve) > 0
}

package commands

import (
	"context"

	"dispatch/internal/core/domain/model/bid"
)

// RecomputeRanksCommandHandler re-ranks the pending bids of a job and returns all its bids.
type RecomputeRanksCommandHandler struct {
	uowFactory UoWFactory
}

// NewRecomputeRanksCommandHandler creates the handler.
func NewRecomputeRanksCommandHandler(uowFactory UoWFactory) RecomputeRanksCommandHandler {
	return RecomputeRanksCommandHandler{uowFactory: uowFactory}
}

// Handle returns every bid of the job, in any status, with fresh ranks on the pending ones.
func (h RecomputeRanksCommandHandler) Handle(ctx context.Context, cmd RecomputeRanksCommand) ([]*bid.Bid, error) {
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

	j, err := uow.JobRepository().GetForUpdate(ctx, cmd.JobID())
	if err != nil {
		return nil, err
	}
	bids, err := uow.BidRepository().ListByJob(ctx, j.ID())
	if err != nil {
		return nil, err
	}
	if err = rerank(ctx, uow, bids); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return bids, nil
}

package commands

import (
	"context"

	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// SubmitBidCommandHandler records a contractor's bid on an open job and re-ranks the
// job's pending bids. A contractor holds at most one pending bid per job; the contractor's
// current rating is copied onto the bid.
//
// Example:
//
//	eta := 2 * time.Hour
//	cmd, err := NewSubmitBidCommand(jobID, contractorID, 12500, &eta, "")
//	if err != nil {
//		return err
//	}
//	b, err := NewSubmitBidCommandHandler(uowFactory, clock).Handle(ctx, cmd)
//	// b.Ranking() is set
type SubmitBidCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

// NewSubmitBidCommandHandler creates the handler.
func NewSubmitBidCommandHandler(uowFactory UoWFactory, clock ports.Clock) SubmitBidCommandHandler {
	return SubmitBidCommandHandler{uowFactory: uowFactory, clock: clock}
}

// Handle returns the stored bid with its ranking. Unknown jobs or contractors yield
// ErrObjectNotFound; a closed job or a second pending bid yields ErrInvalidState.
func (h SubmitBidCommandHandler) Handle(ctx context.Context, cmd SubmitBidCommand) (*bid.Bid, error) {
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

	j, err := uow.JobRepository().GetForUpdate(ctx, cmd.JobID())
	if err != nil {
		return nil, err
	}
	if !j.AcceptsBids(now) {
		return nil, errs.NewInvalidStateError("job", "job is not accepting bids")
	}

	c, err := uow.ContractorRepository().Get(ctx, cmd.ContractorID())
	if err != nil {
		return nil, err
	}

	bidRepo := uow.BidRepository()
	bids, err := bidRepo.ListByJob(ctx, j.ID())
	if err != nil {
		return nil, err
	}
	for _, existing := range bids {
		if existing.IsPending() && existing.ContractorID().IsEqual(c.ID()) {
			return nil, errs.NewInvalidStateError("bid", "contractor already has a pending bid on this job")
		}
	}

	b, err := bid.NewBid(kernel.NewUUID(), j.ID(), c.ID(), cmd.Amount(), cmd.EstimatedDuration(), c.Rating(), cmd.Message(), now)
	if err != nil {
		return nil, err
	}
	if err = bidRepo.Add(ctx, b); err != nil {
		return nil, err
	}
	if err = rerank(ctx, uow, append(bids, b)); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

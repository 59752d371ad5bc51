package commands

import (
	"context"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/queue"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// lockBidJob loads a bid and locks its job row, then returns every bid of the job with
// the requested one taken from that list.
func lockBidJob(ctx context.Context, uow UoW, bidID kernel.UUID) (*job.Job, []*bid.Bid, *bid.Bid, error) {
	b, err := uow.BidRepository().Get(ctx, bidID)
	if err != nil {
		return nil, nil, nil, err
	}
	j, err := uow.JobRepository().GetForUpdate(ctx, b.JobID())
	if err != nil {
		return nil, nil, nil, err
	}
	bids, err := uow.BidRepository().ListByJob(ctx, j.ID())
	if err != nil {
		return nil, nil, nil, err
	}
	for _, candidate := range bids {
		if candidate.ID().IsEqual(bidID) {
			return j, bids, candidate, nil
		}
	}
	return nil, nil, nil, errs.NewObjectNotFoundError("bidId", bidID)
}

// rerank recomputes ranks over the pending bids and stores every bid of the job.
func rerank(ctx context.Context, uow UoW, bids []*bid.Bid) error {
	if err := services.NewBidRanker().Rank(bids); err != nil {
		return err
	}
	bidRepo := uow.BidRepository()
	for _, b := range bids {
		if err := bidRepo.Update(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// awardBid accepts the winner, rejects every other pending bid and hands the job to the
// winning contractor at the bid amount.
//
// When the winner already has current work the job is queued behind it: the job stays
// New with the winner bound as its contractor (reserved) and becomes assigned when the
// queue advances to it. The winning bid and agreed price are recorded either way.
func awardBid(
	ctx context.Context,
	uow UoW,
	j *job.Job,
	bids []*bid.Bid,
	winner *bid.Bid,
	now time.Time,
	out *outbox,
) (*queue.Entry, error) {
	if !j.CanAwardBid() {
		return nil, errs.NewInvalidStateError("job", "job is no longer open for bidding")
	}
	if err := winner.Accept(now); err != nil {
		return nil, err
	}
	for _, b := range bids {
		if b == winner || !b.IsPending() {
			continue
		}
		if err := b.Reject(now); err != nil {
			return nil, err
		}
		out.add(b.ContractorID(), ports.EventBidRejected, map[string]any{
			"jobId": j.ID().String(),
			"bidId": b.ID().String(),
		})
	}
	if err := j.AwardBid(winner.ID(), winner.Amount()); err != nil {
		return nil, err
	}

	bidRepo := uow.BidRepository()
	for _, b := range bids {
		if err := bidRepo.Update(ctx, b); err != nil {
			return nil, err
		}
	}

	c, err := uow.ContractorRepository().GetForUpdate(ctx, winner.ContractorID())
	if err != nil {
		return nil, err
	}
	attempt, err := j.RecordAssignmentAttempt(now)
	if err != nil {
		return nil, err
	}
	entry, err := placeJob(ctx, uow, j, c, nil, fmt.Sprintf("bid accepted, assignment attempt %d", attempt), now, out)
	if err != nil {
		return nil, err
	}

	out.add(winner.ContractorID(), ports.EventBidAccepted, map[string]any{
		"jobId":  j.ID().String(),
		"bidId":  winner.ID().String(),
		"amount": winner.Amount().String(),
	})
	return entry, nil
}

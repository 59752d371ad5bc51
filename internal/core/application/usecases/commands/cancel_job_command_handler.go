package commands

import (
	"context"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// CancelJobCommandHandler cancels a job from any non-terminal status. Its queue entry is
// removed (promoting the next job when it was current) and its pending bids are rejected.
//
// Example:
//
//	handler := NewCancelJobCommandHandler(uowFactory, ports.SystemClock{}, notifier)
//	cmd, err := NewCancelJobCommand(jobID, "customer cancelled")
//	if err != nil {
//		return err
//	}
//	cancelled, err := handler.Handle(ctx, cmd)
type CancelJobCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	notifier   ports.Notifier
}

// NewCancelJobCommandHandler creates the handler with its clock and notifier.
func NewCancelJobCommandHandler(uowFactory UoWFactory, clock ports.Clock, notifier ports.Notifier) CancelJobCommandHandler {
	return CancelJobCommandHandler{uowFactory: uowFactory, clock: clock, notifier: notifier}
}

// Handle locks the bound contractor's row before the job row, the same order every
// queue operation uses. A job that changes hands in between fails with ErrInvalidState.
// The contractor and the customer are notified after commit.
func (h CancelJobCommandHandler) Handle(ctx context.Context, cmd CancelJobCommand) (*job.Job, error) {
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

	jobRepo := uow.JobRepository()
	snapshot, err := jobRepo.Get(ctx, cmd.JobID())
	if err != nil {
		return nil, err
	}

	// contractor row before job row
	var contractorID *kernel.UUID
	if id := snapshot.ContractorID(); id != nil {
		if _, err = uow.ContractorRepository().GetForUpdate(ctx, *id); err != nil {
			return nil, err
		}
		contractorID = id
	}

	j, err := jobRepo.GetForUpdate(ctx, cmd.JobID())
	if err != nil {
		return nil, err
	}
	if !sameContractor(j.ContractorID(), contractorID) {
		return nil, errs.NewInvalidStateError("job", "job changed hands while cancelling, retry")
	}

	if contractorID != nil {
		queueRepo := uow.QueueRepository()
		q, err := queueRepo.Load(ctx, *contractorID)
		if err != nil {
			return nil, err
		}
		if _, promoted, ok := q.Remove(j.ID(), now); ok {
			if err = queueRepo.Save(ctx, q); err != nil {
				return nil, err
			}
			if err = promoteJob(ctx, uow, promoted, now, &out); err != nil {
				return nil, err
			}
		}
	}

	if err = j.Cancel(cmd.Reason(), now); err != nil {
		return nil, err
	}
	if err = jobRepo.Update(ctx, j); err != nil {
		return nil, err
	}

	bidRepo := uow.BidRepository()
	bids, err := bidRepo.ListByJob(ctx, j.ID())
	if err != nil {
		return nil, err
	}
	for _, b := range bids {
		if !b.IsPending() {
			continue
		}
		if err = b.Reject(now); err != nil {
			return nil, err
		}
		if err = bidRepo.Update(ctx, b); err != nil {
			return nil, err
		}
		out.add(b.ContractorID(), ports.EventBidRejected, map[string]any{
			"jobId": j.ID().String(),
			"bidId": b.ID().String(),
		})
	}

	payload := map[string]any{"jobId": j.ID().String(), "reason": cmd.Reason()}
	if contractorID != nil {
		out.add(*contractorID, ports.EventJobCancelled, payload)
	}
	out.add(j.CustomerID(), ports.EventJobCancelled, payload)

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	out.flush(ctx, h.notifier)
	return j, nil
}

func sameContractor(a, b *kernel.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqual(*b)
}

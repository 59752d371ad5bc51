package commands

import (
	"context"

	"dispatch/internal/core/domain/model/queue"
	"dispatch/internal/core/ports"
)

// AdvanceQueueCommandHandler completes the current entry and its job, promotes the head of
// the queued entries and assigns its job. It returns the new current entry, or nil when
// the queue is empty afterwards.
//
// Example:
//
//	cmd, _ := NewAdvanceQueueCommand(contractorID)
//	next, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrInvalidState):
//	    // the contractor has no current entry
//	case err != nil:
//	    return err
//	case next == nil:
//	    log.Println("queue is empty")
//	default:
//	    log.Printf("next job %s", next.JobID())
//	}
type AdvanceQueueCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	notifier   ports.Notifier
}

// NewAdvanceQueueCommandHandler creates the handler with its clock and notifier.
func NewAdvanceQueueCommandHandler(uowFactory UoWFactory, clock ports.Clock, notifier ports.Notifier) AdvanceQueueCommandHandler {
	return AdvanceQueueCommandHandler{uowFactory: uowFactory, clock: clock, notifier: notifier}
}

// Handle locks the contractor row, completes the current job and promotes the next entry.
// Returns ErrInvalidState when there is no current entry to complete.
func (h AdvanceQueueCommandHandler) Handle(ctx context.Context, cmd AdvanceQueueCommand) (*queue.Entry, error) {
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

	if _, err := uow.ContractorRepository().GetForUpdate(ctx, cmd.ContractorID()); err != nil {
		return nil, err
	}

	queueRepo := uow.QueueRepository()
	q, err := queueRepo.Load(ctx, cmd.ContractorID())
	if err != nil {
		return nil, err
	}

	completed, next, err := q.Advance(now)
	if err != nil {
		return nil, err
	}

	jobRepo := uow.JobRepository()
	finished, err := jobRepo.GetForUpdate(ctx, completed.JobID())
	if err != nil {
		return nil, err
	}
	if err = finished.Complete("completed via queue advance", now); err != nil {
		return nil, err
	}
	if err = jobRepo.Update(ctx, finished); err != nil {
		return nil, err
	}

	if err = queueRepo.Save(ctx, q); err != nil {
		return nil, err
	}
	if err = promoteJob(ctx, uow, next, now, &out); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	out.flush(ctx, h.notifier)
	return next, nil
}

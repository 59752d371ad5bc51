package commands

import (
	"context"
	"fmt"

	"dispatch/internal/core/domain/model/queue"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// SkipQueueEntryCommandHandler marks an active entry skipped and advances past it. The
// skipped job returns to new so it can be enqueued again as a fresh entry.
//
// A job the contractor already started is released as well.
//
// Example:
//
//	cmd, _ := NewSkipQueueEntryCommand(entryID, "customer not home")
//	skipped, err := handler.Handle(ctx, cmd)
//	// skipped.Status() == queue.Skipped
type SkipQueueEntryCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	notifier   ports.Notifier
}

// NewSkipQueueEntryCommandHandler creates the handler with its clock and notifier.
func NewSkipQueueEntryCommandHandler(uowFactory UoWFactory, clock ports.Clock, notifier ports.Notifier) SkipQueueEntryCommandHandler {
	return SkipQueueEntryCommandHandler{uowFactory: uowFactory, clock: clock, notifier: notifier}
}

// Handle returns the skipped entry. Completed, skipped or expired entries cannot be
// skipped and yield ErrInvalidState.
func (h SkipQueueEntryCommandHandler) Handle(ctx context.Context, cmd SkipQueueEntryCommand) (*queue.Entry, error) {
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

	queueRepo := uow.QueueRepository()
	found, err := queueRepo.GetEntry(ctx, cmd.EntryID())
	if err != nil {
		return nil, err
	}
	if !found.Status().IsActive() {
		return nil, errs.NewInvalidStateError("queue entry", fmt.Sprintf("entry is already %s", found.Status()))
	}

	contractorID := found.ContractorID()
	if _, err = uow.ContractorRepository().GetForUpdate(ctx, contractorID); err != nil {
		return nil, err
	}
	q, err := queueRepo.Load(ctx, contractorID)
	if err != nil {
		return nil, err
	}

	skipped, promoted, err := q.Skip(cmd.EntryID(), cmd.Reason(), now)
	if err != nil {
		return nil, err
	}
	if err = queueRepo.Save(ctx, q); err != nil {
		return nil, err
	}
	if err = releaseJob(ctx, uow, skipped.JobID(), contractorID, "skipped: "+cmd.Reason(), now, &out); err != nil {
		return nil, err
	}
	if err = promoteJob(ctx, uow, promoted, now, &out); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	out.flush(ctx, h.notifier)
	return skipped, nil
}

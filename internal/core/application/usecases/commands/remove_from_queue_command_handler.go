package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// RemoveFromQueueCommandHandler deletes the job's latest queue entry in any status.
// Removing a current entry promotes the next one; removing a queued entry closes the gap.
// A job that still belongs to the contractor goes back to new. A job without any entry
// yields false.
//
// A job the contractor already started (en route or on site) is released as well.
//
// Example:
//
//	cmd, _ := NewRemoveFromQueueCommand(jobID)
//	removed, err := NewRemoveFromQueueCommandHandler(uowFactory, clock, notifier).Handle(ctx, cmd)
//	if err == nil && !removed {
//		// the job was never queued
//	}
type RemoveFromQueueCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	notifier   ports.Notifier
}

// NewRemoveFromQueueCommandHandler creates the handler with its clock and notifier.
func NewRemoveFromQueueCommandHandler(uowFactory UoWFactory, clock ports.Clock, notifier ports.Notifier) RemoveFromQueueCommandHandler {
	return RemoveFromQueueCommandHandler{uowFactory: uowFactory, clock: clock, notifier: notifier}
}

// Handle finds the entry by job id, locks the owning queue and removes the entry.
func (h RemoveFromQueueCommandHandler) Handle(ctx context.Context, cmd RemoveFromQueueCommand) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.clock.Now()
	var out outbox

	queueRepo := uow.QueueRepository()
	found, err := queueRepo.FindLatestByJob(ctx, cmd.JobID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	contractorID := found.ContractorID()
	if _, err = uow.ContractorRepository().GetForUpdate(ctx, contractorID); err != nil {
		return false, err
	}
	q, err := queueRepo.Load(ctx, contractorID)
	if err != nil {
		return false, err
	}

	if _, promoted, ok := q.Remove(cmd.JobID(), now); ok {
		if err = queueRepo.Save(ctx, q); err != nil {
			return false, err
		}
		if err = releaseJob(ctx, uow, cmd.JobID(), contractorID, "removed from queue", now, &out); err != nil {
			return false, err
		}
		if err = promoteJob(ctx, uow, promoted, now, &out); err != nil {
			return false, err
		}
	} else {
		q.Forget(found)
		if err = queueRepo.Save(ctx, q); err != nil {
			return false, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}
	out.flush(ctx, h.notifier)
	return true, nil
}

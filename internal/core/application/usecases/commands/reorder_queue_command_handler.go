package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// ReorderQueueCommandHandler rewrites the order of queued entries. Job ids that are not
// queued for the contractor are rejected as a whole with ErrInvalidState.
//
// Example:
//
//	cmd, _ := NewReorderQueueCommand(contractorID, []kernel.UUID{jobC, jobA, jobB})
//	if _, err := handler.Handle(ctx, cmd); errors.Is(err, errs.ErrInvalidState) {
//	    // one of the jobs is not queued for this contractor
//	}
type ReorderQueueCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

// NewReorderQueueCommandHandler creates the handler.
func NewReorderQueueCommandHandler(uowFactory UoWFactory, clock ports.Clock) ReorderQueueCommandHandler {
	return ReorderQueueCommandHandler{uowFactory: uowFactory, clock: clock}
}

// Handle locks the contractor row before rewriting positions. The current entry never moves.
func (h ReorderQueueCommandHandler) Handle(ctx context.Context, cmd ReorderQueueCommand) (bool, error) {
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

	if _, err := uow.ContractorRepository().GetForUpdate(ctx, cmd.ContractorID()); err != nil {
		return false, err
	}

	queueRepo := uow.QueueRepository()
	q, err := queueRepo.Load(ctx, cmd.ContractorID())
	if err != nil {
		return false, err
	}
	if err = q.Reorder(cmd.JobIDs(), h.clock.Now()); err != nil {
		return false, err
	}
	if err = queueRepo.Save(ctx, q); err != nil {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

package commands

import (
	"context"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/queue"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// EnqueueJobCommandHandler adds a job to a contractor's queue. The job lands as current
// (and becomes assigned) when the queue is empty, otherwise it is queued and reserved.
//
// Bidding jobs are rejected; they reach a queue by accepting a bid.
//
// Example:
//
//	priority := 2
//	cmd, _ := NewEnqueueJobCommand(contractorID, jobID, &priority)
//	entry, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrObjectNotFound):
//	    // unknown contractor or job
//	case errors.Is(err, errs.ErrInvalidState):
//	    // job is not new, already bound or open to bids
//	case err == nil:
//	    fmt.Println(entry.Status(), entry.Position())
//	}
type EnqueueJobCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	notifier   ports.Notifier
}

// NewEnqueueJobCommandHandler creates the handler with its clock and notifier.
func NewEnqueueJobCommandHandler(uowFactory UoWFactory, clock ports.Clock, notifier ports.Notifier) EnqueueJobCommandHandler {
	return EnqueueJobCommandHandler{uowFactory: uowFactory, clock: clock, notifier: notifier}
}

// Handle locks the contractor's queue and the job, then places the job. A priority
// larger than the queue appends the job at the end.
func (h EnqueueJobCommandHandler) Handle(ctx context.Context, cmd EnqueueJobCommand) (*queue.Entry, error) {
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

	c, err := uow.ContractorRepository().GetForUpdate(ctx, cmd.ContractorID())
	if err != nil {
		return nil, err
	}
	j, err := uow.JobRepository().GetForUpdate(ctx, cmd.JobID())
	if err != nil {
		return nil, err
	}
	if j.Status() != job.New || j.ContractorID() != nil {
		return nil, errs.NewInvalidStateError("job", "only an unassigned new job can be enqueued")
	}
	if j.AllowBidding() {
		return nil, errs.NewInvalidStateError("job", "bidding jobs are assigned by accepting a bid")
	}

	entry, err := placeJob(ctx, uow, j, c, cmd.Priority(), "enqueued by dispatcher", now, &out)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	out.flush(ctx, h.notifier)
	return entry, nil
}

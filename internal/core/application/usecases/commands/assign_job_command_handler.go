package commands

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/queue"
	"dispatch/internal/core/ports"
)

// Assignment is the outcome of a successful selection.
type Assignment struct {
	ContractorID kernel.UUID
	Entry        *queue.Entry
}

// AssignJobCommandHandler selects the best contractor for a job and enqueues it there.
// The job's attempt counter grows by one and the contractor's lastAssignedAt is stamped.
// ErrNoCandidate is returned when nobody is eligible; nothing is written in that case.
//
// Example:
//
//	handler := NewAssignJobCommandHandler(uowFactory, DefaultPolicy(), clock, notifier)
//	cmd, _ := NewAssignJobCommand(jobID)
//	assignment, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, ErrNoCandidate):
//	    log.Println("no eligible contractor, the job stays new")
//	case err != nil:
//	    log.Printf("assignment failed: %v", err)
//	default:
//	    log.Printf("job placed with %s at %d", assignment.ContractorID, assignment.Entry.Position())
//	}
type AssignJobCommandHandler struct {
	uowFactory UoWFactory
	assigner   jobAssigner
	clock      ports.Clock
	notifier   ports.Notifier
}

// NewAssignJobCommandHandler creates a handler for direct-dispatch assignment.
// policy carries the response timeout and the attempt cap used by the selector.
func NewAssignJobCommandHandler(
	uowFactory UoWFactory,
	policy Policy,
	clock ports.Clock,
	notifier ports.Notifier,
) AssignJobCommandHandler {
	return AssignJobCommandHandler{
		uowFactory: uowFactory,
		assigner:   newJobAssigner(policy),
		clock:      clock,
		notifier:   notifier,
	}
}

// Handle loads the job, ranks the available contractors and enqueues the job to the
// winner inside one unit of work. A job that is not new, is already bound to a
// contractor or allows bidding fails with ErrInvalidState.
func (h AssignJobCommandHandler) Handle(ctx context.Context, cmd AssignJobCommand) (Assignment, error) {
	if err := cmd.Validate(); err != nil {
		return Assignment{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return Assignment{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	var out outbox
	c, entry, err := h.assigner.assign(ctx, uow, cmd.JobID(), h.clock.Now(), &out)
	if err != nil {
		return Assignment{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return Assignment{}, err
	}
	out.flush(ctx, h.notifier)
	return Assignment{ContractorID: c.ID(), Entry: entry}, nil
}

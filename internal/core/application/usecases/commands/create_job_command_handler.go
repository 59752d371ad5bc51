package commands

import (
	"context"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/ports"
)

// CreateJobCommandHandler stores a new job. Direct-dispatch jobs are picked up by the
// pending-assignment job or an explicit AssignJobCommand; bidding jobs wait for bids.
//
// Example:
//
//	handler := NewCreateJobCommandHandler(jobUoWFactory, clock)
//	cmd, _ := NewCreateJobCommand(kernel.NewUUID(), customerID, &location, nil)
//	j, err := handler.Handle(ctx, cmd)
//	if err == nil {
//	    fmt.Println(j.Status()) // new
//	}
type CreateJobCommandHandler struct {
	uowFactory JobUoWFactory
	clock      ports.Clock
}

// NewCreateJobCommandHandler only needs a job-scoped unit of work.
func NewCreateJobCommandHandler(uowFactory JobUoWFactory, clock ports.Clock) CreateJobCommandHandler {
	return CreateJobCommandHandler{uowFactory: uowFactory, clock: clock}
}

// Handle builds the job aggregate from the command and stores it with its first
// history record.
func (h CreateJobCommandHandler) Handle(ctx context.Context, cmd CreateJobCommand) (*job.Job, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.clock.Now()

	j, err := job.NewJob(cmd.JobID(), cmd.CustomerID(), cmd.Location(), now)
	if err != nil {
		return nil, err
	}
	if cmd.AllowBidding() {
		if err = j.OpenBidding(cmd.BiddingDeadline(), cmd.ReservePrice(), cmd.AutoAcceptPolicy(), now); err != nil {
			return nil, err
		}
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.JobRepository().Add(ctx, j); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

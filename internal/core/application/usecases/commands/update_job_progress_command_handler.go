package commands

import (
	"context"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// UpdateJobProgressCommandHandler moves an assigned job to en_route or on_site. Once the
// job leaves assigned the reassignment sweep no longer considers it.
//
// Example:
//
//	cmd, _ := NewUpdateJobProgressCommand(jobID, contractorID, job.EnRoute)
//	j, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrInvalidState) {
//		// the job is not bound to this contractor or not in the right status
//	}
type UpdateJobProgressCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

// NewUpdateJobProgressCommandHandler creates the handler.
func NewUpdateJobProgressCommandHandler(uowFactory UoWFactory, clock ports.Clock) UpdateJobProgressCommandHandler {
	return UpdateJobProgressCommandHandler{uowFactory: uowFactory, clock: clock}
}

// Handle rejects a contractor that does not own the job with ErrInvalidState.
func (h UpdateJobProgressCommandHandler) Handle(ctx context.Context, cmd UpdateJobProgressCommand) (*job.Job, error) {
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

	if _, err := uow.ContractorRepository().GetForUpdate(ctx, cmd.ContractorID()); err != nil {
		return nil, err
	}
	jobRepo := uow.JobRepository()
	j, err := jobRepo.GetForUpdate(ctx, cmd.JobID())
	if err != nil {
		return nil, err
	}
	if !j.IsBoundTo(cmd.ContractorID()) {
		return nil, errs.NewInvalidStateError("job", "job is not assigned to this contractor")
	}

	now := h.clock.Now()
	switch cmd.Target() {
	case job.EnRoute:
		err = j.StartTravel(now)
	case job.OnSite:
		err = j.Arrive(now)
	}
	if err != nil {
		return nil, err
	}
	if err = jobRepo.Update(ctx, j); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

package commands

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateJobProgressCommandIsNotConstructed = errors.New(
	"UpdateJobProgressCommand must be created via NewUpdateJobProgressCommand constructor",
)

// UpdateJobProgressCommand is reported by the contractor working the job. The only
// accepted targets are en_route and on_site.
type UpdateJobProgressCommand struct {
	jobID        kernel.UUID
	contractorID kernel.UUID
	target       job.Status

	guard guard.ConstructorGuard
}

// NewUpdateJobProgressCommand rejects any target other than job.EnRoute and job.OnSite.
func NewUpdateJobProgressCommand(jobID, contractorID kernel.UUID, target job.Status) (UpdateJobProgressCommand, error) {
	var targetErr error
	if target != job.EnRoute && target != job.OnSite {
		targetErr = errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%q is not a progress status", target.String()))
	}
	if err := errors.Join(jobID.Validate(), contractorID.Validate(), targetErr); err != nil {
		return UpdateJobProgressCommand{}, err
	}

	return UpdateJobProgressCommand{
		jobID:        jobID,
		contractorID: contractorID,
		target:       target,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrUpdateJobProgressCommandIsNotConstructed if validation fails.
func (c UpdateJobProgressCommand) Validate() error {
	return c.guard.Validate(ErrUpdateJobProgressCommandIsNotConstructed)
}

// JobID, ContractorID and Target expose the validated input. ContractorID must own the job.
func (c UpdateJobProgressCommand) JobID() kernel.UUID        { return c.jobID }
func (c UpdateJobProgressCommand) ContractorID() kernel.UUID { return c.contractorID }
func (c UpdateJobProgressCommand) Target() job.Status        { return c.target }

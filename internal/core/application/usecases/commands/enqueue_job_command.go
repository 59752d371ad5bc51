package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrEnqueueJobCommandIsNotConstructed = errors.New(
	"EnqueueJobCommand must be created via NewEnqueueJobCommand constructor",
)

// EnqueueJobCommand places a job in a specific contractor's queue, optionally at a priority position.
type EnqueueJobCommand struct { //nolint:recvcheck //using for validation
	contractorID kernel.UUID
	jobID        kernel.UUID
	priority     *int

	guard guard.ConstructorGuard
}

// NewEnqueueJobCommand creates the command. priority is optional; when given it is the
// 1-based position the job should take and must be at least 1.
func NewEnqueueJobCommand(contractorID, jobID kernel.UUID, priority *int) (EnqueueJobCommand, error) {
	cmd := EnqueueJobCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setContractorID(contractorID),
		cmd.setJobID(jobID),
		cmd.setPriority(priority),
	); err != nil {
		return EnqueueJobCommand{}, err
	}
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrEnqueueJobCommandIsNotConstructed if validation fails.
func (c EnqueueJobCommand) Validate() error {
	return c.guard.Validate(ErrEnqueueJobCommandIsNotConstructed)
}

func (c EnqueueJobCommand) ContractorID() kernel.UUID { return c.contractorID }
func (c EnqueueJobCommand) JobID() kernel.UUID        { return c.jobID }
func (c EnqueueJobCommand) Priority() *int            { return c.priority }

func (c *EnqueueJobCommand) setContractorID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("contractorId", err)
	}
	c.contractorID = id
	return nil
}

func (c *EnqueueJobCommand) setJobID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("jobId", err)
	}
	c.jobID = id
	return nil
}

func (c *EnqueueJobCommand) setPriority(priority *int) error {
	if priority == nil {
		return nil
	}
	if *priority < 1 {
		return errs.NewValueIsOutOfRangeError("priority", *priority, 1, "queue length")
	}
	p := *priority
	c.priority = &p
	return nil
}

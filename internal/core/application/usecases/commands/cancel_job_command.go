package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCancelJobCommandIsNotConstructed = errors.New(
	"CancelJobCommand must be created via NewCancelJobCommand constructor",
)

// CancelJobCommand ends a job for good. The reason is required and is recorded in the
// job history.
//
// Example:
//
//	cmd, err := NewCancelJobCommand(jobID, "customer called it off")
//	if err != nil {
//	    return err
//	}
//	j, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrInvalidState) {
//	    // already completed or cancelled
//	}
type CancelJobCommand struct {
	jobID  kernel.UUID
	reason string

	guard guard.ConstructorGuard
}

// NewCancelJobCommand validates the job id and requires a non-empty reason.
func NewCancelJobCommand(jobID kernel.UUID, reason string) (CancelJobCommand, error) {
	var reasonErr error
	if reason == "" {
		reasonErr = errs.NewValueIsRequiredError("reason")
	}
	if err := errors.Join(jobID.Validate(), reasonErr); err != nil {
		return CancelJobCommand{}, err
	}
	return CancelJobCommand{jobID: jobID, reason: reason, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCancelJobCommandIsNotConstructed if validation fails.
func (c CancelJobCommand) Validate() error {
	return c.guard.Validate(ErrCancelJobCommandIsNotConstructed)
}

// JobID and Reason expose the validated input.
func (c CancelJobCommand) JobID() kernel.UUID { return c.jobID }
func (c CancelJobCommand) Reason() string     { return c.reason }

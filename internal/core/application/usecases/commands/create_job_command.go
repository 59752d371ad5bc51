package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCreateJobCommandIsNotConstructed = errors.New(
	"CreateJobCommand must be created via NewCreateJobCommand constructor",
)

// BiddingTerms opens a new job to bids instead of direct dispatch.
type BiddingTerms struct {
	Deadline         time.Time
	ReservePrice     *int64
	AutoAcceptPolicy job.AutoAcceptPolicy
}

// CreateJobCommand describes a new job. A job is either dispatched directly to the best
// contractor or opened to bids until its deadline, never both.
//
// Example:
//
//	deadline := time.Now().Add(24 * time.Hour)
//	cmd, err := NewCreateJobCommand(kernel.NewUUID(), customerID, &location, &BiddingTerms{
//	    Deadline:         deadline,
//	    AutoAcceptPolicy: job.AutoAcceptLowest,
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid job: %w", err)
//	}
//	j, err := handler.Handle(ctx, cmd)
type CreateJobCommand struct {
	jobID      kernel.UUID
	customerID kernel.UUID
	location   *kernel.GeoPoint

	bidding      bool
	deadline     time.Time
	reservePrice *kernel.Money
	policy       job.AutoAcceptPolicy

	guard guard.ConstructorGuard
}

// NewCreateJobCommand builds the command. location and terms are optional.
func NewCreateJobCommand(
	jobID, customerID kernel.UUID,
	location *kernel.GeoPoint,
	terms *BiddingTerms,
) (CreateJobCommand, error) {
	cmd := CreateJobCommand{
		jobID:      jobID,
		customerID: customerID,
		guard:      guard.NewConstructorGuard(),
	}

	var jobErr, customerErr, locationErr, termsErr error
	if err := jobID.Validate(); err != nil {
		jobErr = errs.NewValueIsRequiredErrorWithCause("jobId", err)
	}
	if err := customerID.Validate(); err != nil {
		customerErr = errs.NewValueIsRequiredErrorWithCause("customerId", err)
	}
	if location != nil {
		if err := location.Validate(); err != nil {
			locationErr = err
		} else {
			loc := *location
			cmd.location = &loc
		}
	}
	if terms != nil {
		termsErr = cmd.setBiddingTerms(*terms)
	}

	if err := errors.Join(jobErr, customerErr, locationErr, termsErr); err != nil {
		return CreateJobCommand{}, err
	}
	return cmd, nil
}

// setBiddingTerms requires a deadline and a known auto-accept policy.
func (c *CreateJobCommand) setBiddingTerms(terms BiddingTerms) error {
	if terms.Deadline.IsZero() {
		return errs.NewValueIsRequiredError("biddingDeadline")
	}

	policy := terms.AutoAcceptPolicy
	if policy == "" {
		policy = job.AutoAcceptNone
	}
	if err := policy.Validate(); err != nil {
		return err
	}

	if terms.ReservePrice != nil {
		reserve, err := kernel.NewMoney(*terms.ReservePrice)
		if err != nil {
			return err
		}
		c.reservePrice = &reserve
	}

	c.bidding = true
	c.deadline = terms.Deadline
	c.policy = policy
	return nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateJobCommandIsNotConstructed if validation fails.
func (c CreateJobCommand) Validate() error {
	return c.guard.Validate(ErrCreateJobCommandIsNotConstructed)
}

func (c CreateJobCommand) JobID() kernel.UUID                     { return c.jobID }
func (c CreateJobCommand) CustomerID() kernel.UUID                { return c.customerID }
func (c CreateJobCommand) Location() *kernel.GeoPoint             { return c.location }
func (c CreateJobCommand) AllowBidding() bool                     { return c.bidding }
func (c CreateJobCommand) BiddingDeadline() time.Time             { return c.deadline }
func (c CreateJobCommand) ReservePrice() *kernel.Money            { return c.reservePrice }
func (c CreateJobCommand) AutoAcceptPolicy() job.AutoAcceptPolicy { return c.policy }

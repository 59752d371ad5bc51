package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrSubmitBidCommandIsNotConstructed = errors.New(
	"SubmitBidCommand must be created via NewSubmitBidCommand constructor",
)

// SubmitBidCommand is a contractor's offer on a bidding job: an amount in cents, an
// optional time estimate and an optional message.
//
// Example:
//
//	eta := 3 * time.Hour
//	cmd, err := NewSubmitBidCommand(jobID, contractorID, 12500, &eta, "can start today")
//	if err != nil {
//	    return err
//	}
//	b, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrInvalidState) {
//	    // bidding closed or the contractor already has a pending bid
//	}
//	fmt.Println(b.Ranking().PriceRank)
type SubmitBidCommand struct {
	jobID        kernel.UUID
	contractorID kernel.UUID
	bidOffer

	guard guard.ConstructorGuard
}

// NewSubmitBidCommand validates both ids and the offer. All problems are reported
// together through errors.Join.
func NewSubmitBidCommand(
	jobID, contractorID kernel.UUID,
	amountCents int64,
	estimatedDuration *time.Duration,
	message string,
) (SubmitBidCommand, error) {
	offer, offerErr := newBidOffer(amountCents, estimatedDuration, message)

	var jobErr, contractorErr error
	if err := jobID.Validate(); err != nil {
		jobErr = errs.NewValueIsRequiredErrorWithCause("jobId", err)
	}
	if err := contractorID.Validate(); err != nil {
		contractorErr = errs.NewValueIsRequiredErrorWithCause("contractorId", err)
	}
	if err := errors.Join(jobErr, contractorErr, offerErr); err != nil {
		return SubmitBidCommand{}, err
	}

	return SubmitBidCommand{
		jobID:        jobID,
		contractorID: contractorID,
		bidOffer:     offer,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrSubmitBidCommandIsNotConstructed if validation fails.
func (c SubmitBidCommand) Validate() error {
	return c.guard.Validate(ErrSubmitBidCommandIsNotConstructed)
}

// JobID and ContractorID identify who bids on what. The offer itself comes from the
// embedded bidOffer.
func (c SubmitBidCommand) JobID() kernel.UUID        { return c.jobID }
func (c SubmitBidCommand) ContractorID() kernel.UUID { return c.contractorID }

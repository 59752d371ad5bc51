package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetJobBidsQueryIsNotConstructed = errors.New(
		"GetJobBidsQuery must be created via NewGetJobBidsQuery constructor",
	)
)

// GetJobBidsQuery lists the bids of one job, best score first.
type GetJobBidsQuery struct {
	jobID       kernel.UUID
	pendingOnly bool

	guard guard.ConstructorGuard
}

// NewGetJobBidsQuery builds the query. With pendingOnly set, accepted, rejected,
// countered and withdrawn bids are left out.
func NewGetJobBidsQuery(jobID kernel.UUID, pendingOnly bool) (GetJobBidsQuery, error) {
	if err := jobID.Validate(); err != nil {
		return GetJobBidsQuery{}, errs.NewValueIsRequiredErrorWithCause("jobId", err)
	}
	return GetJobBidsQuery{
		jobID:       jobID,
		pendingOnly: pendingOnly,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// JobID and PendingOnly expose the validated input.
func (q GetJobBidsQuery) JobID() kernel.UUID { return q.jobID }
func (q GetJobBidsQuery) PendingOnly() bool  { return q.pendingOnly }

// Validate ensures the query was created through the constructor.
func (q GetJobBidsQuery) Validate() error {
	return q.guard.Validate(ErrGetJobBidsQueryIsNotConstructed)
}

// JobBidItem is a bid with its latest ranking. Ranks and Score are nil until the
// bid has been ranked, and stay at their last values once it leaves pending.
type JobBidItem struct {
	ID                kernel.UUID
	ContractorID      kernel.UUID
	Amount            kernel.Money
	EstimatedDuration *time.Duration
	Message           string
	Status            bid.Status

	// Ranks start at 1; Score lies in (0, 1] and orders the listing.
	PriceRank   *int
	TimeRank    *int
	QualityRank *int
	Score       *float64

	IsCounterOffer bool
	SubmittedAt    time.Time
}

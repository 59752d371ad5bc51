// Package bid models contractor offers on jobs that are open to bidding.
package bid

import (
	"errors"
	"fmt"
	"math"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ErrBidIsNotConstructed is returned by Validate for a zero-value Bid.
var ErrBidIsNotConstructed = errors.New("Bid must be created via NewBid constructor")

// Ranking is the position of a bid among the pending bids of its job.
//
// Ranks start at 1. Score is the weighted sum of the normalized ranks and lies in (0, 1].
type Ranking struct {
	PriceRank   int
	TimeRank    int
	QualityRank int
	Score       float64
}

// Bid is a contractor's price and time offer for a job.
//
// Bid follows these invariants:
//   - Amount is strictly positive
//   - EstimatedDuration, when set, is positive
//   - ContractorRating, when set, lies in 0..5 and is a snapshot taken at bidding time
//   - Only Pending bids can be updated, accepted, rejected, countered or withdrawn
//   - A counter-offer carries the id of the bid it replaces
//   - Can only be created through NewBid or Restore
type Bid struct {
	id                kernel.UUID
	jobID             kernel.UUID
	contractorID      kernel.UUID
	amount            kernel.Money
	estimatedDuration *time.Duration
	contractorRating  *float64
	message           string
	status            Status
	ranking           *Ranking
	isCounterOffer    bool
	originalBidID     *kernel.UUID
	createdAt         time.Time
	updatedAt         time.Time

	isConstructed bool
}

// NewBid creates a pending bid. rating is the contractor's rating at the time of bidding.
//
// Example:
//
//	amount, _ := kernel.NewMoney(12500)
//	eta := 2 * time.Hour
//	b, err := bid.NewBid(kernel.NewUUID(), jobID, contractorID, amount, &eta, contractor.Rating(), "", now)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(b.Status()) // pending
func NewBid(
	id, jobID, contractorID kernel.UUID,
	amount kernel.Money,
	estimatedDuration *time.Duration,
	rating *float64,
	message string,
	now time.Time,
) (*Bid, error) {
	b := &Bid{
		message:       message,
		status:        Pending,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		b.setID(id),
		b.setJobID(jobID),
		b.setContractorID(contractorID),
		b.setAmount(amount),
		b.setEstimatedDuration(estimatedDuration),
		b.setRating(rating),
	); err != nil {
		return nil, err
	}
	return b, nil
}

// RestoreParams carries persisted state back into a Bid.
type RestoreParams struct {
	ID                kernel.UUID
	JobID             kernel.UUID
	ContractorID      kernel.UUID
	Amount            kernel.Money
	EstimatedDuration *time.Duration
	ContractorRating  *float64
	Message           string
	Status            Status
	Ranking           *Ranking
	IsCounterOffer    bool
	OriginalBidID     *kernel.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Restore rebuilds a bid loaded from storage with the same validation NewBid applies.
//
// Restore keeps the stored ranking whatever the status, so a bid that left Pending still
// reports the ranking it last had.
func Restore(p RestoreParams) (*Bid, error) {
	b, err := NewBid(p.ID, p.JobID, p.ContractorID, p.Amount, p.EstimatedDuration, p.ContractorRating, p.Message, p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := p.Status.Validate(); err != nil {
		return nil, err
	}
	b.status = p.Status
	b.ranking = p.Ranking
	b.isCounterOffer = p.IsCounterOffer
	b.originalBidID = p.OriginalBidID
	b.updatedAt = p.UpdatedAt
	return b, nil
}

// Validate returns ErrBidIsNotConstructed unless the bid came from NewBid or Restore.
func (b *Bid) Validate() error {
	if b == nil || !b.isConstructed {
		return ErrBidIsNotConstructed
	}
	return nil
}

// ID returns the bid's unique identifier.
func (b *Bid) ID() kernel.UUID {
	return b.id
}

// JobID returns the job the bid is for.
func (b *Bid) JobID() kernel.UUID {
	return b.jobID
}

// ContractorID returns the bidding contractor.
func (b *Bid) ContractorID() kernel.UUID {
	return b.contractorID
}

// Amount returns the offered price.
func (b *Bid) Amount() kernel.Money {
	return b.amount
}

// EstimatedDuration returns how long the contractor expects the work to take, or nil.
// Bids without an estimate rank last on time.
func (b *Bid) EstimatedDuration() *time.Duration {
	return b.estimatedDuration
}

// ContractorRating returns the contractor's rating as it was when the bid was placed,
// or nil for an unrated contractor.
func (b *Bid) ContractorRating() *float64 {
	return b.contractorRating
}

// Message returns the contractor's note to the customer.
func (b *Bid) Message() string {
	return b.message
}

// Status returns the bid status.
func (b *Bid) Status() Status {
	return b.status
}

// Ranking returns the last computed ranking, or nil before the bid was ranked.
func (b *Bid) Ranking() *Ranking {
	return b.ranking
}

// IsCounterOffer reports whether the bid replaced an earlier one through Counter.
func (b *Bid) IsCounterOffer() bool {
	return b.isCounterOffer
}

// OriginalBidID returns the bid a counter-offer replaced, or nil.
func (b *Bid) OriginalBidID() *kernel.UUID {
	return b.originalBidID
}

// CreatedAt returns when the bid was placed. Earlier bids win rank ties.
func (b *Bid) CreatedAt() time.Time {
	return b.createdAt
}

// UpdatedAt returns when the bid last changed.
func (b *Bid) UpdatedAt() time.Time {
	return b.updatedAt
}

// IsPending reports whether the bid is still open.
func (b *Bid) IsPending() bool {
	return b.status == Pending
}

// Update changes the offer of a pending bid.
//
// The ranking is left as it was; the caller re-ranks the job's bids after saving.
//
// Returns:
//   - ErrInvalidState unless the bid is pending
//   - a validation error for a zero amount or a non-positive duration, leaving the bid unchanged
func (b *Bid) Update(amount kernel.Money, estimatedDuration *time.Duration, message string, now time.Time) error {
	if err := b.requirePending("update"); err != nil {
		return err
	}
	if err := errors.Join(b.setAmount(amount), b.setEstimatedDuration(estimatedDuration)); err != nil {
		return err
	}
	b.message = message
	b.updatedAt = now
	return nil
}

// Accept marks the winning bid. Returns ErrInvalidState unless the bid is pending.
func (b *Bid) Accept(now time.Time) error {
	return b.moveTo(Accepted, "accept", now)
}

// Reject turns down a pending bid.
func (b *Bid) Reject(now time.Time) error {
	return b.moveTo(Rejected, "reject", now)
}

// Withdraw is the contractor taking back a pending bid.
func (b *Bid) Withdraw(now time.Time) error {
	return b.moveTo(Withdrawn, "withdraw", now)
}

// Counter marks the bid countered and returns the pending counter-offer that replaces it.
//
// The counter-offer copies the job, the contractor and the rating snapshot from the
// original and points back to it through OriginalBidID.
//
// Example:
//
//	amount, _ := kernel.NewMoney(11000)
//	counter, err := original.Counter(kernel.NewUUID(), amount, nil, "can do it for less", now)
//	if err != nil {
//		return err
//	}
//	// original.Status() == bid.Countered, counter.Status() == bid.Pending
func (b *Bid) Counter(
	id kernel.UUID,
	amount kernel.Money,
	estimatedDuration *time.Duration,
	message string,
	now time.Time,
) (*Bid, error) {
	if err := b.requirePending("counter"); err != nil {
		return nil, err
	}

	counter, err := NewBid(id, b.jobID, b.contractorID, amount, estimatedDuration, b.contractorRating, message, now)
	if err != nil {
		return nil, err
	}
	originalID := b.id
	counter.isCounterOffer = true
	counter.originalBidID = &originalID

	b.status = Countered
	b.updatedAt = now
	return counter, nil
}

// SetRanking stores the ranks computed over the pending bids of the job.
//
// Only pending bids are ranked; every rank must be at least 1.
func (b *Bid) SetRanking(r Ranking) error {
	if err := b.requirePending("rank"); err != nil {
		return err
	}
	if r.PriceRank < 1 || r.TimeRank < 1 || r.QualityRank < 1 {
		return errs.NewValueIsInvalidErrorWithCause("ranking", fmt.Errorf("ranks must start at 1, got %+v", r))
	}
	b.ranking = &r
	return nil
}

// moveTo is the common path for Accept, Reject and Withdraw.
func (b *Bid) moveTo(status Status, action string, now time.Time) error {
	if err := b.requirePending(action); err != nil {
		return err
	}
	b.status = status
	b.updatedAt = now
	return nil
}

func (b *Bid) requirePending(action string) error {
	if b.status != Pending {
		return errs.NewInvalidStateError("bid", fmt.Sprintf("cannot %s a %s bid", action, b.status))
	}
	return nil
}

func (b *Bid) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	b.id = id
	return nil
}

func (b *Bid) setJobID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("jobId", err)
	}
	b.jobID = id
	return nil
}

func (b *Bid) setContractorID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("contractorId", err)
	}
	b.contractorID = id
	return nil
}

func (b *Bid) setAmount(amount kernel.Money) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	if amount.IsZero() {
		return errs.NewValueIsInvalidErrorWithCause("bidAmount", errors.New("must be greater than zero"))
	}
	b.amount = amount
	return nil
}

func (b *Bid) setEstimatedDuration(d *time.Duration) error {
	if d == nil {
		b.estimatedDuration = nil
		return nil
	}
	if *d <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("estimatedDuration", fmt.Errorf("%s is not positive", *d))
	}
	v := *d
	b.estimatedDuration = &v
	return nil
}

func (b *Bid) setRating(rating *float64) error {
	if rating == nil {
		return nil
	}
	if math.IsNaN(*rating) || *rating < 0 || *rating > 5 {
		return errs.NewValueIsOutOfRangeError("rating", *rating, 0, 5)
	}
	r := *rating
	b.contractorRating = &r
	return nil
}

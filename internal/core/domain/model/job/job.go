package job

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrJobIsNotConstructed is returned when a Job was not created through NewJob or Restore.
	ErrJobIsNotConstructed = errors.New("Job must be created via NewJob constructor")
)

// Job is the aggregate root for a service request.
//
// A job placed in a contractor's queue behind other work keeps status New while
// carrying the contractor id; it is then "reserved". It becomes Assigned when its
// queue entry becomes current.
//
// Job follows these invariants:
//   - A New job without a contractor is waiting; with one it is reserved
//   - Assigned, EnRoute and OnSite jobs always carry a contractor
//   - Completed and Cancelled are terminal; a cancelled job carries no contractor
//   - AssignmentAttempts never decreases
//   - Bidding is only opened on a New job that was never offered to a contractor
//   - A job with a winning bid has an agreed price
//   - Every status change appends one HistoryEntry
type Job struct {
	id         kernel.UUID
	customerID kernel.UUID
	status     Status

	contractorID            *kernel.UUID
	assignmentAttempts      int
	lastAssignmentAttemptAt *time.Time

	location *kernel.GeoPoint

	allowBidding     bool
	biddingDeadline  *time.Time
	reservePrice     *kernel.Money
	autoAcceptPolicy AutoAcceptPolicy
	winningBidID     *kernel.UUID
	agreedPrice      *kernel.Money

	createdAt time.Time

	pendingHistory []HistoryEntry

	isConstructed bool
}

// NewJob creates a direct-dispatch job in status New.
//
// location is optional; a job without one can be served by any contractor.
//
// Example:
//
//	j, err := job.NewJob(kernel.NewUUID(), customerID, &location, time.Now())
//	if err != nil {
//	    return err
//	}
//	err = j.OpenBidding(time.Now().Add(24*time.Hour), nil, job.AutoAcceptLowest, time.Now())
func NewJob(id, customerID kernel.UUID, location *kernel.GeoPoint, createdAt time.Time) (*Job, error) {
	j := &Job{
		status:           New,
		autoAcceptPolicy: AutoAcceptNone,
		createdAt:        createdAt,
		isConstructed:    true,
	}

	if err := errors.Join(
		j.setID(id),
		j.setCustomerID(customerID),
		j.setLocation(location),
	); err != nil {
		return nil, err
	}

	j.record(Unknown, New, "job created", createdAt)
	return j, nil
}

// RestoreParams carries persisted state back into a Job.
type RestoreParams struct {
	ID                      kernel.UUID
	CustomerID              kernel.UUID
	Status                  Status
	ContractorID            *kernel.UUID
	AssignmentAttempts      int
	LastAssignmentAttemptAt *time.Time
	Location                *kernel.GeoPoint
	AllowBidding            bool
	BiddingDeadline         *time.Time
	ReservePrice            *kernel.Money
	AutoAcceptPolicy        AutoAcceptPolicy
	WinningBidID            *kernel.UUID
	AgreedPrice             *kernel.Money
	CreatedAt               time.Time
}

// Restore rebuilds a job loaded from storage. No history is recorded.
func Restore(p RestoreParams) (*Job, error) {
	j := &Job{
		contractorID:            p.ContractorID,
		lastAssignmentAttemptAt: p.LastAssignmentAttemptAt,
		allowBidding:            p.AllowBidding,
		biddingDeadline:         p.BiddingDeadline,
		reservePrice:            p.ReservePrice,
		winningBidID:            p.WinningBidID,
		agreedPrice:             p.AgreedPrice,
		createdAt:               p.CreatedAt,
		isConstructed:           true,
	}

	policy := p.AutoAcceptPolicy
	if policy == "" {
		policy = AutoAcceptNone
	}

	var attemptsErr error
	if p.AssignmentAttempts < 0 {
		attemptsErr = errs.NewValueIsInvalidErrorWithCause("assignmentAttempts",
			fmt.Errorf("%d is negative", p.AssignmentAttempts))
	}

	if err := errors.Join(
		j.setID(p.ID),
		j.setCustomerID(p.CustomerID),
		j.setLocation(p.Location),
		p.Status.Validate(),
		policy.Validate(),
		attemptsErr,
	); err != nil {
		return nil, err
	}

	j.status = p.Status
	j.assignmentAttempts = p.AssignmentAttempts
	j.autoAcceptPolicy = policy
	return j, nil
}

// Validate returns ErrJobIsNotConstructed unless the job came from NewJob or Restore.
func (j *Job) Validate() error {
	if j == nil || !j.isConstructed {
		return ErrJobIsNotConstructed
	}
	return nil
}

// IsEqual compares two jobs by id. A nil other is never equal.
func (j *Job) IsEqual(other *Job) bool {
	return other != nil && j.id.IsEqual(other.id)
}

// ID returns the job's unique identifier.
func (j *Job) ID() kernel.UUID {
	return j.id
}

// CustomerID returns the customer who requested the job.
func (j *Job) CustomerID() kernel.UUID {
	return j.customerID
}

// Status returns the current lifecycle status.
func (j *Job) Status() Status {
	return j.status
}

// ContractorID returns the contractor the job is bound to, or nil.
//
// A New job with a contractor is reserved: it waits in that contractor's queue behind
// current work. A cancelled job never has one.
func (j *Job) ContractorID() *kernel.UUID {
	return j.contractorID
}

// AssignmentAttempts returns how many times the job was offered to a contractor. The
// reassignment sweep cancels the job once this reaches the policy limit.
func (j *Job) AssignmentAttempts() int {
	return j.assignmentAttempts
}

// LastAssignmentAttemptAt returns when the job was last offered, or nil if it never was.
// Staleness is measured from this time.
func (j *Job) LastAssignmentAttemptAt() *time.Time {
	return j.lastAssignmentAttemptAt
}

// Location returns where the work is done, or nil when the customer gave none. Jobs
// without a location match every contractor regardless of service radius.
func (j *Job) Location() *kernel.GeoPoint {
	return j.location
}

// AllowBidding reports whether the job is assigned by accepting a bid instead of by
// the assignment selector.
func (j *Job) AllowBidding() bool {
	return j.allowBidding
}

// BiddingDeadline returns when bidding closes. It is nil for jobs that do not allow bidding.
func (j *Job) BiddingDeadline() *time.Time {
	return j.biddingDeadline
}

// ReservePrice returns the highest amount the customer will pay, or nil for no limit.
// Auto-accept never picks a bid above it.
func (j *Job) ReservePrice() *kernel.Money {
	return j.reservePrice
}

// AutoAcceptPolicy returns how a winner is chosen when bidding closes unattended.
func (j *Job) AutoAcceptPolicy() AutoAcceptPolicy {
	return j.autoAcceptPolicy
}

// WinningBidID returns the accepted bid, or nil before a bid wins.
func (j *Job) WinningBidID() *kernel.UUID {
	return j.winningBidID
}

// AgreedPrice returns the winning bid amount, or nil before a bid wins.
func (j *Job) AgreedPrice() *kernel.Money {
	return j.agreedPrice
}

// CreatedAt returns when the job was created. Older jobs are assigned first.
func (j *Job) CreatedAt() time.Time {
	return j.createdAt
}

// IsReserved reports whether the job waits in a contractor's queue behind other work.
func (j *Job) IsReserved() bool {
	return j.status == New && j.contractorID != nil
}

// IsBoundTo reports whether the job is reserved by or assigned to the contractor.
func (j *Job) IsBoundTo(contractorID kernel.UUID) bool {
	return j.contractorID != nil && j.contractorID.IsEqual(contractorID)
}

// IsStale reports whether the job has been assigned without progress since before cutoff.
func (j *Job) IsStale(cutoff time.Time) bool {
	return j.status == Assigned &&
		j.lastAssignmentAttemptAt != nil &&
		j.lastAssignmentAttemptAt.Before(cutoff)
}

// OpenBidding turns a fresh job into a bidding job. Deadline must be after now.
//
// This method enforces the following business rules:
//   - The job is New, unbound and was never offered to a contractor
//   - The deadline is strictly after now
//   - The reserve price, when given, is a constructed Money
//   - The auto-accept policy is known
//
// Example:
//
//	reserve, _ := kernel.NewMoney(20000)
//	err := j.OpenBidding(now.Add(48*time.Hour), &reserve, job.AutoAcceptLowest, now)
func (j *Job) OpenBidding(deadline time.Time, reserve *kernel.Money, policy AutoAcceptPolicy, now time.Time) error {
	if j.status != New || j.contractorID != nil || j.assignmentAttempts > 0 {
		return errs.NewInvalidStateError("job", "bidding can only be opened on an unassigned new job")
	}
	if !deadline.After(now) {
		return errs.NewValueIsInvalidErrorWithCause("biddingDeadline",
			fmt.Errorf("%s is not after %s", deadline.Format(time.RFC3339), now.Format(time.RFC3339)))
	}
	if reserve != nil {
		if err := reserve.Validate(); err != nil {
			return err
		}
	}
	if err := policy.Validate(); err != nil {
		return err
	}

	j.allowBidding = true
	j.biddingDeadline = &deadline
	j.reservePrice = reserve
	j.autoAcceptPolicy = policy
	return nil
}

// CanAwardBid reports whether a bid may still be accepted for this job.
func (j *Job) CanAwardBid() bool {
	return j.allowBidding && j.status == New && j.contractorID == nil && j.winningBidID == nil
}

// AcceptsBids reports whether new bids may be placed at the given moment.
func (j *Job) AcceptsBids(now time.Time) bool {
	if !j.CanAwardBid() {
		return false
	}
	return j.biddingDeadline == nil || now.Before(*j.biddingDeadline)
}

// BiddingExpired reports whether the bidding window closed without a winner.
func (j *Job) BiddingExpired(now time.Time) bool {
	return j.CanAwardBid() && j.biddingDeadline != nil && !now.Before(*j.biddingDeadline)
}

// AwardBid records the winning bid and the agreed price.
//
// It does not change the status or bind a contractor; the caller places the job in the
// winner's queue afterwards, which assigns or reserves it.
//
// Returns:
//   - ErrInvalidState if the job is not open for bidding or already has a winner
//   - a validation error for an unconstructed bid id or amount
func (j *Job) AwardBid(bidID kernel.UUID, amount kernel.Money) error {
	if err := errors.Join(bidID.Validate(), amount.Validate()); err != nil {
		return err
	}
	if !j.CanAwardBid() {
		return errs.NewInvalidStateError("job", "job is not open for bidding")
	}
	j.winningBidID = &bidID
	j.agreedPrice = &amount
	return nil
}

// RecordAssignmentAttempt bumps the attempt counter and returns the new count.
//
// Only New jobs can be attempted. The returned count is what the attempt note and the
// give-up check use.
//
// Example:
//
//	attempt, err := j.RecordAssignmentAttempt(now)
//	if err != nil {
//		return err
//	}
//	note := fmt.Sprintf("assignment attempt %d", attempt)
func (j *Job) RecordAssignmentAttempt(now time.Time) (int, error) {
	if j.status != New {
		return 0, errs.NewInvalidStateError("job", fmt.Sprintf("cannot attempt assignment of a %s job", j.status))
	}
	j.assignmentAttempts++
	j.lastAssignmentAttemptAt = &now
	return j.assignmentAttempts, nil
}

// Assign makes the contractor responsible for the job right now. A reserved job may only be
// assigned to the contractor that reserved it. The response deadline restarts at now.
//
// This method enforces the following business rules:
//   - The contractor id must be valid
//   - The job must be New
//   - A reserved job keeps its contractor; assigning it to anyone else fails
//
// Parameters:
//   - contractorID: the contractor taking the job
//   - note: recorded on the history entry
//   - now: the new response deadline origin
//
// Returns:
//   - nil on success, after which Status() is Assigned and ContractorID() is set
//   - ErrInvalidState if the status or the reservation does not allow it
func (j *Job) Assign(contractorID kernel.UUID, note string, now time.Time) error {
	if err := contractorID.Validate(); err != nil {
		return err
	}
	if j.contractorID != nil && !j.contractorID.IsEqual(contractorID) {
		return errs.NewInvalidStateError("job", "job is reserved by another contractor")
	}

	next, err := j.status.Assign()
	if err != nil {
		return err
	}

	from := j.status
	j.status = next
	j.contractorID = &contractorID
	j.lastAssignmentAttemptAt = &now
	j.record(from, next, note, now)
	return nil
}

// Reserve binds the job to a contractor whose queue already has current work.
//
// The status stays New and a New to New history entry records the reservation. Assign
// later completes it when the queue advances to the job.
func (j *Job) Reserve(contractorID kernel.UUID, note string, now time.Time) error {
	if err := contractorID.Validate(); err != nil {
		return err
	}
	if j.status != New || j.contractorID != nil {
		return errs.NewInvalidStateError("job", "only an unbound new job can be reserved")
	}

	j.contractorID = &contractorID
	j.record(New, New, note, now)
	return nil
}

// Unassign returns a reserved, assigned, en route or on site job to New without a
// contractor.
//
// The job keeps its attempt counter, so a released job moves closer to being given up.
//
// Returns ErrInvalidState for an unbound job or a terminal one.
func (j *Job) Unassign(note string, now time.Time) error {
	if j.contractorID == nil {
		return errs.NewInvalidStateError("job", "job has no contractor")
	}

	next, err := j.status.Unassign()
	if err != nil {
		return err
	}

	from := j.status
	j.status = next
	j.contractorID = nil
	j.record(from, next, note, now)
	return nil
}

// StartTravel moves an assigned job to EnRoute.
func (j *Job) StartTravel(now time.Time) error {
	return j.transition(Status.StartTravel, "contractor en route", now)
}

// Arrive moves an en route job to OnSite.
func (j *Job) Arrive(now time.Time) error {
	return j.transition(Status.Arrive, "contractor on site", now)
}

// Complete finishes an active job. The contractor id stays on the job for the record.
func (j *Job) Complete(note string, now time.Time) error {
	return j.transition(Status.Complete, note, now)
}

// Cancel terminates the job from any non-terminal status and releases the contractor.
//
// Example:
//
//	if err := j.Cancel("customer cancelled", now); err != nil {
//		return err
//	}
//	// j.ContractorID() == nil
func (j *Job) Cancel(note string, now time.Time) error {
	if err := j.transition(Status.Cancel, note, now); err != nil {
		return err
	}
	j.contractorID = nil
	return nil
}

// PendingHistory returns transitions not yet written to storage.
func (j *Job) PendingHistory() []HistoryEntry {
	return j.pendingHistory
}

// ClearPendingHistory is called by the repository after the entries are persisted.
func (j *Job) ClearPendingHistory() {
	j.pendingHistory = nil
}

func (j *Job) transition(step func(Status) (Status, error), note string, now time.Time) error {
	next, err := step(j.status)
	if err != nil {
		return err
	}
	from := j.status
	j.status = next
	j.record(from, next, note, now)
	return nil
}

func (j *Job) record(from, to Status, note string, at time.Time) {
	j.pendingHistory = append(j.pendingHistory, newHistoryEntry(j.id, from, to, note, at))
}

func (j *Job) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	j.id = id
	return nil
}

func (j *Job) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerId", err)
	}
	j.customerID = id
	return nil
}

func (j *Job) setLocation(location *kernel.GeoPoint) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	j.location = location
	return nil
}

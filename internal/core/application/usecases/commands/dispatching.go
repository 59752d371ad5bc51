package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/contractor"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/queue"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ErrNoCandidate is the distinguished "no assignment possible" outcome of assignment.
var ErrNoCandidate = services.ErrNoCandidate

// ErrAttemptsExhausted is returned when a job already used every assignment attempt.
var ErrAttemptsExhausted = errors.New("assignment attempts exhausted")

// Policy holds the assignment limits shared by the selector, the sweep and the
// pending-assignment job.
//
// ResponseTimeout must be positive and MaxAttempts at least 1; cmd.Config validates both
// before the handlers are built.
type Policy struct {
	ResponseTimeout time.Duration
	MaxAttempts     int
}

// DefaultPolicy returns a 15 minute response timeout and three attempts per job.
func DefaultPolicy() Policy {
	return Policy{
		ResponseTimeout: 15 * time.Minute,
		MaxAttempts:     3,
	}
}

// outbox collects notifications during a unit of work; they are sent after commit.
type outbox []ports.Notification

// add queues one notification for the recipient.
func (o *outbox) add(recipient kernel.UUID, event string, payload map[string]any) {
	*o = append(*o, ports.Notification{RecipientID: recipient, Event: event, Payload: payload})
}

// flush is called after commit only. A nil notifier drops everything.
func (o outbox) flush(ctx context.Context, notifier ports.Notifier) {
	if notifier == nil {
		return
	}
	for _, n := range o {
		notifier.Notify(ctx, n)
	}
}

// placeJob puts the job into the contractor's queue. The contractor row must be locked.
// The job becomes assigned when it lands as current and reserved otherwise.
func placeJob(
	ctx context.Context,
	uow UoW,
	j *job.Job,
	c *contractor.Contractor,
	priority *int,
	note string,
	now time.Time,
	out *outbox,
) (*queue.Entry, error) {
	queueRepo := uow.QueueRepository()

	q, err := queueRepo.Load(ctx, c.ID())
	if err != nil {
		return nil, err
	}

	entry, err := q.Enqueue(j.ID(), priority, now)
	if err != nil {
		return nil, err
	}

	event := ports.EventJobQueued
	if entry.Status() == queue.Current {
		event = ports.EventJobAssigned
		err = j.Assign(c.ID(), note, now)
	} else {
		err = j.Reserve(c.ID(), note, now)
	}
	if err != nil {
		return nil, err
	}
	c.MarkAssigned(now)

	if err = queueRepo.Save(ctx, q); err != nil {
		return nil, err
	}
	if err = uow.JobRepository().Update(ctx, j); err != nil {
		return nil, err
	}
	if err = uow.ContractorRepository().Update(ctx, c); err != nil {
		return nil, err
	}

	out.add(c.ID(), event, map[string]any{
		"jobId":    j.ID().String(),
		"position": entry.Position(),
	})
	return entry, nil
}

// promoteJob assigns the job whose entry just became current.
func promoteJob(ctx context.Context, uow UoW, entry *queue.Entry, now time.Time, out *outbox) error {
	if entry == nil {
		return nil
	}

	jobRepo := uow.JobRepository()
	j, err := jobRepo.GetForUpdate(ctx, entry.JobID())
	if err != nil {
		return err
	}
	if j.Status() != job.New {
		return nil
	}
	if err = j.Assign(entry.ContractorID(), "promoted to current", now); err != nil {
		return err
	}
	if err = jobRepo.Update(ctx, j); err != nil {
		return err
	}

	out.add(entry.ContractorID(), ports.EventJobAssigned, map[string]any{
		"jobId":    j.ID().String(),
		"position": entry.Position(),
	})
	return nil
}

// releaseJob returns a job that lost its queue entry to New when it still belongs to the
// contractor. Jobs already en route or on site are released too; terminal jobs are left alone.
func releaseJob(
	ctx context.Context,
	uow UoW,
	jobID, contractorID kernel.UUID,
	note string,
	now time.Time,
	out *outbox,
) error {
	jobRepo := uow.JobRepository()
	j, err := jobRepo.GetForUpdate(ctx, jobID)
	if err != nil {
		return err
	}
	if !j.IsBoundTo(contractorID) || j.Status().IsTerminal() {
		return nil
	}
	if err = j.Unassign(note, now); err != nil {
		return err
	}
	if err = jobRepo.Update(ctx, j); err != nil {
		return err
	}

	out.add(contractorID, ports.EventJobUnassigned, map[string]any{"jobId": jobID.String(), "reason": note})
	return nil
}

// jobAssigner runs the selector for one job inside a caller's unit of work.
type jobAssigner struct {
	selector services.ContractorSelector
	policy   Policy
}

// newJobAssigner wires the contractor selector with the given policy.
func newJobAssigner(policy Policy) jobAssigner {
	return jobAssigner{selector: services.NewContractorSelector(), policy: policy}
}

// assign selects a contractor for the job and enqueues it there. The job must be new and
// unbound. ErrNoCandidate leaves everything untouched.
//
// Selection runs on an unlocked snapshot. The chosen contractor row and then the job row
// are locked and the job is checked again before anything is written, so a job taken by
// a concurrent run fails with ErrInvalidState instead of being placed twice. Contractors
// in exclude are never chosen; the sweep passes the contractor that let the job go stale.
//
// Example:
//
//	var out outbox
//	c, entry, err := newJobAssigner(policy).assign(ctx, uow, jobID, now, &out)
//	if errors.Is(err, ErrNoCandidate) {
//		// job stays new and unbound
//	}
func (a jobAssigner) assign(
	ctx context.Context,
	uow UoW,
	jobID kernel.UUID,
	now time.Time,
	out *outbox,
	exclude ...kernel.UUID,
) (*contractor.Contractor, *queue.Entry, error) {
	j, err := uow.JobRepository().Get(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if err = a.checkAssignable(j); err != nil {
		return nil, nil, err
	}

	candidates, err := loadCandidates(ctx, uow, now)
	if err != nil {
		return nil, nil, err
	}
	chosen, err := a.selector.Select(j, candidates, exclude...)
	if err != nil {
		return nil, nil, err
	}

	c, err := uow.ContractorRepository().GetForUpdate(ctx, chosen.ID())
	if err != nil {
		return nil, nil, err
	}
	j, err = uow.JobRepository().GetForUpdate(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if err = a.checkAssignable(j); err != nil {
		return nil, nil, err
	}

	attempt, err := j.RecordAssignmentAttempt(now)
	if err != nil {
		return nil, nil, err
	}
	entry, err := placeJob(ctx, uow, j, c, nil, fmt.Sprintf("assignment attempt %d", attempt), now, out)
	if err != nil {
		return nil, nil, err
	}
	return c, entry, nil
}

// checkAssignable rejects bound, bidding and exhausted jobs.
func (a jobAssigner) checkAssignable(j *job.Job) error {
	if j.Status() != job.New || j.ContractorID() != nil {
		return errs.NewInvalidStateError("job", fmt.Sprintf("job %s is not waiting for a contractor", j.ID()))
	}
	if j.AllowBidding() {
		return errs.NewInvalidStateError("job", "bidding jobs are assigned by accepting a bid")
	}
	if j.AssignmentAttempts() >= a.policy.MaxAttempts {
		return ErrAttemptsExhausted
	}
	return nil
}

// loadCandidates pairs every available contractor with its active queue length and its
// calendar state for the day of now. Eligibility itself is left to the selector.
func loadCandidates(ctx context.Context, uow UoW, now time.Time) ([]services.Candidate, error) {
	contractors, err := uow.ContractorRepository().ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	if len(contractors) == 0 {
		return nil, nil
	}

	ids := make([]kernel.UUID, 0, len(contractors))
	for _, c := range contractors {
		ids = append(ids, c.ID())
	}
	active, err := uow.QueueRepository().CountActive(ctx, ids)
	if err != nil {
		return nil, err
	}

	calendar := uow.AvailabilityCalendar()
	candidates := make([]services.Candidate, 0, len(contractors))
	for _, c := range contractors {
		timeOff, err := calendar.HasApprovedTimeOff(ctx, c.ID(), now)
		if err != nil {
			return nil, err
		}
		override, err := calendar.HasAvailabilityOverride(ctx, c.ID(), now)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, services.Candidate{
			Contractor:  c,
			ActiveJobs:  active[c.ID()],
			HasTimeOff:  timeOff,
			HasOverride: override,
		})
	}
	return candidates, nil
}

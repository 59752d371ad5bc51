package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// SweepResult counts what one sweep did.
type SweepResult struct {
	Scanned    int
	Reassigned int
	Unassigned int
	Cancelled  int
	Skipped    int
	Failed     int
}

type staleOutcome int

const (
	outcomeSkipped staleOutcome = iota
	outcomeReassigned
	outcomeUnassigned
	outcomeCancelled
)

// RunReassignmentSweepCommandHandler finds assigned jobs whose contractor did not respond
// within the response timeout. Each job is handled in its own unit of work under a
// SKIP LOCKED row lock with the stale predicate checked again, so overlapping sweeps never
// touch the same job twice. A job that used every attempt is cancelled; any other job is
// unassigned and offered to a different contractor, or left new when nobody is eligible.
// A failure on one job is logged and counted and the sweep moves on.
//
// Example:
//
//	handler := NewRunReassignmentSweepCommandHandler(uowFactory, DefaultPolicy(), clock, notifier, logger)
//	cmd, _ := NewRunReassignmentSweepCommand(100)
//	result, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return err
//	}
//	log.Printf("reassigned %d, cancelled %d", result.Reassigned, result.Cancelled)
type RunReassignmentSweepCommandHandler struct {
	uowFactory UoWFactory
	assigner   jobAssigner
	policy     Policy
	clock      ports.Clock
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewRunReassignmentSweepCommandHandler creates the sweep. policy.ResponseTimeout decides
// when an assignment is stale and policy.MaxAttempts when a job is given up.
func NewRunReassignmentSweepCommandHandler(
	uowFactory UoWFactory,
	policy Policy,
	clock ports.Clock,
	notifier ports.Notifier,
	logger *slog.Logger,
) RunReassignmentSweepCommandHandler {
	return RunReassignmentSweepCommandHandler{
		uowFactory: uowFactory,
		assigner:   newJobAssigner(policy),
		policy:     policy,
		clock:      clock,
		notifier:   notifier,
		logger:     logger.With("component", "ReassignmentSweep"),
	}
}

// Handle computes the stale cutoff once and processes every listed job against it.
// Only a failure to list the stale jobs is returned as an error.
func (h RunReassignmentSweepCommandHandler) Handle(ctx context.Context, cmd RunReassignmentSweepCommand) (SweepResult, error) {
	if err := cmd.Validate(); err != nil {
		return SweepResult{}, err
	}

	cutoff := h.clock.Now().Add(-h.policy.ResponseTimeout)
	ids, err := h.listStale(ctx, cutoff, cmd.BatchSize())
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Scanned: len(ids)}
	for _, id := range ids {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		outcome, err := h.processJob(ctx, id, cutoff)
		if err != nil {
			result.Failed++
			h.logger.ErrorContext(ctx, "failed to process stale assignment",
				"job_id", id.String(), "error", err)
			continue
		}

		switch outcome {
		case outcomeReassigned:
			result.Reassigned++
		case outcomeUnassigned:
			result.Unassigned++
		case outcomeCancelled:
			result.Cancelled++
		default:
			result.Skipped++
		}
	}
	return result, nil
}

func (h RunReassignmentSweepCommandHandler) listStale(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()
	return uow.JobRepository().ListStaleIDs(ctx, cutoff, limit)
}

// processJob runs in its own unit of work. The previous contractor is excluded from
// the new selection.
func (h RunReassignmentSweepCommandHandler) processJob(ctx context.Context, jobID kernel.UUID, cutoff time.Time) (staleOutcome, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return outcomeSkipped, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.clock.Now()
	var out outbox

	jobRepo := uow.JobRepository()
	j, err := jobRepo.LockIfStale(ctx, jobID, cutoff)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return outcomeSkipped, nil
	}
	if err != nil {
		return outcomeSkipped, err
	}

	contractorID := *j.ContractorID()
	if _, err = uow.ContractorRepository().GetForUpdate(ctx, contractorID); err != nil {
		return outcomeSkipped, err
	}

	queueRepo := uow.QueueRepository()
	q, err := queueRepo.Load(ctx, contractorID)
	if err != nil {
		return outcomeSkipped, err
	}

	exhausted := j.AssignmentAttempts() >= h.policy.MaxAttempts
	reason := fmt.Sprintf("no response within %s", h.policy.ResponseTimeout)

	if q.EntryForJob(jobID) != nil {
		_, promoted, expireErr := q.Expire(jobID, reason, now)
		if expireErr != nil {
			return outcomeSkipped, expireErr
		}
		if err = queueRepo.Save(ctx, q); err != nil {
			return outcomeSkipped, err
		}
		if err = promoteJob(ctx, uow, promoted, now, &out); err != nil {
			return outcomeSkipped, err
		}
	}

	if exhausted {
		note := fmt.Sprintf("cancelled after %d assignment attempts without response", j.AssignmentAttempts())
		if err = j.Cancel(note, now); err != nil {
			return outcomeSkipped, err
		}
		if err = jobRepo.Update(ctx, j); err != nil {
			return outcomeSkipped, err
		}
		out.add(contractorID, ports.EventJobCancelled, map[string]any{"jobId": jobID.String(), "reason": note})
		out.add(j.CustomerID(), ports.EventJobCancelled, map[string]any{"jobId": jobID.String(), "reason": note})

		if err = uow.Commit(ctx); err != nil {
			return outcomeSkipped, err
		}
		out.flush(ctx, h.notifier)
		h.logger.InfoContext(ctx, "cancelled unanswered job", "job_id", jobID.String(), "attempts", j.AssignmentAttempts())
		return outcomeCancelled, nil
	}

	if err = j.Unassign(reason, now); err != nil {
		return outcomeSkipped, err
	}
	if err = jobRepo.Update(ctx, j); err != nil {
		return outcomeSkipped, err
	}
	out.add(contractorID, ports.EventJobUnassigned, map[string]any{"jobId": jobID.String(), "reason": reason})

	outcome := outcomeReassigned
	next, _, err := h.assigner.assign(ctx, uow, jobID, now, &out, contractorID)
	switch {
	case errors.Is(err, ErrNoCandidate):
		outcome = outcomeUnassigned
	case err != nil:
		return outcomeSkipped, err
	}

	if err = uow.Commit(ctx); err != nil {
		return outcomeSkipped, err
	}
	out.flush(ctx, h.notifier)

	if next != nil {
		h.logger.InfoContext(ctx, "reassigned stale job",
			"job_id", jobID.String(), "from_contractor_id", contractorID.String(), "contractor_id", next.ID().String())
	} else {
		h.logger.InfoContext(ctx, "unassigned stale job, no alternative contractor", "job_id", jobID.String())
	}
	return outcome, nil
}

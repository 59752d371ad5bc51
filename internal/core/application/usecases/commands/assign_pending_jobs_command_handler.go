package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// PendingResult counts what one pass over waiting jobs did.
type PendingResult struct {
	Scanned     int
	Assigned    int
	NoCandidate int
	Cancelled   int
	Skipped     int
	Failed      int
}

// AssignPendingJobsCommandHandler runs the selector for waiting jobs, oldest first, each
// in its own unit of work under a SKIP LOCKED row lock. A job that already used every
// attempt is cancelled instead.
//
// Failures are counted per job and logged. The batch continues past them and stops
// early only when ctx is done.
//
// Example:
//
//	handler := NewAssignPendingJobsCommandHandler(uowFactory, DefaultPolicy(), clock, notifier, logger)
//	cmd, _ := NewAssignPendingJobsCommand(50)
//	result, err := handler.Handle(ctx, cmd)
//	if err != nil {
//		return err
//	}
//	logger.Info("pending run", "assigned", result.Assigned, "no_candidate", result.NoCandidate)
type AssignPendingJobsCommandHandler struct {
	uowFactory UoWFactory
	assigner   jobAssigner
	policy     Policy
	clock      ports.Clock
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewAssignPendingJobsCommandHandler creates the handler. It opens one unit of work per
// job so a failure never rolls back the jobs already placed.
func NewAssignPendingJobsCommandHandler(
	uowFactory UoWFactory,
	policy Policy,
	clock ports.Clock,
	notifier ports.Notifier,
	logger *slog.Logger,
) AssignPendingJobsCommandHandler {
	return AssignPendingJobsCommandHandler{
		uowFactory: uowFactory,
		assigner:   newJobAssigner(policy),
		policy:     policy,
		clock:      clock,
		notifier:   notifier,
		logger:     logger.With("component", "PendingAssignment"),
	}
}

// Handle lists up to BatchSize waiting jobs and tries each one. ErrNoCandidate is only
// counted; a job taken by another worker in between counts as skipped. Other failures
// are logged and counted.
func (h AssignPendingJobsCommandHandler) Handle(ctx context.Context, cmd AssignPendingJobsCommand) (PendingResult, error) {
	if err := cmd.Validate(); err != nil {
		return PendingResult{}, err
	}

	ids, err := h.listWaiting(ctx, cmd.BatchSize())
	if err != nil {
		return PendingResult{}, err
	}

	result := PendingResult{Scanned: len(ids)}
	for _, id := range ids {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		err := h.processJob(ctx, id)
		switch {
		case err == nil:
			result.Assigned++
		case errors.Is(err, ErrNoCandidate):
			result.NoCandidate++
		case errors.Is(err, ErrAttemptsExhausted):
			result.Cancelled++
		case errors.Is(err, errs.ErrObjectNotFound):
			result.Skipped++
		default:
			result.Failed++
			h.logger.ErrorContext(ctx, "failed to assign waiting job", "job_id", id.String(), "error", err)
		}
	}
	return result, nil
}

// listWaiting reads the ids in a short transaction of its own; each job is then locked
// separately by processJob.
func (h AssignPendingJobsCommandHandler) listWaiting(ctx context.Context, limit int) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()
	return uow.JobRepository().ListUnassignedIDs(ctx, limit)
}

// processJob re-reads the job under its row lock; a job another worker already moved
// on is skipped.
func (h AssignPendingJobsCommandHandler) processJob(ctx context.Context, jobID kernel.UUID) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.clock.Now()
	var out outbox

	jobRepo := uow.JobRepository()
	j, err := jobRepo.LockIfUnassigned(ctx, jobID)
	if err != nil {
		return err
	}

	if j.AssignmentAttempts() >= h.policy.MaxAttempts {
		note := fmt.Sprintf("cancelled after %d assignment attempts", j.AssignmentAttempts())
		if err = j.Cancel(note, now); err != nil {
			return err
		}
		if err = jobRepo.Update(ctx, j); err != nil {
			return err
		}
		out.add(j.CustomerID(), ports.EventJobCancelled, map[string]any{"jobId": jobID.String(), "reason": note})
		if err = uow.Commit(ctx); err != nil {
			return err
		}
		out.flush(ctx, h.notifier)
		return ErrAttemptsExhausted
	}

	if _, _, err = h.assigner.assign(ctx, uow, jobID, now, &out); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}
	out.flush(ctx, h.notifier)
	return nil
}

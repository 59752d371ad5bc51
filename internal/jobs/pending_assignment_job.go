package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/telemetry"
)

// PendingHandler is satisfied by commands.AssignPendingJobsCommandHandler.
type PendingHandler interface {
	Handle(ctx context.Context, cmd commands.AssignPendingJobsCommand) (commands.PendingResult, error)
}

// PendingAssignmentJob retries assignment for waiting jobs, including those the sweep
// left unassigned.
type PendingAssignmentJob struct {
	handler   PendingHandler
	batchSize int
	schedule  schedule
	logger    *slog.Logger
}

// NewPendingAssignmentJob creates the job on a six-field cron spec (seconds first).
//
// The job picks up work the API could not place at creation time, e.g. because every
// contractor was busy or off, and jobs a sweep released without a new contractor.
//
// Example:
//
//	pending := jobs.NewPendingAssignmentJob(handler, "*/30 * * * * *", 100, logger)
func NewPendingAssignmentJob(handler PendingHandler, spec string, batchSize int, logger *slog.Logger) *PendingAssignmentJob {
	logger = logger.With("component", "pending_assignment_job")
	return &PendingAssignmentJob{
		handler:   handler,
		batchSize: batchSize,
		schedule:  newSchedule("Pending assignment job", spec, logger),
		logger:    logger,
	}
}

// Start begins running the job on its schedule.
func (j *PendingAssignmentJob) Start() error {
	return j.schedule.start(j.Run)
}

// Stop stops the pending assignment job.
func (j *PendingAssignmentJob) Stop() {
	j.schedule.stop()
}

func (j *PendingAssignmentJob) Run(ctx context.Context) {
	defer telemetry.ObserveJob("pending_assignment", time.Now())

	cmd, err := commands.NewAssignPendingJobsCommand(j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Pending assignment misconfigured", "error", err)
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Pending assignment failed", "error", err)
		return
	}
	telemetry.RecordPending(result)

	// a run where nobody could take anything is normal and stays quiet
	if result.Assigned+result.Cancelled+result.Failed > 0 {
		j.logger.InfoContext(ctx, "Pending assignment finished",
			"scanned", result.Scanned,
			"assigned", result.Assigned,
			"no_candidate", result.NoCandidate,
			"cancelled", result.Cancelled,
			"failed", result.Failed,
		)
	}
}

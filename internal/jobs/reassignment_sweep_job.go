package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/telemetry"
)

// SweepHandler is satisfied by commands.RunReassignmentSweepCommandHandler.
type SweepHandler interface {
	Handle(ctx context.Context, cmd commands.RunReassignmentSweepCommand) (commands.SweepResult, error)
}

// ReassignmentSweepJob runs the staled-assignment monitor.
//
// Each run releases assignments that went unanswered for longer than the policy's
// response timeout and hands them to the next eligible contractor. Outcomes are counted
// in the dispatch_sweep_jobs_total metric.
//
// Example:
//
//	sweep := jobs.NewReassignmentSweepJob(handler, "0 * * * * *", 100, logger)
//	if err := sweep.Start(); err != nil {
//		return err
//	}
//	defer sweep.Stop()
type ReassignmentSweepJob struct {
	handler   SweepHandler
	batchSize int
	schedule  schedule
	logger    *slog.Logger
}

// NewReassignmentSweepJob creates the sweep on a six-field cron spec (seconds first).
// Overlapping runs are skipped by the scheduler; row locks keep parallel instances apart.
func NewReassignmentSweepJob(handler SweepHandler, spec string, batchSize int, logger *slog.Logger) *ReassignmentSweepJob {
	logger = logger.With("component", "reassignment_sweep_job")
	return &ReassignmentSweepJob{
		handler:   handler,
		batchSize: batchSize,
		schedule:  newSchedule("Reassignment sweep job", spec, logger),
		logger:    logger,
	}
}

// Start begins running the sweep on its schedule.
func (j *ReassignmentSweepJob) Start() error {
	return j.schedule.start(j.Run)
}

// Stop stops the sweep.
func (j *ReassignmentSweepJob) Stop() {
	j.schedule.stop()
}

// Run performs one sweep.
//
// Errors are logged and not returned; the next scheduled run starts from scratch. A run
// that found nothing stale logs nothing.
func (j *ReassignmentSweepJob) Run(ctx context.Context) {
	defer telemetry.ObserveJob("reassignment_sweep", time.Now())

	cmd, err := commands.NewRunReassignmentSweepCommand(j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Reassignment sweep misconfigured", "error", err)
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Reassignment sweep failed", "error", err)
		return
	}
	telemetry.RecordSweep(result)

	if result.Scanned > 0 {
		j.logger.InfoContext(ctx, "Reassignment sweep finished",
			"scanned", result.Scanned,
			"reassigned", result.Reassigned,
			"unassigned", result.Unassigned,
			"cancelled", result.Cancelled,
			"skipped", result.Skipped,
			"failed", result.Failed,
		)
	}
}

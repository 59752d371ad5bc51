package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/telemetry"
)

// BiddingCloseHandler is satisfied by commands.CloseExpiredBiddingCommandHandler.
type BiddingCloseHandler interface {
	Handle(ctx context.Context, cmd commands.CloseExpiredBiddingCommand) (commands.CloseResult, error)
}

// BiddingCloseJob auto-accepts the lowest bid on expired bidding windows.
type BiddingCloseJob struct {
	handler   BiddingCloseHandler
	batchSize int
	schedule  schedule
	logger    *slog.Logger
}

// NewBiddingCloseJob creates the job on a six-field cron spec (seconds first).
// Uses CloseExpiredBiddingCommandHandler to settle at most batchSize jobs per run.
func NewBiddingCloseJob(handler BiddingCloseHandler, spec string, batchSize int, logger *slog.Logger) *BiddingCloseJob {
	logger = logger.With("component", "bidding_close_job")
	return &BiddingCloseJob{
		handler:   handler,
		batchSize: batchSize,
		schedule:  newSchedule("Bidding close job", spec, logger),
		logger:    logger,
	}
}

// Start registers the run with cron and starts the scheduler.
func (j *BiddingCloseJob) Start() error {
	return j.schedule.start(j.Run)
}

// Stop stops the scheduler and waits for a run in progress.
func (j *BiddingCloseJob) Stop() {
	j.schedule.stop()
}

// Run performs one pass. Errors are logged; nothing is returned to cron.
func (j *BiddingCloseJob) Run(ctx context.Context) {
	defer telemetry.ObserveJob("bidding_close", time.Now())

	cmd, err := commands.NewCloseExpiredBiddingCommand(j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Bidding close misconfigured", "error", err)
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Bidding close failed", "error", err)
		return
	}
	telemetry.RecordBiddingClose(result)

	if result.Scanned > 0 {
		j.logger.InfoContext(ctx, "Bidding close finished",
			"scanned", result.Scanned,
			"accepted", result.Accepted,
			"skipped", result.Skipped,
			"failed", result.Failed,
		)
	}
}

package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// schedule owns the cron instance of one job.
type schedule struct {
	name   string
	spec   string
	cron   *cron.Cron
	logger *slog.Logger
}

// newSchedule builds a seconds-precision cron that recovers panics and skips a run
// while the previous one is still going. An invalid spec is reported by start.
func newSchedule(name, spec string, logger *slog.Logger) schedule {
	cl := cronLogger{logger: logger}
	return schedule{
		name: name,
		spec: spec,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}
}

// start registers run and starts the cron. Runs get a background context; stop waits
// for them instead of cancelling.
func (s schedule) start(run func(ctx context.Context)) error {
	if _, err := s.cron.AddFunc(s.spec, func() { run(context.Background()) }); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info(s.name+" started", "schedule", s.spec)
	return nil
}

// stop waits for a run in progress to finish.
func (s schedule) stop() {
	<-s.cron.Stop().Done()
	s.logger.Info(s.name + " stopped")
}

// cronLogger routes cron's own messages to slog.
type cronLogger struct {
	logger *slog.Logger
}

// Info is demoted to debug; cron reports every wake-up and skipped run through it.
func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

// Error carries recovered panics.
func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

package telemetry

import (
	"net/http"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors are package level so the background jobs and the notifier decorator share
// one set. They are registered lazily by Handler.
var (
	once sync.Once

	// SweepOutcomes counts stale assignments by what the sweep did with them.
	SweepOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_sweep_jobs_total",
		Help: "Stale assignments handled by the reassignment sweep, by outcome",
	}, []string{"outcome"})
	// PendingOutcomes counts waiting jobs by the result of the pending assignment run.
	PendingOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_pending_jobs_total",
		Help: "Waiting jobs handled by the pending assignment run, by outcome",
	}, []string{"outcome"})
	// BiddingOutcomes counts expired bidding windows by auto-accept result.
	BiddingOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_bidding_closed_total",
		Help: "Expired bidding windows handled by the auto-accept run, by outcome",
	}, []string{"outcome"})
	// JobDuration is labelled with the background job name.
	JobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_background_job_duration_seconds",
		Help:    "Wall time of one background job run",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	// Notifications is incremented by the counting notifier, by event name.
	Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_notifications_total",
		Help: "Notifications handed to the notifier, by event",
	}, []string{"event"})
)

// Handler exposes /metrics with the default registry, registering the collectors once.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			SweepOutcomes,
			PendingOutcomes,
			BiddingOutcomes,
			JobDuration,
			Notifications,
		)
	})
	return promhttp.Handler()
}

// RecordSweep adds one sweep's counts.
func RecordSweep(r commands.SweepResult) {
	add(SweepOutcomes, "reassigned", r.Reassigned)
	add(SweepOutcomes, "unassigned", r.Unassigned)
	add(SweepOutcomes, "cancelled", r.Cancelled)
	add(SweepOutcomes, "skipped", r.Skipped)
	add(SweepOutcomes, "failed", r.Failed)
}

// RecordPending adds one pending-assignment run's counts.
func RecordPending(r commands.PendingResult) {
	add(PendingOutcomes, "assigned", r.Assigned)
	add(PendingOutcomes, "no_candidate", r.NoCandidate)
	add(PendingOutcomes, "cancelled", r.Cancelled)
	add(PendingOutcomes, "skipped", r.Skipped)
	add(PendingOutcomes, "failed", r.Failed)
}

// RecordBiddingClose adds one auto-accept run's counts.
func RecordBiddingClose(r commands.CloseResult) {
	add(BiddingOutcomes, "accepted", r.Accepted)
	add(BiddingOutcomes, "skipped", r.Skipped)
	add(BiddingOutcomes, "failed", r.Failed)
}

// ObserveJob records the time elapsed since start under the job name.
func ObserveJob(job string, start time.Time) {
	JobDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
}

// add skips zero counts so untouched outcomes do not create series.
func add(vec *prometheus.CounterVec, outcome string, n int) {
	if n > 0 {
		vec.WithLabelValues(outcome).Add(float64(n))
	}
}

package jobs

import (
	"fmt"
)

// JobManager starts and stops the dispatch background jobs together.
type JobManager struct {
	sweepJob        *ReassignmentSweepJob
	pendingJob      *PendingAssignmentJob
	biddingCloseJob *BiddingCloseJob
}

// NewJobManager groups the three background jobs. All three must be non-nil.
//
// Example:
//
//	manager := jobs.NewJobManager(sweepJob, pendingJob, biddingCloseJob)
//	if err := manager.StartAll(); err != nil {
//		log.Fatal(err)
//	}
//	defer manager.StopAll()
func NewJobManager(
	sweepJob *ReassignmentSweepJob,
	pendingJob *PendingAssignmentJob,
	biddingCloseJob *BiddingCloseJob,
) *JobManager {
	return &JobManager{
		sweepJob:        sweepJob,
		pendingJob:      pendingJob,
		biddingCloseJob: biddingCloseJob,
	}
}

// StartAll starts every job. If one fails to start, the ones already running are stopped.
func (jm *JobManager) StartAll() error {
	if err := jm.sweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start reassignment sweep job: %w", err)
	}

	if err := jm.pendingJob.Start(); err != nil {
		jm.sweepJob.Stop()
		return fmt.Errorf("failed to start pending assignment job: %w", err)
	}

	if err := jm.biddingCloseJob.Start(); err != nil {
		jm.pendingJob.Stop()
		jm.sweepJob.Stop()
		return fmt.Errorf("failed to start bidding close job: %w", err)
	}

	return nil
}

// StopAll stops every job, waiting for runs in progress.
func (jm *JobManager) StopAll() {
	jm.biddingCloseJob.Stop()
	jm.pendingJob.Stop()
	jm.sweepJob.Stop()
}

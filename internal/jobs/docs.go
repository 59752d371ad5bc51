// Package jobs runs the dispatch background work on cron schedules
// (github.com/robfig/cron/v3, six-field expressions with seconds).
//
// # Jobs
//
//  1. ReassignmentSweepJob - moves assignments nobody responded to on to the next
//     contractor and cancels jobs that used every attempt.
//  2. PendingAssignmentJob - retries the selector for direct-dispatch jobs still waiting
//     in "new", oldest first.
//  3. BiddingCloseJob - settles bidding windows that passed their deadline under the
//     "lowest" auto-accept policy.
//
// # Usage
//
//	manager := jobs.NewJobManager(sweep, pending, closing)
//	if err := manager.StartAll(); err != nil {
//		return err
//	}
//	defer manager.StopAll()
//
// Every job skips a tick while its previous run is still going, so runs of the same
// job never overlap. Runs of different jobs may; the command handlers lock rows with
// SKIP LOCKED and re-check their predicates.
package jobs

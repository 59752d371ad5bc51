// Package ports defines the contracts between the dispatch core and its infrastructure:
// repositories bound to a unit of work, the availability calendar, notifications and time.
package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
)

// JobRepository persists Job aggregates together with their status history.
type JobRepository interface {
	// Add inserts a new job and its pending history entries.
	Add(ctx context.Context, aggregate *job.Job) error

	// Update writes the job row and appends its pending history entries.
	Update(ctx context.Context, aggregate *job.Job) error

	// Get loads a job without locking it. Unknown ids yield ErrObjectNotFound.
	Get(ctx context.Context, id kernel.UUID) (*job.Job, error)

	// GetForUpdate loads the job and locks its row until the unit of work ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*job.Job, error)

	// ListStaleIDs returns assigned jobs whose last assignment attempt is older than cutoff,
	// oldest first.
	ListStaleIDs(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error)

	// LockIfStale locks the job with SKIP LOCKED and only when it is still stale.
	// A job that is locked elsewhere or no longer stale yields ErrObjectNotFound.
	LockIfStale(ctx context.Context, id kernel.UUID, cutoff time.Time) (*job.Job, error)

	// ListUnassignedIDs returns new, unreserved, direct-dispatch jobs, oldest first.
	ListUnassignedIDs(ctx context.Context, limit int) ([]kernel.UUID, error)

	// LockIfUnassigned locks the job with SKIP LOCKED and only while it is still waiting
	// for a contractor. Otherwise it yields ErrObjectNotFound.
	LockIfUnassigned(ctx context.Context, id kernel.UUID) (*job.Job, error)

	// ListExpiredBiddingIDs returns bidding jobs with the "lowest" auto-accept policy, no
	// winner and a deadline that has passed.
	ListExpiredBiddingIDs(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error)
}

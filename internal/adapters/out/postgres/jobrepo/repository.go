package jobrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormJobRepository implements ports.JobRepository using GORM.
//
// Example:
//
//	repo := uow.JobRepository()
//	j, err := repo.GetForUpdate(ctx, jobID)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    return err
//	}
//	_ = j.StartTravel(now)
//	err = repo.Update(ctx, j)
type GormJobRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker is implemented by the unit of work.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormJobRepository binds the repository to db, usually the open transaction.
func NewGormJobRepository(db *gorm.DB, tracker aggregateTracker) *GormJobRepository {
	return &GormJobRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the job row and its pending history.
func (r *GormJobRepository) Add(ctx context.Context, aggregate *job.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Classify("insert job", err)
	}
	if err := r.appendHistory(ctx, aggregate); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update overwrites every column so that cleared references are written as NULL.
func (r *GormJobRepository) Update(ctx context.Context, aggregate *job.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&JobDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return pgerr.Classify("update job", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("jobId", aggregate.ID())
	}
	if err := r.appendHistory(ctx, aggregate); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get reads the job without a lock.
func (r *GormJobRepository) Get(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	return r.take(id, r.db.WithContext(ctx))
}

// GetForUpdate takes a row lock that lasts until the transaction ends.
func (r *GormJobRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	return r.take(id, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}))
}

// ListStaleIDs reads without locks; LockIfStale re-checks every id.
func (r *GormJobRepository) ListStaleIDs(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	query := r.db.WithContext(ctx).Model(&JobDTO{}).
		Where("status = ? AND last_assignment_attempt_at < ?", job.Assigned.String(), cutoff).
		Order("last_assignment_attempt_at")
	return pluckIDs(query, limit)
}

// LockIfStale returns ErrObjectNotFound when another sweep holds the row or the job
// moved on since it was listed.
func (r *GormJobRepository) LockIfStale(ctx context.Context, id kernel.UUID, cutoff time.Time) (*job.Job, error) {
	query := skipLocked(r.db.WithContext(ctx)).
		Where("status = ? AND last_assignment_attempt_at < ?", job.Assigned.String(), cutoff)
	return r.take(id, query)
}

// ListUnassignedIDs returns waiting direct-dispatch jobs, oldest first.
func (r *GormJobRepository) ListUnassignedIDs(ctx context.Context, limit int) ([]kernel.UUID, error) {
	query := unassigned(r.db.WithContext(ctx).Model(&JobDTO{})).Order("created_at")
	return pluckIDs(query, limit)
}

// LockIfUnassigned skips rows another worker holds.
func (r *GormJobRepository) LockIfUnassigned(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	return r.take(id, unassigned(skipLocked(r.db.WithContext(ctx))))
}

// ListExpiredBiddingIDs returns jobs with the lowest-bid policy whose deadline is at or
// before now, earliest deadline first.
func (r *GormJobRepository) ListExpiredBiddingIDs(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error) {
	query := r.db.WithContext(ctx).Model(&JobDTO{}).
		Where("allow_bidding AND status = ? AND contractor_id IS NULL AND winning_bid_id IS NULL",
			job.New.String()).
		Where("auto_accept_policy = ? AND bidding_deadline <= ?", string(job.AutoAcceptLowest), now).
		Order("bidding_deadline")
	return pluckIDs(query, limit)
}

func (r *GormJobRepository) take(id kernel.UUID, query *gorm.DB) (*job.Job, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto JobDTO
	if err := query.Where("id = ?", id.Bytes()).Take(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("jobId", id)
		}
		return nil, pgerr.Classify("load job", err)
	}

	return toDomain(dto)
}

func (r *GormJobRepository) appendHistory(ctx context.Context, aggregate *job.Job) error {
	pending := aggregate.PendingHistory()
	if len(pending) == 0 {
		return nil
	}

	rows := make([]HistoryDTO, 0, len(pending))
	for _, h := range pending {
		rows = append(rows, historyFromDomain(h))
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return pgerr.Classify("insert job history", err)
	}

	aggregate.ClearPendingHistory()
	return nil
}

// skipLocked adds FOR UPDATE SKIP LOCKED.
func skipLocked(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate, Options: clause.LockingOptionsSkipLocked})
}

// unassigned matches new, unreserved, direct-dispatch jobs.
func unassigned(db *gorm.DB) *gorm.DB {
	return db.Where("status = ? AND contractor_id IS NULL AND NOT allow_bidding", job.New.String())
}

func pluckIDs(query *gorm.DB, limit int) ([]kernel.UUID, error) {
	var raw []uuid.UUID
	if err := query.Limit(limit).Pluck("id", &raw).Error; err != nil {
		return nil, pgerr.Classify("list job ids", err)
	}

	ids := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := kernel.UUIDFromBytes(r[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

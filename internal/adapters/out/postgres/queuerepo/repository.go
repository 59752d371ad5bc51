package queuerepo

import (
	"context"
	"errors"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/queue"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// activeStatuses are the entry statuses that hold a position.
var activeStatuses = []string{queue.Current.String(), queue.Queued.String()}

// GormQueueRepository implements ports.QueueRepository using GORM.
//
// Entries are stored one row each; the queue aggregate only exists in memory.
type GormQueueRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker is implemented by the unit of work.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormQueueRepository binds the repository to db, usually the open transaction.
func NewGormQueueRepository(db *gorm.DB, tracker aggregateTracker) *GormQueueRepository {
	return &GormQueueRepository{
		db:      db,
		tracker: tracker,
	}
}

// Load reads the active entries of the contractor ordered by position.
func (r *GormQueueRepository) Load(ctx context.Context, contractorID kernel.UUID) (*queue.Queue, error) {
	if err := contractorID.Validate(); err != nil {
		return nil, err
	}

	var dtos []EntryDTO
	err := r.db.WithContext(ctx).
		Where("contractor_id = ? AND status IN ?", contractorID.Bytes(), activeStatuses).
		Order("position").
		Find(&dtos).Error
	if err != nil {
		return nil, pgerr.Classify("load queue", err)
	}

	entries := make([]*queue.Entry, 0, len(dtos))
	for _, dto := range dtos {
		e, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return queue.New(contractorID, entries)
}

// Save deletes removed entries first, then upserts every touched entry.
//
// Positions are not unique in the table, so moving entries around inside one save
// never trips a constraint halfway through. Only position, status, note and updated_at
// change on an existing row.
//
// Example:
//
//	q, err := repo.Load(ctx, contractorID)
//	if err != nil {
//		return err
//	}
//	if _, err = q.Enqueue(jobID, nil, now); err != nil {
//		return err
//	}
//	return repo.Save(ctx, q)
func (r *GormQueueRepository) Save(ctx context.Context, q *queue.Queue) error {
	if err := q.Validate(); err != nil {
		return err
	}

	upserts, deletes := q.Changes()
	db := r.db.WithContext(ctx)

	if len(deletes) > 0 {
		ids := make([]uuid.UUID, 0, len(deletes))
		for _, id := range deletes {
			ids = append(ids, id.Bytes())
		}
		if err := db.Where("id IN ?", ids).Delete(&EntryDTO{}).Error; err != nil {
			return pgerr.Classify("delete queue entries", err)
		}
	}

	if len(upserts) > 0 {
		rows := make([]EntryDTO, 0, len(upserts))
		for _, e := range upserts {
			rows = append(rows, fromDomain(e))
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"position", "status", "note", "updated_at"}),
		}).Create(&rows).Error
		if err != nil {
			return pgerr.Classify("upsert queue entries", err)
		}
	}

	q.ClearChanges()
	r.tracker.TrackAggregate(q.ContractorID(), q)
	return nil
}

// GetEntry reads one entry without locking its queue.
func (r *GormQueueRepository) GetEntry(ctx context.Context, id kernel.UUID) (*queue.Entry, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto EntryDTO
	if err := r.db.WithContext(ctx).Take(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("queueEntryId", id)
		}
		return nil, pgerr.Classify("load queue entry", err)
	}
	return toDomain(dto)
}

// FindLatestByJob orders by creation time, so a job enqueued again after a skip
// returns its new entry.
func (r *GormQueueRepository) FindLatestByJob(ctx context.Context, jobID kernel.UUID) (*queue.Entry, error) {
	if err := jobID.Validate(); err != nil {
		return nil, err
	}

	var dto EntryDTO
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID.Bytes()).
		Order("created_at DESC, updated_at DESC").
		Take(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("jobId", jobID)
		}
		return nil, pgerr.Classify("load queue entry", err)
	}
	return toDomain(dto)
}

// CountActive groups active entries per contractor in one query.
func (r *GormQueueRepository) CountActive(ctx context.Context, contractorIDs []kernel.UUID) (map[kernel.UUID]int, error) {
	counts := make(map[kernel.UUID]int)
	if len(contractorIDs) == 0 {
		return counts, nil
	}

	raw := make([]uuid.UUID, 0, len(contractorIDs))
	for _, id := range contractorIDs {
		raw = append(raw, id.Bytes())
	}

	var rows []struct {
		ContractorID uuid.UUID
		Active       int
	}
	err := r.db.WithContext(ctx).Model(&EntryDTO{}).
		Select("contractor_id, COUNT(*) AS active").
		Where("contractor_id IN ? AND status IN ?", raw, activeStatuses).
		Group("contractor_id").
		Scan(&rows).Error
	if err != nil {
		return nil, pgerr.Classify("count queue entries", err)
	}

	for _, row := range rows {
		id, err := kernel.UUIDFromBytes(row.ContractorID[:])
		if err != nil {
			return nil, err
		}
		counts[id] = row.Active
	}
	return counts, nil
}

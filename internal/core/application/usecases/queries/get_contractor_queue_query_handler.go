package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/queue"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetContractorQueueQueryHandler reads queue_entries directly, bypassing the queue aggregate.
//
// The job status is joined in so a reserved job (new) can be told apart from one the
// contractor has started.
//
// Example:
//
//	handler := queries.NewGetContractorQueueQueryHandler(db)
//	query, err := queries.NewGetContractorQueueQuery(contractorID)
//	if err != nil {
//		return err
//	}
//	items, err := handler.Handle(ctx, query)
//	for _, item := range items {
//		fmt.Printf("%d %s %s\n", item.Position, item.JobID, item.JobStatus)
//	}
type GetContractorQueueQueryHandler struct {
	db *gorm.DB
}

// NewGetContractorQueueQueryHandler reads through db outside any unit of work.
func NewGetContractorQueueQueryHandler(db *gorm.DB) GetContractorQueueQueryHandler {
	return GetContractorQueueQueryHandler{db: db}
}

// Handle returns the active entries ordered by position. A contractor without
// active entries, or an unknown one, yields an empty slice.
func (h GetContractorQueueQueryHandler) Handle(
	ctx context.Context,
	query GetContractorQueueQuery,
) ([]ContractorQueueItem, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	items := make([]ContractorQueueItem, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			e.id,
			e.job_id,
			e.position,
			e.status,
			j.status,
			e.created_at
		FROM queue_entries e
		JOIN jobs j ON j.id = e.job_id
		WHERE e.contractor_id = ? AND e.status IN ?
		ORDER BY e.position
	`, query.ContractorID().Bytes(), []string{queue.Current.String(), queue.Queued.String()}).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item ContractorQueueItem
		var entryID, jobID uuid.UUID
		var entryStatus, jobStatus string
		var enqueuedAt time.Time

		if err = rows.Scan(&entryID, &jobID, &item.Position, &entryStatus, &jobStatus, &enqueuedAt); err != nil {
			return nil, err
		}

		if item.EntryID, err = kernel.UUIDFromBytes(entryID[:]); err != nil {
			return nil, err
		}
		if item.JobID, err = kernel.UUIDFromBytes(jobID[:]); err != nil {
			return nil, err
		}
		if item.JobStatus, err = job.ParseStatus(jobStatus); err != nil {
			return nil, err
		}
		item.Status = queue.EntryStatus(entryStatus)
		item.EnqueuedAt = enqueuedAt.UTC()
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

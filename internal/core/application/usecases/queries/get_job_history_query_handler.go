package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/job"

	"gorm.io/gorm"
)

// GetJobHistoryQueryHandler reads job_status_history in insertion order.
//
// Rows are ordered by their insert sequence rather than by timestamp, so transitions
// recorded in the same instant keep the order they happened in. The first item of a
// job is its creation, from job.Unknown to job.New.
//
// Example:
//
//	query, _ := queries.NewGetJobHistoryQuery(jobID)
//	history, err := queries.NewGetJobHistoryQueryHandler(db).Handle(ctx, query)
//	if err != nil {
//		return err
//	}
//	for _, h := range history {
//		fmt.Printf("%s -> %s: %s\n", h.From, h.To, h.Note)
//	}
type GetJobHistoryQueryHandler struct {
	db *gorm.DB
}

// NewGetJobHistoryQueryHandler reads through db outside any unit of work.
func NewGetJobHistoryQueryHandler(db *gorm.DB) GetJobHistoryQueryHandler {
	return GetJobHistoryQueryHandler{db: db}
}

// Handle returns no items for a job without history, including unknown jobs.
func (h GetJobHistoryQueryHandler) Handle(ctx context.Context, query GetJobHistoryQuery) ([]JobHistoryItem, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT from_status, to_status, note, changed_at
		FROM job_status_history
		WHERE job_id = ?
		ORDER BY seq
	`, query.JobID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]JobHistoryItem, 0)
	for rows.Next() {
		var item JobHistoryItem
		var from, to string
		var changedAt time.Time

		if err = rows.Scan(&from, &to, &item.Note, &changedAt); err != nil {
			return nil, err
		}
		if item.From, err = parseFromStatus(from); err != nil {
			return nil, err
		}
		if item.To, err = job.ParseStatus(to); err != nil {
			return nil, err
		}
		item.ChangedAt = changedAt.UTC()
		history = append(history, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}

// parseFromStatus accepts "unknown", which the creation row stores as its predecessor.
func parseFromStatus(s string) (job.Status, error) {
	if s == job.Unknown.String() {
		return job.Unknown, nil
	}
	return job.ParseStatus(s)
}

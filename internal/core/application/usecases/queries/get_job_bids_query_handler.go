package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetJobBidsQueryHandler reads bids straight from the bids table for listing endpoints.
//
// Example:
//
//	query, _ := NewGetJobBidsQuery(jobID, true)
//	items, err := NewGetJobBidsQueryHandler(db).Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	for _, item := range items {
//	    fmt.Println(item.ContractorID, item.Amount, item.Status)
//	}
type GetJobBidsQueryHandler struct {
	db *gorm.DB
}

// NewGetJobBidsQueryHandler reads through db outside any unit of work.
func NewGetJobBidsQueryHandler(db *gorm.DB) GetJobBidsQueryHandler {
	return GetJobBidsQueryHandler{db: db}
}

// Handle orders bids by score, highest first. Unranked bids follow in submission order.
func (h GetJobBidsQueryHandler) Handle(ctx context.Context, query GetJobBidsQuery) ([]JobBidItem, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sql := `
		SELECT
			id,
			contractor_id,
			amount_cents,
			estimated_duration_seconds,
			message,
			status,
			price_rank,
			time_rank,
			quality_rank,
			score,
			is_counter_offer,
			created_at
		FROM job_bids
		WHERE job_id = @job
			AND (NOT @pending_only OR status = @pending)
		ORDER BY score DESC NULLS LAST, seq
	`
	rows, err := h.db.WithContext(ctx).Raw(sql, map[string]any{
		"job":          query.JobID().Bytes(),
		"pending_only": query.PendingOnly(),
		"pending":      bid.Pending.String(),
	}).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := make([]JobBidItem, 0)
	for rows.Next() {
		var item JobBidItem
		var id, contractorID uuid.UUID
		var amountCents int64
		var durationSeconds *int64
		var status string
		var submittedAt time.Time

		err = rows.Scan(
			&id,
			&contractorID,
			&amountCents,
			&durationSeconds,
			&item.Message,
			&status,
			&item.PriceRank,
			&item.TimeRank,
			&item.QualityRank,
			&item.Score,
			&item.IsCounterOffer,
			&submittedAt,
		)
		if err != nil {
			return nil, err
		}

		if item.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if item.ContractorID, err = kernel.UUIDFromBytes(contractorID[:]); err != nil {
			return nil, err
		}
		if item.Amount, err = kernel.NewMoney(amountCents); err != nil {
			return nil, err
		}
		if durationSeconds != nil {
			d := time.Duration(*durationSeconds) * time.Second
			item.EstimatedDuration = &d
		}
		item.Status = bid.Status(status)
		item.SubmittedAt = submittedAt.UTC()
		bids = append(bids, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bids, nil
}

// Package bidrepo persists job bids together with their latest ranking.
package bidrepo

import (
	"time"

	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// BidDTO is one row of job_bids. Seq keeps insertion order for rank tie-breaks.
type BidDTO struct {
	ID                       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq                      int64     `gorm:"autoIncrement;not null;uniqueIndex"`
	JobID                    uuid.UUID `gorm:"type:uuid;not null;index"`
	ContractorID             uuid.UUID `gorm:"type:uuid;not null;index"`
	AmountCents              int64     `gorm:"not null"`
	EstimatedDurationSeconds *int64
	ContractorRating         *float64
	Message                  string `gorm:"type:text"`
	Status                   string `gorm:"type:varchar(16);not null;index"`
	PriceRank                *int
	TimeRank                 *int
	QualityRank              *int
	Score                    *float64
	IsCounterOffer           bool       `gorm:"not null"`
	OriginalBidID            *uuid.UUID `gorm:"type:uuid"`
	CreatedAt                time.Time  `gorm:"not null"`
	UpdatedAt                time.Time  `gorm:"not null"`
}

// TableName specifies the database table name for BidDTO.
func (BidDTO) TableName() string {
	return "job_bids"
}

// mutableColumns are written by Update. Identity, authorship and insertion order never change.
var mutableColumns = []string{
	"amount_cents",
	"estimated_duration_seconds",
	"message",
	"status",
	"price_rank",
	"time_rank",
	"quality_rank",
	"score",
	"updated_at",
}

// fromDomain converts a domain Bid into its row. The estimated duration is stored in
// whole seconds and an unranked bid leaves all four ranking columns NULL.
func fromDomain(b *bid.Bid) BidDTO {
	dto := BidDTO{
		ID:               b.ID().Bytes(),
		JobID:            b.JobID().Bytes(),
		ContractorID:     b.ContractorID().Bytes(),
		AmountCents:      b.Amount().Cents(),
		ContractorRating: b.ContractorRating(),
		Message:          b.Message(),
		Status:           b.Status().String(),
		IsCounterOffer:   b.IsCounterOffer(),
		CreatedAt:        b.CreatedAt(),
		UpdatedAt:        b.UpdatedAt(),
	}
	if d := b.EstimatedDuration(); d != nil {
		seconds := int64(d.Seconds())
		dto.EstimatedDurationSeconds = &seconds
	}
	if r := b.Ranking(); r != nil {
		price, tm, quality, score := r.PriceRank, r.TimeRank, r.QualityRank, r.Score
		dto.PriceRank, dto.TimeRank, dto.QualityRank, dto.Score = &price, &tm, &quality, &score
	}
	if id := b.OriginalBidID(); id != nil {
		raw := id.Bytes()
		dto.OriginalBidID = &raw
	}
	return dto
}

// toDomain converts a row back into a Bid through bid.Restore. The ranking is restored
// only when every ranking column is set; a partially written ranking reads as unranked.
func toDomain(dto BidDTO) (*bid.Bid, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	jobID, err := kernel.UUIDFromBytes(dto.JobID[:])
	if err != nil {
		return nil, err
	}
	contractorID, err := kernel.UUIDFromBytes(dto.ContractorID[:])
	if err != nil {
		return nil, err
	}
	amount, err := kernel.NewMoney(dto.AmountCents)
	if err != nil {
		return nil, err
	}

	var originalBidID *kernel.UUID
	if dto.OriginalBidID != nil {
		original, originalErr := kernel.UUIDFromBytes(dto.OriginalBidID[:])
		if originalErr != nil {
			return nil, originalErr
		}
		originalBidID = &original
	}

	var duration *time.Duration
	if dto.EstimatedDurationSeconds != nil {
		d := time.Duration(*dto.EstimatedDurationSeconds) * time.Second
		duration = &d
	}

	var ranking *bid.Ranking
	if dto.PriceRank != nil && dto.TimeRank != nil && dto.QualityRank != nil && dto.Score != nil {
		ranking = &bid.Ranking{
			PriceRank:   *dto.PriceRank,
			TimeRank:    *dto.TimeRank,
			QualityRank: *dto.QualityRank,
			Score:       *dto.Score,
		}
	}

	return bid.Restore(bid.RestoreParams{
		ID:                id,
		JobID:             jobID,
		ContractorID:      contractorID,
		Amount:            amount,
		EstimatedDuration: duration,
		ContractorRating:  dto.ContractorRating,
		Message:           dto.Message,
		Status:            bid.Status(dto.Status),
		Ranking:           ranking,
		IsCounterOffer:    dto.IsCounterOffer,
		OriginalBidID:     originalBidID,
		CreatedAt:         dto.CreatedAt.UTC(),
		UpdatedAt:         dto.UpdatedAt.UTC(),
	})
}

// Package queuerepo persists contractor queue entries.
package queuerepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/queue"

	"github.com/google/uuid"
)

// EntryDTO is one row of queue_entries. Terminal rows stay in the table as the queue's history.
type EntryDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContractorID uuid.UUID `gorm:"type:uuid;not null;index:idx_queue_entries_contractor_status,priority:1"`
	JobID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Position     int       `gorm:"not null"`
	Status       string    `gorm:"type:varchar(16);not null;index:idx_queue_entries_contractor_status,priority:2"`
	Note         string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName specifies the database table name for EntryDTO.
func (EntryDTO) TableName() string {
	return "queue_entries"
}

// fromDomain converts a queue entry into its row.
func fromDomain(e *queue.Entry) EntryDTO {
	return EntryDTO{
		ID:           e.ID().Bytes(),
		ContractorID: e.ContractorID().Bytes(),
		JobID:        e.JobID().Bytes(),
		Position:     e.Position(),
		Status:       e.Status().String(),
		Note:         e.Note(),
		CreatedAt:    e.CreatedAt(),
		UpdatedAt:    e.UpdatedAt(),
	}
}

// toDomain converts a row back into an Entry. The stored status is checked by
// queue.RestoreEntry, so an unknown status name is an error.
func toDomain(dto EntryDTO) (*queue.Entry, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	contractorID, err := kernel.UUIDFromBytes(dto.ContractorID[:])
	if err != nil {
		return nil, err
	}
	jobID, err := kernel.UUIDFromBytes(dto.JobID[:])
	if err != nil {
		return nil, err
	}

	return queue.RestoreEntry(
		id, contractorID, jobID,
		dto.Position,
		queue.EntryStatus(dto.Status),
		dto.Note,
		dto.CreatedAt.UTC(), dto.UpdatedAt.UTC(),
	)
}

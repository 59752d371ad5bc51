// Package jobrepo persists Job aggregates and their insert-only status history.
package jobrepo

import (
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// JobDTO is the row of the jobs table. Status and auto-accept policy are stored by name.
type JobDTO struct {
	ID                      uuid.UUID   `gorm:"type:uuid;primaryKey"`
	CustomerID              uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status                  string      `gorm:"type:varchar(16);not null;index:idx_jobs_status_attempt,priority:1"`
	ContractorID            *uuid.UUID  `gorm:"type:uuid;index"`
	AssignmentAttempts      int         `gorm:"not null"`
	LastAssignmentAttemptAt *time.Time  `gorm:"index:idx_jobs_status_attempt,priority:2"`
	Location                LocationDTO `gorm:"embedded;embeddedPrefix:location_"`
	AllowBidding            bool        `gorm:"not null"`
	BiddingDeadline         *time.Time  `gorm:"index"`
	ReservePriceCents       *int64
	AutoAcceptPolicy        string     `gorm:"type:varchar(16);not null"`
	WinningBidID            *uuid.UUID `gorm:"type:uuid"`
	AgreedPriceCents        *int64
	CreatedAt               time.Time `gorm:"not null;index"`
}

// TableName specifies the database table name for JobDTO.
func (JobDTO) TableName() string {
	return "jobs"
}

// LocationDTO is empty for jobs without a location.
type LocationDTO struct {
	Lat *float64
	Lng *float64
}

// HistoryDTO is one row of job_status_history. Rows are only ever inserted; Seq orders
// transitions that share a timestamp.
type HistoryDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq        int64     `gorm:"autoIncrement;not null;uniqueIndex"`
	JobID      uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus string    `gorm:"type:varchar(16);not null"`
	ToStatus   string    `gorm:"type:varchar(16);not null"`
	Note       string    `gorm:"type:text"`
	ChangedAt  time.Time `gorm:"not null;index"`
}

// TableName specifies the database table name for HistoryDTO.
func (HistoryDTO) TableName() string {
	return "job_status_history"
}

// fromDomain converts a domain Job into its row. Optional ids and prices map to NULL
// columns, and a job without a location leaves both location columns NULL.
func fromDomain(j *job.Job) JobDTO {
	dto := JobDTO{
		ID:                      j.ID().Bytes(),
		CustomerID:              j.CustomerID().Bytes(),
		Status:                  j.Status().String(),
		ContractorID:            optionalID(j.ContractorID()),
		AssignmentAttempts:      j.AssignmentAttempts(),
		LastAssignmentAttemptAt: j.LastAssignmentAttemptAt(),
		AllowBidding:            j.AllowBidding(),
		BiddingDeadline:         j.BiddingDeadline(),
		ReservePriceCents:       optionalCents(j.ReservePrice()),
		AutoAcceptPolicy:        string(j.AutoAcceptPolicy()),
		WinningBidID:            optionalID(j.WinningBidID()),
		AgreedPriceCents:        optionalCents(j.AgreedPrice()),
		CreatedAt:               j.CreatedAt(),
	}
	if loc := j.Location(); loc != nil {
		lat, lng := loc.Lat(), loc.Lng()
		dto.Location = LocationDTO{Lat: &lat, Lng: &lng}
	}
	return dto
}

// toDomain converts a row back into a Job through job.Restore, so a row that breaks a
// Job invariant is reported as an error instead of being loaded. Timestamps are
// normalised to UTC.
func toDomain(dto JobDTO) (*job.Job, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	status, err := job.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	contractorID, err := restoreID(dto.ContractorID)
	if err != nil {
		return nil, err
	}
	winningBidID, err := restoreID(dto.WinningBidID)
	if err != nil {
		return nil, err
	}
	reserve, err := restoreMoney(dto.ReservePriceCents)
	if err != nil {
		return nil, err
	}
	agreed, err := restoreMoney(dto.AgreedPriceCents)
	if err != nil {
		return nil, err
	}

	var location *kernel.GeoPoint
	if dto.Location.Lat != nil && dto.Location.Lng != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.Location.Lat, *dto.Location.Lng)
		if pointErr != nil {
			return nil, pointErr
		}
		location = &point
	}

	return job.Restore(job.RestoreParams{
		ID:                      id,
		CustomerID:              customerID,
		Status:                  status,
		ContractorID:            contractorID,
		AssignmentAttempts:      dto.AssignmentAttempts,
		LastAssignmentAttemptAt: utc(dto.LastAssignmentAttemptAt),
		Location:                location,
		AllowBidding:            dto.AllowBidding,
		BiddingDeadline:         utc(dto.BiddingDeadline),
		ReservePrice:            reserve,
		AutoAcceptPolicy:        job.AutoAcceptPolicy(dto.AutoAcceptPolicy),
		WinningBidID:            winningBidID,
		AgreedPrice:             agreed,
		CreatedAt:               dto.CreatedAt.UTC(),
	})
}

// historyFromDomain converts one recorded transition into an insertable row.
func historyFromDomain(h job.HistoryEntry) HistoryDTO {
	return HistoryDTO{
		ID:         h.ID().Bytes(),
		JobID:      h.JobID().Bytes(),
		FromStatus: h.From().String(),
		ToStatus:   h.To().String(),
		Note:       h.Note(),
		ChangedAt:  h.At(),
	}
}

// optionalID maps a missing id to NULL.
func optionalID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

// restoreID is the inverse of optionalID.
func restoreID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// optionalCents maps a missing amount to NULL.
func optionalCents(m *kernel.Money) *int64 {
	if m == nil {
		return nil
	}
	cents := m.Cents()
	return &cents
}

// restoreMoney rebuilds an optional amount, rejecting negative cents stored by hand.
func restoreMoney(cents *int64) (*kernel.Money, error) {
	if cents == nil {
		return nil, nil
	}
	m, err := kernel.NewMoney(*cents)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

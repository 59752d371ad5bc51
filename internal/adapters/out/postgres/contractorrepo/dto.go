// Package contractorrepo persists the dispatch view of contractors and reads their
// availability calendar.
package contractorrepo

import (
	"time"

	"dispatch/internal/core/domain/model/contractor"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// ContractorDTO is one row of contractors.
type ContractorDTO struct {
	ID                 uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Name               string      `gorm:"type:varchar(255);not null"`
	Tier               string      `gorm:"type:varchar(16);not null"`
	IsAvailable        bool        `gorm:"not null;index"`
	ServiceRadiusMiles float64     `gorm:"not null"`
	Location           LocationDTO `gorm:"embedded;embeddedPrefix:location_"`
	LastAssignedAt     *time.Time
	Rating             *float64
}

// TableName specifies the database table name for ContractorDTO.
func (ContractorDTO) TableName() string {
	return "contractors"
}

// LocationDTO is embedded with a prefix; both columns are NULL when the position is unknown.
type LocationDTO struct {
	Lat *float64
	Lng *float64
}

// TimeOffDTO is a requested absence covering StartsOn through EndsOn inclusive.
type TimeOffDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContractorID uuid.UUID `gorm:"type:uuid;not null;index"`
	StartsOn     time.Time `gorm:"type:date;not null"`
	EndsOn       time.Time `gorm:"type:date;not null"`
	Status       string    `gorm:"type:varchar(16);not null"`
}

// TableName specifies the database table name for TimeOffDTO.
func (TimeOffDTO) TableName() string {
	return "contractor_time_off"
}

// Time off request statuses. Only approved requests block assignment.
const (
	TimeOffPending  = "pending"
	TimeOffApproved = "approved"
	TimeOffRejected = "rejected"
)

// AvailabilityOverrideDTO marks a contractor unavailable for one day.
type AvailabilityOverrideDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContractorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_availability_overrides_day,priority:1"`
	Day          time.Time `gorm:"type:date;not null;uniqueIndex:idx_availability_overrides_day,priority:2"`
	Reason       string    `gorm:"type:text"`
}

// TableName specifies the database table name for AvailabilityOverrideDTO.
func (AvailabilityOverrideDTO) TableName() string {
	return "availability_overrides"
}

// fromDomain converts a domain Contractor into its row. An unknown position leaves both
// location columns NULL.
func fromDomain(c *contractor.Contractor) ContractorDTO {
	dto := ContractorDTO{
		ID:                 c.ID().Bytes(),
		Name:               c.Name(),
		Tier:               c.Tier().String(),
		IsAvailable:        c.IsAvailable(),
		ServiceRadiusMiles: c.ServiceRadiusMiles(),
		LastAssignedAt:     c.LastAssignedAt(),
		Rating:             c.Rating(),
	}
	if loc := c.Location(); loc != nil {
		lat, lng := loc.Lat(), loc.Lng()
		dto.Location = LocationDTO{Lat: &lat, Lng: &lng}
	}
	return dto
}

// toDomain converts a row back into a Contractor. A half-written location (one of the two
// columns NULL) is treated as unknown rather than rejected.
func toDomain(dto ContractorDTO) (*contractor.Contractor, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	tier, err := contractor.ParseTier(dto.Tier)
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

	var lastAssignedAt *time.Time
	if dto.LastAssignedAt != nil {
		at := dto.LastAssignedAt.UTC()
		lastAssignedAt = &at
	}

	return contractor.RestoreContractor(
		id,
		dto.Name,
		tier,
		dto.IsAvailable,
		dto.ServiceRadiusMiles,
		location,
		lastAssignedAt,
		dto.Rating,
	)
}

package contractorrepo

import (
	"context"
	"time"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

// GormAvailabilityCalendar implements ports.AvailabilityCalendar over the scheduling tables.
// Days are compared as calendar dates in UTC.
type GormAvailabilityCalendar struct {
	db *gorm.DB
}

// NewGormAvailabilityCalendar reads through db, usually the open transaction.
func NewGormAvailabilityCalendar(db *gorm.DB) *GormAvailabilityCalendar {
	return &GormAvailabilityCalendar{db: db}
}

// HasApprovedTimeOff ignores pending and rejected requests.
func (c *GormAvailabilityCalendar) HasApprovedTimeOff(ctx context.Context, contractorID kernel.UUID, day time.Time) (bool, error) {
	date := day.UTC().Format(time.DateOnly)
	query := c.db.WithContext(ctx).Model(&TimeOffDTO{}).
		Where("contractor_id = ? AND status = ?", contractorID.Bytes(), TimeOffApproved).
		Where("starts_on <= ? AND ends_on >= ?", date, date)
	return exists(query, "check time off")
}

// HasAvailabilityOverride matches an override on exactly that day.
func (c *GormAvailabilityCalendar) HasAvailabilityOverride(ctx context.Context, contractorID kernel.UUID, day time.Time) (bool, error) {
	query := c.db.WithContext(ctx).Model(&AvailabilityOverrideDTO{}).
		Where("contractor_id = ? AND day = ?", contractorID.Bytes(), day.UTC().Format(time.DateOnly))
	return exists(query, "check availability override")
}

// exists counts matching rows; the tables are small per contractor.
func exists(query *gorm.DB, operation string) (bool, error) {
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, pgerr.Classify(operation, err)
	}
	return count > 0, nil
}

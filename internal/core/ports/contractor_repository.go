package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/contractor"
	"dispatch/internal/core/domain/model/kernel"
)

// ContractorRepository gives access to the availability view of contractors.
type ContractorRepository interface {
	// Add inserts a contractor. It is used by seeding and tests; profiles are owned elsewhere.
	Add(ctx context.Context, aggregate *contractor.Contractor) error
	// Update writes the dispatch fields: availability, location and lastAssignedAt.
	Update(ctx context.Context, aggregate *contractor.Contractor) error
	// Get loads a contractor without locking it. Unknown ids yield ErrObjectNotFound.
	Get(ctx context.Context, id kernel.UUID) (*contractor.Contractor, error)

	// GetForUpdate locks the contractor row. Every change to the contractor's queue
	// happens while this lock is held.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*contractor.Contractor, error)

	// ListAvailable returns contractors flagged as available.
	ListAvailable(ctx context.Context) ([]*contractor.Contractor, error)
}

// AvailabilityCalendar answers day-level availability questions owned by scheduling.
type AvailabilityCalendar interface {
	// HasApprovedTimeOff reports approved time off covering day.
	HasApprovedTimeOff(ctx context.Context, contractorID kernel.UUID, day time.Time) (bool, error)
	// HasAvailabilityOverride reports an override that blocks the contractor on day.
	HasAvailabilityOverride(ctx context.Context, contractorID kernel.UUID, day time.Time) (bool, error)
}

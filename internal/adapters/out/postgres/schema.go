package postgres

import (
	"dispatch/internal/adapters/out/postgres/bidrepo"
	"dispatch/internal/adapters/out/postgres/contractorrepo"
	"dispatch/internal/adapters/out/postgres/jobrepo"
	"dispatch/internal/adapters/out/postgres/queuerepo"

	"gorm.io/gorm"
)

// Models lists every table owned by dispatch.
func Models() []any {
	return []any{
		&jobrepo.JobDTO{},
		&jobrepo.HistoryDTO{},
		&queuerepo.EntryDTO{},
		&bidrepo.BidDTO{},
		&contractorrepo.ContractorDTO{},
		&contractorrepo.TimeOffDTO{},
		&contractorrepo.AvailabilityOverrideDTO{},
	}
}

// Migrate creates or extends the schema.
//
// Tables are never dropped and columns never removed.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

package contractorrepo

import (
	"context"
	"errors"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/contractor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContractorRepository implements ports.ContractorRepository using GORM.
type GormContractorRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker is implemented by the unit of work.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormContractorRepository binds the repository to db, usually the open transaction.
func NewGormContractorRepository(db *gorm.DB, tracker aggregateTracker) *GormContractorRepository {
	return &GormContractorRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts a contractor row.
func (r *GormContractorRepository) Add(ctx context.Context, aggregate *contractor.Contractor) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Classify("insert contractor", err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update overwrites the whole row so a cleared location or rating is written as NULL.
func (r *GormContractorRepository) Update(ctx context.Context, aggregate *contractor.Contractor) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&ContractorDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return pgerr.Classify("update contractor", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("contractorId", aggregate.ID())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get reads the contractor without a lock.
func (r *GormContractorRepository) Get(ctx context.Context, id kernel.UUID) (*contractor.Contractor, error) {
	return r.take(id, r.db.WithContext(ctx))
}

// GetForUpdate serializes every queue change of the contractor.
func (r *GormContractorRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*contractor.Contractor, error) {
	return r.take(id, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}))
}

// ListAvailable orders by id so candidate lists are stable between runs.
func (r *GormContractorRepository) ListAvailable(ctx context.Context) ([]*contractor.Contractor, error) {
	var dtos []ContractorDTO
	if err := r.db.WithContext(ctx).Where("is_available").Order("id").Find(&dtos).Error; err != nil {
		return nil, pgerr.Classify("list contractors", err)
	}

	contractors := make([]*contractor.Contractor, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		contractors = append(contractors, c)
	}
	return contractors, nil
}

func (r *GormContractorRepository) take(id kernel.UUID, query *gorm.DB) (*contractor.Contractor, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ContractorDTO
	if err := query.Where("id = ?", id.Bytes()).Take(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("contractorId", id)
		}
		return nil, pgerr.Classify("load contractor", err)
	}
	return toDomain(dto)
}

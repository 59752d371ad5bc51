package bidrepo

import (
	"context"
	"errors"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormBidRepository implements ports.BidRepository using GORM.
//
// Bids are never deleted. Rows read back through Get or ListByJob carry the ranking
// stored with their last Update.
//
// Example:
//
//	repo := uow.BidRepository()
//	bids, err := repo.ListByJob(ctx, jobID)
//	if err != nil {
//		return err
//	}
//	if err = services.NewBidRanker().Rank(bids); err != nil {
//		return err
//	}
//	for _, b := range bids {
//		if err = repo.Update(ctx, b); err != nil {
//			return err
//		}
//	}
type GormBidRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker is implemented by the unit of work.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormBidRepository binds the repository to db, usually the open transaction.
func NewGormBidRepository(db *gorm.DB, tracker aggregateTracker) *GormBidRepository {
	return &GormBidRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the bid and lets the database assign its insertion sequence.
func (r *GormBidRepository) Add(ctx context.Context, aggregate *bid.Bid) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Classify("insert bid", err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes only the mutable columns.
//
// Select forces GORM to write zero values as well, so a duration removed by an update is
// stored as NULL. A bid id that matches no row is ErrObjectNotFound.
func (r *GormBidRepository) Update(ctx context.Context, aggregate *bid.Bid) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&BidDTO{}).
		Where("id = ?", dto.ID).
		Select(mutableColumns).
		Updates(&dto)
	if result.Error != nil {
		return pgerr.Classify("update bid", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("bidId", aggregate.ID())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get returns ErrObjectNotFound for an unknown bid id.
func (r *GormBidRepository) Get(ctx context.Context, id kernel.UUID) (*bid.Bid, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto BidDTO
	if err := r.db.WithContext(ctx).Take(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("bidId", id)
		}
		return nil, pgerr.Classify("load bid", err)
	}
	return toDomain(dto)
}

// ListByJob returns bids in the order they were placed.
func (r *GormBidRepository) ListByJob(ctx context.Context, jobID kernel.UUID) ([]*bid.Bid, error) {
	if err := jobID.Validate(); err != nil {
		return nil, err
	}

	var dtos []BidDTO
	if err := r.db.WithContext(ctx).Where("job_id = ?", jobID.Bytes()).Order("seq").Find(&dtos).Error; err != nil {
		return nil, pgerr.Classify("list bids", err)
	}

	bids := make([]*bid.Bid, 0, len(dtos))
	for _, dto := range dtos {
		b, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, nil
}

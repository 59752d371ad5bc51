package ports

import (
	"context"

	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/kernel"
)

// BidRepository persists Bid aggregates including their latest ranking.
type BidRepository interface {
	// Add inserts a new bid.
	Add(ctx context.Context, aggregate *bid.Bid) error
	// Update writes status, offer and ranking of an existing bid.
	Update(ctx context.Context, aggregate *bid.Bid) error
	// Get loads one bid. Unknown ids yield ErrObjectNotFound.
	Get(ctx context.Context, id kernel.UUID) (*bid.Bid, error)

	// ListByJob returns every bid of the job in insertion order.
	ListByJob(ctx context.Context, jobID kernel.UUID) ([]*bid.Bid, error)
}

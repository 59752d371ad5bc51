package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/queue"
)

// QueueRepository persists contractor queues. Callers lock the contractor row through
// ContractorRepository.GetForUpdate before loading a queue they intend to change.
type QueueRepository interface {
	// Load returns the queue with every active entry of the contractor.
	Load(ctx context.Context, contractorID kernel.UUID) (*queue.Queue, error)

	// Save writes the changes recorded by the queue and clears them.
	Save(ctx context.Context, q *queue.Queue) error

	// GetEntry loads a single entry in any status. Unknown ids yield ErrObjectNotFound.
	GetEntry(ctx context.Context, id kernel.UUID) (*queue.Entry, error)

	// FindLatestByJob returns the most recent entry of the job in any status.
	FindLatestByJob(ctx context.Context, jobID kernel.UUID) (*queue.Entry, error)

	// CountActive returns the number of active entries per contractor. Contractors with
	// an empty queue are absent from the map.
	CountActive(ctx context.Context, contractorIDs []kernel.UUID) (map[kernel.UUID]int, error)
}

package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/queue"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetContractorQueueQueryIsNotConstructed = errors.New(
		"GetContractorQueueQuery must be created via NewGetContractorQueueQuery constructor",
	)
)

// GetContractorQueueQuery reads the active queue of one contractor: the current job
// followed by the queued ones, in position order.
//
// Example:
//
//	query, err := NewGetContractorQueueQuery(contractorID)
//	if err != nil {
//	    return err
//	}
//	items, err := NewGetContractorQueueQueryHandler(db).Handle(ctx, query)
type GetContractorQueueQuery struct {
	contractorID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetContractorQueueQuery validates the contractor id.
func NewGetContractorQueueQuery(contractorID kernel.UUID) (GetContractorQueueQuery, error) {
	if err := contractorID.Validate(); err != nil {
		return GetContractorQueueQuery{}, errs.NewValueIsRequiredErrorWithCause("contractorId", err)
	}
	return GetContractorQueueQuery{
		contractorID: contractorID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// ContractorID returns the queue owner.
func (q GetContractorQueueQuery) ContractorID() kernel.UUID { return q.contractorID }

// Validate ensures the query was created through the constructor.
func (q GetContractorQueueQuery) Validate() error {
	return q.guard.Validate(ErrGetContractorQueueQueryIsNotConstructed)
}

// ContractorQueueItem is one active queue entry joined with the status of its job.
type ContractorQueueItem struct {
	EntryID kernel.UUID
	JobID   kernel.UUID

	// Position 1 is the current entry.
	Position int
	Status   queue.EntryStatus

	// JobStatus is New for a reserved job and Assigned or later once the contractor has it.
	JobStatus  job.Status
	EnqueuedAt time.Time
}

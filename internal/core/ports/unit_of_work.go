package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork for every command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is one database transaction. Repositories obtained after Begin run inside it.
//
// Example:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	j, err := uow.JobRepository().GetForUpdate(ctx, jobID)
//	if err != nil {
//	    return err
//	}
//	// change j ...
//	if err := uow.JobRepository().Update(ctx, j); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
//
// Rollback after a successful Commit returns an error and changes nothing; the deferred
// call ignores it.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	JobRepository() JobRepository
	QueueRepository() QueueRepository
	BidRepository() BidRepository
	ContractorRepository() ContractorRepository
	AvailabilityCalendar() AvailabilityCalendar
}

// Package postgres provides the GORM-based unit of work for dispatch.
//
// One GormUnitOfWork wraps one database transaction. Repositories obtained from it
// after Begin run inside that transaction, so a command that locks a contractor,
// rewrites its queue and updates a job either commits all of it or nothing:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	c, err := uow.ContractorRepository().GetForUpdate(ctx, contractorID)
//	...
//	return uow.Commit(ctx)
//
// Serialization failures, deadlocks and connection errors surface as
// errs.ErrTransientPersistence; the caller may retry the whole operation.
//
// Locking:
//   - Commands that change a contractor's queue lock the contractor row first
//     (ContractorRepository.GetForUpdate), then the job rows they touch
//   - Bidding commands lock the job row first and write its bids under that lock;
//     accepting a bid then locks the winner's contractor row
//   - Reads used for selection run without locks and are checked again after locking
//
// Concurrency:
//   - A GormUnitOfWork belongs to one goroutine and one operation
//   - The factory and the *gorm.DB pool behind it are shared by every handler
package postgres

import (
	"context"

	"dispatch/internal/adapters/out/postgres/bidrepo"
	"dispatch/internal/adapters/out/postgres/contractorrepo"
	"dispatch/internal/adapters/out/postgres/jobrepo"
	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/adapters/out/postgres/queuerepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate is an aggregate written during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory hands every command a fresh unit of work.
//
// It is safe for concurrent use; the units of work it creates are not.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory over an open connection pool.
//
// Example:
//
//	db, err := gorm.Open(gorm_postgres.Open(cfg.DSN()), &gorm.Config{})
//	if err != nil {
//	    log.Fatalf("Error connecting to database: %v", err)
//	}
//	factory := postgres.NewGormUnitOfWorkFactory(db)
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create returns a unit of work that has not begun yet.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one transaction across the dispatch repositories.
//
// Repositories taken before Begin read through the plain connection.
//
// Example:
//
//	uow := postgres.NewGormUnitOfWorkFactory(db).Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.JobRepository().Add(ctx, j); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin starts the transaction. Calling it twice keeps the first transaction.
//
// Returns errs.ErrTransientPersistence when the connection could not be obtained.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return pgerr.Classify("begin", tx.Error)
	}
	uow.tx = tx
	return nil
}

// Commit makes the changes permanent. The transaction cannot be reused afterwards.
//
// A serialization failure or deadlock reported at commit time is classified as
// errs.ErrTransientPersistence; nothing of the unit of work was written in that case.
// Commit without Begin returns gorm.ErrInvalidTransaction.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return pgerr.Classify("commit", err)
}

// Rollback discards the changes. After Commit it returns gorm.ErrInvalidTransaction,
// which deferred rollbacks ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

// JobRepository returns a job repository bound to the current transaction.
func (uow *GormUnitOfWork) JobRepository() ports.JobRepository {
	return jobrepo.NewGormJobRepository(uow.conn(), uow)
}

// QueueRepository returns a queue repository bound to the current transaction.
func (uow *GormUnitOfWork) QueueRepository() ports.QueueRepository {
	return queuerepo.NewGormQueueRepository(uow.conn(), uow)
}

// BidRepository returns a bid repository bound to the current transaction.
func (uow *GormUnitOfWork) BidRepository() ports.BidRepository {
	return bidrepo.NewGormBidRepository(uow.conn(), uow)
}

// ContractorRepository returns a contractor repository bound to the current transaction.
func (uow *GormUnitOfWork) ContractorRepository() ports.ContractorRepository {
	return contractorrepo.NewGormContractorRepository(uow.conn(), uow)
}

// AvailabilityCalendar reads the scheduling tables inside the current transaction.
func (uow *GormUnitOfWork) AvailabilityCalendar() ports.AvailabilityCalendar {
	return contractorrepo.NewGormAvailabilityCalendar(uow.conn())
}

// TrackAggregate is called by the repositories for every aggregate they write.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// TrackedIDs lists the aggregates written so far, in write order.
func (uow *GormUnitOfWork) TrackedIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(uow.trackedAggregates))
	for _, t := range uow.trackedAggregates {
		ids = append(ids, t.ID)
	}
	return ids
}

// conn is the transaction when one is open, otherwise the plain connection.
func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

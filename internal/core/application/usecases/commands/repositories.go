// Package commands contains the write side of dispatch: queue management, assignment,
// the stale-assignment sweep, bidding and the job lifecycle. Every handler validates its
// command, runs inside one unit of work and sends notifications only after commit.
package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// JobRepoFactory exposes the job repository bound to the current transaction.
	JobRepoFactory interface {
		JobRepository() ports.JobRepository
	}

	// QueueRepoFactory exposes the queue repository bound to the current transaction.
	QueueRepoFactory interface {
		QueueRepository() ports.QueueRepository
	}

	// BidRepoFactory exposes the bid repository bound to the current transaction.
	BidRepoFactory interface {
		BidRepository() ports.BidRepository
	}

	// ContractorRepoFactory exposes contractor rows and their availability calendar.
	ContractorRepoFactory interface {
		ContractorRepository() ports.ContractorRepository
		AvailabilityCalendar() ports.AvailabilityCalendar
	}

	// JobUoW is enough for commands that touch a single job.
	JobUoW interface {
		TxManager
		JobRepoFactory
	}

	// JobUoWFactory creates a fresh JobUoW per command.
	JobUoWFactory interface {
		Create() JobUoW
	}

	// UoW spans every aggregate of dispatch.
	//
	//	uow := factory.Create()
	//	if err := uow.Begin(ctx); err != nil {
	//	    return err
	//	}
	//	defer func() { _ = uow.Rollback(ctx) }()
	//	...
	//	return uow.Commit(ctx)
	UoW interface {
		TxManager
		JobRepoFactory
		QueueRepoFactory
		BidRepoFactory
		ContractorRepoFactory
	}

	// UoWFactory creates a fresh UoW per command. A UoW must not be shared between goroutines.
	UoWFactory interface {
		Create() UoW
	}
)

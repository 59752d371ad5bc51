package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// CloseResult counts what one bidding-close pass did.
type CloseResult struct {
	Scanned  int
	Accepted int
	Skipped  int
	Failed   int
}

// CloseExpiredBiddingCommandHandler runs the auto-accept rule for every bidding job past its
// deadline. Jobs are settled one unit of work at a time; failures are logged and counted.
//
// Example:
//
//	handler := NewCloseExpiredBiddingCommandHandler(uowFactory, clock, notifier, logger)
//	cmd, _ := NewCloseExpiredBiddingCommand(50)
//	result, err := handler.Handle(ctx, cmd)
//	if err == nil {
//	    log.Printf("accepted %d, skipped %d", result.Accepted, result.Skipped)
//	}
type CloseExpiredBiddingCommandHandler struct {
	uowFactory UoWFactory
	autoAccept AutoAcceptLowestBidCommandHandler
	clock      ports.Clock
	logger     *slog.Logger
}

// NewCloseExpiredBiddingCommandHandler builds its own AutoAcceptLowestBidCommandHandler, which
// settles each expired job.
func NewCloseExpiredBiddingCommandHandler(
	uowFactory UoWFactory,
	clock ports.Clock,
	notifier ports.Notifier,
	logger *slog.Logger,
) CloseExpiredBiddingCommandHandler {
	return CloseExpiredBiddingCommandHandler{
		uowFactory: uowFactory,
		autoAccept: NewAutoAcceptLowestBidCommandHandler(uowFactory, clock, notifier),
		clock:      clock,
		logger:     logger.With("component", "BiddingClose"),
	}
}

// Handle only returns an error when the expired jobs cannot be listed.
func (h CloseExpiredBiddingCommandHandler) Handle(ctx context.Context, cmd CloseExpiredBiddingCommand) (CloseResult, error) {
	if err := cmd.Validate(); err != nil {
		return CloseResult{}, err
	}

	ids, err := h.listExpired(ctx, cmd.BatchSize())
	if err != nil {
		return CloseResult{}, err
	}

	result := CloseResult{Scanned: len(ids)}
	for _, id := range ids {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		autoCmd, err := NewAutoAcceptLowestBidCommand(id)
		if err != nil {
			return result, err
		}
		winner, err := h.autoAccept.Handle(ctx, autoCmd)
		switch {
		case err != nil:
			result.Failed++
			h.logger.ErrorContext(ctx, "failed to close bidding", "job_id", id.String(), "error", err)
		case winner == nil:
			result.Skipped++
		default:
			result.Accepted++
			h.logger.InfoContext(ctx, "accepted lowest bid",
				"job_id", id.String(), "bid_id", winner.ID().String(), "amount", winner.Amount().String())
		}
	}
	return result, nil
}

func (h CloseExpiredBiddingCommandHandler) listExpired(ctx context.Context, limit int) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()
	return uow.JobRepository().ListExpiredBiddingIDs(ctx, h.clock.Now(), limit)
}

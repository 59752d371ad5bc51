// Package http exposes the dispatch command and query handlers over a small JSON API
// built on echo.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/queue"

	"github.com/labstack/echo/v4"
)

// Handler is satisfied by every command and query handler of the application layer.
type Handler[C, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[C, R any] func(ctx context.Context, cmd C) (R, error)

// Handle calls f.
func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

// Handlers groups the use cases the API serves.
type Handlers struct {
	CreateJob         Handler[commands.CreateJobCommand, *job.Job]
	AssignJob         Handler[commands.AssignJobCommand, commands.Assignment]
	CancelJob         Handler[commands.CancelJobCommand, *job.Job]
	UpdateJobProgress Handler[commands.UpdateJobProgressCommand, *job.Job]
	RunSweep          Handler[commands.RunReassignmentSweepCommand, commands.SweepResult]

	EnqueueJob      Handler[commands.EnqueueJobCommand, *queue.Entry]
	AdvanceQueue    Handler[commands.AdvanceQueueCommand, *queue.Entry]
	RemoveFromQueue Handler[commands.RemoveFromQueueCommand, bool]
	ReorderQueue    Handler[commands.ReorderQueueCommand, bool]
	SkipQueueEntry  Handler[commands.SkipQueueEntryCommand, *queue.Entry]

	SubmitBid           Handler[commands.SubmitBidCommand, *bid.Bid]
	UpdateBid           Handler[commands.UpdateBidCommand, *bid.Bid]
	AcceptBid           Handler[commands.AcceptBidCommand, *queue.Entry]
	RejectBid           Handler[commands.RejectBidCommand, *bid.Bid]
	CounterBid          Handler[commands.CounterBidCommand, *bid.Bid]
	WithdrawBid         Handler[commands.WithdrawBidCommand, *bid.Bid]
	AutoAcceptLowestBid Handler[commands.AutoAcceptLowestBidCommand, *bid.Bid]
	RecomputeRanks      Handler[commands.RecomputeRanksCommand, []*bid.Bid]

	ContractorQueue Handler[queries.GetContractorQueueQuery, []queries.ContractorQueueItem]
	JobBids         Handler[queries.GetJobBidsQuery, []queries.JobBidItem]
	JobHistory      Handler[queries.GetJobHistoryQuery, []queries.JobHistoryItem]
}

// Server maps HTTP requests onto the application use cases.
//
// Example:
//
//	e := echo.New()
//	api.NewServer(handlers, telemetry.Handler(), logger).Register(e)
//	if err := e.Start(":8080"); err != nil && !errors.Is(err, http.ErrServerClosed) {
//	    return err
//	}
type Server struct {
	h       Handlers
	metrics http.Handler
	logger  *slog.Logger
}

// NewServer creates the API. metrics is served on /metrics when not nil.
func NewServer(handlers Handlers, metrics http.Handler, logger *slog.Logger) *Server {
	return &Server{
		h:       handlers,
		metrics: metrics,
		logger:  logger.With("component", "HTTPServer"),
	}
}

// Register mounts the routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics))
	}

	api := e.Group("/api/v1")

	api.POST("/jobs", s.CreateJob)
	api.POST("/jobs/:jobId/assign", s.AssignJob)
	api.POST("/jobs/:jobId/cancel", s.CancelJob)
	api.POST("/jobs/:jobId/progress", s.UpdateJobProgress)
	api.GET("/jobs/:jobId/history", s.GetJobHistory)
	api.DELETE("/jobs/:jobId/queue-entry", s.RemoveFromQueue)
	api.POST("/sweeps", s.RunSweep)

	api.GET("/contractors/:contractorId/queue", s.GetContractorQueue)
	api.POST("/contractors/:contractorId/queue", s.EnqueueJob)
	api.POST("/contractors/:contractorId/queue/advance", s.AdvanceQueue)
	api.PUT("/contractors/:contractorId/queue/order", s.ReorderQueue)
	api.POST("/queue-entries/:entryId/skip", s.SkipQueueEntry)

	api.GET("/jobs/:jobId/bids", s.GetJobBids)
	api.POST("/jobs/:jobId/bids", s.SubmitBid)
	api.POST("/jobs/:jobId/bids/auto-accept", s.AutoAcceptLowestBid)
	api.POST("/jobs/:jobId/bids/ranks", s.RecomputeRanks)
	api.PUT("/bids/:bidId", s.UpdateBid)
	api.POST("/bids/:bidId/accept", s.AcceptBid)
	api.POST("/bids/:bidId/reject", s.RejectBid)
	api.POST("/bids/:bidId/counter", s.CounterBid)
	api.POST("/bids/:bidId/withdraw", s.WithdrawBid)
}

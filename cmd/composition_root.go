package cmd

import (
	"log/slog"
	"net/http"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/lognotify"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/redisnotify"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
	"dispatch/internal/telemetry"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CompositionRoot wires the adapters into the use cases. It owns the shared notifier,
// the clock and the optional Redis client; every handler it creates gets a fresh unit
// of work per call.
//
// Example:
//
//	root := cmd.NewCompositionRoot(config, gormDB, logger)
//	defer func() { _ = root.Close() }()
//
//	manager := root.CreateJobManager()
//	if err := manager.StartAll(); err != nil {
//	    return err
//	}
//	defer manager.StopAll()
//
//	e := echo.New()
//	root.CreateHTTPServer().Register(e)
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	redis      *redis.Client
	notifier   ports.Notifier
	clock      ports.Clock
	logger     *slog.Logger
}

// NewCompositionRoot picks the Redis notifier when REDIS_ADDR is set and the log
// notifier otherwise. Either one is wrapped so notifications are counted.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) *CompositionRoot {
	c := &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		clock:      ports.SystemClock{},
		logger:     logger,
	}

	var next ports.Notifier
	if config.RedisAddr != "" {
		c.redis = redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		next = redisnotify.NewNotifier(c.redis, config.RedisListKey, config.NotifyTimeout, c.clock, logger)
	} else {
		next = lognotify.NewNotifier(logger)
	}
	c.notifier = telemetry.NewCountingNotifier(next)

	return c
}

// Close releases the Redis connection pool, if any.
func (c *CompositionRoot) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

// uow adapts the GORM factory to the interface the commands depend on.
func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

// CreateCreateJobCommandHandler builds the handler behind POST /jobs. It only needs a
// job-scoped unit of work.
func (c *CompositionRoot) CreateCreateJobCommandHandler() commands.CreateJobCommandHandler {
	var f commands.JobUoWFactory = FuncJobUoWFactory(func() commands.JobUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateJobCommandHandler(f, c.clock)
}

// CreateAssignJobCommandHandler builds the selector-driven assignment used by
// POST /jobs/{jobId}/assign.
func (c *CompositionRoot) CreateAssignJobCommandHandler() commands.AssignJobCommandHandler {
	return commands.NewAssignJobCommandHandler(c.uow(), c.config.Policy(), c.clock, c.notifier)
}

// CreateCancelJobCommandHandler builds the cancel handler.
func (c *CompositionRoot) CreateCancelJobCommandHandler() commands.CancelJobCommandHandler {
	return commands.NewCancelJobCommandHandler(c.uow(), c.clock, c.notifier)
}

// CreateUpdateJobProgressCommandHandler builds the handler for en_route and on_site reports.
func (c *CompositionRoot) CreateUpdateJobProgressCommandHandler() commands.UpdateJobProgressCommandHandler {
	return commands.NewUpdateJobProgressCommandHandler(c.uow(), c.clock)
}

// CreateRunReassignmentSweepCommandHandler builds the stale-assignment sweep shared by the
// cron job and POST /sweeps.
func (c *CompositionRoot) CreateRunReassignmentSweepCommandHandler() commands.RunReassignmentSweepCommandHandler {
	return commands.NewRunReassignmentSweepCommandHandler(c.uow(), c.config.Policy(), c.clock, c.notifier, c.logger)
}

// CreateAssignPendingJobsCommandHandler builds the handler run by the pending-assignment job.
func (c *CompositionRoot) CreateAssignPendingJobsCommandHandler() commands.AssignPendingJobsCommandHandler {
	return commands.NewAssignPendingJobsCommandHandler(c.uow(), c.config.Policy(), c.clock, c.notifier, c.logger)
}

// CreateEnqueueJobCommandHandler builds the explicit enqueue handler.
func (c *CompositionRoot) CreateEnqueueJobCommandHandler() commands.EnqueueJobCommandHandler {
	return commands.NewEnqueueJobCommandHandler(c.uow(), c.clock, c.notifier)
}

// CreateAdvanceQueueCommandHandler builds the handler that completes the current job.
func (c *CompositionRoot) CreateAdvanceQueueCommandHandler() commands.AdvanceQueueCommandHandler {
	return commands.NewAdvanceQueueCommandHandler(c.uow(), c.clock, c.notifier)
}

// CreateRemoveFromQueueCommandHandler builds the remove handler.
func (c *CompositionRoot) CreateRemoveFromQueueCommandHandler() commands.RemoveFromQueueCommandHandler {
	return commands.NewRemoveFromQueueCommandHandler(c.uow(), c.clock, c.notifier)
}

// CreateReorderQueueCommandHandler builds the reorder handler. It sends no notifications.
func (c *CompositionRoot) CreateReorderQueueCommandHandler() commands.ReorderQueueCommandHandler {
	return commands.NewReorderQueueCommandHandler(c.uow(), c.clock)
}

// CreateSkipQueueEntryCommandHandler builds the skip handler.
func (c *CompositionRoot) CreateSkipQueueEntryCommandHandler() commands.SkipQueueEntryCommandHandler {
	return commands.NewSkipQueueEntryCommandHandler(c.uow(), c.clock, c.notifier)
}

// CreateSubmitBidCommandHandler builds the handler for new bids.
func (c *CompositionRoot) CreateSubmitBidCommandHandler() commands.SubmitBidCommandHandler {
	return commands.NewSubmitBidCommandHandler(c.uow(), c.clock)
}

// CreateUpdateBidCommandHandler builds the handler for edited bids.
func (c *CompositionRoot) CreateUpdateBidCommandHandler() commands.UpdateBidCommandHandler {
	return commands.NewUpdateBidCommandHandler(c.uow(), c.clock)
}

// CreateAcceptBidCommandHandler builds the customer acceptance handler.
func (c *CompositionRoot) CreateAcceptBidCommandHandler() commands.AcceptBidCommandHandler {
	return commands.NewAcceptBidCommandHandler(c.uow(), c.clock, c.notifier)
}

// CreateRejectBidCommandHandler builds the rejection handler.
func (c *CompositionRoot) CreateRejectBidCommandHandler() commands.RejectBidCommandHandler {
	return commands.NewRejectBidCommandHandler(c.uow(), c.clock, c.notifier)
}

// CreateCounterBidCommandHandler builds the counter-offer handler.
func (c *CompositionRoot) CreateCounterBidCommandHandler() commands.CounterBidCommandHandler {
	return commands.NewCounterBidCommandHandler(c.uow(), c.clock, c.notifier)
}

// CreateWithdrawBidCommandHandler builds the withdrawal handler.
func (c *CompositionRoot) CreateWithdrawBidCommandHandler() commands.WithdrawBidCommandHandler {
	return commands.NewWithdrawBidCommandHandler(c.uow(), c.clock)
}

// CreateAutoAcceptLowestBidCommandHandler builds the lowest-bid rule used on demand.
func (c *CompositionRoot) CreateAutoAcceptLowestBidCommandHandler() commands.AutoAcceptLowestBidCommandHandler {
	return commands.NewAutoAcceptLowestBidCommandHandler(c.uow(), c.clock, c.notifier)
}

// CreateRecomputeRanksCommandHandler builds the re-ranking handler.
func (c *CompositionRoot) CreateRecomputeRanksCommandHandler() commands.RecomputeRanksCommandHandler {
	return commands.NewRecomputeRanksCommandHandler(c.uow())
}

// CreateCloseExpiredBiddingCommandHandler builds the handler run by the bidding-close job.
func (c *CompositionRoot) CreateCloseExpiredBiddingCommandHandler() commands.CloseExpiredBiddingCommandHandler {
	return commands.NewCloseExpiredBiddingCommandHandler(c.uow(), c.clock, c.notifier, c.logger)
}

// CreateGetContractorQueueQueryHandler reads queues straight from the pool.
func (c *CompositionRoot) CreateGetContractorQueueQueryHandler() queries.GetContractorQueueQueryHandler {
	return queries.NewGetContractorQueueQueryHandler(c.gormDB)
}

// CreateGetJobBidsQueryHandler reads bids straight from the pool.
func (c *CompositionRoot) CreateGetJobBidsQueryHandler() queries.GetJobBidsQueryHandler {
	return queries.NewGetJobBidsQueryHandler(c.gormDB)
}

// CreateGetJobHistoryQueryHandler reads job history straight from the pool.
func (c *CompositionRoot) CreateGetJobHistoryQueryHandler() queries.GetJobHistoryQueryHandler {
	return queries.NewGetJobHistoryQueryHandler(c.gormDB)
}

// CreateJobManager builds the three background jobs on their configured schedules.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	batch := c.config.JobBatchSize
	return jobs.NewJobManager(
		jobs.NewReassignmentSweepJob(c.CreateRunReassignmentSweepCommandHandler(), c.config.SweepSchedule, batch, c.logger),
		jobs.NewPendingAssignmentJob(c.CreateAssignPendingJobsCommandHandler(), c.config.PendingSchedule, batch, c.logger),
		jobs.NewBiddingCloseJob(c.CreateCloseExpiredBiddingCommandHandler(), c.config.BiddingCloseSchedule, batch, c.logger),
	)
}

// CreateHTTPServer builds the API with every handler and the metrics endpoint.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(c.handlers(), c.metricsHandler(), c.logger)
}

func (c *CompositionRoot) metricsHandler() http.Handler {
	return telemetry.Handler()
}

func (c *CompositionRoot) handlers() httpin.Handlers {
	return httpin.Handlers{
		CreateJob:         c.CreateCreateJobCommandHandler(),
		AssignJob:         c.CreateAssignJobCommandHandler(),
		CancelJob:         c.CreateCancelJobCommandHandler(),
		UpdateJobProgress: c.CreateUpdateJobProgressCommandHandler(),
		RunSweep:          c.CreateRunReassignmentSweepCommandHandler(),

		EnqueueJob:      c.CreateEnqueueJobCommandHandler(),
		AdvanceQueue:    c.CreateAdvanceQueueCommandHandler(),
		RemoveFromQueue: c.CreateRemoveFromQueueCommandHandler(),
		ReorderQueue:    c.CreateReorderQueueCommandHandler(),
		SkipQueueEntry:  c.CreateSkipQueueEntryCommandHandler(),

		SubmitBid:           c.CreateSubmitBidCommandHandler(),
		UpdateBid:           c.CreateUpdateBidCommandHandler(),
		AcceptBid:           c.CreateAcceptBidCommandHandler(),
		RejectBid:           c.CreateRejectBidCommandHandler(),
		CounterBid:          c.CreateCounterBidCommandHandler(),
		WithdrawBid:         c.CreateWithdrawBidCommandHandler(),
		AutoAcceptLowestBid: c.CreateAutoAcceptLowestBidCommandHandler(),
		RecomputeRanks:      c.CreateRecomputeRanksCommandHandler(),

		ContractorQueue: c.CreateGetContractorQueueQueryHandler(),
		JobBids:         c.CreateGetJobBidsQueryHandler(),
		JobHistory:      c.CreateGetJobHistoryQueryHandler(),
	}
}

// FuncJobUoWFactory adapts a function to commands.JobUoWFactory.
type FuncJobUoWFactory func() commands.JobUoW

func (f FuncJobUoWFactory) Create() commands.JobUoW {
	return f()
}

// FuncUoWFactory adapts a function to commands.UoWFactory.
type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

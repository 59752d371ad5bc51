package queries_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/bidrepo"
	"dispatch/internal/adapters/out/postgres/contractorrepo"
	"dispatch/internal/adapters/out/postgres/jobrepo"
	"dispatch/internal/adapters/out/postgres/queuerepo"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/contractor"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/queue"
	"dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var t0 = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}

type ReadModelQueriesTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
}

func (suite *ReadModelQueriesTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))
}

func (suite *ReadModelQueriesTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *ReadModelQueriesTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE jobs, job_status_history, queue_entries, job_bids, contractors").Error
	suite.Require().NoError(err)
}

func (suite *ReadModelQueriesTestSuite) TestContractorQueue_ActiveEntriesInPositionOrder() {
	ctx := context.Background()
	c, err := contractor.NewContractor(kernel.NewUUID(), "Ada", contractor.Gold, 25)
	suite.Require().NoError(err)
	suite.Require().NoError(contractorrepo.NewGormContractorRepository(suite.db, noopTracker{}).Add(ctx, c))

	j1, j2, j3 := suite.addJob(), suite.addJob(), suite.addJob()
	q, err := queue.New(c.ID(), nil)
	suite.Require().NoError(err)
	for i, j := range []*job.Job{j1, j2, j3} {
		_, err = q.Enqueue(j.ID(), nil, t0.Add(time.Duration(i)*time.Minute))
		suite.Require().NoError(err)
	}
	_, _, err = q.Advance(t0.Add(time.Hour))
	suite.Require().NoError(err)
	suite.Require().NoError(queuerepo.NewGormQueueRepository(suite.db, noopTracker{}).Save(ctx, q))

	query, err := queries.NewGetContractorQueueQuery(c.ID())
	suite.Require().NoError(err)
	items, err := queries.NewGetContractorQueueQueryHandler(suite.db).Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(items, 2)
	suite.Equal(j2.ID(), items[0].JobID)
	suite.Equal(1, items[0].Position)
	suite.Equal(queue.Current, items[0].Status)
	suite.Equal(job.New, items[0].JobStatus)
	suite.Equal(j3.ID(), items[1].JobID)
	suite.Equal(queue.Queued, items[1].Status)
	suite.True(t0.Add(2*time.Minute).Equal(items[1].EnqueuedAt))
}

func (suite *ReadModelQueriesTestSuite) TestContractorQueue_UnknownContractorIsEmpty() {
	query, err := queries.NewGetContractorQueueQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	items, err := queries.NewGetContractorQueueQueryHandler(suite.db).Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.NotNil(items)
	suite.Empty(items)
}

func (suite *ReadModelQueriesTestSuite) TestJobBids_SortedByScoreThenUnranked() {
	ctx := context.Background()
	j := suite.addJob()

	cheap := suite.newBid(j, 8000, 2*time.Hour, 4.9)
	mid := suite.newBid(j, 10000, 3*time.Hour, 4.0)
	dear := suite.newBid(j, 15000, 5*time.Hour, 3.1)
	suite.Require().NoError(services.NewBidRanker().Rank([]*bid.Bid{dear, mid, cheap}))
	suite.Require().NoError(dear.Withdraw(t0.Add(time.Minute)))
	late := suite.newBid(j, 9000, time.Hour, 5.0)

	repo := bidrepo.NewGormBidRepository(suite.db, noopTracker{})
	for _, b := range []*bid.Bid{dear, late, mid, cheap} {
		suite.Require().NoError(repo.Add(ctx, b))
	}

	all, err := queries.NewGetJobBidsQuery(j.ID(), false)
	suite.Require().NoError(err)
	items, err := queries.NewGetJobBidsQueryHandler(suite.db).Handle(ctx, all)
	suite.Require().NoError(err)

	suite.Require().Len(items, 4)
	suite.Equal(
		[]kernel.UUID{cheap.ID(), mid.ID(), dear.ID(), late.ID()},
		[]kernel.UUID{items[0].ID, items[1].ID, items[2].ID, items[3].ID},
	)
	suite.Require().NotNil(items[0].Score)
	suite.Equal(1, *items[0].PriceRank)
	suite.Nil(items[3].Score)
	suite.Equal(bid.Withdrawn, items[2].Status)
	suite.Equal(int64(8000), items[0].Amount.Cents())
	suite.Require().NotNil(items[0].EstimatedDuration)
	suite.Equal(2*time.Hour, *items[0].EstimatedDuration)

	pending, err := queries.NewGetJobBidsQuery(j.ID(), true)
	suite.Require().NoError(err)
	items, err = queries.NewGetJobBidsQueryHandler(suite.db).Handle(ctx, pending)
	suite.Require().NoError(err)
	suite.Len(items, 3)
	for _, item := range items {
		suite.Equal(bid.Pending, item.Status)
	}
}

func (suite *ReadModelQueriesTestSuite) TestJobHistory_OrderedByInsertion() {
	ctx := context.Background()
	j, err := job.NewJob(kernel.NewUUID(), kernel.NewUUID(), nil, t0)
	suite.Require().NoError(err)
	contractorID := kernel.NewUUID()
	suite.Require().NoError(j.Assign(contractorID, "assignment attempt 1", t0))
	suite.Require().NoError(j.Unassign("no response", t0))
	suite.Require().NoError(jobrepo.NewGormJobRepository(suite.db, noopTracker{}).Add(ctx, j))

	query, err := queries.NewGetJobHistoryQuery(j.ID())
	suite.Require().NoError(err)
	history, err := queries.NewGetJobHistoryQueryHandler(suite.db).Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(history, 3)
	suite.Equal(job.Unknown, history[0].From)
	suite.Equal(job.New, history[0].To)
	suite.Equal("job created", history[0].Note)
	suite.True(t0.Equal(history[0].ChangedAt))
	suite.Equal(job.Assigned, history[1].To)
	suite.Equal("assignment attempt 1", history[1].Note)
	suite.Equal(job.Assigned, history[2].From)
	suite.Equal(job.New, history[2].To)
}

func (suite *ReadModelQueriesTestSuite) addJob() *job.Job {
	j, err := job.NewJob(kernel.NewUUID(), kernel.NewUUID(), nil, t0)
	suite.Require().NoError(err)
	suite.Require().NoError(jobrepo.NewGormJobRepository(suite.db, noopTracker{}).Add(context.Background(), j))
	return j
}

func (suite *ReadModelQueriesTestSuite) newBid(j *job.Job, cents int64, eta time.Duration, rating float64) *bid.Bid {
	amount, err := kernel.NewMoney(cents)
	suite.Require().NoError(err)
	b, err := bid.NewBid(kernel.NewUUID(), j.ID(), kernel.NewUUID(), amount, &eta, &rating, "", t0)
	suite.Require().NoError(err)
	return b
}

func TestReadModelQueriesTestSuite(t *testing.T) {
	suite.Run(t, new(ReadModelQueriesTestSuite))
}

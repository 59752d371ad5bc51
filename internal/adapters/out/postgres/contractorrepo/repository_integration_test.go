package contractorrepo_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/contractorrepo"
	"dispatch/internal/core/domain/model/contractor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var t0 = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

type ContractorRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *contractorrepo.GormContractorRepository
	calendar   *contractorrepo.GormAvailabilityCalendar
	tracker    *MockAggregateTracker
}

func (suite *ContractorRepositoryIntegrationTestSuite) SetupSuite() {
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

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&contractorrepo.ContractorDTO{},
		&contractorrepo.TimeOffDTO{},
		&contractorrepo.AvailabilityOverrideDTO{},
	))
}

func (suite *ContractorRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE contractors, contractor_time_off, availability_overrides").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.repository = contractorrepo.NewGormContractorRepository(suite.db, suite.tracker)
	suite.calendar = contractorrepo.NewGormAvailabilityCalendar(suite.db)
}

func (suite *ContractorRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *ContractorRepositoryIntegrationTestSuite) TestAdd_ThenGet_RoundTrips() {
	ctx := context.Background()
	c := suite.newContractor("Ada", contractor.Gold)
	location, err := kernel.NewGeoPoint(40.0, -75.0)
	suite.Require().NoError(err)
	suite.Require().NoError(c.MoveTo(&location))
	suite.Require().NoError(suite.repository.Add(ctx, c))

	got, err := suite.repository.Get(ctx, c.ID())

	suite.Require().NoError(err)
	suite.Equal("Ada", got.Name())
	suite.Equal(contractor.Gold, got.Tier())
	suite.True(got.IsAvailable())
	suite.InDelta(25.0, got.ServiceRadiusMiles(), 1e-9)
	suite.Require().NotNil(got.Location())
	suite.InDelta(-75.0, got.Location().Lng(), 1e-9)
	suite.Nil(got.LastAssignedAt())
	suite.tracker.AssertCalled(suite.T(), "TrackAggregate", c.ID(), c)
}

func (suite *ContractorRepositoryIntegrationTestSuite) TestUpdate_StampsAssignmentAndClearsLocation() {
	ctx := context.Background()
	c := suite.newContractor("Bob", contractor.Silver)
	location, err := kernel.NewGeoPoint(40.0, -75.0)
	suite.Require().NoError(err)
	suite.Require().NoError(c.MoveTo(&location))
	suite.Require().NoError(suite.repository.Add(ctx, c))

	locked, err := suite.repository.GetForUpdate(ctx, c.ID())
	suite.Require().NoError(err)
	locked.MarkAssigned(t0)
	suite.Require().NoError(locked.MoveTo(nil))
	suite.Require().NoError(suite.repository.Update(ctx, locked))

	got, err := suite.repository.Get(ctx, c.ID())
	suite.Require().NoError(err)
	suite.Require().NotNil(got.LastAssignedAt())
	suite.True(t0.Equal(*got.LastAssignedAt()))
	suite.Nil(got.Location())
}

func (suite *ContractorRepositoryIntegrationTestSuite) TestListAvailable_SkipsUnavailable() {
	ctx := context.Background()
	available := suite.newContractor("Ada", contractor.Gold)
	away := suite.newContractor("Bob", contractor.Gold)
	away.SetAvailable(false)
	suite.Require().NoError(suite.repository.Add(ctx, available))
	suite.Require().NoError(suite.repository.Add(ctx, away))

	got, err := suite.repository.ListAvailable(ctx)

	suite.Require().NoError(err)
	suite.Require().Len(got, 1)
	suite.Equal(available.ID(), got[0].ID())
}

func (suite *ContractorRepositoryIntegrationTestSuite) TestGet_NonExistent_ReturnsNotFoundError() {
	got, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Nil(got)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *ContractorRepositoryIntegrationTestSuite) TestHasApprovedTimeOff() {
	ctx := context.Background()
	c := suite.newContractor("Ada", contractor.Gold)
	suite.Require().NoError(suite.repository.Add(ctx, c))

	suite.Require().NoError(suite.db.Create(&[]contractorrepo.TimeOffDTO{
		{
			ID:           uuid.New(),
			ContractorID: c.ID().Bytes(),
			StartsOn:     day(2025, 3, 3),
			EndsOn:       day(2025, 3, 5),
			Status:       contractorrepo.TimeOffApproved,
		},
		{
			ID:           uuid.New(),
			ContractorID: c.ID().Bytes(),
			StartsOn:     day(2025, 3, 10),
			EndsOn:       day(2025, 3, 10),
			Status:       contractorrepo.TimeOffPending,
		},
	}).Error)

	testCases := []struct {
		name     string
		at       time.Time
		expected bool
	}{
		{"first day", t0, true},
		{"last day late evening", time.Date(2025, 3, 5, 23, 30, 0, 0, time.UTC), true},
		{"day after", day(2025, 3, 6), false},
		{"pending request", day(2025, 3, 10), false},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			got, err := suite.calendar.HasApprovedTimeOff(ctx, c.ID(), tc.at)
			suite.Require().NoError(err)
			suite.Equal(tc.expected, got)
		})
	}
}

func (suite *ContractorRepositoryIntegrationTestSuite) TestHasAvailabilityOverride() {
	ctx := context.Background()
	c := suite.newContractor("Ada", contractor.Gold)
	suite.Require().NoError(suite.repository.Add(ctx, c))
	suite.Require().NoError(suite.db.Create(&contractorrepo.AvailabilityOverrideDTO{
		ID:           uuid.New(),
		ContractorID: c.ID().Bytes(),
		Day:          day(2025, 3, 3),
		Reason:       "van in the shop",
	}).Error)

	today, err := suite.calendar.HasAvailabilityOverride(ctx, c.ID(), t0)
	suite.Require().NoError(err)
	suite.True(today)

	tomorrow, err := suite.calendar.HasAvailabilityOverride(ctx, c.ID(), t0.Add(24*time.Hour))
	suite.Require().NoError(err)
	suite.False(tomorrow)
}

func (suite *ContractorRepositoryIntegrationTestSuite) newContractor(name string, tier contractor.Tier) *contractor.Contractor {
	c, err := contractor.NewContractor(kernel.NewUUID(), name, tier, 25)
	suite.Require().NoError(err)
	return c
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestContractorRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ContractorRepositoryIntegrationTestSuite))
}

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/contractor"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockUoW) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockUoW) JobRepository() ports.JobRepository {
	return m.Called().Get(0).(ports.JobRepository)
}

func (m *MockUoW) QueueRepository() ports.QueueRepository {
	return m.Called().Get(0).(ports.QueueRepository)
}

func (m *MockUoW) BidRepository() ports.BidRepository {
	return m.Called().Get(0).(ports.BidRepository)
}

func (m *MockUoW) ContractorRepository() ports.ContractorRepository {
	return m.Called().Get(0).(ports.ContractorRepository)
}

func (m *MockUoW) AvailabilityCalendar() ports.AvailabilityCalendar {
	return m.Called().Get(0).(ports.AvailabilityCalendar)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	return m.Called().Get(0).(commands.UoW)
}

type MockJobUoWFactory struct{ mock.Mock }

func (m *MockJobUoWFactory) Create() commands.JobUoW {
	return m.Called().Get(0).(commands.JobUoW)
}

type MockJobRepository struct{ mock.Mock }

func (m *MockJobRepository) Add(ctx context.Context, j *job.Job) error {
	return m.Called(ctx, j).Error(0)
}

func (m *MockJobRepository) Update(ctx context.Context, j *job.Job) error {
	return m.Called(ctx, j).Error(0)
}

func (m *MockJobRepository) Get(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockJobRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockJobRepository) ListStaleIDs(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	args := m.Called(ctx, cutoff, limit)
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

func (m *MockJobRepository) LockIfStale(ctx context.Context, id kernel.UUID, cutoff time.Time) (*job.Job, error) {
	args := m.Called(ctx, id, cutoff)
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockJobRepository) ListUnassignedIDs(ctx context.Context, limit int) ([]kernel.UUID, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

func (m *MockJobRepository) LockIfUnassigned(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockJobRepository) ListExpiredBiddingIDs(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

type MockContractorRepository struct{ mock.Mock }

func (m *MockContractorRepository) Add(ctx context.Context, c *contractor.Contractor) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockContractorRepository) Update(ctx context.Context, c *contractor.Contractor) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockContractorRepository) Get(ctx context.Context, id kernel.UUID) (*contractor.Contractor, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*contractor.Contractor), args.Error(1)
}

func (m *MockContractorRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*contractor.Contractor, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*contractor.Contractor), args.Error(1)
}

func (m *MockContractorRepository) ListAvailable(ctx context.Context) ([]*contractor.Contractor, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*contractor.Contractor), args.Error(1)
}

func TestEnqueueJobCommandHandler_Handle_BeginTransactionError(t *testing.T) {
	// Arrange
	ctx := t.Context()
	cmd, err := commands.NewEnqueueJobCommand(kernel.NewUUID(), kernel.NewUUID(), nil)
	require.NoError(t, err)

	expectedError := errors.New("begin transaction failed")
	mockUoW := new(MockUoW)
	mockFactory := new(MockUoWFactory)

	mock.InOrder(
		mockFactory.On("Create").Return(mockUoW).Once(),
		mockUoW.On("Begin", ctx).Return(expectedError).Once(),
	)

	handler := commands.NewEnqueueJobCommandHandler(mockFactory, ports.SystemClock{}, nil)

	// Act
	entry, err := handler.Handle(ctx, cmd)

	// Assert
	require.ErrorIs(t, err, expectedError)
	assert.Nil(t, entry)
	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
}

func TestEnqueueJobCommandHandler_Handle_ContractorLockErrorRollsBack(t *testing.T) {
	// Arrange
	ctx := t.Context()
	contractorID := kernel.NewUUID()
	cmd, err := commands.NewEnqueueJobCommand(contractorID, kernel.NewUUID(), nil)
	require.NoError(t, err)

	expectedError := errors.New("lock timeout")
	mockContractors := new(MockContractorRepository)
	mockUoW := new(MockUoW)
	mockFactory := new(MockUoWFactory)

	mock.InOrder(
		mockFactory.On("Create").Return(mockUoW).Once(),
		mockUoW.On("Begin", ctx).Return(nil).Once(),
		mockUoW.On("ContractorRepository").Return(mockContractors).Once(),
		mockContractors.On("GetForUpdate", ctx, contractorID).
			Return((*contractor.Contractor)(nil), expectedError).Once(),
		mockUoW.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewEnqueueJobCommandHandler(mockFactory, ports.SystemClock{}, nil)

	// Act
	_, err = handler.Handle(ctx, cmd)

	// Assert
	require.ErrorIs(t, err, expectedError)
	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockContractors.AssertExpectations(t)
}

func TestCreateJobCommandHandler_Handle_Success(t *testing.T) {
	// Arrange
	ctx := t.Context()
	jobID := kernel.NewUUID()
	cmd, err := commands.NewCreateJobCommand(jobID, kernel.NewUUID(), nil, nil)
	require.NoError(t, err)

	mockJobs := new(MockJobRepository)
	mockUoW := new(MockUoW)
	mockFactory := new(MockJobUoWFactory)

	mock.InOrder(
		mockFactory.On("Create").Return(mockUoW).Once(),
		mockUoW.On("Begin", ctx).Return(nil).Once(),
		mockUoW.On("JobRepository").Return(mockJobs).Once(),
		mockJobs.On("Add", ctx, mock.MatchedBy(func(j *job.Job) bool {
			return j.ID().IsEqual(jobID) && j.Status() == job.New && len(j.PendingHistory()) == 1
		})).Return(nil).Once(),
		mockUoW.On("Commit", ctx).Return(nil).Once(),
		mockUoW.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewCreateJobCommandHandler(mockFactory, &fakeClock{now: t0})

	// Act
	created, err := handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, jobID, created.ID())
	assert.Equal(t, t0, created.CreatedAt())
	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockJobs.AssertExpectations(t)
}

func TestCreateJobCommandHandler_Handle_CommitError(t *testing.T) {
	// Arrange
	ctx := t.Context()
	cmd, err := commands.NewCreateJobCommand(kernel.NewUUID(), kernel.NewUUID(), nil, &commands.BiddingTerms{
		Deadline:         t0.Add(time.Hour),
		AutoAcceptPolicy: job.AutoAcceptLowest,
	})
	require.NoError(t, err)

	expectedError := errors.New("commit failed")
	mockJobs := new(MockJobRepository)
	mockUoW := new(MockUoW)
	mockFactory := new(MockJobUoWFactory)

	mock.InOrder(
		mockFactory.On("Create").Return(mockUoW).Once(),
		mockUoW.On("Begin", ctx).Return(nil).Once(),
		mockUoW.On("JobRepository").Return(mockJobs).Once(),
		mockJobs.On("Add", ctx, mock.AnythingOfType("*job.Job")).Return(nil).Once(),
		mockUoW.On("Commit", ctx).Return(expectedError).Once(),
		mockUoW.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewCreateJobCommandHandler(mockFactory, &fakeClock{now: t0})

	// Act
	created, err := handler.Handle(ctx, cmd)

	// Assert
	require.ErrorIs(t, err, expectedError)
	assert.Nil(t, created)
	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockJobs.AssertExpectations(t)
}

func TestCreateJobCommandHandler_Handle_DeadlineInThePast(t *testing.T) {
	// Arrange
	ctx := t.Context()
	cmd, err := commands.NewCreateJobCommand(kernel.NewUUID(), kernel.NewUUID(), nil, &commands.BiddingTerms{
		Deadline: t0.Add(-time.Minute),
	})
	require.NoError(t, err)

	mockFactory := new(MockJobUoWFactory)
	handler := commands.NewCreateJobCommandHandler(mockFactory, &fakeClock{now: t0})

	// Act
	_, err = handler.Handle(ctx, cmd)

	// Assert
	require.Error(t, err)
	mockFactory.AssertExpectations(t)
}

func TestAssignJobCommandHandler_Handle_CommitErrorSendsNothing(t *testing.T) {
	f := newQueueFixture(t)
	f.store.addContractor("Ada", contractor.Gold, nil)
	j := f.store.addJob(t0)

	expectedError := errors.New("serialization failure")
	factory := failingCommitFactory{store: f.store, err: expectedError}

	cmd, err := commands.NewAssignJobCommand(j.ID())
	require.NoError(t, err)
	_, err = commands.NewAssignJobCommandHandler(factory, commands.DefaultPolicy(), f.clock, f.notifier).
		Handle(t.Context(), cmd)

	require.ErrorIs(t, err, expectedError)
	assert.Empty(t, f.notifier.sent)
	assert.Equal(t, job.New, f.store.job(j.ID()).Status())
	assert.Zero(t, f.store.job(j.ID()).AssignmentAttempts())
}

// failingCommitFactory runs against memStore but refuses to commit.
type failingCommitFactory struct {
	store *memStore
	err   error
}

func (f failingCommitFactory) Create() commands.UoW {
	return failingCommitUoW{memUoW: &memUoW{store: f.store}, err: f.err}
}

type failingCommitUoW struct {
	*memUoW
	err error
}

func (u failingCommitUoW) Commit(context.Context) error { return u.err }

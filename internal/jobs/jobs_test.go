package jobs_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSweepHandler struct{ mock.Mock }

func (m *MockSweepHandler) Handle(ctx context.Context, cmd commands.RunReassignmentSweepCommand) (commands.SweepResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.SweepResult), args.Error(1)
}

type MockPendingHandler struct{ mock.Mock }

func (m *MockPendingHandler) Handle(ctx context.Context, cmd commands.AssignPendingJobsCommand) (commands.PendingResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.PendingResult), args.Error(1)
}

type MockBiddingCloseHandler struct{ mock.Mock }

func (m *MockBiddingCloseHandler) Handle(ctx context.Context, cmd commands.CloseExpiredBiddingCommand) (commands.CloseResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.CloseResult), args.Error(1)
}

// countingSweep counts runs without mock bookkeeping, for the scheduler test.
type countingSweep struct{ runs atomic.Int32 }

func (c *countingSweep) Handle(context.Context, commands.RunReassignmentSweepCommand) (commands.SweepResult, error) {
	c.runs.Add(1)
	return commands.SweepResult{}, nil
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestReassignmentSweepJob_Run_LogsResult(t *testing.T) {
	handler := new(MockSweepHandler)
	handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.RunReassignmentSweepCommand) bool {
		return cmd.BatchSize() == 25
	})).Return(commands.SweepResult{Scanned: 2, Reassigned: 1, Cancelled: 1}, nil).Once()

	logger, logs := bufferLogger()
	job := jobs.NewReassignmentSweepJob(handler, "0 * * * * *", 25, logger)

	job.Run(t.Context())

	handler.AssertExpectations(t)
	assert.Contains(t, logs.String(), "Reassignment sweep finished")
	assert.Contains(t, logs.String(), "reassigned=1")
	assert.Contains(t, logs.String(), "component=reassignment_sweep_job")
}

func TestReassignmentSweepJob_Run_LogsHandlerError(t *testing.T) {
	handler := new(MockSweepHandler)
	handler.On("Handle", mock.Anything, mock.Anything).
		Return(commands.SweepResult{}, errors.New("connection refused")).Once()

	logger, logs := bufferLogger()
	jobs.NewReassignmentSweepJob(handler, "0 * * * * *", 25, logger).Run(t.Context())

	handler.AssertExpectations(t)
	assert.Contains(t, logs.String(), "Reassignment sweep failed")
	assert.Contains(t, logs.String(), "connection refused")
}

func TestReassignmentSweepJob_Run_InvalidBatchSizeSkipsHandler(t *testing.T) {
	handler := new(MockSweepHandler)
	logger, logs := bufferLogger()

	jobs.NewReassignmentSweepJob(handler, "0 * * * * *", 0, logger).Run(t.Context())

	handler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	assert.Contains(t, logs.String(), "misconfigured")
}

func TestPendingAssignmentJob_Run_QuietWhenNothingHappened(t *testing.T) {
	handler := new(MockPendingHandler)
	handler.On("Handle", mock.Anything, mock.Anything).
		Return(commands.PendingResult{Scanned: 3, NoCandidate: 3}, nil).Once()

	logger, logs := bufferLogger()
	jobs.NewPendingAssignmentJob(handler, "*/30 * * * * *", 10, logger).Run(t.Context())

	handler.AssertExpectations(t)
	assert.NotContains(t, logs.String(), "Pending assignment finished")
}

func TestBiddingCloseJob_Run_PassesBatchSize(t *testing.T) {
	handler := new(MockBiddingCloseHandler)
	handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CloseExpiredBiddingCommand) bool {
		return cmd.BatchSize() == 5
	})).Return(commands.CloseResult{Scanned: 1, Accepted: 1}, nil).Once()

	logger, logs := bufferLogger()
	jobs.NewBiddingCloseJob(handler, "*/15 * * * * *", 5, logger).Run(t.Context())

	handler.AssertExpectations(t)
	assert.Contains(t, logs.String(), "accepted=1")
}

func TestJobManager_StartAll_InvalidScheduleStopsStartedJobs(t *testing.T) {
	logger, logs := bufferLogger()
	manager := jobs.NewJobManager(
		jobs.NewReassignmentSweepJob(new(MockSweepHandler), "0 0 * * * *", 10, logger),
		jobs.NewPendingAssignmentJob(new(MockPendingHandler), "not a schedule", 10, logger),
		jobs.NewBiddingCloseJob(new(MockBiddingCloseHandler), "0 0 * * * *", 10, logger),
	)

	err := manager.StartAll()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending assignment job")
	assert.Contains(t, logs.String(), "Reassignment sweep job stopped")
}

func TestJobManager_RunsOnSchedule(t *testing.T) {
	sweep := &countingSweep{}
	logger, _ := bufferLogger()
	manager := jobs.NewJobManager(
		jobs.NewReassignmentSweepJob(sweep, "* * * * * *", 10, logger),
		jobs.NewPendingAssignmentJob(new(MockPendingHandler), "0 0 0 1 1 *", 10, logger),
		jobs.NewBiddingCloseJob(new(MockBiddingCloseHandler), "0 0 0 1 1 *", 10, logger),
	)

	require.NoError(t, manager.StartAll())
	require.Eventually(t, func() bool { return sweep.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	manager.StopAll()
}

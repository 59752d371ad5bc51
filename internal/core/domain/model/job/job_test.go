package job_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newJob(t *testing.T) *job.Job {
	t.Helper()
	j, err := job.NewJob(kernel.NewUUID(), kernel.NewUUID(), nil, now)
	require.NoError(t, err)
	return j
}

func TestNewJob(t *testing.T) {
	t.Run("should create new job without contractor", func(t *testing.T) {
		id := kernel.NewUUID()
		loc, err := kernel.NewGeoPoint(40.7, -74)
		require.NoError(t, err)

		j, err := job.NewJob(id, kernel.NewUUID(), &loc, now)

		require.NoError(t, err)
		require.NoError(t, j.Validate())
		assert.True(t, j.ID().IsEqual(id))
		assert.Equal(t, job.New, j.Status())
		assert.Nil(t, j.ContractorID())
		assert.Equal(t, 0, j.AssignmentAttempts())
		assert.Equal(t, job.AutoAcceptNone, j.AutoAcceptPolicy())
		require.Len(t, j.PendingHistory(), 1)
		assert.Equal(t, job.New, j.PendingHistory()[0].To())
	})

	t.Run("should join validation errors", func(t *testing.T) {
		var id, customer kernel.UUID

		j, err := job.NewJob(id, customer, nil, now)

		require.Error(t, err)
		assert.Nil(t, j)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "customerId")
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var j *job.Job
		assert.ErrorIs(t, j.Validate(), job.ErrJobIsNotConstructed)
	})
}

func TestJob_AssignAndProgress(t *testing.T) {
	j := newJob(t)
	contractor := kernel.NewUUID()

	attempt, err := j.RecordAssignmentAttempt(now)
	require.NoError(t, err)
	assert.Equal(t, 1, attempt)

	require.NoError(t, j.Assign(contractor, "assignment attempt 1", now))
	assert.Equal(t, job.Assigned, j.Status())
	assert.True(t, j.IsBoundTo(contractor))
	assert.False(t, j.IsReserved())

	require.NoError(t, j.StartTravel(now.Add(time.Minute)))
	require.NoError(t, j.Arrive(now.Add(2*time.Minute)))
	require.NoError(t, j.Complete("done", now.Add(time.Hour)))
	assert.Equal(t, job.Completed, j.Status())

	history := j.PendingHistory()
	require.Len(t, history, 5)
	assert.Equal(t, "assignment attempt 1", history[1].Note())
	for i := 2; i < len(history); i++ {
		assert.Equal(t, history[i-1].To(), history[i].From())
	}

	err = j.Cancel("too late", now)
	assert.ErrorIs(t, err, errs.ErrInvalidState)
}

func TestJob_ReserveThenAssign(t *testing.T) {
	j := newJob(t)
	contractor := kernel.NewUUID()

	require.NoError(t, j.Reserve(contractor, "queued", now))
	assert.True(t, j.IsReserved())
	assert.Equal(t, job.New, j.Status())

	t.Run("other contractor cannot take reserved job", func(t *testing.T) {
		err := j.Assign(kernel.NewUUID(), "x", now)
		assert.ErrorIs(t, err, errs.ErrInvalidState)
	})

	later := now.Add(40 * time.Minute)
	require.NoError(t, j.Assign(contractor, "promoted", later))
	assert.Equal(t, job.Assigned, j.Status())
	assert.Equal(t, later, *j.LastAssignmentAttemptAt())
}

func TestJob_Unassign(t *testing.T) {
	j := newJob(t)
	contractor := kernel.NewUUID()
	_, _ = j.RecordAssignmentAttempt(now)
	require.NoError(t, j.Assign(contractor, "assignment attempt 1", now))

	require.NoError(t, j.Unassign("no response", now))

	assert.Equal(t, job.New, j.Status())
	assert.Nil(t, j.ContractorID())
	assert.Equal(t, 1, j.AssignmentAttempts())

	err := j.Unassign("again", now)
	assert.ErrorIs(t, err, errs.ErrInvalidState)
}

func TestJob_IsStale(t *testing.T) {
	j := newJob(t)
	assert.False(t, j.IsStale(now.Add(time.Hour)))

	_, _ = j.RecordAssignmentAttempt(now)
	require.NoError(t, j.Assign(kernel.NewUUID(), "assignment attempt 1", now))

	assert.False(t, j.IsStale(now.Add(-time.Minute)))
	assert.True(t, j.IsStale(now.Add(time.Minute)))

	require.NoError(t, j.StartTravel(now))
	assert.False(t, j.IsStale(now.Add(time.Hour)))
}

func TestJob_Cancel(t *testing.T) {
	j := newJob(t)
	contractor := kernel.NewUUID()
	require.NoError(t, j.Assign(contractor, "x", now))

	require.NoError(t, j.Cancel("max attempts reached", now))

	assert.Equal(t, job.Cancelled, j.Status())
	assert.Nil(t, j.ContractorID())
	assert.ErrorIs(t, j.Assign(contractor, "x", now), errs.ErrInvalidState)
}

func TestJob_Bidding(t *testing.T) {
	deadline := now.Add(24 * time.Hour)
	reserve, _ := kernel.NewMoney(10000)

	t.Run("should open bidding and award bid", func(t *testing.T) {
		j := newJob(t)
		require.NoError(t, j.OpenBidding(deadline, &reserve, job.AutoAcceptLowest, now))

		assert.True(t, j.AcceptsBids(now))
		assert.False(t, j.AcceptsBids(deadline))
		assert.True(t, j.BiddingExpired(deadline))

		amount, _ := kernel.NewMoney(9000)
		bidID := kernel.NewUUID()
		require.NoError(t, j.AwardBid(bidID, amount))

		assert.True(t, j.WinningBidID().IsEqual(bidID))
		assert.Equal(t, int64(9000), j.AgreedPrice().Cents())
		assert.False(t, j.CanAwardBid())
		assert.ErrorIs(t, j.AwardBid(kernel.NewUUID(), amount), errs.ErrInvalidState)
	})

	t.Run("should reject deadline in the past", func(t *testing.T) {
		j := newJob(t)
		err := j.OpenBidding(now.Add(-time.Hour), nil, job.AutoAcceptNone, now)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject unknown policy", func(t *testing.T) {
		j := newJob(t)
		err := j.OpenBidding(deadline, nil, job.AutoAcceptPolicy("highest"), now)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("direct dispatch job cannot award bids", func(t *testing.T) {
		j := newJob(t)
		amount, _ := kernel.NewMoney(1)
		assert.ErrorIs(t, j.AwardBid(kernel.NewUUID(), amount), errs.ErrInvalidState)
	})
}

func TestRestore(t *testing.T) {
	contractor := kernel.NewUUID()
	last := now.Add(-20 * time.Minute)

	j, err := job.Restore(job.RestoreParams{
		ID:                      kernel.NewUUID(),
		CustomerID:              kernel.NewUUID(),
		Status:                  job.Assigned,
		ContractorID:            &contractor,
		AssignmentAttempts:      2,
		LastAssignmentAttemptAt: &last,
		CreatedAt:               now.Add(-time.Hour),
	})

	require.NoError(t, err)
	assert.Equal(t, job.Assigned, j.Status())
	assert.Equal(t, 2, j.AssignmentAttempts())
	assert.Equal(t, job.AutoAcceptNone, j.AutoAcceptPolicy())
	assert.Empty(t, j.PendingHistory())
	assert.True(t, j.IsStale(now.Add(-15*time.Minute)))

	_, err = job.Restore(job.RestoreParams{ID: kernel.NewUUID(), CustomerID: kernel.NewUUID()})
	assert.Error(t, err)
}

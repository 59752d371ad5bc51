package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	api "dispatch/internal/adapters/in/http"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/queue"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

func newEcho(t *testing.T, handlers api.Handlers) *echo.Echo {
	t.Helper()
	e := echo.New()
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "dispatch_sweep_jobs_total 0\n")
	})
	api.NewServer(handlers, metrics, slog.New(slog.DiscardHandler)).Register(e)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func entry(t *testing.T, contractorID, jobID kernel.UUID, position int, status queue.EntryStatus) *queue.Entry {
	t.Helper()
	e, err := queue.RestoreEntry(kernel.NewUUID(), contractorID, jobID, position, status, "", t0, t0)
	require.NoError(t, err)
	return e
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEcho(t, api.Handlers{})

	rec := do(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())

	rec = do(e, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dispatch_sweep_jobs_total")
}

func TestCreateJob(t *testing.T) {
	customerID := kernel.NewUUID()
	var received commands.CreateJobCommand
	e := newEcho(t, api.Handlers{
		CreateJob: api.HandlerFunc[commands.CreateJobCommand, *job.Job](
			func(_ context.Context, cmd commands.CreateJobCommand) (*job.Job, error) {
				received = cmd
				return job.NewJob(cmd.JobID(), cmd.CustomerID(), cmd.Location(), t0)
			}),
	})

	rec := do(e, http.MethodPost, "/api/v1/jobs",
		`{"customerId":"`+customerID.String()+`","location":{"lat":51.5,"lng":-0.12}}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[api.Job](t, rec)
	assert.Equal(t, customerID.String(), created.CustomerID)
	assert.Equal(t, "new", created.Status)
	require.NotNil(t, created.Location)
	assert.InDelta(t, 51.5, created.Location.Lat, 1e-9)
	assert.Equal(t, customerID, received.CustomerID())
	assert.False(t, received.AllowBidding())
}

func TestCreateJob_RejectsBadInput(t *testing.T) {
	e := newEcho(t, api.Handlers{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"customerId":`},
		{"missing customer", `{}`},
		{"latitude out of range", `{"customerId":"` + kernel.NewUUID().String() + `","location":{"lat":91,"lng":0}}`},
		{"bidding without deadline", `{"customerId":"` + kernel.NewUUID().String() + `","bidding":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/api/v1/jobs", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, http.StatusBadRequest, decode[api.Error](t, rec).Code)
		})
	}
}

func TestAssignJob_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"no candidate", commands.ErrNoCandidate, http.StatusConflict, ""},
		{"missing job", errs.NewObjectNotFoundError("jobId", "x"), http.StatusNotFound, ""},
		{"invalid state", errs.NewInvalidStateError("job", "job is cancelled"), http.StatusConflict, ""},
		{"transient", errs.NewTransientPersistenceError("commit", errors.New("40001")), http.StatusServiceUnavailable, "Service Unavailable"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho(t, api.Handlers{
				AssignJob: api.HandlerFunc[commands.AssignJobCommand, commands.Assignment](
					func(context.Context, commands.AssignJobCommand) (commands.Assignment, error) {
						return commands.Assignment{}, tt.err
					}),
			})

			rec := do(e, http.MethodPost, "/api/v1/jobs/"+kernel.NewUUID().String()+"/assign", "")

			assert.Equal(t, tt.code, rec.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decode[api.Error](t, rec).Message)
			}
		})
	}
}

func TestAssignJob_Success(t *testing.T) {
	jobID, contractorID := kernel.NewUUID(), kernel.NewUUID()
	e := newEcho(t, api.Handlers{
		AssignJob: api.HandlerFunc[commands.AssignJobCommand, commands.Assignment](
			func(_ context.Context, cmd commands.AssignJobCommand) (commands.Assignment, error) {
				return commands.Assignment{
					ContractorID: contractorID,
					Entry:        entry(t, contractorID, cmd.JobID(), 1, queue.Current),
				}, nil
			}),
	})

	rec := do(e, http.MethodPost, "/api/v1/jobs/"+jobID.String()+"/assign", "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[api.Assignment](t, rec)
	assert.Equal(t, contractorID.String(), got.ContractorID)
	assert.Equal(t, jobID.String(), got.Entry.JobID)
	assert.Equal(t, "current", got.Entry.Status)
}

func TestInvalidPathID(t *testing.T) {
	e := newEcho(t, api.Handlers{})

	rec := do(e, http.MethodPost, "/api/v1/jobs/not-a-uuid/assign", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[api.Error](t, rec).Message, "jobId")
}

func TestQueueEndpoints(t *testing.T) {
	contractorID, jobID := kernel.NewUUID(), kernel.NewUUID()
	var priority *int
	e := newEcho(t, api.Handlers{
		EnqueueJob: api.HandlerFunc[commands.EnqueueJobCommand, *queue.Entry](
			func(_ context.Context, cmd commands.EnqueueJobCommand) (*queue.Entry, error) {
				priority = cmd.Priority()
				return entry(t, cmd.ContractorID(), cmd.JobID(), 2, queue.Queued), nil
			}),
		AdvanceQueue: api.HandlerFunc[commands.AdvanceQueueCommand, *queue.Entry](
			func(context.Context, commands.AdvanceQueueCommand) (*queue.Entry, error) {
				return nil, nil
			}),
		RemoveFromQueue: api.HandlerFunc[commands.RemoveFromQueueCommand, bool](
			func(context.Context, commands.RemoveFromQueueCommand) (bool, error) {
				return false, nil
			}),
		ContractorQueue: api.HandlerFunc[queries.GetContractorQueueQuery, []queries.ContractorQueueItem](
			func(_ context.Context, q queries.GetContractorQueueQuery) ([]queries.ContractorQueueItem, error) {
				return []queries.ContractorQueueItem{{
					EntryID: kernel.NewUUID(), JobID: jobID, Position: 1,
					Status: queue.Current, JobStatus: job.Assigned, EnqueuedAt: t0,
				}}, nil
			}),
	})
	base := "/api/v1/contractors/" + contractorID.String() + "/queue"

	rec := do(e, http.MethodPost, base, `{"jobId":"`+jobID.String()+`","priority":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[api.QueueEntry](t, rec).Position)
	require.NotNil(t, priority)
	assert.Equal(t, 1, *priority)

	rec = do(e, http.MethodPost, base+"/advance", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodDelete, "/api/v1/jobs/"+jobID.String()+"/queue-entry", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]api.ContractorQueueItem](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "assigned", items[0].JobStatus)
}

func TestGetJobBids_PendingFlag(t *testing.T) {
	jobID := kernel.NewUUID()
	amount, err := kernel.NewMoney(9900)
	require.NoError(t, err)
	score := 0.8
	var pendingOnly bool
	e := newEcho(t, api.Handlers{
		JobBids: api.HandlerFunc[queries.GetJobBidsQuery, []queries.JobBidItem](
			func(_ context.Context, q queries.GetJobBidsQuery) ([]queries.JobBidItem, error) {
				pendingOnly = q.PendingOnly()
				return []queries.JobBidItem{{
					ID: kernel.NewUUID(), ContractorID: kernel.NewUUID(), Amount: amount,
					Status: bid.Pending, Score: &score, SubmittedAt: t0,
				}}, nil
			}),
	})

	rec := do(e, http.MethodGet, "/api/v1/jobs/"+jobID.String()+"/bids?pending=true", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, pendingOnly)
	bids := decode[[]api.Bid](t, rec)
	require.Len(t, bids, 1)
	assert.Equal(t, int64(9900), bids[0].AmountCents)
	assert.Equal(t, jobID.String(), bids[0].JobID)
	require.NotNil(t, bids[0].Score)
	assert.InDelta(t, 0.8, *bids[0].Score, 1e-9)

	rec = do(e, http.MethodGet, "/api/v1/jobs/"+jobID.String()+"/bids?pending=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitBid(t *testing.T) {
	jobID, contractorID := kernel.NewUUID(), kernel.NewUUID()
	e := newEcho(t, api.Handlers{
		SubmitBid: api.HandlerFunc[commands.SubmitBidCommand, *bid.Bid](
			func(_ context.Context, cmd commands.SubmitBidCommand) (*bid.Bid, error) {
				return bid.NewBid(kernel.NewUUID(), cmd.JobID(), cmd.ContractorID(), cmd.Amount(), cmd.EstimatedDuration(), nil, cmd.Message(), t0)
			}),
	})
	target := "/api/v1/jobs/" + jobID.String() + "/bids"

	rec := do(e, http.MethodPost, target,
		`{"contractorId":"`+contractorID.String()+`","amountCents":12500,"estimatedDurationMinutes":90}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	submitted := decode[api.Bid](t, rec)
	assert.Equal(t, "pending", submitted.Status)
	require.NotNil(t, submitted.EstimatedDurationMinutes)
	assert.Equal(t, 90, *submitted.EstimatedDurationMinutes)

	rec = do(e, http.MethodPost, target, `{"contractorId":"`+contractorID.String()+`","amountCents":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAutoAcceptLowestBid_NothingAccepted(t *testing.T) {
	e := newEcho(t, api.Handlers{
		AutoAcceptLowestBid: api.HandlerFunc[commands.AutoAcceptLowestBidCommand, *bid.Bid](
			func(context.Context, commands.AutoAcceptLowestBidCommand) (*bid.Bid, error) {
				return nil, nil
			}),
	})

	rec := do(e, http.MethodPost, "/api/v1/jobs/"+kernel.NewUUID().String()+"/bids/auto-accept", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRunSweep(t *testing.T) {
	e := newEcho(t, api.Handlers{
		RunSweep: api.HandlerFunc[commands.RunReassignmentSweepCommand, commands.SweepResult](
			func(_ context.Context, cmd commands.RunReassignmentSweepCommand) (commands.SweepResult, error) {
				return commands.SweepResult{Scanned: cmd.BatchSize(), Reassigned: 2}, nil
			}),
	})

	rec := do(e, http.MethodPost, "/api/v1/sweeps", "")

	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[api.SweepResult](t, rec)
	assert.Equal(t, 100, result.Scanned)
	assert.Equal(t, 2, result.Reassigned)
}

package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetJobHistoryQueryIsNotConstructed = errors.New(
		"GetJobHistoryQuery must be created via NewGetJobHistoryQuery constructor",
	)
)

// GetJobHistoryQuery reads the status transitions of a job, oldest first.
type GetJobHistoryQuery struct {
	jobID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetJobHistoryQuery validates the job id.
func NewGetJobHistoryQuery(jobID kernel.UUID) (GetJobHistoryQuery, error) {
	if err := jobID.Validate(); err != nil {
		return GetJobHistoryQuery{}, errs.NewValueIsRequiredErrorWithCause("jobId", err)
	}
	return GetJobHistoryQuery{jobID: jobID, guard: guard.NewConstructorGuard()}, nil
}

// JobID returns the job whose history is read.
func (q GetJobHistoryQuery) JobID() kernel.UUID { return q.jobID }

// Validate ensures the query was created through the constructor.
func (q GetJobHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetJobHistoryQueryIsNotConstructed)
}

// JobHistoryItem is one stored transition. The first item of every job has From job.Unknown.
type JobHistoryItem struct {
	From job.Status
	To   job.Status

	// Note is the reason given with the transition, e.g. "assignment attempt 2".
	Note      string
	ChangedAt time.Time
}

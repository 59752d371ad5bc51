package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// sweepBatchSize bounds an on-demand sweep.
const sweepBatchSize = 100

// CreateJob handles POST /api/v1/jobs.
func (s *Server) CreateJob(c echo.Context) error {
	var body NewJob
	if ok, err := bind(c, &body); !ok {
		return err
	}

	customerID, err := kernel.UUIDFromString(body.CustomerID)
	if err != nil {
		return badRequest(c, "Invalid customerId: "+err.Error())
	}

	var location *kernel.GeoPoint
	if body.Location != nil {
		loc, locErr := kernel.NewGeoPoint(body.Location.Lat, body.Location.Lng)
		if locErr != nil {
			return badRequest(c, "Invalid location: "+locErr.Error())
		}
		location = &loc
	}

	var terms *commands.BiddingTerms
	if body.Bidding != nil {
		terms = &commands.BiddingTerms{
			Deadline:         body.Bidding.Deadline,
			ReservePrice:     body.Bidding.ReservePriceCents,
			AutoAcceptPolicy: job.AutoAcceptPolicy(body.Bidding.AutoAcceptPolicy),
		}
	}

	cmd, err := commands.NewCreateJobCommand(kernel.NewUUID(), customerID, location, terms)
	if err != nil {
		return badRequest(c, "Invalid job data: "+err.Error())
	}

	created, err := s.h.CreateJob.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, toJob(created))
}

// AssignJob handles POST /api/v1/jobs/{jobId}/assign. 409 when no contractor is eligible.
func (s *Server) AssignJob(c echo.Context) error {
	jobID, ok, err := pathID(c, "jobId")
	if !ok {
		return err
	}

	cmd, err := commands.NewAssignJobCommand(jobID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	assignment, err := s.h.AssignJob.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, Assignment{
		ContractorID: assignment.ContractorID.String(),
		Entry:        toQueueEntry(assignment.Entry),
	})
}

// CancelJob handles POST /api/v1/jobs/{jobId}/cancel. The reason is required.
func (s *Server) CancelJob(c echo.Context) error {
	jobID, ok, err := pathID(c, "jobId")
	if !ok {
		return err
	}
	var body Reason
	if ok, err = bind(c, &body); !ok {
		return err
	}

	cmd, err := commands.NewCancelJobCommand(jobID, body.Reason)
	if err != nil {
		return badRequest(c, err.Error())
	}

	cancelled, err := s.h.CancelJob.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toJob(cancelled))
}

// UpdateJobProgress handles POST /api/v1/jobs/{jobId}/progress with status en_route or on_site.
func (s *Server) UpdateJobProgress(c echo.Context) error {
	jobID, ok, err := pathID(c, "jobId")
	if !ok {
		return err
	}
	var body Progress
	if ok, err = bind(c, &body); !ok {
		return err
	}

	contractorID, err := kernel.UUIDFromString(body.ContractorID)
	if err != nil {
		return badRequest(c, "Invalid contractorId: "+err.Error())
	}
	target, err := job.ParseStatus(body.Status)
	if err != nil {
		return badRequest(c, err.Error())
	}

	cmd, err := commands.NewUpdateJobProgressCommand(jobID, contractorID, target)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := s.h.UpdateJobProgress.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toJob(updated))
}

// GetJobHistory handles GET /api/v1/jobs/{jobId}/history, oldest transition first.
func (s *Server) GetJobHistory(c echo.Context) error {
	jobID, ok, err := pathID(c, "jobId")
	if !ok {
		return err
	}

	query, err := queries.NewGetJobHistoryQuery(jobID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	history, err := s.h.JobHistory.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]HistoryItem, len(history))
	for i, h := range history {
		response[i] = HistoryItem{
			From:      h.From.String(),
			To:        h.To.String(),
			Note:      h.Note,
			ChangedAt: h.ChangedAt,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// RunSweep handles POST /api/v1/sweeps, running one reassignment sweep on demand.
func (s *Server) RunSweep(c echo.Context) error {
	cmd, err := commands.NewRunReassignmentSweepCommand(sweepBatchSize)
	if err != nil {
		return s.fail(c, err)
	}

	result, err := s.h.RunSweep.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toSweepResult(result))
}

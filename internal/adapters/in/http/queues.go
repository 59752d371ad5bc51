package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// GetContractorQueue handles GET /api/v1/contractors/{contractorId}/queue.
func (s *Server) GetContractorQueue(c echo.Context) error {
	contractorID, ok, err := pathID(c, "contractorId")
	if !ok {
		return err
	}

	query, err := queries.NewGetContractorQueueQuery(contractorID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	items, err := s.h.ContractorQueue.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]ContractorQueueItem, len(items))
	for i, item := range items {
		response[i] = ContractorQueueItem{
			EntryID:    item.EntryID.String(),
			JobID:      item.JobID.String(),
			Position:   item.Position,
			Status:     item.Status.String(),
			JobStatus:  item.JobStatus.String(),
			EnqueuedAt: item.EnqueuedAt,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// EnqueueJob handles POST /api/v1/contractors/{contractorId}/queue.
func (s *Server) EnqueueJob(c echo.Context) error {
	contractorID, ok, err := pathID(c, "contractorId")
	if !ok {
		return err
	}
	var body NewQueueEntry
	if ok, err = bind(c, &body); !ok {
		return err
	}

	jobID, err := kernel.UUIDFromString(body.JobID)
	if err != nil {
		return badRequest(c, "Invalid jobId: "+err.Error())
	}

	cmd, err := commands.NewEnqueueJobCommand(contractorID, jobID, body.Priority)
	if err != nil {
		return badRequest(c, err.Error())
	}

	entry, err := s.h.EnqueueJob.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, toQueueEntry(entry))
}

// AdvanceQueue completes the current job. 204 when nothing was queued behind it.
func (s *Server) AdvanceQueue(c echo.Context) error {
	contractorID, ok, err := pathID(c, "contractorId")
	if !ok {
		return err
	}

	cmd, err := commands.NewAdvanceQueueCommand(contractorID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	next, err := s.h.AdvanceQueue.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	if next == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, toQueueEntry(next))
}

// ReorderQueue handles PUT /api/v1/contractors/{contractorId}/queue/order. 204 on success.
func (s *Server) ReorderQueue(c echo.Context) error {
	contractorID, ok, err := pathID(c, "contractorId")
	if !ok {
		return err
	}
	var body QueueOrder
	if ok, err = bind(c, &body); !ok {
		return err
	}

	jobIDs := make([]kernel.UUID, 0, len(body.JobIDs))
	for _, raw := range body.JobIDs {
		id, parseErr := kernel.UUIDFromString(raw)
		if parseErr != nil {
			return badRequest(c, "Invalid jobIds: "+parseErr.Error())
		}
		jobIDs = append(jobIDs, id)
	}

	cmd, err := commands.NewReorderQueueCommand(contractorID, jobIDs)
	if err != nil {
		return badRequest(c, err.Error())
	}

	if _, err = s.h.ReorderQueue.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveFromQueue handles DELETE /api/v1/jobs/{jobId}/queue-entry. 404 when the job
// never had a queue entry.
func (s *Server) RemoveFromQueue(c echo.Context) error {
	jobID, ok, err := pathID(c, "jobId")
	if !ok {
		return err
	}

	cmd, err := commands.NewRemoveFromQueueCommand(jobID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	removed, err := s.h.RemoveFromQueue.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	if !removed {
		return c.JSON(http.StatusNotFound, Error{Code: http.StatusNotFound, Message: "Job is not queued"})
	}
	return c.NoContent(http.StatusNoContent)
}

// SkipQueueEntry handles POST /api/v1/queue-entries/{entryId}/skip.
func (s *Server) SkipQueueEntry(c echo.Context) error {
	entryID, ok, err := pathID(c, "entryId")
	if !ok {
		return err
	}
	var body Reason
	if ok, err = bind(c, &body); !ok {
		return err
	}

	cmd, err := commands.NewSkipQueueEntryCommand(entryID, body.Reason)
	if err != nil {
		return badRequest(c, err.Error())
	}

	skipped, err := s.h.SkipQueueEntry.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toQueueEntry(skipped))
}

package http

import (
	"net/http"
	"strconv"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// GetJobBids handles GET /api/v1/jobs/{jobId}/bids?pending=true, best score first.
func (s *Server) GetJobBids(c echo.Context) error {
	jobID, ok, err := pathID(c, "jobId")
	if !ok {
		return err
	}

	pendingOnly := false
	if raw := c.QueryParam("pending"); raw != "" {
		if pendingOnly, err = strconv.ParseBool(raw); err != nil {
			return badRequest(c, "Invalid pending flag")
		}
	}

	query, err := queries.NewGetJobBidsQuery(jobID, pendingOnly)
	if err != nil {
		return badRequest(c, err.Error())
	}

	items, err := s.h.JobBids.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]Bid, len(items))
	for i, item := range items {
		response[i] = toBidItem(jobID, item)
	}
	return c.JSON(http.StatusOK, response)
}

// SubmitBid handles POST /api/v1/jobs/{jobId}/bids and returns 201 with the ranked bid.
func (s *Server) SubmitBid(c echo.Context) error {
	jobID, ok, err := pathID(c, "jobId")
	if !ok {
		return err
	}
	var body BidOffer
	if ok, err = bind(c, &body); !ok {
		return err
	}

	contractorID, err := kernel.UUIDFromString(body.ContractorID)
	if err != nil {
		return badRequest(c, "Invalid contractorId: "+err.Error())
	}

	cmd, err := commands.NewSubmitBidCommand(jobID, contractorID, body.AmountCents, body.duration(), body.Message)
	if err != nil {
		return badRequest(c, "Invalid bid: "+err.Error())
	}

	submitted, err := s.h.SubmitBid.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, toBid(submitted))
}

// UpdateBid handles PUT /api/v1/bids/{bidId}.
func (s *Server) UpdateBid(c echo.Context) error {
	bidID, ok, err := pathID(c, "bidId")
	if !ok {
		return err
	}
	var body BidOffer
	if ok, err = bind(c, &body); !ok {
		return err
	}

	cmd, err := commands.NewUpdateBidCommand(bidID, body.AmountCents, body.duration(), body.Message)
	if err != nil {
		return badRequest(c, "Invalid bid: "+err.Error())
	}

	updated, err := s.h.UpdateBid.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toBid(updated))
}

// AcceptBid awards the job and returns the queue entry it received.
func (s *Server) AcceptBid(c echo.Context) error {
	bidID, ok, err := pathID(c, "bidId")
	if !ok {
		return err
	}

	cmd, err := commands.NewAcceptBidCommand(bidID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	entry, err := s.h.AcceptBid.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toQueueEntry(entry))
}

// RejectBid handles POST /api/v1/bids/{bidId}/reject.
func (s *Server) RejectBid(c echo.Context) error {
	bidID, ok, err := pathID(c, "bidId")
	if !ok {
		return err
	}

	cmd, err := commands.NewRejectBidCommand(bidID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	rejected, err := s.h.RejectBid.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toBid(rejected))
}

// CounterBid returns the new counter offer; the original bid is marked countered.
func (s *Server) CounterBid(c echo.Context) error {
	bidID, ok, err := pathID(c, "bidId")
	if !ok {
		return err
	}
	var body BidOffer
	if ok, err = bind(c, &body); !ok {
		return err
	}

	cmd, err := commands.NewCounterBidCommand(bidID, body.AmountCents, body.duration(), body.Message)
	if err != nil {
		return badRequest(c, "Invalid counter offer: "+err.Error())
	}

	counter, err := s.h.CounterBid.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, toBid(counter))
}

// WithdrawBid handles POST /api/v1/bids/{bidId}/withdraw. The body names the contractor.
func (s *Server) WithdrawBid(c echo.Context) error {
	bidID, ok, err := pathID(c, "bidId")
	if !ok {
		return err
	}
	var body Withdrawal
	if ok, err = bind(c, &body); !ok {
		return err
	}

	contractorID, err := kernel.UUIDFromString(body.ContractorID)
	if err != nil {
		return badRequest(c, "Invalid contractorId: "+err.Error())
	}

	cmd, err := commands.NewWithdrawBidCommand(bidID, contractorID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	withdrawn, err := s.h.WithdrawBid.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toBid(withdrawn))
}

// AutoAcceptLowestBid returns the accepted bid, or 204 when the rule accepted nothing.
func (s *Server) AutoAcceptLowestBid(c echo.Context) error {
	jobID, ok, err := pathID(c, "jobId")
	if !ok {
		return err
	}

	cmd, err := commands.NewAutoAcceptLowestBidCommand(jobID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	winner, err := s.h.AutoAcceptLowestBid.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	if winner == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, toBid(winner))
}

// RecomputeRanks handles POST /api/v1/jobs/{jobId}/bids/ranks and returns every bid.
func (s *Server) RecomputeRanks(c echo.Context) error {
	jobID, ok, err := pathID(c, "jobId")
	if !ok {
		return err
	}

	cmd, err := commands.NewRecomputeRanksCommand(jobID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ranked, err := s.h.RecomputeRanks.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toBids(ranked))
}

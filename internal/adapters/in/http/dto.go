package http

import (
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/bid"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/queue"
)

// Location is a latitude and longitude in decimal degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BiddingTerms opens a new job to bids. ReservePriceCents is optional.
type BiddingTerms struct {
	Deadline          time.Time `json:"deadline"`
	ReservePriceCents *int64    `json:"reservePriceCents,omitempty"`
	AutoAcceptPolicy  string    `json:"autoAcceptPolicy,omitempty"`
}

// NewJob is the body of POST /jobs. Omit Bidding for direct dispatch.
type NewJob struct {
	CustomerID string        `json:"customerId"`
	Location   *Location     `json:"location,omitempty"`
	Bidding    *BiddingTerms `json:"bidding,omitempty"`
}

// Reason is the body of cancel and skip.
type Reason struct {
	Reason string `json:"reason"`
}

// Progress is the body of a progress update.
type Progress struct {
	ContractorID string `json:"contractorId"`
	Status       string `json:"status"`
}

// NewQueueEntry is the body of an explicit enqueue. Priority is a 1-based position.
type NewQueueEntry struct {
	JobID    string `json:"jobId"`
	Priority *int   `json:"priority,omitempty"`
}

// QueueOrder lists queued job ids in their new order.
type QueueOrder struct {
	JobIDs []string `json:"jobIds"`
}

// BidOffer is the body of submit, update and counter. ContractorID is only read on submit.
type BidOffer struct {
	ContractorID             string `json:"contractorId,omitempty"`
	AmountCents              int64  `json:"amountCents"`
	EstimatedDurationMinutes *int   `json:"estimatedDurationMinutes,omitempty"`
	Message                  string `json:"message,omitempty"`
}

func (o BidOffer) duration() *time.Duration {
	if o.EstimatedDurationMinutes == nil {
		return nil
	}
	d := time.Duration(*o.EstimatedDurationMinutes) * time.Minute
	return &d
}

// Withdrawal names the contractor taking a bid back.
type Withdrawal struct {
	ContractorID string `json:"contractorId"`
}

// Job is the API view of a job.
type Job struct {
	ID                 string     `json:"id"`
	CustomerID         string     `json:"customerId"`
	Status             string     `json:"status"`
	ContractorID       *string    `json:"contractorId,omitempty"`
	AssignmentAttempts int        `json:"assignmentAttempts"`
	Location           *Location  `json:"location,omitempty"`
	AllowBidding       bool       `json:"allowBidding"`
	BiddingDeadline    *time.Time `json:"biddingDeadline,omitempty"`
	AgreedPriceCents   *int64     `json:"agreedPriceCents,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// QueueEntry is the API view of a queue entry.
type QueueEntry struct {
	ID           string `json:"id"`
	ContractorID string `json:"contractorId"`
	JobID        string `json:"jobId"`
	Position     int    `json:"position"`
	Status       string `json:"status"`
	Note         string `json:"note,omitempty"`
}

// Assignment is the response of an explicit assign.
type Assignment struct {
	ContractorID string     `json:"contractorId"`
	Entry        QueueEntry `json:"entry"`
}

// Bid is the API view of a bid. Rank fields are absent until the bid is ranked.
type Bid struct {
	ID                       string   `json:"id"`
	JobID                    string   `json:"jobId"`
	ContractorID             string   `json:"contractorId"`
	AmountCents              int64    `json:"amountCents"`
	EstimatedDurationMinutes *int     `json:"estimatedDurationMinutes,omitempty"`
	Message                  string   `json:"message,omitempty"`
	Status                   string   `json:"status"`
	PriceRank                *int     `json:"priceRank,omitempty"`
	TimeRank                 *int     `json:"timeRank,omitempty"`
	QualityRank              *int     `json:"qualityRank,omitempty"`
	Score                    *float64 `json:"score,omitempty"`
	IsCounterOffer           bool     `json:"isCounterOffer"`
}

// ContractorQueueItem is an active entry with its job status.
type ContractorQueueItem struct {
	EntryID    string    `json:"entryId"`
	JobID      string    `json:"jobId"`
	Position   int       `json:"position"`
	Status     string    `json:"status"`
	JobStatus  string    `json:"jobStatus"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// HistoryItem is one job status transition.
type HistoryItem struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Note      string    `json:"note,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
}

// SweepResult reports what an on-demand sweep did.
type SweepResult struct {
	Scanned    int `json:"scanned"`
	Reassigned int `json:"reassigned"`
	Unassigned int `json:"unassigned"`
	Cancelled  int `json:"cancelled"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

func toJob(j *job.Job) Job {
	out := Job{
		ID:                 j.ID().String(),
		CustomerID:         j.CustomerID().String(),
		Status:             j.Status().String(),
		AssignmentAttempts: j.AssignmentAttempts(),
		AllowBidding:       j.AllowBidding(),
		BiddingDeadline:    j.BiddingDeadline(),
		CreatedAt:          j.CreatedAt(),
	}
	if id := j.ContractorID(); id != nil {
		s := id.String()
		out.ContractorID = &s
	}
	if loc := j.Location(); loc != nil {
		out.Location = &Location{Lat: loc.Lat(), Lng: loc.Lng()}
	}
	if price := j.AgreedPrice(); price != nil {
		cents := price.Cents()
		out.AgreedPriceCents = &cents
	}
	return out
}

func toQueueEntry(e *queue.Entry) QueueEntry {
	return QueueEntry{
		ID:           e.ID().String(),
		ContractorID: e.ContractorID().String(),
		JobID:        e.JobID().String(),
		Position:     e.Position(),
		Status:       e.Status().String(),
		Note:         e.Note(),
	}
}

func toBid(b *bid.Bid) Bid {
	out := Bid{
		ID:                       b.ID().String(),
		JobID:                    b.JobID().String(),
		ContractorID:             b.ContractorID().String(),
		AmountCents:              b.Amount().Cents(),
		EstimatedDurationMinutes: minutes(b.EstimatedDuration()),
		Message:                  b.Message(),
		Status:                   b.Status().String(),
		IsCounterOffer:           b.IsCounterOffer(),
	}
	if r := b.Ranking(); r != nil {
		price, tm, quality, score := r.PriceRank, r.TimeRank, r.QualityRank, r.Score
		out.PriceRank, out.TimeRank, out.QualityRank, out.Score = &price, &tm, &quality, &score
	}
	return out
}

func toBids(bids []*bid.Bid) []Bid {
	out := make([]Bid, len(bids))
	for i, b := range bids {
		out[i] = toBid(b)
	}
	return out
}

func toBidItem(jobID kernel.UUID, item queries.JobBidItem) Bid {
	return Bid{
		ID:                       item.ID.String(),
		JobID:                    jobID.String(),
		ContractorID:             item.ContractorID.String(),
		AmountCents:              item.Amount.Cents(),
		EstimatedDurationMinutes: minutes(item.EstimatedDuration),
		Message:                  item.Message,
		Status:                   item.Status.String(),
		PriceRank:                item.PriceRank,
		TimeRank:                 item.TimeRank,
		QualityRank:              item.QualityRank,
		Score:                    item.Score,
		IsCounterOffer:           item.IsCounterOffer,
	}
}

func toSweepResult(r commands.SweepResult) SweepResult {
	return SweepResult{
		Scanned:    r.Scanned,
		Reassigned: r.Reassigned,
		Unassigned: r.Unassigned,
		Cancelled:  r.Cancelled,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
	}
}

func minutes(d *time.Duration) *int {
	if d == nil {
		return nil
	}
	m := int(d.Minutes())
	return &m
}

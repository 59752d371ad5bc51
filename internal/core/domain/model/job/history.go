package job

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// HistoryEntry records one status transition of a job. It has no setters.
type HistoryEntry struct {
	id    kernel.UUID
	jobID kernel.UUID
	from  Status
	to    Status
	note  string
	at    time.Time
}

// newHistoryEntry gives the record its own id so repeated transitions never collide.
func newHistoryEntry(jobID kernel.UUID, from, to Status, note string, at time.Time) HistoryEntry {
	return HistoryEntry{
		id:    kernel.NewUUID(),
		jobID: jobID,
		from:  from,
		to:    to,
		note:  note,
		at:    at,
	}
}

// ID returns the record's own identifier.
func (h HistoryEntry) ID() kernel.UUID {
	return h.id
}

// JobID returns the job the transition belongs to.
func (h HistoryEntry) JobID() kernel.UUID {
	return h.jobID
}

// From returns the status before the transition.
func (h HistoryEntry) From() Status {
	return h.from
}

// To returns the status after the transition.
func (h HistoryEntry) To() Status {
	return h.to
}

// Note returns the free-text reason given for the transition. It may be empty.
func (h HistoryEntry) Note() string {
	return h.note
}

// At returns when the transition happened.
func (h HistoryEntry) At() time.Time {
	return h.at
}

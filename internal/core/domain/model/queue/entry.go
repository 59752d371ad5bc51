package queue

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ErrEntryIsNotConstructed is returned by Validate for a zero-value Entry.
var ErrEntryIsNotConstructed = errors.New("queue entry must be created via the queue or RestoreEntry")

// Entry places one job in one contractor's queue.
//
// Position is 1-based and only meaningful while the entry is active. Once an entry is
// completed, skipped or expired it keeps its last position and note. Only the owning
// Queue mutates an entry.
type Entry struct {
	id           kernel.UUID
	contractorID kernel.UUID
	jobID        kernel.UUID
	position     int
	status       EntryStatus
	note         string
	createdAt    time.Time
	updatedAt    time.Time

	isConstructed bool
}

// newEntry is used by Queue only; it assigns a fresh id.
func newEntry(contractorID, jobID kernel.UUID, position int, status EntryStatus, now time.Time) *Entry {
	return &Entry{
		id:            kernel.NewUUID(),
		contractorID:  contractorID,
		jobID:         jobID,
		position:      position,
		status:        status,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}
}

// RestoreEntry rebuilds a persisted entry.
func RestoreEntry(
	id, contractorID, jobID kernel.UUID,
	position int,
	status EntryStatus,
	note string,
	createdAt, updatedAt time.Time,
) (*Entry, error) {
	var positionErr error
	if position < 1 {
		positionErr = errs.NewValueIsOutOfRangeError("position", position, 1, "unbounded")
	}
	if err := errors.Join(
		id.Validate(),
		contractorID.Validate(),
		jobID.Validate(),
		status.Validate(),
		positionErr,
	); err != nil {
		return nil, err
	}

	return &Entry{
		id:            id,
		contractorID:  contractorID,
		jobID:         jobID,
		position:      position,
		status:        status,
		note:          note,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}, nil
}

// Validate returns ErrEntryIsNotConstructed for an entry built without RestoreEntry or a Queue.
func (e *Entry) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEntryIsNotConstructed
	}
	return nil
}

// ID returns the entry's unique identifier.
func (e *Entry) ID() kernel.UUID {
	return e.id
}

// ContractorID returns the contractor whose queue holds the entry.
func (e *Entry) ContractorID() kernel.UUID {
	return e.contractorID
}

// JobID returns the queued job.
func (e *Entry) JobID() kernel.UUID {
	return e.jobID
}

// Position returns the 1-based place in the queue. Position 1 is the current entry;
// terminal entries keep the position they had when they left.
func (e *Entry) Position() int {
	return e.position
}

// Status returns the entry status.
func (e *Entry) Status() EntryStatus {
	return e.status
}

// Note returns the reason recorded with the last status change. It may be empty.
func (e *Entry) Note() string {
	return e.note
}

// CreatedAt returns when the job entered the queue.
func (e *Entry) CreatedAt() time.Time {
	return e.createdAt
}

// UpdatedAt returns when the entry last changed position or status.
func (e *Entry) UpdatedAt() time.Time {
	return e.updatedAt
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s@%d(%s)", e.jobID, e.position, e.status)
}

func (e *Entry) finish(status EntryStatus, note string, now time.Time) {
	e.status = status
	e.note = note
	e.updatedAt = now
}

func (e *Entry) moveTo(position int, now time.Time) {
	if e.position == position {
		return
	}
	e.position = position
	e.updatedAt = now
}

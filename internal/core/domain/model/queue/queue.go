package queue

import (
	"fmt"
	"slices"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// Queue is the ordered list of active entries of one contractor.
//
// Queue follows these invariants:
//   - Active positions are exactly 1..k with no gaps
//   - The entry at position 1 is Current, every other active entry is Queued
//   - A job appears at most once among the active entries
//   - Terminal entries leave the active list and are never renumbered
//
// Example:
//
//	q, err := queue.New(contractorID, activeEntries)
//	if err != nil {
//	    return err
//	}
//	entry, err := q.Enqueue(jobID, nil, now)
//	completed, next, err := q.Advance(now)
type Queue struct {
	contractorID kernel.UUID
	active       []*Entry

	touched map[kernel.UUID]*Entry
	deleted []kernel.UUID
}

// New creates a queue for a contractor from its active entries in any order.
func New(contractorID kernel.UUID, entries []*Entry) (*Queue, error) {
	if err := contractorID.Validate(); err != nil {
		return nil, err
	}

	q := &Queue{
		contractorID: contractorID,
		touched:      make(map[kernel.UUID]*Entry),
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if !e.contractorID.IsEqual(contractorID) {
			return nil, errs.NewInvalidStateError("queue", fmt.Sprintf("entry %s belongs to another contractor", e.id))
		}
		if !e.status.IsActive() {
			continue
		}
		q.active = append(q.active, e)
	}
	q.sort()

	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Validate checks that active positions are exactly 1..k, the current entry (if any)
// is at 1, and no job appears twice.
func (q *Queue) Validate() error {
	seen := make(map[kernel.UUID]struct{}, len(q.active))
	for i, e := range q.active {
		if e.position != i+1 {
			return errs.NewInvalidStateError("queue",
				fmt.Sprintf("position %d found where %d was expected", e.position, i+1))
		}
		if e.status == Current && e.position != 1 {
			return errs.NewInvalidStateError("queue", "current entry is not at position 1")
		}
		if e.status == Queued && e.position == 1 {
			return errs.NewInvalidStateError("queue", "queued entry holds position 1")
		}
		if _, dup := seen[e.jobID]; dup {
			return errs.NewInvalidStateError("queue", fmt.Sprintf("job %s is queued twice", e.jobID))
		}
		seen[e.jobID] = struct{}{}
	}
	return nil
}

// ContractorID returns the owner of the queue.
func (q *Queue) ContractorID() kernel.UUID { return q.contractorID }

// Len returns the number of active entries.
func (q *Queue) Len() int { return len(q.active) }

// IsEmpty reports whether the contractor has neither current nor queued work.
func (q *Queue) IsEmpty() bool { return len(q.active) == 0 }

// Active returns current and queued entries ordered by position.
func (q *Queue) Active() []*Entry {
	return slices.Clone(q.active)
}

// Current returns the entry at position 1, or nil for an empty queue.
func (q *Queue) Current() *Entry {
	if len(q.active) > 0 && q.active[0].status == Current {
		return q.active[0]
	}
	return nil
}

// EntryForJob returns the active entry of the job, or nil.
func (q *Queue) EntryForJob(jobID kernel.UUID) *Entry {
	for _, e := range q.active {
		if e.jobID.IsEqual(jobID) {
			return e
		}
	}
	return nil
}

// Enqueue adds the job to the queue. An empty queue makes it current. Otherwise a
// priority inside 2..k inserts it there and shifts later entries back; position 1
// belongs to the current entry so a priority of 1 or less means 2. Any other
// priority appends.
//
// Returns ErrInvalidState when the job already has an active entry in this queue.
//
// Example:
//
//	second := 2
//	entry, err := q.Enqueue(jobID, &second, now)
//	if err != nil {
//		return err
//	}
//	// entry.Position() == 2 unless the queue was empty, then 1 and Current
func (q *Queue) Enqueue(jobID kernel.UUID, priority *int, now time.Time) (*Entry, error) {
	if err := jobID.Validate(); err != nil {
		return nil, err
	}
	if q.EntryForJob(jobID) != nil {
		return nil, errs.NewInvalidStateError("queue", fmt.Sprintf("job %s is already queued", jobID))
	}

	if q.IsEmpty() {
		e := newEntry(q.contractorID, jobID, 1, Current, now)
		q.active = append(q.active, e)
		q.touch(e)
		return e, nil
	}

	k := len(q.active)
	position := k + 1
	if priority != nil {
		p := max(*priority, 2)
		if p <= k {
			position = p
		}
	}

	for _, e := range q.active[position-1:] {
		e.moveTo(e.position+1, now)
		q.touch(e)
	}

	e := newEntry(q.contractorID, jobID, position, Queued, now)
	q.active = slices.Insert(q.active, position-1, e)
	q.touch(e)
	return e, q.Validate()
}

// Advance completes the current entry and promotes the next one. It returns the
// completed entry and the new current entry, which is nil when nothing was queued.
//
// Example:
//
//	done, next, err := q.Advance(now)
//	if err != nil {
//		return err
//	}
//	if next != nil {
//		// next.JobID() is assigned to the contractor
//	}
func (q *Queue) Advance(now time.Time) (*Entry, *Entry, error) {
	current := q.Current()
	if current == nil {
		return nil, nil, errs.NewInvalidStateError("queue", "contractor has no current job")
	}
	current.finish(Completed, "", now)
	q.touch(current)
	q.active = q.active[1:]

	next := q.promote(now)
	return current, next, q.Validate()
}

// Skip marks the entry skipped and promotes as Advance does when it was current.
//
// The skipped entry stays in storage with the reason as its note.
func (q *Queue) Skip(entryID kernel.UUID, reason string, now time.Time) (*Entry, *Entry, error) {
	idx := slices.IndexFunc(q.active, func(e *Entry) bool { return e.id.IsEqual(entryID) })
	if idx < 0 {
		return nil, nil, errs.NewObjectNotFoundError("queueEntryId", entryID)
	}
	return q.retire(idx, Skipped, reason, now)
}

// Expire ends the job's entry after the contractor failed to respond.
func (q *Queue) Expire(jobID kernel.UUID, reason string, now time.Time) (*Entry, *Entry, error) {
	idx := slices.IndexFunc(q.active, func(e *Entry) bool { return e.jobID.IsEqual(jobID) })
	if idx < 0 {
		return nil, nil, errs.NewObjectNotFoundError("jobId", jobID)
	}
	return q.retire(idx, Expired, reason, now)
}

// Remove deletes the job's active entry. The boolean is false when the job is not
// in this queue. The second entry is the one promoted to current, if any.
//
// Unlike Skip and Expire the entry leaves no record: Changes reports its id for deletion.
func (q *Queue) Remove(jobID kernel.UUID, now time.Time) (*Entry, *Entry, bool) {
	idx := slices.IndexFunc(q.active, func(e *Entry) bool { return e.jobID.IsEqual(jobID) })
	if idx < 0 {
		return nil, nil, false
	}

	removed := q.active[idx]
	q.active = slices.Delete(q.active, idx, idx+1)
	delete(q.touched, removed.id)
	q.deleted = append(q.deleted, removed.id)

	var promoted *Entry
	if removed.status == Current {
		promoted = q.promote(now)
	} else {
		q.renumber(now)
	}
	return removed, promoted, true
}

// Forget records the deletion of a terminal entry that is not part of the active list.
func (q *Queue) Forget(entry *Entry) {
	if entry == nil || entry.status.IsActive() {
		return
	}
	q.deleted = append(q.deleted, entry.id)
}

// Reorder places the listed queued jobs at positions 2..N+1 in the given order.
// Queued jobs not listed keep their relative order after them. The current entry
// never moves.
//
// Returns ErrInvalidState for a job listed twice or one that is not queued here,
// including the current job. The queue is unchanged on error.
func (q *Queue) Reorder(jobIDs []kernel.UUID, now time.Time) error {
	var head []*Entry
	if cur := q.Current(); cur != nil {
		head = append(head, cur)
	}

	listed := make([]*Entry, 0, len(jobIDs))
	seen := make(map[kernel.UUID]struct{}, len(jobIDs))
	for _, id := range jobIDs {
		if _, dup := seen[id]; dup {
			return errs.NewInvalidStateError("queue", fmt.Sprintf("job %s listed twice", id))
		}
		seen[id] = struct{}{}

		e := q.EntryForJob(id)
		if e == nil || e.status != Queued {
			return errs.NewInvalidStateError("queue", fmt.Sprintf("job %s is not queued for this contractor", id))
		}
		listed = append(listed, e)
	}

	var rest []*Entry
	for _, e := range q.active {
		if _, ok := seen[e.jobID]; !ok && e.status == Queued {
			rest = append(rest, e)
		}
	}

	q.active = slices.Concat(head, listed, rest)
	q.renumber(now)
	return q.Validate()
}

// Changes returns the entries to upsert and the entry ids to delete.
//
// Upserts are sorted by id so repeated saves write rows in a stable order.
func (q *Queue) Changes() ([]*Entry, []kernel.UUID) {
	upserts := make([]*Entry, 0, len(q.touched))
	for _, e := range q.touched {
		upserts = append(upserts, e)
	}
	slices.SortFunc(upserts, func(a, b *Entry) int { return a.id.Compare(b.id) })
	return upserts, slices.Clone(q.deleted)
}

// ClearChanges is called by the repository after a successful save.
func (q *Queue) ClearChanges() {
	q.touched = make(map[kernel.UUID]*Entry)
	q.deleted = nil
}

// retire ends an active entry with a terminal status and closes the gap it leaves.
func (q *Queue) retire(idx int, status EntryStatus, note string, now time.Time) (*Entry, *Entry, error) {
	e := q.active[idx]
	wasCurrent := e.status == Current
	e.finish(status, note, now)
	q.touch(e)
	q.active = slices.Delete(q.active, idx, idx+1)

	var promoted *Entry
	if wasCurrent {
		promoted = q.promote(now)
	} else {
		q.renumber(now)
	}
	return e, promoted, q.Validate()
}

// promote makes the head of the remaining entries current and closes the gap.
func (q *Queue) promote(now time.Time) *Entry {
	if len(q.active) == 0 {
		return nil
	}
	head := q.active[0]
	head.status = Current
	head.updatedAt = now
	q.touch(head)
	q.renumber(now)
	return head
}

// renumber gives active entries positions 1..k in slice order.
func (q *Queue) renumber(now time.Time) {
	for i, e := range q.active {
		if e.position != i+1 {
			e.moveTo(i+1, now)
			q.touch(e)
		}
	}
}

// touch marks the entry for the next save.
func (q *Queue) touch(e *Entry) {
	q.touched[e.id] = e
}

func (q *Queue) sort() {
	slices.SortStableFunc(q.active, func(a, b *Entry) int {
		return a.position - b.position
	})
}

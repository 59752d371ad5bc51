package queue

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// EntryStatus is the state of a queue entry. Completed, Skipped and Expired are terminal.
type EntryStatus string

const (
	// Current is the single entry at position 1; its job is assigned.
	Current EntryStatus = "current"

	// Queued entries wait behind the current one; their jobs are reserved.
	Queued EntryStatus = "queued"

	// Completed entries were advanced past by the contractor.
	Completed EntryStatus = "completed"

	// Skipped entries were passed over by the contractor or an operator.
	Skipped EntryStatus = "skipped"

	// Expired entries belonged to an assignment the sweep found stale.
	Expired EntryStatus = "expired"
)

// Validate rejects unknown statuses.
func (s EntryStatus) Validate() error {
	switch s {
	case Current, Queued, Completed, Skipped, Expired:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("queue entry status", fmt.Errorf("%q is unknown", string(s)))
}

// IsActive reports whether the entry still holds a position in the queue.
func (s EntryStatus) IsActive() bool {
	return s == Current || s == Queued
}

// String returns the stored name.
func (s EntryStatus) String() string {
	return string(s)
}

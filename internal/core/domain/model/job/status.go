package job

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of a job.
//
// State transitions:
//
//	New ──> Assigned ──> EnRoute ──> OnSite ──> Completed
//	 ^         │            │           │
//	 └─────────┴────────────┴───────────┘  (unassign, skip, remove, stale sweep)
//
//	any non-terminal status ──> Cancelled
//
// Completed may also be reached directly from Assigned or EnRoute. A reserved job is
// New with a contractor; the reservation is not a status of its own.
type Status int

const (
	// Unknown is the zero value. It is stored only as the predecessor of the creation
	// history row.
	Unknown Status = iota

	// New jobs wait for a contractor, or sit reserved in a contractor's queue.
	New

	// Assigned jobs are the current entry of a contractor's queue and wait for the
	// contractor to respond. Only Assigned jobs can go stale.
	Assigned

	// EnRoute means the contractor is travelling to the job.
	EnRoute

	// OnSite means the contractor is working at the job location.
	OnSite

	// Completed is terminal.
	Completed

	// Cancelled is terminal and releases the contractor.
	Cancelled
)

// getStatusStrings holds the names stored in the jobs table and returned by the API.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		New:       "new",
		Assigned:  "assigned",
		EnRoute:   "en_route",
		OnSite:    "on_site",
		Completed: "completed",
		Cancelled: "cancelled",
	}
}

// ParseStatus maps the lowercase status name back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a job status", s))
}

// Validate rejects Unknown and values past Cancelled.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the stored name, e.g. "en_route".
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// IsActive reports whether a contractor is working the job.
func (s Status) IsActive() bool {
	return s == Assigned || s == EnRoute || s == OnSite
}

// Assign moves a New job to Assigned. Any other status yields ErrInvalidState.
func (s Status) Assign() (Status, error) {
	if s != New {
		return Unknown, transitionError(s, Assigned)
	}
	return Assigned, nil
}

// Unassign sends a job back to New. A job the contractor already started (en route or
// on site) can be released too, e.g. when its queue entry is removed or skipped.
//
// Example:
//
//	next, err := job.EnRoute.Unassign() // next == job.New
//	_, err = job.Completed.Unassign()   // err wraps errs.ErrInvalidState
func (s Status) Unassign() (Status, error) {
	if s != Assigned && s != New && s != EnRoute && s != OnSite {
		return Unknown, transitionError(s, New)
	}
	return New, nil
}

// StartTravel moves Assigned to EnRoute.
func (s Status) StartTravel() (Status, error) {
	if s != Assigned {
		return Unknown, transitionError(s, EnRoute)
	}
	return EnRoute, nil
}

// Arrive moves EnRoute to OnSite.
func (s Status) Arrive() (Status, error) {
	if s != EnRoute {
		return Unknown, transitionError(s, OnSite)
	}
	return OnSite, nil
}

// Complete is allowed from Assigned, EnRoute and OnSite.
func (s Status) Complete() (Status, error) {
	if !s.IsActive() {
		return Unknown, transitionError(s, Completed)
	}
	return Completed, nil
}

// Cancel is allowed from every non-terminal status.
func (s Status) Cancel() (Status, error) {
	if s.IsTerminal() || s.Validate() != nil {
		return Unknown, transitionError(s, Cancelled)
	}
	return Cancelled, nil
}

func transitionError(from, to Status) error {
	return errs.NewInvalidStateError("job", fmt.Sprintf("cannot move from %s to %s", from, to))
}

// AutoAcceptPolicy decides what happens to a bidding job when its deadline passes.
type AutoAcceptPolicy string

const (
	// AutoAcceptNone leaves an expired bidding job for the customer to decide.
	AutoAcceptNone AutoAcceptPolicy = "none"

	// AutoAcceptLowest accepts the cheapest pending bid at the deadline, provided it is
	// within the reserve price.
	AutoAcceptLowest AutoAcceptPolicy = "lowest"
)

// Validate accepts AutoAcceptNone and AutoAcceptLowest.
func (p AutoAcceptPolicy) Validate() error {
	if p != AutoAcceptNone && p != AutoAcceptLowest {
		return errs.NewValueIsInvalidErrorWithCause("auto accept policy", fmt.Errorf("%q is not supported", string(p)))
	}
	return nil
}

package bid

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of a bid. Only Pending bids are ranked.
//
// Every status other than Pending is terminal:
//
//	Pending ──┬──> Accepted   (customer or auto-accept chose it)
//	          ├──> Rejected   (declined by the customer or closed with the job)
//	          ├──> Countered  (replaced by a counter-offer)
//	          └──> Withdrawn  (the contractor took it back)
type Status string

const (
	Pending   Status = "pending"
	Accepted  Status = "accepted"
	Rejected  Status = "rejected"
	Countered Status = "countered"
	Withdrawn Status = "withdrawn"
)

// Validate rejects any value outside the five known statuses.
func (s Status) Validate() error {
	switch s {
	case Pending, Accepted, Rejected, Countered, Withdrawn:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("bid status", fmt.Errorf("%q is unknown", string(s)))
}

// String returns the stored name.
func (s Status) String() string {
	return string(s)
}

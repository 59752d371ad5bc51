package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// Event names delivered to contractors and customers. Payload keys are camelCase and ids
// are strings.
const (
	// EventJobAssigned tells a contractor a job became its current work.
	// Payload: jobId, position.
	EventJobAssigned = "job.assigned"

	// EventJobQueued tells a contractor a job was reserved behind its current work.
	// Payload: jobId, position.
	EventJobQueued = "job.queued"

	// EventJobUnassigned tells a contractor a job was taken away.
	// Payload: jobId, reason.
	EventJobUnassigned = "job.unassigned"

	// EventJobCancelled goes to the customer and, when one was bound, the contractor.
	// Payload: jobId, reason.
	EventJobCancelled = "job.cancelled"

	// EventBidAccepted tells the winning contractor. Payload: jobId, bidId, amount.
	EventBidAccepted = "bid.accepted"

	// EventBidRejected tells a contractor its bid lost or was declined. Payload: jobId, bidId.
	EventBidRejected = "bid.rejected"

	// EventBidCountered tells a contractor about the counter-offer made on its bid.
	// Payload: jobId, bidId, originalBidId, amount.
	EventBidCountered = "bid.countered"
)

// Notification is a message for one recipient.
//
// Example:
//
//	notifier.Notify(ctx, ports.Notification{
//	    RecipientID: contractorID,
//	    Event:       ports.EventJobAssigned,
//	    Payload:     map[string]any{"jobId": jobID.String(), "position": 1},
//	})
type Notification struct {
	RecipientID kernel.UUID
	Event       string
	Payload     map[string]any
}

// Notifier delivers notifications. Delivery is fire-and-forget: implementations log
// failures instead of returning them.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

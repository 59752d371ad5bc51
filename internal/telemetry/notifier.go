package telemetry

import (
	"context"

	"dispatch/internal/core/ports"
)

// CountingNotifier counts notifications per event before passing them on.
type CountingNotifier struct {
	next ports.Notifier
}

// NewCountingNotifier wraps next.
func NewCountingNotifier(next ports.Notifier) *CountingNotifier {
	return &CountingNotifier{next: next}
}

func (n *CountingNotifier) Notify(ctx context.Context, msg ports.Notification) {
	Notifications.WithLabelValues(msg.Event).Inc()
	n.next.Notify(ctx, msg)
}

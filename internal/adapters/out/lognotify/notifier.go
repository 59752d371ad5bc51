// Package lognotify writes notifications to the structured log. It stands in for the
// push outbox when no Redis address is configured.
package lognotify

import (
	"context"
	"log/slog"

	"dispatch/internal/core/ports"
)

// Notifier implements ports.Notifier on top of slog.
type Notifier struct {
	logger *slog.Logger
}

// NewNotifier logs through logger at info level.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger.With("component", "LogNotifier")}
}

func (n *Notifier) Notify(ctx context.Context, msg ports.Notification) {
	n.logger.InfoContext(ctx, "notification",
		"event", msg.Event,
		"recipient_id", msg.RecipientID.String(),
		"payload", msg.Payload,
	)
}

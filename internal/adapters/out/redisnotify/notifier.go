// Package redisnotify hands notifications to the push service through a Redis list.
//
// Every notification becomes one JSON message appended with RPUSH; the push service
// pops from the other end. Delivery is fire-and-forget: a failed push is logged and
// dropped, it never fails the command that produced it.
package redisnotify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"dispatch/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// DefaultListKey is used when no key is configured.
const DefaultListKey = "dispatch:notifications"

// Message is the wire form consumed by the push service.
type Message struct {
	RecipientID string         `json:"recipientId"`
	Event       string         `json:"event"`
	Payload     map[string]any `json:"payload,omitempty"`
	SentAt      time.Time      `json:"sentAt"`
}

// Notifier pushes JSON messages onto a Redis list with RPUSH. The push service pops
// them in order. Failures are logged and dropped.
//
// Example:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	notifier := redisnotify.NewNotifier(client, "", 2*time.Second, ports.SystemClock{}, logger)
//	notifier.Notify(ctx, ports.Notification{
//	    RecipientID: contractorID,
//	    Event:       ports.EventJobAssigned,
//	    Payload:     map[string]any{"jobId": jobID.String()},
//	})
type Notifier struct {
	client  redis.Cmdable
	key     string
	timeout time.Duration
	clock   ports.Clock
	logger  *slog.Logger
}

// NewNotifier pushes onto key. A non-positive timeout leaves the caller's deadline alone.
func NewNotifier(client redis.Cmdable, key string, timeout time.Duration, clock ports.Clock, logger *slog.Logger) *Notifier {
	if key == "" {
		key = DefaultListKey
	}
	return &Notifier{
		client:  client,
		key:     key,
		timeout: timeout,
		clock:   clock,
		logger:  logger.With("component", "RedisNotifier"),
	}
}

// Notify encodes msg and pushes it, bounded by the configured timeout.
func (n *Notifier) Notify(ctx context.Context, msg ports.Notification) {
	body, err := json.Marshal(Message{
		RecipientID: msg.RecipientID.String(),
		Event:       msg.Event,
		Payload:     msg.Payload,
		SentAt:      n.clock.Now(),
	})
	if err != nil {
		n.logger.ErrorContext(ctx, "failed to encode notification",
			"event", msg.Event, "recipient_id", msg.RecipientID.String(), "error", err)
		return
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	if err = n.client.RPush(ctx, n.key, body).Err(); err != nil {
		n.logger.ErrorContext(ctx, "failed to push notification",
			"event", msg.Event, "recipient_id", msg.RecipientID.String(), "error", err)
		return
	}
	n.logger.DebugContext(ctx, "notification queued", "event", msg.Event, "recipient_id", msg.RecipientID.String())
}

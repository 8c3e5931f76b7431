// Package notification delivers attendance events out-of-band. Delivery is
// strictly best effort: a failed or slow notification must never change the
// result already returned to the kiosk.
package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/vericlock-systems/vericlock/internal/metrics"
	"github.com/vericlock-systems/vericlock/internal/models"
)

type EventKind string

const (
	EventCheckIn  EventKind = "check_in"
	EventCheckOut EventKind = "check_out"
)

type Event struct {
	Kind         EventKind          `json:"kind"`
	EmployeeID   string             `json:"employee_id"`
	EmployeeName string             `json:"employee_name"`
	Timestamp    time.Time          `json:"timestamp"`
	Punctuality  models.Punctuality `json:"punctuality,omitempty"`
}

// Channel is a single delivery mechanism for attendance events.
type Channel interface {
	Send(ctx context.Context, event Event) error
	Type() string
}

// Notifier fans an event out to its channels from a detached goroutine.
type Notifier struct {
	channels []Channel
	logger   *slog.Logger
	timeout  time.Duration
}

func NewNotifier(logger *slog.Logger, timeout time.Duration, channels ...Channel) *Notifier {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{channels: channels, logger: logger, timeout: timeout}
}

// Notify dispatches the event without blocking the caller. Errors are logged
// and dropped; the detached context means an abandoned request cannot cancel
// a delivery already in flight.
func (n *Notifier) Notify(event Event) {
	if len(n.channels) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		for _, channel := range n.channels {
			if err := channel.Send(ctx, event); err != nil {
				metrics.NotificationErrors.WithLabelValues(channel.Type()).Inc()
				n.logger.Warn("notification delivery failed",
					"channel", channel.Type(),
					"kind", string(event.Kind),
					"employee_id", event.EmployeeID,
					"error", err)
			}
		}
	}()
}

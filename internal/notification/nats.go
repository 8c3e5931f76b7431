package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subjects for attendance events. Downstream consumers (payroll export,
// dashboards) subscribe to these.
const (
	SubjectCheckIn  = "vericlock.attendance.checkin"
	SubjectCheckOut = "vericlock.attendance.checkout"
)

// NATSChannel publishes attendance events to a NATS subject per event kind.
type NATSChannel struct {
	conn *nats.Conn
}

func NewNATSChannel(url, name string) (*NATSChannel, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSChannel{conn: conn}, nil
}

func (n *NATSChannel) Type() string {
	return "nats"
}

func (n *NATSChannel) Send(_ context.Context, event Event) error {
	subject := SubjectCheckIn
	if event.Kind == EventCheckOut {
		subject = SubjectCheckOut
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

func (n *NATSChannel) Close() {
	if n.conn != nil {
		n.conn.Drain()
	}
}

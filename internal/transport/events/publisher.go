package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rocketscienceinc/memory-backend/internal/entity"
)

type natsConn interface {
	Publish(subject string, data []byte) error
}

// Message is the body published for every game event.
type Message struct {
	SessionID string       `json:"session_id"`
	Event     entity.Event `json:"event"`
	SentAt    time.Time    `json:"sent_at"`
}

// Publisher forwards game events to NATS on <prefix>.<sessionID>.<eventType>.
type Publisher struct {
	conn   natsConn
	prefix string
	now    func() time.Time
}

func NewPublisher(conn natsConn, prefix string) *Publisher {
	return &Publisher{
		conn:   conn,
		prefix: strings.TrimSuffix(prefix, "."),
		now:    time.Now,
	}
}

// Connect dials the broker with reconnect settings suitable for a long lived server.
func Connect(url, name string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return conn, nil
}

func (that *Publisher) Publish(_ context.Context, sessionID string, event entity.Event) error {
	data, err := json.Marshal(Message{
		SessionID: sessionID,
		Event:     event,
		SentAt:    that.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err = that.conn.Publish(that.Subject(sessionID, event.Type), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func (that *Publisher) Subject(sessionID string, eventType entity.EventType) string {
	return that.prefix + "." + sessionID + "." + string(eventType)
}

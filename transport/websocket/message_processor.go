package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rocketscienceinc/memory-backend/internal/entity"
)

const writeTimeout = 10 * time.Second

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	SessionID string `json:"session_id,omitempty"`
	CardID    *int   `json:"card_id,omitempty"`
}

type ResponsePayload struct {
	SessionID string           `json:"session_id,omitempty"`
	Snapshot  *entity.Snapshot `json:"snapshot,omitempty"`
	Event     *entity.Event    `json:"event,omitempty"`
	Accepted  *bool            `json:"accepted,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func (that *Server) sendMessage(conn *connection, action string, payload ResponsePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = conn.writeJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to send %s: %w", action, err)
	}

	return nil
}

// writeJSON serializes writes; the read loop and session event delivery share the connection.
func (that *connection) writeJSON(message Message) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.conn.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/memory-backend/internal/apperror"
	"github.com/rocketscienceinc/memory-backend/internal/entity"
)

const (
	actionConnect     = "connect"
	actionCardSelect  = "card:select"
	actionGameRestart = "game:restart"
	actionGameEvent   = "game:event"
)

// handleConnect creates a session, or resumes the one named in the payload,
// and subscribes the connection to its events.
func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq RequestPayload
	if err := decodePayload(msg, &payloadReq); err != nil {
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	var snapshot *entity.Snapshot
	var err error

	if payloadReq.SessionID == "" {
		snapshot, err = that.sessions.CreateSession(ctx)
	} else {
		snapshot, err = that.sessions.GetSnapshot(ctx, payloadReq.SessionID)
	}

	if err != nil {
		log.Error("failed to create or get session", "sessionID", payloadReq.SessionID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, sessionErrorText(err))
	}

	unsubscribe, err := that.sessions.Subscribe(snapshot.SessionID, func(sessionID string, event entity.Event) {
		if sendErr := that.sendMessage(conn, actionGameEvent, ResponsePayload{SessionID: sessionID, Event: &event}); sendErr != nil {
			that.logger.Warn("failed to push event", "sessionID", sessionID, "event", event.Type, "error", sendErr)
		}
	})
	if err != nil {
		log.Error("failed to subscribe", "sessionID", snapshot.SessionID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, sessionErrorText(err))
	}

	conn.bind(snapshot.SessionID, unsubscribe)

	log.Info("successfully connected session", "sessionID", snapshot.SessionID)

	return that.sendMessage(conn, msg.Action, ResponsePayload{SessionID: snapshot.SessionID, Snapshot: snapshot})
}

func (that *Server) handleCardSelect(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleCardSelect")

	var payloadReq RequestPayload
	if err := decodePayload(msg, &payloadReq); err != nil || payloadReq.CardID == nil {
		return that.sendErrorResponse(conn, msg.Action, "card_id is required")
	}

	sessionID := conn.session()
	if sessionID == "" {
		return that.sendErrorResponse(conn, msg.Action, "not connected to a session")
	}

	snapshot, accepted, err := that.sessions.SelectCard(ctx, sessionID, *payloadReq.CardID)
	if err != nil {
		log.Error("failed to select card", "sessionID", sessionID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, sessionErrorText(err))
	}

	return that.sendMessage(conn, msg.Action, ResponsePayload{SessionID: sessionID, Snapshot: snapshot, Accepted: &accepted})
}

func (that *Server) handleGameRestart(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameRestart")

	sessionID := conn.session()
	if sessionID == "" {
		return that.sendErrorResponse(conn, msg.Action, "not connected to a session")
	}

	snapshot, err := that.sessions.Restart(ctx, sessionID)
	if err != nil {
		log.Error("failed to restart game", "sessionID", sessionID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, sessionErrorText(err))
	}

	log.Info("game restarted", "sessionID", sessionID)

	return that.sendMessage(conn, msg.Action, ResponsePayload{SessionID: sessionID, Snapshot: snapshot})
}

// handleDisconnect stops event delivery. The session itself lives on so the
// client can resume it.
func (that *Server) handleDisconnect(conn *connection) {
	sessionID := conn.session()
	conn.bind("", nil)

	that.logger.Info("connection closed", "method", "handleDisconnect", "sessionID", sessionID)
}

func (that *Server) sendErrorResponse(conn *connection, action, errorMsg string) error {
	if err := that.sendMessage(conn, action, ResponsePayload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

func decodePayload(msg *Message, target *RequestPayload) error {
	if len(msg.Payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(msg.Payload, target); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return nil
}

func sessionErrorText(err error) string {
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return "session not found"
	}

	return "internal error"
}

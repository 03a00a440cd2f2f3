package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/memory-backend/internal/entity"
	"github.com/rocketscienceinc/memory-backend/internal/usecase"
)

const (
	shutdownTimeout = 5 * time.Second
	maxMessageSize  = 64 << 10
)

var ErrUnknownAction = errors.New("unknown action")

type sessionService interface {
	CreateSession(ctx context.Context) (*entity.Snapshot, error)
	GetSnapshot(ctx context.Context, sessionID string) (*entity.Snapshot, error)
	SelectCard(ctx context.Context, sessionID string, cardID int) (*entity.Snapshot, bool, error)
	Restart(ctx context.Context, sessionID string) (*entity.Snapshot, error)
	Subscribe(sessionID string, subscriber usecase.Subscriber) (func(), error)
}

type handlerFunc func(ctx context.Context, message *Message, conn *connection) error

type Server struct {
	logger   *slog.Logger
	sessions sessionService
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

// connection is one upgraded client.
type connection struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	mu          sync.Mutex
	sessionID   string
	unsubscribe func()
}

func New(logger *slog.Logger, sessions sessionService) *Server {
	server := &Server{
		logger:   logger,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionCardSelect] = server.handleCardSelect
	server.handlers[actionGameRestart] = server.handleGameRestart

	return server
}

// Handler - returns the HTTP handler serving the /ws endpoint.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(ctx),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown WebSocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	wsConn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		// the upgrader has already replied with an HTTP error
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer wsConn.Close()

	wsConn.SetReadLimit(maxMessageSize)

	conn := &connection{conn: wsConn}
	defer that.handleDisconnect(conn)

	log.Info("WebSocket connection established", "remote", wsConn.RemoteAddr().String())

	err = that.handleMessages(ctx, conn)
	if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client until it goes away.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message

		err := conn.conn.ReadJSON(&message)
		if isDecodeError(err) {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		if err != nil {
			return err
		}

		if err = that.processMessage(ctx, &message, conn); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// processMessage - routes an incoming message to its action handler.
func (that *Server) processMessage(ctx context.Context, message *Message, conn *connection) error {
	handler, ok := that.handlers[message.Action]
	if !ok {
		if err := that.sendErrorResponse(conn, message.Action, "unknown action"); err != nil {
			return err
		}

		return fmt.Errorf("%w: %s", ErrUnknownAction, message.Action)
	}

	return handler(ctx, message, conn)
}

// bind attaches the connection to a session, dropping any previous subscription.
func (that *connection) bind(sessionID string, unsubscribe func()) {
	that.mu.Lock()
	previous := that.unsubscribe
	that.sessionID = sessionID
	that.unsubscribe = unsubscribe
	that.mu.Unlock()

	if previous != nil {
		previous()
	}
}

func (that *connection) session() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.sessionID
}

// isDecodeError reports a malformed message; the connection itself is still usable.
func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

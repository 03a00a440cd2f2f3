package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/memory-backend/internal/config"
	"github.com/rocketscienceinc/memory-backend/internal/memory"
	"github.com/rocketscienceinc/memory-backend/internal/repository"
	"github.com/rocketscienceinc/memory-backend/internal/repository/storage"
	"github.com/rocketscienceinc/memory-backend/internal/transport/events"
	"github.com/rocketscienceinc/memory-backend/internal/usecase"
	"github.com/rocketscienceinc/memory-backend/transport/rest"
	"github.com/rocketscienceinc/memory-backend/transport/websocket"
)

const natsClientName = "memory-backend"

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if conf.Redis.Host == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisClient(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sessionRepo := repository.NewSessionRepository(redisStorage, conf.Redis.SessionTTL)

	// a nil *events.Publisher must not reach the manager as a non-nil interface
	var publisher usecase.EventPublisher

	if conf.NATS.URL != "" {
		natsConn, natsErr := events.Connect(conf.NATS.URL, natsClientName)
		if natsErr != nil {
			return fmt.Errorf("could not connect to nats: %w", natsErr)
		}
		defer natsConn.Close()

		publisher = events.NewPublisher(natsConn, conf.NATS.SubjectPrefix)
		log.Info("Publishing game events", "url", conf.NATS.URL, "prefix", conf.NATS.SubjectPrefix)
	}

	sessionManager := usecase.NewSessionManager(logger, conf.Game.ToMemoryConfig(), memory.NewScheduler(), sessionRepo, publisher)
	defer sessionManager.Shutdown()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, sessionManager)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, sessionManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

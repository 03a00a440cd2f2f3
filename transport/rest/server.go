package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/memory-backend/internal/entity"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

type sessionService interface {
	CreateSession(ctx context.Context) (*entity.Snapshot, error)
	SelectCard(ctx context.Context, sessionID string, cardID int) (*entity.Snapshot, bool, error)
	Restart(ctx context.Context, sessionID string) (*entity.Snapshot, error)
	GetSnapshot(ctx context.Context, sessionID string) (*entity.Snapshot, error)
	CloseSession(ctx context.Context, sessionID string) error
}

type Server struct {
	logger   *slog.Logger
	sessions sessionService
}

func New(logger *slog.Logger, sessions sessionService) *Server {
	return &Server{
		logger:   logger,
		sessions: sessions,
	}
}

// Routes - builds the HTTP router.
func (that *Server) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))

	router.Get("/ping", that.handlePing)

	router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", that.handleCreateSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", that.handleGetSession)
			r.Delete("/", that.handleCloseSession)
			r.Post("/restart", that.handleRestart)
			r.Post("/cards/{cardID}", that.handleSelectCard)
		})
	})

	return router
}

// Start - starts HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/memory-backend/internal/apperror"
	"github.com/rocketscienceinc/memory-backend/internal/entity"
	"github.com/rocketscienceinc/memory-backend/internal/memory"
)

const storeTimeout = 2 * time.Second

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, snapshot *entity.Snapshot) error
	GetByID(ctx context.Context, id string) (*entity.Snapshot, error)
	DeleteByID(ctx context.Context, id string) error
}

// EventPublisher forwards session events to an external broker.
type EventPublisher interface {
	Publish(ctx context.Context, sessionID string, event entity.Event) error
}

// Subscriber receives every event of one session in emission order.
type Subscriber func(sessionID string, event entity.Event)

// SessionManager runs one GameController per player session and fans its
// events out to subscribers, the snapshot store and the event publisher.
type SessionManager struct {
	logger    *slog.Logger
	conf      memory.Config
	scheduler memory.Scheduler
	opts      []memory.Option

	sessionRepo sessionRepo
	publisher   EventPublisher
	newID       func() string

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	id   string
	ctrl *memory.GameController

	mu          sync.Mutex
	nextSubID   int
	subscribers map[int]Subscriber
}

// NewSessionManager wires the collaborators. publisher may be nil when event
// publishing is disabled.
func NewSessionManager(
	logger *slog.Logger,
	conf memory.Config,
	scheduler memory.Scheduler,
	sessionRepo sessionRepo,
	publisher EventPublisher,
	opts ...memory.Option,
) *SessionManager {
	return &SessionManager{
		logger:    logger,
		conf:      conf,
		scheduler: scheduler,
		opts:      opts,

		sessionRepo: sessionRepo,
		publisher:   publisher,
		newID:       uuid.NewString,

		sessions: make(map[string]*session),
	}
}

func (that *SessionManager) CreateSession(ctx context.Context) (*entity.Snapshot, error) {
	sess := &session{
		id:          that.newID(),
		subscribers: make(map[int]Subscriber),
	}

	listener := memory.EventFunc(func(event entity.Event) {
		that.handleEvent(sess, event)
	})

	ctrl, err := memory.NewGameController(that.logger.With("sessionID", sess.id), that.conf, that.scheduler, listener, that.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create game controller: %w", err)
	}
	sess.ctrl = ctrl

	snapshot := sess.snapshot()
	if err = that.sessionRepo.CreateOrUpdate(ctx, snapshot); err != nil {
		ctrl.Close()
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	that.mu.Lock()
	that.sessions[sess.id] = sess
	that.mu.Unlock()

	that.logger.Info("session created", "sessionID", sess.id)

	return snapshot, nil
}

// SelectCard delivers a "card chosen" intent and reports whether the card was turned.
func (that *SessionManager) SelectCard(_ context.Context, sessionID string, cardID int) (*entity.Snapshot, bool, error) {
	sess, err := that.getSession(sessionID)
	if err != nil {
		return nil, false, err
	}

	accepted := sess.ctrl.SelectCard(cardID)

	return sess.snapshot(), accepted, nil
}

func (that *SessionManager) Restart(_ context.Context, sessionID string) (*entity.Snapshot, error) {
	sess, err := that.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.ctrl.Restart()

	return sess.snapshot(), nil
}

// GetSnapshot returns the live state of a session, falling back to the stored
// snapshot for sessions held by another process.
func (that *SessionManager) GetSnapshot(ctx context.Context, sessionID string) (*entity.Snapshot, error) {
	if sess, err := that.getSession(sessionID); err == nil {
		return sess.snapshot(), nil
	}

	snapshot, err := that.sessionRepo.GetByID(ctx, sessionID)
	if errors.Is(err, apperror.ErrSnapshotNotFound) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, sessionID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get stored session: %w", err)
	}

	return snapshot, nil
}

func (that *SessionManager) CloseSession(ctx context.Context, sessionID string) error {
	that.mu.Lock()
	sess, ok := that.sessions[sessionID]
	delete(that.sessions, sessionID)
	that.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, sessionID)
	}

	sess.ctrl.Close()

	if err := that.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session closed", "sessionID", sessionID)

	return nil
}

// Subscribe registers a subscriber; the returned function removes it.
func (that *SessionManager) Subscribe(sessionID string, subscriber Subscriber) (func(), error) {
	sess, err := that.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	subID := sess.nextSubID
	sess.nextSubID++
	sess.subscribers[subID] = subscriber
	sess.mu.Unlock()

	return func() {
		sess.mu.Lock()
		delete(sess.subscribers, subID)
		sess.mu.Unlock()
	}, nil
}

// Shutdown stops every session clock. Stored snapshots are kept.
func (that *SessionManager) Shutdown() {
	that.mu.Lock()
	sessions := that.sessions
	that.sessions = make(map[string]*session)
	that.mu.Unlock()

	for _, sess := range sessions {
		sess.ctrl.Close()
	}
}

func (that *SessionManager) getSession(sessionID string) (*session, error) {
	that.mu.RLock()
	sess, ok := that.sessions[sessionID]
	that.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, sessionID)
	}

	return sess, nil
}

// handleEvent runs on the controller's dispatch path, one event at a time per session.
func (that *SessionManager) handleEvent(sess *session, event entity.Event) {
	log := that.logger.With("method", "handleEvent", "sessionID", sess.id, "event", event.Type)

	sess.mu.Lock()
	subscribers := make([]Subscriber, 0, len(sess.subscribers))
	for _, subscriber := range sess.subscribers {
		subscribers = append(subscribers, subscriber)
	}
	sess.mu.Unlock()

	for _, subscriber := range subscribers {
		subscriber(sess.id, event)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := that.sessionRepo.CreateOrUpdate(ctx, sess.snapshot()); err != nil {
		log.Error("failed to store session snapshot", "error", err)
	}

	if that.publisher == nil {
		return
	}

	if err := that.publisher.Publish(ctx, sess.id, event); err != nil {
		log.Error("failed to publish event", "error", err)
	}
}

func (that *session) snapshot() *entity.Snapshot {
	snapshot := that.ctrl.Snapshot()
	snapshot.SessionID = that.id

	return &snapshot
}

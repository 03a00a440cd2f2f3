package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/memory-backend/internal/apperror"
	"github.com/rocketscienceinc/memory-backend/internal/entity"
)

type mockSessionService struct {
	mock.Mock
}

func (that *mockSessionService) CreateSession(ctx context.Context) (*entity.Snapshot, error) {
	args := that.Called(ctx)
	snapshot, _ := args.Get(0).(*entity.Snapshot)
	return snapshot, args.Error(1)
}

func (that *mockSessionService) SelectCard(ctx context.Context, sessionID string, cardID int) (*entity.Snapshot, bool, error) {
	args := that.Called(ctx, sessionID, cardID)
	snapshot, _ := args.Get(0).(*entity.Snapshot)
	return snapshot, args.Bool(1), args.Error(2)
}

func (that *mockSessionService) Restart(ctx context.Context, sessionID string) (*entity.Snapshot, error) {
	args := that.Called(ctx, sessionID)
	snapshot, _ := args.Get(0).(*entity.Snapshot)
	return snapshot, args.Error(1)
}

func (that *mockSessionService) GetSnapshot(ctx context.Context, sessionID string) (*entity.Snapshot, error) {
	args := that.Called(ctx, sessionID)
	snapshot, _ := args.Get(0).(*entity.Snapshot)
	return snapshot, args.Error(1)
}

func (that *mockSessionService) CloseSession(ctx context.Context, sessionID string) error {
	args := that.Called(ctx, sessionID)
	return args.Error(0)
}

func newTestServer() (*mockSessionService, http.Handler) {
	sessions := &mockSessionService{}
	server := New(slog.New(slog.DiscardHandler), sessions)

	return sessions, server.Routes()
}

func serve(handler http.Handler, method, target string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(method, target, nil))

	return recorder
}

func TestPing(t *testing.T) {
	_, handler := newTestServer()

	recorder := serve(handler, http.MethodGet, "/ping")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "pong", recorder.Body.String())
}

func TestHandleCreateSession(t *testing.T) {
	t.Run("Returns the new snapshot", func(t *testing.T) {
		// Given: a service creating session s1
		sessions, handler := newTestServer()
		sessions.On("CreateSession", mock.Anything).
			Return(&entity.Snapshot{SessionID: "s1", Phase: entity.PhaseIdle}, nil).Once()

		// When: posting to the sessions collection
		recorder := serve(handler, http.MethodPost, "/api/v1/sessions")

		// Then: the snapshot is returned as created
		require.Equal(t, http.StatusCreated, recorder.Code)
		assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

		var snapshot entity.Snapshot
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &snapshot))
		assert.Equal(t, "s1", snapshot.SessionID)
		sessions.AssertExpectations(t)
	})

	t.Run("Hides internal errors", func(t *testing.T) {
		sessions, handler := newTestServer()
		sessions.On("CreateSession", mock.Anything).Return(nil, errors.New("redis down")).Once()

		recorder := serve(handler, http.MethodPost, "/api/v1/sessions")

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.JSONEq(t, `{"error":"internal server error"}`, recorder.Body.String())
	})
}

func TestHandleGetSession(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		sessions, handler := newTestServer()
		sessions.On("GetSnapshot", mock.Anything, "s1").Return(&entity.Snapshot{SessionID: "s1"}, nil).Once()

		recorder := serve(handler, http.MethodGet, "/api/v1/sessions/s1")

		assert.Equal(t, http.StatusOK, recorder.Code)
		sessions.AssertExpectations(t)
	})

	t.Run("Not found", func(t *testing.T) {
		sessions, handler := newTestServer()
		sessions.On("GetSnapshot", mock.Anything, "nope").
			Return(nil, fmt.Errorf("%w: nope", apperror.ErrSessionNotFound)).Once()

		recorder := serve(handler, http.MethodGet, "/api/v1/sessions/nope")

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.JSONEq(t, `{"error":"session not found"}`, recorder.Body.String())
	})
}

func TestHandleSelectCard(t *testing.T) {
	t.Run("Reports acceptance with the snapshot", func(t *testing.T) {
		// Given: a service accepting card 3
		sessions, handler := newTestServer()
		snapshot := &entity.Snapshot{SessionID: "s1", Phase: entity.PhaseSelecting, Pending: []int{3}}
		sessions.On("SelectCard", mock.Anything, "s1", 3).Return(snapshot, true, nil).Once()

		// When: selecting the card
		recorder := serve(handler, http.MethodPost, "/api/v1/sessions/s1/cards/3")

		// Then: the response carries both
		require.Equal(t, http.StatusOK, recorder.Code)

		var response selectResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.True(t, response.Accepted)
		assert.Equal(t, []int{3}, response.Snapshot.Pending)
	})

	t.Run("Rejects a non numeric card id", func(t *testing.T) {
		sessions, handler := newTestServer()

		recorder := serve(handler, http.MethodPost, "/api/v1/sessions/s1/cards/abc")

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		sessions.AssertNotCalled(t, "SelectCard", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown session", func(t *testing.T) {
		sessions, handler := newTestServer()
		sessions.On("SelectCard", mock.Anything, "nope", 0).Return(nil, false, apperror.ErrSessionNotFound).Once()

		recorder := serve(handler, http.MethodPost, "/api/v1/sessions/nope/cards/0")

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestHandleRestart(t *testing.T) {
	sessions, handler := newTestServer()
	sessions.On("Restart", mock.Anything, "s1").Return(&entity.Snapshot{SessionID: "s1", Epoch: 1}, nil).Once()

	recorder := serve(handler, http.MethodPost, "/api/v1/sessions/s1/restart")

	require.Equal(t, http.StatusOK, recorder.Code)

	var snapshot entity.Snapshot
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &snapshot))
	assert.Equal(t, uint64(1), snapshot.Epoch)
}

func TestHandleCloseSession(t *testing.T) {
	t.Run("Closed", func(t *testing.T) {
		sessions, handler := newTestServer()
		sessions.On("CloseSession", mock.Anything, "s1").Return(nil).Once()

		recorder := serve(handler, http.MethodDelete, "/api/v1/sessions/s1")

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		sessions.AssertExpectations(t)
	})

	t.Run("Unknown session", func(t *testing.T) {
		sessions, handler := newTestServer()
		sessions.On("CloseSession", mock.Anything, "nope").Return(apperror.ErrSessionNotFound).Once()

		recorder := serve(handler, http.MethodDelete, "/api/v1/sessions/nope")

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

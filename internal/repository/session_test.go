package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/memory-backend/internal/apperror"
	"github.com/rocketscienceinc/memory-backend/internal/entity"
	"github.com/rocketscienceinc/memory-backend/testing/suite"
)

func newSnapshot(id string) *entity.Snapshot {
	return &entity.Snapshot{
		SessionID: id,
		Epoch:     2,
		Phase:     entity.PhaseSelecting,
		Cards: []entity.CardView{
			{ID: 0, Symbol: "anchor", FaceUp: true, Matched: true},
			{ID: 1, Symbol: "anchor", FaceUp: true, Matched: true},
			{ID: 2},
			{ID: 3},
		},
		Pending: []int{},
		Stats:   entity.GameStats{Moves: 1, StarRating: 3, ElapsedSeconds: 7, Running: true},
	}
}

func TestSessionRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage, time.Hour)

	// Given: a snapshot of a running game
	snapshot := newSnapshot("123")

	// When: CreateOrUpdate is called
	err := sessionRepo.CreateOrUpdate(ctx, snapshot)

	// Then: no error should be returned and the key carries a ttl
	require.NoError(t, err)

	ttl, err := st.Storage.TTL(ctx, sessionKey("123")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestSessionRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		// Given: a stored snapshot
		snapshot := newSnapshot("123")
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, snapshot))

		// When: GetByID is called with the session id
		retrieved, err := sessionRepo.GetByID(ctx, snapshot.SessionID)

		// Then: the stored snapshot comes back unchanged
		require.NoError(t, err)
		assert.Equal(t, snapshot, retrieved)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		// When: GetByID is called with an unknown id
		retrieved, err := sessionRepo.GetByID(ctx, "9999999")

		// Then: ErrSnapshotNotFound is returned
		require.ErrorIs(t, err, apperror.ErrSnapshotNotFound)
		assert.Nil(t, retrieved)
	})
}

func TestSessionRepository_DeleteByID(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage, 0)

	// Given: a stored snapshot
	snapshot := newSnapshot("123")
	require.NoError(t, sessionRepo.CreateOrUpdate(ctx, snapshot))

	// When: DeleteByID is called
	err := sessionRepo.DeleteByID(ctx, snapshot.SessionID)
	require.NoError(t, err)

	// Then: the snapshot is gone
	_, err = sessionRepo.GetByID(ctx, snapshot.SessionID)
	require.ErrorIs(t, err, apperror.ErrSnapshotNotFound)
}

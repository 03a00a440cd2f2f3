package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/memory-backend/internal/entity"
	"github.com/rocketscienceinc/memory-backend/internal/memory"
)

func TestAdjudicate(t *testing.T) {
	t.Run("Equal symbols match regardless of ids", func(t *testing.T) {
		outcome := memory.Adjudicate(entity.NewCard(0, "bolt"), entity.NewCard(9, "bolt"))

		assert.Equal(t, entity.OutcomeMatch, outcome)
	})

	t.Run("Different symbols do not match", func(t *testing.T) {
		outcome := memory.Adjudicate(entity.NewCard(0, "bolt"), entity.NewCard(1, "leaf"))

		assert.Equal(t, entity.OutcomeNoMatch, outcome)
	})
}

func TestRating_Stars(t *testing.T) {
	expected := func(moves int) int {
		switch {
		case moves <= 11:
			return 3
		case moves <= 16:
			return 2
		case moves <= 20:
			return 1
		default:
			return 0
		}
	}

	for moves := 0; moves <= 100; moves++ {
		assert.Equal(t, expected(moves), memory.DefaultRating.Stars(moves), "moves=%d", moves)
	}
}

func TestRating_StarsNeverIncrease(t *testing.T) {
	rating := memory.Rating{MaxStars: 5, Thresholds: []int{30, 2, 10}}

	previous := rating.Stars(0)
	assert.Equal(t, 5, previous)

	for moves := 1; moves <= 50; moves++ {
		stars := rating.Stars(moves)
		assert.LessOrEqual(t, stars, previous, "moves=%d", moves)
		assert.GreaterOrEqual(t, stars, 0)
		previous = stars
	}

	assert.Equal(t, 2, previous)
}

func TestRecordMove(t *testing.T) {
	t.Run("Increments moves by one and recomputes the rating", func(t *testing.T) {
		// Given: stats at the edge of the three star band
		stats := entity.GameStats{Moves: 11, StarRating: 3, ElapsedSeconds: 42, Running: true}

		// When: recording one more move
		next := memory.RecordMove(stats, memory.DefaultRating)

		// Then: only moves and rating change
		assert.Equal(t, entity.GameStats{Moves: 12, StarRating: 2, ElapsedSeconds: 42, Running: true}, next)
	})

	t.Run("Rating follows the move count, not the previous rating", func(t *testing.T) {
		// Given: stats whose rating was tampered with
		stats := entity.GameStats{Moves: 0, StarRating: 0}

		// When: recording a move
		next := memory.RecordMove(stats, memory.DefaultRating)

		// Then: the rating is derived fresh
		assert.Equal(t, 3, next.StarRating)
	})
}

func TestCheckGameOver(t *testing.T) {
	// Given: a 16 card deck laid out in pairs
	symbols := []entity.Symbol{"A", "A", "B", "B", "C", "C", "D", "D", "E", "E", "F", "F", "G", "G", "H", "H"}

	ctrl, scheduler, _ := newTestController(t, symbols)

	// Then: the game is over only once all eight pairs are matched
	for pair := range 8 {
		require.False(t, ctrl.IsOver(), "pairs matched=%d", pair)

		playPair(t, ctrl, scheduler, 2*pair, 2*pair+1)
	}

	assert.True(t, ctrl.IsOver())
}

func TestCheckGameOver_FreshDeck(t *testing.T) {
	deck, err := memory.BuildDeck(memory.DefaultSymbols, nil)
	require.NoError(t, err)

	assert.False(t, memory.CheckGameOver(deck))
}

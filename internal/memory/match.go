package memory

import "github.com/rocketscienceinc/memory-backend/internal/entity"

// Rating derives stars from a move count: one star is lost for every
// threshold the count exceeds.
type Rating struct {
	MaxStars   int
	Thresholds []int
}

// DefaultRating gives 3 stars up to 11 moves, 2 up to 16, 1 up to 20 and 0 beyond.
var DefaultRating = Rating{
	MaxStars:   3,
	Thresholds: []int{11, 16, 20},
}

func (that Rating) Stars(moves int) int {
	stars := that.MaxStars
	for _, threshold := range that.Thresholds {
		if moves > threshold {
			stars--
		}
	}

	return min(max(stars, 0), that.MaxStars)
}

// Adjudicate compares the symbols of two cards.
func Adjudicate(first, second entity.Card) entity.Outcome {
	if first.Symbol == second.Symbol {
		return entity.OutcomeMatch
	}

	return entity.OutcomeNoMatch
}

// RecordMove counts one completed comparison and recomputes the rating from scratch.
func RecordMove(stats entity.GameStats, rating Rating) entity.GameStats {
	stats.Moves++
	stats.StarRating = rating.Stars(stats.Moves)

	return stats
}

func CheckGameOver(deck *Deck) bool {
	for _, card := range deck.cards {
		if !card.Matched {
			return false
		}
	}

	return true
}

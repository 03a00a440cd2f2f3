package memory

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/rocketscienceinc/memory-backend/internal/apperror"
	"github.com/rocketscienceinc/memory-backend/internal/entity"
)

const copiesPerSymbol = 2

// DefaultSymbols is the classic 16 card deck.
var DefaultSymbols = []entity.Symbol{
	"diamond", "diamond",
	"paper-plane-o", "paper-plane-o",
	"anchor", "anchor",
	"bolt", "bolt",
	"cube", "cube",
	"leaf", "leaf",
	"bicycle", "bicycle",
	"bomb", "bomb",
}

// Shuffler permutes n elements through swap, with the rand.Shuffle contract.
type Shuffler func(n int, swap func(i, j int))

type Deck struct {
	cards []entity.Card
}

// BuildDeck validates the symbol multiset and lays it out in shuffled order.
// Card ids are positions in the shuffled deck.
func BuildDeck(symbols []entity.Symbol, shuffle Shuffler) (*Deck, error) {
	if err := ValidateSymbols(symbols); err != nil {
		return nil, err
	}

	ordered := Shuffle(symbols, shuffle)

	cards := make([]entity.Card, len(ordered))
	for i, symbol := range ordered {
		cards[i] = entity.NewCard(i, symbol)
	}

	return &Deck{cards: cards}, nil
}

// ValidateSymbols checks that the multiset is non-empty and holds every symbol exactly twice.
func ValidateSymbols(symbols []entity.Symbol) error {
	if len(symbols) == 0 {
		return fmt.Errorf("%w: symbol set is empty", apperror.ErrInvalidConfig)
	}

	counts := make(map[entity.Symbol]int, len(symbols)/copiesPerSymbol)
	order := make([]entity.Symbol, 0, len(symbols)/copiesPerSymbol)

	for _, symbol := range symbols {
		if symbol == "" {
			return fmt.Errorf("%w: empty symbol", apperror.ErrInvalidConfig)
		}

		if counts[symbol] == 0 {
			order = append(order, symbol)
		}
		counts[symbol]++
	}

	for _, symbol := range order {
		if counts[symbol] != copiesPerSymbol {
			return fmt.Errorf("%w: symbol %q appears %d times, want %d",
				apperror.ErrInvalidConfig, symbol, counts[symbol], copiesPerSymbol)
		}
	}

	return nil
}

// Shuffle returns a uniformly permuted copy of seq. A nil shuffle uses math/rand/v2.
func Shuffle[T any](seq []T, shuffle Shuffler) []T {
	out := slices.Clone(seq)

	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	return out
}

func (that *Deck) Len() int {
	return len(that.cards)
}

func (that *Deck) Card(id int) (entity.Card, bool) {
	if id < 0 || id >= len(that.cards) {
		return entity.Card{}, false
	}

	return that.cards[id], true
}

// Cards returns a copy of the deck.
func (that *Deck) Cards() []entity.Card {
	return slices.Clone(that.cards)
}

func (that *Deck) Views() []entity.CardView {
	views := make([]entity.CardView, len(that.cards))
	for i, card := range that.cards {
		views[i] = card.View()
	}

	return views
}

func (that *Deck) setFaceUp(id int, faceUp bool) {
	that.cards[id].FaceUp = faceUp
}

func (that *Deck) setMatched(id int) {
	that.cards[id].Matched = true
}

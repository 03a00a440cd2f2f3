package memory

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/memory-backend/internal/apperror"
	"github.com/rocketscienceinc/memory-backend/internal/entity"
)

const maxPending = 2

// Selection holds the face-up cards awaiting adjudication.
type Selection struct {
	pending []int
}

func NewSelection() *Selection {
	return &Selection{pending: make([]int, 0, maxPending)}
}

func (that *Selection) CanSelect(card entity.Card) bool {
	return card.IsSelectable() && len(that.pending) < maxPending
}

// Select appends the card to the pending set. Callers check CanSelect first.
func (that *Selection) Select(card entity.Card) error {
	if !that.CanSelect(card) {
		return fmt.Errorf("%w: card %d cannot be selected", apperror.ErrPreconditionViolation, card.ID)
	}

	that.pending = append(that.pending, card.ID)

	return nil
}

func (that *Selection) IsFull() bool {
	return len(that.pending) == maxPending
}

func (that *Selection) Len() int {
	return len(that.pending)
}

func (that *Selection) Pending() []int {
	return slices.Clone(that.pending)
}

func (that *Selection) Clear() {
	that.pending = that.pending[:0]
}

package entity

// Symbol identifies the face value of a card.
type Symbol string

type Card struct {
	ID      int    `json:"id"`
	Symbol  Symbol `json:"symbol"`
	FaceUp  bool   `json:"face_up"`
	Matched bool   `json:"matched"`
}

func NewCard(id int, symbol Symbol) Card {
	return Card{
		ID:     id,
		Symbol: symbol,
	}
}

// IsSelectable reports whether the card can still be turned over.
func (that Card) IsSelectable() bool {
	return !that.Matched && !that.FaceUp
}

// View hides the symbol of a face-down card.
func (that Card) View() CardView {
	view := CardView{
		ID:      that.ID,
		FaceUp:  that.FaceUp,
		Matched: that.Matched,
	}

	if that.FaceUp || that.Matched {
		view.Symbol = that.Symbol
	}

	return view
}

// CardView is the client-facing card; Symbol is empty while the card is face down.
type CardView struct {
	ID      int    `json:"id"`
	Symbol  Symbol `json:"symbol,omitempty"`
	FaceUp  bool   `json:"face_up"`
	Matched bool   `json:"matched"`
}

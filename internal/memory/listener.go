package memory

import "github.com/rocketscienceinc/memory-backend/internal/entity"

// Listener receives render instructions from a GameController. Callbacks run
// one at a time in emission order, without the controller lock held, so they
// may read the controller or send it intents. Events caused by such an intent
// are delivered after the current callback returns.
type Listener interface {
	OnDeckBuilt(cards []entity.Card)
	OnCardFlipped(cardID int, faceUp bool)
	OnMatch(cardIDs []int)
	OnNoMatch(cardIDs []int)
	OnStatsChanged(stats entity.GameStats)
	OnGameOver(stats entity.GameStats)
}

// EventFunc adapts a function to Listener by turning every callback into an entity.Event.
type EventFunc func(event entity.Event)

func (that EventFunc) OnDeckBuilt(cards []entity.Card) {
	views := make([]entity.CardView, len(cards))
	for i, card := range cards {
		views[i] = card.View()
	}

	that(entity.Event{Type: entity.EventDeckBuilt, Cards: views})
}

func (that EventFunc) OnCardFlipped(cardID int, faceUp bool) {
	that(entity.Event{Type: entity.EventCardFlipped, CardIDs: []int{cardID}, FaceUp: &faceUp})
}

func (that EventFunc) OnMatch(cardIDs []int) {
	that(entity.Event{Type: entity.EventMatch, CardIDs: cardIDs})
}

func (that EventFunc) OnNoMatch(cardIDs []int) {
	that(entity.Event{Type: entity.EventNoMatch, CardIDs: cardIDs})
}

func (that EventFunc) OnStatsChanged(stats entity.GameStats) {
	that(entity.Event{Type: entity.EventStatsChanged, Stats: &stats})
}

func (that EventFunc) OnGameOver(stats entity.GameStats) {
	that(entity.Event{Type: entity.EventGameOver, Stats: &stats})
}

// pendingEvent is an emission queued under the controller lock.
type pendingEvent struct {
	kind    entity.EventType
	cards   []entity.Card
	cardIDs []int
	faceUp  bool
	stats   entity.GameStats
}

func deliver(listener Listener, event pendingEvent) {
	switch event.kind {
	case entity.EventDeckBuilt:
		listener.OnDeckBuilt(event.cards)
	case entity.EventCardFlipped:
		listener.OnCardFlipped(event.cardIDs[0], event.faceUp)
	case entity.EventMatch:
		listener.OnMatch(event.cardIDs)
	case entity.EventNoMatch:
		listener.OnNoMatch(event.cardIDs)
	case entity.EventStatsChanged:
		listener.OnStatsChanged(event.stats)
	case entity.EventGameOver:
		listener.OnGameOver(event.stats)
	}
}

package entity

type EventType string

const (
	EventDeckBuilt    EventType = "deck_built"
	EventCardFlipped  EventType = "card_flipped"
	EventMatch        EventType = "match"
	EventNoMatch      EventType = "no_match"
	EventStatsChanged EventType = "stats_changed"
	EventGameOver     EventType = "game_over"
)

// Event is one outbound render instruction. Only the fields relevant to Type are set.
type Event struct {
	Type    EventType  `json:"type"`
	Cards   []CardView `json:"cards,omitempty"`
	CardIDs []int      `json:"card_ids,omitempty"`
	FaceUp  *bool      `json:"face_up,omitempty"`
	Stats   *GameStats `json:"stats,omitempty"`
}

package entity

import "fmt"

type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseSelecting    Phase = "selecting"
	PhaseAdjudicating Phase = "adjudicating"
	PhaseFinished     Phase = "finished"
)

type Outcome string

const (
	OutcomeMatch   Outcome = "match"
	OutcomeNoMatch Outcome = "no_match"
)

type GameStats struct {
	Moves          int  `json:"moves"`
	StarRating     int  `json:"star_rating"`
	ElapsedSeconds int  `json:"elapsed_seconds"`
	Running        bool `json:"running"`
}

// NewGameStats returns zeroed stats carrying the full star rating.
func NewGameStats(maxStars int) GameStats {
	return GameStats{StarRating: maxStars}
}

// Elapsed formats the elapsed time as MM:SS.
func (that GameStats) Elapsed() string {
	return FormatElapsed(that.ElapsedSeconds)
}

func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Snapshot is a read-only picture of one game.
type Snapshot struct {
	SessionID string     `json:"session_id,omitempty"`
	Epoch     uint64     `json:"epoch"`
	Phase     Phase      `json:"phase"`
	Cards     []CardView `json:"cards"`
	Pending   []int      `json:"pending"`
	Stats     GameStats  `json:"stats"`
}

func (that *Snapshot) IsOver() bool {
	return that.Phase == PhaseFinished
}

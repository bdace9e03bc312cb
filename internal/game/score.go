package game

import "time"

const (
	baseScore      = 1000
	accuracyBonus  = 500
	minutePenalty  = 10
	maxTimePenalty = 500
)

// Score rates a finished game: a 1000 base, up to 500 for accuracy, minus 10
// per whole elapsed minute capped at 500. totalShots must be positive.
func Score(start, end time.Time, hits, totalShots int) int {
	bonus := 0
	if totalShots > 0 {
		bonus = accuracyBonus * hits / totalShots
	}
	minutes := int(end.Sub(start) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	penalty := min(maxTimePenalty, minutePenalty*minutes)
	return baseScore + bonus - penalty
}

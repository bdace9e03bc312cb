// internal/stats/stats.go
//
// Read-only summaries over finished games.
// Responsibilities:
//   - Per-user statistics (totals, averages, best score/time, history).
//   - Global leaderboard ranking by score.
//
// Both work on plain game records handed over by the store; nothing here
// touches live games or persistence.

package stats

import (
	"math"
	"sort"
	"time"

	"github.com/robalobadob/battleship/internal/game"
)

// DefaultLeaderboardLimit is used when callers ask for a non-positive limit.
const DefaultLeaderboardLimit = 10

// HistoryEntry is one completed game in a user's history.
type HistoryEntry struct {
	ID              string    `json:"id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	TotalShots      int       `json:"total_shots"`
	Hits            int       `json:"hits"`
	Misses          int       `json:"misses"`
	Score           int       `json:"score"`
	DurationSeconds int64     `json:"duration_seconds"`
}

// UserStats summarizes a user's completed games.
type UserStats struct {
	TotalGames   int            `json:"total_games"`
	BestScore    int            `json:"best_score"`
	AverageScore float64        `json:"average_score"`
	TotalShots   int            `json:"total_shots"`
	TotalHits    int            `json:"total_hits"`
	TotalMisses  int            `json:"total_misses"`
	Accuracy     float64        `json:"accuracy"`
	AverageTime  float64        `json:"average_time"`
	BestTime     int64          `json:"best_time"`
	GamesHistory []HistoryEntry `json:"games_history"`
}

// Summarize aggregates the completed games among games. Games still in
// progress are ignored. With nothing completed every field is zero and the
// history is empty (never nil).
func Summarize(games []game.Game) UserStats {
	st := UserStats{GamesHistory: []HistoryEntry{}}

	var scoreSum int
	var secondsSum int64
	for i := range games {
		g := &games[i]
		if !g.Completed() || g.EndTime == nil {
			continue
		}
		secs := durationSeconds(g)

		if st.TotalGames == 0 || g.Score > st.BestScore {
			st.BestScore = g.Score
		}
		if st.TotalGames == 0 || secs < st.BestTime {
			st.BestTime = secs
		}
		st.TotalGames++
		scoreSum += g.Score
		secondsSum += secs
		st.TotalShots += g.TotalShots
		st.TotalHits += g.Hits
		st.TotalMisses += g.Misses

		st.GamesHistory = append(st.GamesHistory, HistoryEntry{
			ID:              g.ID,
			StartTime:       g.StartTime,
			EndTime:         *g.EndTime,
			TotalShots:      g.TotalShots,
			Hits:            g.Hits,
			Misses:          g.Misses,
			Score:           g.Score,
			DurationSeconds: secs,
		})
	}
	if st.TotalGames == 0 {
		return st
	}

	st.AverageScore = round2(float64(scoreSum) / float64(st.TotalGames))
	st.AverageTime = round2(float64(secondsSum) / float64(st.TotalGames))
	st.Accuracy = accuracy(st.TotalHits, st.TotalShots)

	sort.SliceStable(st.GamesHistory, func(i, j int) bool {
		return st.GamesHistory[i].StartTime.After(st.GamesHistory[j].StartTime)
	})
	return st
}

// Row is a completed game together with its owner's username, as read from
// the store for ranking.
type Row struct {
	Username string
	Game     game.Game
}

// LeaderboardEntry is one ranked game.
type LeaderboardEntry struct {
	Username        string  `json:"username"`
	Score           int     `json:"score"`
	Hits            int     `json:"hits"`
	TotalShots      int     `json:"total_shots"`
	Accuracy        float64 `json:"accuracy"`
	DurationSeconds int64   `json:"duration_seconds"`
}

// Leaderboard ranks the completed games in rows by score, highest first, and
// keeps the top limit. Equal scores keep their input order.
func Leaderboard(rows []Row, limit int) []LeaderboardEntry {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	ranked := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Game.Completed() {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Game.Score > ranked[j].Game.Score
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]LeaderboardEntry, 0, len(ranked))
	for i := range ranked {
		g := &ranked[i].Game
		out = append(out, LeaderboardEntry{
			Username:        ranked[i].Username,
			Score:           g.Score,
			Hits:            g.Hits,
			TotalShots:      g.TotalShots,
			Accuracy:        accuracy(g.Hits, g.TotalShots),
			DurationSeconds: durationSeconds(g),
		})
	}
	return out
}

func durationSeconds(g *game.Game) int64 {
	return int64(g.Duration() / time.Second)
}

func accuracy(hits, shots int) float64 {
	if shots <= 0 {
		return 0
	}
	return round2(100 * float64(hits) / float64(shots))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

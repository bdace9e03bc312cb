package stats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/battleship/internal/game"
)

var base = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func completed(id string, start time.Time, dur time.Duration, shots, hits, score int) game.Game {
	end := start.Add(dur)
	return game.Game{
		ID:         id,
		UserID:     "u1",
		StartTime:  start,
		EndTime:    &end,
		Status:     game.StatusCompleted,
		TotalShots: shots,
		Hits:       hits,
		Misses:     shots - hits,
		Score:      score,
	}
}

func TestSummarize_Empty(t *testing.T) {
	st := Summarize(nil)
	assert.Equal(t, UserStats{GamesHistory: []HistoryEntry{}}, st)

	b, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"games_history":[]`)
}

func TestSummarize_IgnoresInProgress(t *testing.T) {
	st := Summarize([]game.Game{{ID: "live", Status: game.StatusInProgress, TotalShots: 4, Hits: 1, Misses: 3}})
	assert.Zero(t, st.TotalGames)
	assert.Zero(t, st.TotalShots)
	assert.Empty(t, st.GamesHistory)
}

func TestSummarize(t *testing.T) {
	games := []game.Game{
		completed("old", base, 300*time.Second, 40, 17, 1200),
		completed("new", base.Add(48*time.Hour), 120*time.Second, 20, 17, 1405),
		completed("mid", base.Add(24*time.Hour), 601*time.Second, 60, 17, 1041),
		{ID: "live", Status: game.StatusInProgress, StartTime: base.Add(72 * time.Hour), TotalShots: 3, Hits: 1, Misses: 2},
	}

	st := Summarize(games)
	assert.Equal(t, 3, st.TotalGames)
	assert.Equal(t, 1405, st.BestScore)
	assert.Equal(t, 1215.33, st.AverageScore)
	assert.Equal(t, 120, st.TotalShots)
	assert.Equal(t, 51, st.TotalHits)
	assert.Equal(t, 69, st.TotalMisses)
	assert.Equal(t, 42.5, st.Accuracy)
	assert.Equal(t, 340.33, st.AverageTime)
	assert.Equal(t, int64(120), st.BestTime)

	require.Len(t, st.GamesHistory, 3)
	assert.Equal(t, "new", st.GamesHistory[0].ID)
	assert.Equal(t, "mid", st.GamesHistory[1].ID)
	assert.Equal(t, "old", st.GamesHistory[2].ID)
	assert.Equal(t, int64(601), st.GamesHistory[1].DurationSeconds)
}

func TestLeaderboard_Ordering(t *testing.T) {
	rows := []Row{
		{Username: "alice", Game: completed("a", base, time.Minute, 20, 17, 1200)},
		{Username: "bob", Game: completed("b", base, time.Minute, 80, 17, 900)},
		{Username: "carol", Game: completed("c", base, 30*time.Second, 17, 17, 1500)},
	}
	top := Leaderboard(rows, 3)
	require.Len(t, top, 3)
	assert.Equal(t, []int{1500, 1200, 900}, []int{top[0].Score, top[1].Score, top[2].Score})
	assert.Equal(t, LeaderboardEntry{
		Username: "carol", Score: 1500, Hits: 17, TotalShots: 17, Accuracy: 100, DurationSeconds: 30,
	}, top[0])
	assert.Equal(t, 85.0, top[1].Accuracy)
	assert.Equal(t, 21.25, top[2].Accuracy)
}

func TestLeaderboard_LimitAndTies(t *testing.T) {
	var rows []Row
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		score := 1000
		if i%2 == 0 {
			score = 1100
		}
		rows = append(rows, Row{Username: name, Game: completed(name, base, time.Minute, 17, 17, score)})
	}
	rows = append(rows, Row{Username: "live", Game: game.Game{Status: game.StatusInProgress, Score: 9999}})

	top := Leaderboard(rows, 0)
	require.Len(t, top, DefaultLeaderboardLimit)
	names := make([]string, 0, len(top))
	for _, e := range top {
		names = append(names, e.Username)
	}
	assert.Equal(t, []string{"a", "c", "e", "g", "i", "k", "b", "d", "f", "h"}, names)

	assert.Len(t, Leaderboard(rows, 2), 2)
	assert.Empty(t, Leaderboard(nil, 5))
}

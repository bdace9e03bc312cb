package service

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/robalobadob/battleship/internal/stats"
	"github.com/robalobadob/battleship/internal/store"
)

// MaxLeaderboardLimit caps how many entries one leaderboard request returns.
const MaxLeaderboardLimit = 100

// Stats serves per-user statistics and the global leaderboard.
type Stats struct {
	store        store.Store
	defaultLimit int
}

// NewStats uses defaultLimit when a leaderboard request asks for none.
func NewStats(st store.Store, defaultLimit int) *Stats {
	if defaultLimit <= 0 {
		defaultLimit = stats.DefaultLeaderboardLimit
	}
	return &Stats{store: st, defaultLimit: min(defaultLimit, MaxLeaderboardLimit)}
}

// ForUser summarizes userID's completed games.
func (s *Stats) ForUser(ctx context.Context, userID string) (stats.UserStats, error) {
	games, err := s.store.CompletedGames(ctx, userID)
	if err != nil {
		return stats.UserStats{}, errors.Wrap(err, "completed games")
	}
	return stats.Summarize(games), nil
}

// Leaderboard returns the best completed games of all users. limit is clamped
// to [1, MaxLeaderboardLimit]; zero or less means the default.
func (s *Stats) Leaderboard(ctx context.Context, limit int) ([]stats.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	limit = min(limit, MaxLeaderboardLimit)

	rows, err := s.store.TopGames(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "top games")
	}
	return stats.Leaderboard(rows, limit), nil
}

// internal/store/store.go
//
// Persistence interface for users, games, ships and shots.
// Implementations:
//   - memory.go: maps guarded by an RWMutex (tests, STORE_DRIVER=memory).
//   - sqlite.go: SQLite through sqlx (default).
//
// Both apply a resolved shot atomically: either the shot, the hit ship and the
// game counters all change, or nothing does.

package store

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/robalobadob/battleship/internal/auth"
	"github.com/robalobadob/battleship/internal/game"
	"github.com/robalobadob/battleship/internal/stats"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username taken")
)

// Snapshot is a game with its fleet and shots, ships in placement order.
type Snapshot struct {
	Game  game.Game
	Ships []game.Ship
	Shots []game.Shot
}

// ShotRecord is everything one accepted shot changes.
type ShotRecord struct {
	Game game.Game  // game after the shot (counters, status, score)
	Shot game.Shot  // the new shot
	Ship *game.Ship // the ship that was hit, nil on a miss
}

// Store defines the persistence interface used by the services.
type Store interface {
	CreateUser(ctx context.Context, u *auth.User) error
	FindUserByID(ctx context.Context, id string) (*auth.User, error)
	// FindUserByUsername matches case-insensitively.
	FindUserByUsername(ctx context.Context, username string) (*auth.User, error)
	MarkPlayed(ctx context.Context, userID string) error

	// CreateGame stores a new game and its fleet together.
	CreateGame(ctx context.Context, g *game.Game, ships []game.Ship) error
	GetGame(ctx context.Context, id string) (*Snapshot, error)
	// RecordShot persists a resolved shot. It fails with game.ErrGameOver if
	// the stored game is no longer in progress and game.ErrDuplicateShot if
	// the cell was already recorded, leaving everything unchanged.
	RecordShot(ctx context.Context, rec ShotRecord) error

	// ListGames returns a user's games with the given status: in-progress
	// games newest start first, completed games newest end first.
	ListGames(ctx context.Context, userID string, status game.Status) ([]game.Game, error)
	// CompletedGames returns a user's completed games, newest start first.
	CompletedGames(ctx context.Context, userID string) ([]game.Game, error)
	// TopGames returns up to limit completed games of all users, best score first.
	TopGames(ctx context.Context, limit int) ([]stats.Row, error)
}

// internal/service/game.go
//
// Game use cases on top of the engine and the store.
// Responsibilities:
//   - Start games (fleet placement, first-game flag on the user).
//   - Fire shots: ownership, per-game serialization, resolve, persist.
//   - Read a game with its board (ships revealed once completed).
//   - List a user's active and completed games.
//
// The engine decides; the store makes the decision durable. A shot that the
// store refuses leaves nothing changed.

package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/robalobadob/battleship/internal/game"
	"github.com/robalobadob/battleship/internal/store"
)

var (
	ErrNotFound  = errors.New("game not found")
	ErrForbidden = errors.New("game belongs to another user")
)

// FinishedError reports a shot at a completed game. It matches
// game.ErrGameOver and carries the final state for the response.
type FinishedError struct {
	Game game.Game
}

func (e *FinishedError) Error() string {
	return fmt.Sprintf("game %s is over (score %d)", e.Game.ID, e.Game.Score)
}

func (e *FinishedError) Unwrap() error { return game.ErrGameOver }

// View is a game as shown to its owner.
type View struct {
	Game  game.Game
	Board game.Board
}

// ShotResult is an accepted shot with the state it produced. Board is set
// only when the shot ended the game and shows every ship.
type ShotResult struct {
	Outcome game.Outcome
	Game    game.Game
	Board   *game.Board
}

// Games runs the game use cases.
type Games struct {
	store     store.Store
	locks     *Locker
	now       func() time.Time
	newSource func() game.Source
}

// GamesOption customizes Games.
type GamesOption func(*Games)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) GamesOption {
	return func(g *Games) { g.now = now }
}

// WithSource replaces the per-game random source used for fleet placement.
func WithSource(newSource func() game.Source) GamesOption {
	return func(g *Games) { g.newSource = newSource }
}

// NewGames wires the game use cases to st.
func NewGames(st store.Store, opts ...GamesOption) *Games {
	g := &Games{
		store: st,
		locks: NewLocker(),
		now:   time.Now,
		newSource: func() game.Source {
			return game.NewSource(rand.Uint64())
		},
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Start creates a game for userID with a freshly placed fleet.
func (s *Games) Start(ctx context.Context, userID string) (*game.Game, error) {
	u, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "user %s", userID)
		}
		return nil, err
	}

	g, ships, err := game.New(userID, s.now(), s.newSource())
	if err != nil {
		return nil, err
	}
	if !u.HasPlayed {
		if err := s.store.MarkPlayed(ctx, userID); err != nil {
			return nil, errors.Wrap(err, "mark played")
		}
	}
	if err := s.store.CreateGame(ctx, g, ships); err != nil {
		return nil, errors.Wrap(err, "create game")
	}

	zerolog.Ctx(ctx).Info().Str("game", g.ID).Str("user", userID).Msg("game started")
	return g, nil
}

// Get returns the owner's view of a game.
func (s *Games) Get(ctx context.Context, userID, gameID string) (*View, error) {
	snap, err := s.load(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}
	return &View{
		Game:  snap.Game,
		Board: game.ProjectBoard(snap.Ships, snap.Shots, snap.Game.Completed()),
	}, nil
}

// Fire resolves a shot at (x, y). Shots on one game run one at a time.
func (s *Games) Fire(ctx context.Context, userID, gameID string, x, y int) (*ShotResult, error) {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	snap, err := s.load(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}

	out, err := game.ResolveShot(&snap.Game, snap.Ships, snap.Shots, x, y, s.now())
	if err != nil {
		if errors.Is(err, game.ErrGameOver) {
			return nil, &FinishedError{Game: snap.Game}
		}
		return nil, err
	}

	rec := store.ShotRecord{Game: snap.Game, Shot: out.Shot}
	if out.ShipIdx >= 0 {
		rec.Ship = &snap.Ships[out.ShipIdx]
	}
	if err := s.store.RecordShot(ctx, rec); err != nil {
		if errors.Is(err, game.ErrGameOver) {
			// Finished elsewhere between load and commit.
			if fresh, ferr := s.store.GetGame(ctx, gameID); ferr == nil {
				return nil, &FinishedError{Game: fresh.Game}
			}
		}
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("game", gameID).Int("x", x).Int("y", y).Bool("hit", out.Hit).Msg("shot")
	if out.Sunk != nil {
		logger.Info().Str("game", gameID).Stringer("ship", out.Sunk.Type).Msg("ship sunk")
	}

	res := &ShotResult{Outcome: out, Game: snap.Game}
	if out.GameOver {
		board := game.ProjectBoard(snap.Ships, append(snap.Shots, out.Shot), true)
		res.Board = &board
		logger.Info().Str("game", gameID).Int("score", snap.Game.Score).
			Int("shots", snap.Game.TotalShots).Msg("game completed")
	}
	return res, nil
}

// List returns the user's in-progress games (newest first) and completed
// games (most recently finished first).
func (s *Games) List(ctx context.Context, userID string) (active, completed []game.Game, err error) {
	active, err = s.store.ListGames(ctx, userID, game.StatusInProgress)
	if err != nil {
		return nil, nil, errors.Wrap(err, "list active games")
	}
	completed, err = s.store.ListGames(ctx, userID, game.StatusCompleted)
	if err != nil {
		return nil, nil, errors.Wrap(err, "list completed games")
	}
	return active, completed, nil
}

func (s *Games) load(ctx context.Context, userID, gameID string) (*store.Snapshot, error) {
	snap, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "game %s", gameID)
		}
		return nil, errors.Wrap(err, "load game")
	}
	if snap.Game.UserID != userID {
		return nil, ErrForbidden
	}
	return snap, nil
}

package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/battleship/internal/auth"
	"github.com/robalobadob/battleship/internal/database"
	"github.com/robalobadob/battleship/internal/game"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// forEachStore runs fn against a fresh memory store and a fresh SQLite store.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		require.NoError(t, database.Migrate(context.Background(), db))
		fn(t, NewSQLiteStore(db))
	})
}

func seedUser(t *testing.T, s Store, id, name string) *auth.User {
	t.Helper()
	u := &auth.User{
		ID:                 id,
		Username:           name,
		PasswordHash:       "hash",
		RegistrationSource: auth.SourceFriend,
		AcceptTerms:        true,
		CreatedAt:          t0,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func testFleet() []game.Ship {
	return []game.Ship{
		{Type: game.Destroyer, X: 0, Y: 0, Orientation: game.Horizontal},
		{Type: game.Submarine, X: 0, Y: 2, Orientation: game.Horizontal},
		{Type: game.Cruiser, X: 0, Y: 4, Orientation: game.Horizontal},
		{Type: game.Battleship, X: 0, Y: 6, Orientation: game.Horizontal},
		{Type: game.Carrier, X: 9, Y: 0, Orientation: game.Vertical},
	}
}

func seedGame(t *testing.T, s Store, userID, id string, start time.Time) *game.Game {
	t.Helper()
	g := &game.Game{ID: id, UserID: userID, StartTime: start, Status: game.StatusInProgress}
	require.NoError(t, s.CreateGame(context.Background(), g, testFleet()))
	return g
}

// shoot resolves a shot against the stored state and records it.
func shoot(t *testing.T, s Store, id string, x, y int, now time.Time) (game.Outcome, error) {
	t.Helper()
	ctx := context.Background()
	snap, err := s.GetGame(ctx, id)
	require.NoError(t, err)
	out, err := game.ResolveShot(&snap.Game, snap.Ships, snap.Shots, x, y, now)
	if err != nil {
		return out, err
	}
	rec := ShotRecord{Game: snap.Game, Shot: out.Shot}
	if out.ShipIdx >= 0 {
		rec.Ship = &snap.Ships[out.ShipIdx]
	}
	return out, s.RecordShot(ctx, rec)
}

func TestUsers(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		seedUser(t, s, "u1", "Admiral")

		u, err := s.FindUserByUsername(ctx, "admiral")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		assert.Equal(t, "Admiral", u.Username)
		assert.False(t, u.HasPlayed)

		err = s.CreateUser(ctx, &auth.User{ID: "u2", Username: "ADMIRAL", PasswordHash: "x",
			RegistrationSource: auth.SourceFriend, CreatedAt: t0})
		assert.ErrorIs(t, err, ErrUsernameTaken)

		require.NoError(t, s.MarkPlayed(ctx, "u1"))
		u, err = s.FindUserByID(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, u.HasPlayed)

		_, err = s.FindUserByID(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.MarkPlayed(ctx, "nope"), ErrNotFound)
	})
}

func TestGameRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		seedUser(t, s, "u1", "Admiral")
		seedGame(t, s, "u1", "g1", t0)

		snap, err := s.GetGame(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, "u1", snap.Game.UserID)
		assert.True(t, snap.Game.StartTime.Equal(t0))
		assert.Equal(t, game.StatusInProgress, snap.Game.Status)
		assert.Nil(t, snap.Game.EndTime)
		assert.Equal(t, testFleet(), snap.Ships)
		assert.Empty(t, snap.Shots)

		_, err = s.GetGame(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCreateGame_UnknownUser(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		g := &game.Game{ID: "g1", UserID: "ghost", StartTime: t0, Status: game.StatusInProgress}
		assert.ErrorIs(t, s.CreateGame(context.Background(), g, testFleet()), ErrNotFound)
	})
}

func TestRecordShot(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		seedUser(t, s, "u1", "Admiral")
		seedGame(t, s, "u1", "g1", t0)

		out, err := shoot(t, s, "g1", 0, 0, t0)
		require.NoError(t, err)
		assert.True(t, out.Hit)
		_, err = shoot(t, s, "g1", 5, 5, t0)
		require.NoError(t, err)

		snap, err := s.GetGame(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, []game.Shot{{X: 0, Y: 0, Hit: true}, {X: 5, Y: 5}}, snap.Shots)
		assert.Equal(t, 1, snap.Ships[0].HitCount)
		assert.False(t, snap.Ships[0].Sunk)
		assert.Equal(t, 2, snap.Game.TotalShots)
		assert.Equal(t, 1, snap.Game.Hits)
		assert.Equal(t, 1, snap.Game.Misses)
	})
}

func TestRecordShot_DuplicateLeavesStateUnchanged(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		seedUser(t, s, "u1", "Admiral")
		seedGame(t, s, "u1", "g1", t0)

		// Resolve the same shot twice against one stale snapshot, as two
		// racing requests would.
		snap, err := s.GetGame(ctx, "g1")
		require.NoError(t, err)
		stale, err := s.GetGame(ctx, "g1")
		require.NoError(t, err)

		out, err := game.ResolveShot(&snap.Game, snap.Ships, snap.Shots, 0, 0, t0)
		require.NoError(t, err)
		require.NoError(t, s.RecordShot(ctx, ShotRecord{Game: snap.Game, Shot: out.Shot, Ship: &snap.Ships[0]}))

		out, err = game.ResolveShot(&stale.Game, stale.Ships, stale.Shots, 0, 0, t0)
		require.NoError(t, err)
		err = s.RecordShot(ctx, ShotRecord{Game: stale.Game, Shot: out.Shot, Ship: &stale.Ships[0]})
		assert.ErrorIs(t, err, game.ErrDuplicateShot)

		after, err := s.GetGame(ctx, "g1")
		require.NoError(t, err)
		assert.Len(t, after.Shots, 1)
		assert.Equal(t, 1, after.Game.TotalShots)
		assert.Equal(t, 1, after.Ships[0].HitCount)
	})
}

func TestRecordShot_CompletesAndRejectsAfter(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		seedUser(t, s, "u1", "Admiral")
		seedGame(t, s, "u1", "g1", t0)

		end := t0.Add(45 * time.Second)
		var last game.Outcome
		for _, sh := range testFleet() {
			dx, dy := sh.Orientation.Step()
			for i := 0; i < sh.Size(); i++ {
				out, err := shoot(t, s, "g1", sh.X+i*dx, sh.Y+i*dy, end)
				require.NoError(t, err)
				last = out
			}
		}
		require.True(t, last.GameOver)
		assert.Equal(t, 1500, last.Score)

		snap, err := s.GetGame(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, game.StatusCompleted, snap.Game.Status)
		require.NotNil(t, snap.Game.EndTime)
		assert.True(t, snap.Game.EndTime.Equal(end))
		assert.Equal(t, 1500, snap.Game.Score)
		for _, sh := range snap.Ships {
			assert.True(t, sh.Sunk, sh.Type.String())
		}

		_, err = shoot(t, s, "g1", 5, 5, end)
		assert.ErrorIs(t, err, game.ErrGameOver)

		// A stale in-progress snapshot cannot reopen or extend the game.
		stale := snap.Game
		stale.Status = game.StatusInProgress
		stale.EndTime = nil
		err = s.RecordShot(ctx, ShotRecord{Game: stale, Shot: game.Shot{X: 5, Y: 5}})
		assert.ErrorIs(t, err, game.ErrGameOver)
	})
}

func TestListGames(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		seedUser(t, s, "u1", "Admiral")
		seedUser(t, s, "u2", "Captain")
		seedGame(t, s, "u1", "old", t0)
		seedGame(t, s, "u1", "new", t0.Add(time.Hour))
		seedGame(t, s, "u2", "other", t0)

		active, err := s.ListGames(ctx, "u1", game.StatusInProgress)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, "new", active[0].ID)
		assert.Equal(t, "old", active[1].ID)

		done, err := s.ListGames(ctx, "u1", game.StatusCompleted)
		require.NoError(t, err)
		assert.Empty(t, done)

		completed, err := s.CompletedGames(ctx, "u2")
		require.NoError(t, err)
		assert.Empty(t, completed)
	})
}

func TestTopGames(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		seedUser(t, s, "u1", "Admiral")
		seedUser(t, s, "u2", "Captain")

		finish := func(userID, id string, minutes int) {
			seedGame(t, s, userID, id, t0)
			end := t0.Add(time.Duration(minutes) * time.Minute)
			for _, sh := range testFleet() {
				dx, dy := sh.Orientation.Step()
				for i := 0; i < sh.Size(); i++ {
					_, err := shoot(t, s, id, sh.X+i*dx, sh.Y+i*dy, end)
					require.NoError(t, err)
				}
			}
		}
		finish("u1", "fast", 0)  // 1500
		finish("u2", "slow", 10) // 1400
		finish("u1", "mid", 5)   // 1450
		seedGame(t, s, "u2", "open", t0)

		rows, err := s.TopGames(ctx, 2)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Admiral", rows[0].Username)
		assert.Equal(t, 1500, rows[0].Game.Score)
		assert.Equal(t, "mid", rows[1].Game.ID)

		all, err := s.TopGames(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		completed, err := s.CompletedGames(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, completed, 2)
		done, err := s.ListGames(ctx, "u1", game.StatusCompleted)
		require.NoError(t, err)
		require.Len(t, done, 2)
		assert.Equal(t, "mid", done[0].ID, "newest end first")
	})
}

func TestRecordShot_ConcurrentSameCell(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		seedUser(t, s, "u1", "Admiral")
		seedGame(t, s, "u1", "g1", t0)

		const n = 8
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			snap, err := s.GetGame(ctx, "g1")
			require.NoError(t, err)
			wg.Add(1)
			go func(i int, snap *Snapshot) {
				defer wg.Done()
				out, err := game.ResolveShot(&snap.Game, snap.Ships, snap.Shots, 3, 3, t0)
				if err != nil {
					errs[i] = err
					return
				}
				errs[i] = s.RecordShot(ctx, ShotRecord{Game: snap.Game, Shot: out.Shot})
			}(i, snap)
		}
		wg.Wait()

		var ok int
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			assert.ErrorIs(t, err, game.ErrDuplicateShot)
		}
		assert.Equal(t, 1, ok)

		snap, err := s.GetGame(ctx, "g1")
		require.NoError(t, err)
		assert.Len(t, snap.Shots, 1)
		assert.Equal(t, 1, snap.Game.TotalShots)
	})
}

// internal/game/engine.go
//
// Core game engine for a single Battleship session.
// Responsibilities:
//   - Create new games with a randomly placed classic fleet.
//   - Validate and apply shots (finished game, bounds, repeated cell).
//   - Track hits per ship, sinkings and the in_progress → completed transition.
//
// Notes:
//   - The engine works on caller-owned values; persistence decides when a
//     resolved shot becomes durable.
//   - Nothing is mutated when a shot is rejected.
package game

import (
	"time"

	"github.com/google/uuid"
)

// New constructs an in-progress game for userID and places its fleet.
func New(userID string, now time.Time, rng Source) (*Game, []Ship, error) {
	ships, err := PlaceFleet(rng)
	if err != nil {
		return nil, nil, err
	}
	g := &Game{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartTime: now.UTC(),
		Status:    StatusInProgress,
	}
	return g, ships, nil
}

// Outcome is the result of one accepted shot.
type Outcome struct {
	Shot     Shot
	Hit      bool
	ShipIdx  int   // index into the ships slice that was hit, -1 on a miss
	Sunk     *Ship // copy of the ship this shot sank, if any
	GameOver bool

	TotalShots int
	Hits       int
	Misses     int
	Score      int
}

// ResolveShot applies a shot at (x, y) to g and ships.
//
// Preconditions are checked in order and each has its own error:
// ErrGameOver, ErrOutOfBounds, ErrDuplicateShot. On success the hit ship (if
// any) and the game counters are updated in place; once every ship is sunk the
// game is completed at now and scored.
func ResolveShot(g *Game, ships []Ship, shots []Shot, x, y int, now time.Time) (Outcome, error) {
	if g.Completed() {
		return Outcome{}, ErrGameOver
	}
	if !InBounds(x, y) {
		return Outcome{}, ErrOutOfBounds
	}
	for _, s := range shots {
		if s.X == x && s.Y == y {
			return Outcome{}, ErrDuplicateShot
		}
	}

	out := Outcome{ShipIdx: -1}
	for i := range ships {
		ship := &ships[i]
		if !ship.Covers(x, y) {
			continue
		}
		out.Hit = true
		out.ShipIdx = i
		ship.HitCount++
		if !ship.Sunk && ship.HitCount >= ship.Size() {
			ship.Sunk = true
			sunk := *ship
			out.Sunk = &sunk
		}
		break
	}
	out.Shot = Shot{X: x, Y: y, Hit: out.Hit}

	g.TotalShots++
	if out.Hit {
		g.Hits++
	} else {
		g.Misses++
	}

	if allSunk(ships) {
		end := now.UTC()
		g.Status = StatusCompleted
		g.EndTime = &end
		g.Score = Score(g.StartTime, end, g.Hits, g.TotalShots)
		out.GameOver = true
	}

	out.TotalShots, out.Hits, out.Misses, out.Score = g.TotalShots, g.Hits, g.Misses, g.Score
	return out, nil
}

// allSunk returns true if the fleet is non-empty and every ship is sunk.
func allSunk(ships []Ship) bool {
	if len(ships) == 0 {
		return false
	}
	for i := range ships {
		if !ships[i].Sunk {
			return false
		}
	}
	return true
}

package game

import (
	"math/rand/v2"

	"github.com/cockroachdb/errors"
)

// maxPlacementAttempts bounds the rejection-sampling loop per ship. The classic
// fleet covers 17 of 100 cells, so a real run needs a handful of attempts.
const maxPlacementAttempts = 10_000

// Source yields uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// NewSource returns a seeded source; tests use it for reproducible fleets.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// PlaceFleet lays out one ship of every type in Fleet order without overlaps.
//
// Each attempt draws, in this order: orientation (IntN(2), 0 = horizontal),
// x, then y, with the ship's extending axis limited to [0, BoardSize-size].
// Overlapping attempts are discarded and redrawn.
func PlaceFleet(rng Source) ([]Ship, error) {
	var occupied Occupancy
	ships := make([]Ship, 0, len(Fleet))

	for _, t := range Fleet {
		size := t.Size()
		placed := false
		for attempt := 0; attempt < maxPlacementAttempts && !placed; attempt++ {
			o := Horizontal
			if rng.IntN(2) == 1 {
				o = Vertical
			}
			maxX, maxY := BoardSize-1, BoardSize-1
			if o == Horizontal {
				maxX = BoardSize - size
			} else {
				maxY = BoardSize - size
			}
			anchor := Coord{X: rng.IntN(maxX + 1), Y: rng.IntN(maxY + 1)}

			cells, err := CellsOf(anchor, size, o)
			if err != nil || occupied.Overlaps(cells) {
				continue
			}
			occupied.Mark(cells)
			ships = append(ships, Ship{Type: t, X: anchor.X, Y: anchor.Y, Orientation: o})
			placed = true
		}
		if !placed {
			return nil, errors.Wrapf(ErrPlacementFailed, "%s after %d attempts", t, maxPlacementAttempts)
		}
	}
	return ships, nil
}

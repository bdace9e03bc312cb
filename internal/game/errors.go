package game

import "github.com/cockroachdb/errors"

var (
	ErrGameOver        = errors.New("game is already completed")
	ErrOutOfBounds     = errors.New("coordinate is outside the board")
	ErrDuplicateShot   = errors.New("position has already been fired at")
	ErrPlacementFailed = errors.New("could not place fleet")
)

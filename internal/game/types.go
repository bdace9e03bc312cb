// internal/game/types.go
//
// Core type definitions for the Battleship game engine.
// Defines:
//   - ShipType / Orientation / Status: closed enums with their wire names.
//   - Game: counters and lifecycle of a single play session.
//   - Ship, Shot, Coord: fleet units, fired coordinates and grid positions.

package game

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// BoardSize is the width and height of the square grid.
const BoardSize = 10

// ShipType identifies one of the five classic fleet units.
type ShipType int

const (
	Destroyer ShipType = iota
	Submarine
	Cruiser
	Battleship
	Carrier
)

// Fleet lists every ship type in placement order.
var Fleet = []ShipType{Destroyer, Submarine, Cruiser, Battleship, Carrier}

var shipNames = [...]string{
	Destroyer:  "destroyer",
	Submarine:  "submarine",
	Cruiser:    "cruiser",
	Battleship: "battleship",
	Carrier:    "carrier",
}

// Size returns the number of cells the ship occupies.
func (t ShipType) Size() int {
	switch t {
	case Destroyer:
		return 2
	case Submarine, Cruiser:
		return 3
	case Battleship:
		return 4
	case Carrier:
		return 5
	}
	return 0
}

func (t ShipType) Valid() bool { return t >= Destroyer && t <= Carrier }

func (t ShipType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("ShipType(%d)", int(t))
	}
	return shipNames[t]
}

func (t ShipType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.Newf("invalid ship type %d", int(t))
	}
	return []byte(shipNames[t]), nil
}

func (t *ShipType) UnmarshalText(b []byte) error {
	v, err := ParseShipType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseShipType maps a lowercase wire name back to its ShipType.
func ParseShipType(s string) (ShipType, error) {
	for i, name := range shipNames {
		if name == s {
			return ShipType(i), nil
		}
	}
	return 0, errors.Newf("unknown ship type %q", s)
}

// Orientation is the direction a ship extends from its anchor.
type Orientation int

const (
	Horizontal Orientation = iota // extends along +x
	Vertical                      // extends along +y
)

// Step returns the per-cell offset for the orientation.
func (o Orientation) Step() (dx, dy int) {
	if o == Vertical {
		return 0, 1
	}
	return 1, 0
}

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return fmt.Sprintf("Orientation(%d)", int(o))
}

func (o Orientation) MarshalText() ([]byte, error) {
	if o != Horizontal && o != Vertical {
		return nil, errors.Newf("invalid orientation %d", int(o))
	}
	return []byte(o.String()), nil
}

func (o *Orientation) UnmarshalText(b []byte) error {
	v, err := ParseOrientation(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// ParseOrientation maps "horizontal"/"vertical" to an Orientation.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "horizontal":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	}
	return 0, errors.Newf("unknown orientation %q", s)
}

// Status is the lifecycle state of a Game.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Game holds the state of a single play session.
// TotalShots == Hits + Misses at all times; Score is only meaningful once Completed.
type Game struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	Status     Status     `json:"status"`
	TotalShots int        `json:"total_shots"`
	Hits       int        `json:"hits"`
	Misses     int        `json:"misses"`
	Score      int        `json:"score"`
}

// Completed reports whether the game has reached its terminal state.
func (g *Game) Completed() bool { return g.Status == StatusCompleted }

// Duration is the wall time between start and end, or zero while in progress.
func (g *Game) Duration() time.Duration {
	if g.EndTime == nil {
		return 0
	}
	return g.EndTime.Sub(g.StartTime)
}

// Coord is a cell on the board.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Ship is one placed fleet unit.
type Ship struct {
	Type        ShipType    `json:"type"`
	X           int         `json:"position_x"`
	Y           int         `json:"position_y"`
	Orientation Orientation `json:"orientation"`
	HitCount    int         `json:"hits"`
	Sunk        bool        `json:"sunk"`
}

// Size is a shortcut for s.Type.Size().
func (s *Ship) Size() int { return s.Type.Size() }

// Anchor returns the ship's starting cell.
func (s *Ship) Anchor() Coord { return Coord{X: s.X, Y: s.Y} }

// Covers reports whether (x, y) lies on the ship: the fixed axis matches and the
// varying axis falls within [anchor, anchor+size).
func (s *Ship) Covers(x, y int) bool {
	if s.Orientation == Horizontal {
		return y == s.Y && x >= s.X && x < s.X+s.Size()
	}
	return x == s.X && y >= s.Y && y < s.Y+s.Size()
}

// Shot is one fired coordinate.
type Shot struct {
	X   int  `json:"position_x"`
	Y   int  `json:"position_y"`
	Hit bool `json:"hit"`
}

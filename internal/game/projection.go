package game

// ShipInfo is what a revealed cell tells about the ship on it.
type ShipInfo struct {
	Type ShipType `json:"type"`
	Sunk bool     `json:"sunk"`
}

// Cell is one square of a projected board.
type Cell struct {
	Shot bool      `json:"shot"`
	Hit  bool      `json:"hit"`
	Ship *ShipInfo `json:"ship"`
}

// Board is a projected grid indexed [y][x].
type Board [BoardSize][BoardSize]Cell

// ProjectBoard renders ships and shots into a fresh Board.
//
// Ship positions are only written when revealShips is set; callers must pass
// true for completed games only. Shots always overwrite the shot/hit flags.
func ProjectBoard(ships []Ship, shots []Shot, revealShips bool) Board {
	var b Board
	if revealShips {
		for i := range ships {
			s := &ships[i]
			cells, err := CellsOf(s.Anchor(), s.Size(), s.Orientation)
			if err != nil {
				continue
			}
			for _, c := range cells {
				b[c.Y][c.X].Ship = &ShipInfo{Type: s.Type, Sunk: s.Sunk}
			}
		}
	}
	for _, sh := range shots {
		if !InBounds(sh.X, sh.Y) {
			continue
		}
		b[sh.Y][sh.X].Shot = true
		b[sh.Y][sh.X].Hit = sh.Hit
	}
	return b
}

package game

// InBounds reports whether (x, y) lies on the board.
func InBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

// CellsOf returns the size cells a ship anchored at a would occupy, in order
// from the anchor outwards. Fails with ErrOutOfBounds if any cell is off the board.
func CellsOf(a Coord, size int, o Orientation) ([]Coord, error) {
	dx, dy := o.Step()
	cells := make([]Coord, 0, size)
	for i := 0; i < size; i++ {
		c := Coord{X: a.X + i*dx, Y: a.Y + i*dy}
		if !InBounds(c.X, c.Y) {
			return nil, ErrOutOfBounds
		}
		cells = append(cells, c)
	}
	return cells, nil
}

// Occupancy marks which cells of the board are taken. Indexed [y][x].
type Occupancy [BoardSize][BoardSize]bool

// Overlaps is true if any of cells is already marked.
func (m *Occupancy) Overlaps(cells []Coord) bool {
	for _, c := range cells {
		if m[c.Y][c.X] {
			return true
		}
	}
	return false
}

// Mark flags every cell as occupied.
func (m *Occupancy) Mark(cells []Coord) {
	for _, c := range cells {
		m[c.Y][c.X] = true
	}
}

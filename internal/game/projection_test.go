package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectBoard_Hidden(t *testing.T) {
	_, ships := newScriptedGame(t)
	ships[0].HitCount, ships[0].Sunk = 2, true
	shots := []Shot{{X: 0, Y: 0, Hit: true}, {X: 1, Y: 0, Hit: true}, {X: 7, Y: 3, Hit: false}}

	b := ProjectBoard(ships, shots, false)
	for y := range b {
		for x := range b[y] {
			assert.Nil(t, b[y][x].Ship, "ship leaked at (%d,%d)", x, y)
		}
	}
	assert.Equal(t, Cell{Shot: true, Hit: true}, b[0][0])
	assert.Equal(t, Cell{Shot: true, Hit: true}, b[0][1])
	assert.Equal(t, Cell{Shot: true, Hit: false}, b[3][7])
	assert.Equal(t, Cell{}, b[2][0])
}

func TestProjectBoard_Revealed(t *testing.T) {
	_, ships := newScriptedGame(t)
	ships[0].HitCount, ships[0].Sunk = 2, true
	ships[4].Orientation = Vertical
	ships[4].X, ships[4].Y = 9, 5
	shots := []Shot{{X: 0, Y: 0, Hit: true}, {X: 9, Y: 9, Hit: true}}

	b := ProjectBoard(ships, shots, true)

	shipCells := 0
	for y := range b {
		for x := range b[y] {
			if b[y][x].Ship != nil {
				shipCells++
			}
		}
	}
	assert.Equal(t, 17, shipCells)

	require.NotNil(t, b[0][1].Ship)
	assert.Equal(t, ShipInfo{Type: Destroyer, Sunk: true}, *b[0][1].Ship)
	assert.False(t, b[0][1].Shot)

	require.NotNil(t, b[0][0].Ship)
	assert.True(t, b[0][0].Shot)
	assert.True(t, b[0][0].Hit)

	for y := 5; y < 10; y++ {
		require.NotNil(t, b[y][9].Ship, "carrier cell (9,%d)", y)
		assert.Equal(t, ShipInfo{Type: Carrier, Sunk: false}, *b[y][9].Ship)
	}
	assert.True(t, b[9][9].Hit)
}

func TestProjectBoard_DoesNotMutateInputs(t *testing.T) {
	_, ships := newScriptedGame(t)
	shots := []Shot{{X: 4, Y: 4, Hit: false}}
	shipsBefore := append([]Ship(nil), ships...)
	shotsBefore := append([]Shot(nil), shots...)

	_ = ProjectBoard(ships, shots, true)
	assert.Equal(t, shipsBefore, ships)
	assert.Equal(t, shotsBefore, shots)
}

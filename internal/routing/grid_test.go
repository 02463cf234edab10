package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/runaround/internal/model"
)

func TestBuildObstacleGridRoomBounds(t *testing.T) {
	g := BuildObstacleGrid(model.Room{Width: 100, Height: 50}, nil, 0, 10)

	assert.Equal(t, 10, g.Width)
	assert.Equal(t, 5, g.Height)

	assert.False(t, g.Blocked(Cell{0, 0}))
	assert.False(t, g.Blocked(Cell{10, 5}), "room corner is inclusive")
	assert.True(t, g.Blocked(Cell{11, 0}))
	assert.True(t, g.Blocked(Cell{-1, 0}))
	assert.True(t, g.Blocked(Cell{0, 6}))
	assert.True(t, g.Blocked(Cell{100, 100}), "outside stored extent")
	assert.True(t, g.Blocked(Cell{-gridPadding - 1, 0}))
}

func TestBuildObstacleGridRoundsWidthUp(t *testing.T) {
	g := BuildObstacleGrid(model.Room{Width: 95, Height: 41}, nil, 0, 10)
	assert.Equal(t, 10, g.Width)
	assert.Equal(t, 5, g.Height)
	assert.True(t, g.Blocked(Cell{10, 0}), "x=100 lies outside a 95 wide room")
}

func TestBuildObstacleGridRectMargin(t *testing.T) {
	rects := []model.Rect{{ID: "a", X: 20, Y: 10, Width: 20, Height: 10}}
	g := BuildObstacleGrid(model.Room{Width: 100, Height: 50}, rects, 5, 10)

	for _, c := range []Cell{{2, 1}, {3, 1}, {4, 1}, {2, 2}, {4, 2}} {
		assert.True(t, g.Blocked(c), "cell %v", c)
	}
	assert.False(t, g.Blocked(Cell{1, 1}))
	assert.False(t, g.Blocked(Cell{2, 0}))
	assert.False(t, g.Blocked(Cell{5, 2}))
	assert.False(t, g.Blocked(Cell{2, 3}))
}

func TestGridUnblock(t *testing.T) {
	rects := []model.Rect{{ID: "a", X: 0, Y: 0, Width: 100, Height: 50}}
	g := BuildObstacleGrid(model.Room{Width: 100, Height: 50}, rects, 0, 10)
	before := g.BlockedCount()

	assert.True(t, g.Blocked(Cell{3, 3}))
	g.Unblock(Cell{3, 3})
	assert.False(t, g.Blocked(Cell{3, 3}))
	assert.Equal(t, before-1, g.BlockedCount())

	g.Unblock(Cell{500, 500}) // ignored
	assert.True(t, g.Blocked(Cell{500, 500}))
}

func TestBuildObstacleGridDeterministic(t *testing.T) {
	room := model.Room{Width: 300, Height: 200}
	rects := []model.Rect{
		{ID: "a", X: 10, Y: 10, Width: 50, Height: 40},
		{ID: "b", X: 150, Y: 90, Width: 60, Height: 80},
	}
	reversed := []model.Rect{rects[1], rects[0]}

	g1 := BuildObstacleGrid(room, rects, 4, 5)
	g2 := BuildObstacleGrid(room, reversed, 4, 5)
	assert.Equal(t, g1.bits, g2.bits)
}

func TestWorldCellConversion(t *testing.T) {
	g := BuildObstacleGrid(model.Room{Width: 100, Height: 100}, nil, 0, 10)
	assert.Equal(t, Cell{3, 5}, g.WorldToCell(model.Point{X: 34, Y: 45}))
	assert.Equal(t, model.Point{X: 30, Y: 50}, g.CellToWorld(Cell{3, 5}))
}

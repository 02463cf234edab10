package routing

import (
	"math"

	"github.com/piwi3910/runaround/internal/model"
)

// gridPadding is the number of cells stored beyond each room edge so the
// search can look a little past the walls. Those cells are always blocked.
const gridPadding = 10

// Cell is an integer grid coordinate. Cell (gx, gy) sits at world
// position (gx*cellSize, gy*cellSize).
type Cell struct {
	X, Y int
}

// Blocker answers whether a grid cell may be entered.
type Blocker interface {
	Blocked(c Cell) bool
}

// Grid is a dense blocked-cell bitmap covering the room plus gridPadding
// cells on every side.
type Grid struct {
	CellSize float64
	Width    int // room width in cells, rounded up
	Height   int // room height in cells, rounded up

	stride int
	rows   int
	bits   []uint64
}

// BuildObstacleGrid rasterizes the room and rectangles at the given cell size.
// A cell is blocked when its world position lies outside the room or inside
// any rectangle grown by marginPx on every side (bounds inclusive).
func BuildObstacleGrid(room model.Room, rects []model.Rect, marginPx, cellSize float64) *Grid {
	w := int(math.Ceil(room.Width / cellSize))
	h := int(math.Ceil(room.Height / cellSize))

	g := &Grid{
		CellSize: cellSize,
		Width:    w,
		Height:   h,
		stride:   w + 2*gridPadding + 1,
		rows:     h + 2*gridPadding + 1,
	}
	g.bits = make([]uint64, (g.stride*g.rows+63)/64)

	for gy := -gridPadding; gy <= h+gridPadding; gy++ {
		for gx := -gridPadding; gx <= w+gridPadding; gx++ {
			p := g.CellToWorld(Cell{gx, gy})
			if !room.Contains(p) || insideAny(rects, p, marginPx) {
				g.set(Cell{gx, gy}, true)
			}
		}
	}
	return g
}

func insideAny(rects []model.Rect, p model.Point, margin float64) bool {
	for _, r := range rects {
		if r.Contains(p, margin) {
			return true
		}
	}
	return false
}

// Blocked reports whether c is blocked. Cells outside the stored extent are
// always blocked.
func (g *Grid) Blocked(c Cell) bool {
	i, ok := g.index(c)
	if !ok {
		return true
	}
	return g.bits[i/64]&(1<<(uint(i)%64)) != 0
}

// Unblock clears a single cell. Cells outside the stored extent are ignored.
func (g *Grid) Unblock(c Cell) {
	g.set(c, false)
}

// BlockedCount returns the number of blocked cells in the stored extent.
func (g *Grid) BlockedCount() int {
	n := 0
	for _, word := range g.bits {
		for ; word != 0; word &= word - 1 {
			n++
		}
	}
	return n
}

// WorldToCell snaps a world point to the nearest grid cell.
func (g *Grid) WorldToCell(p model.Point) Cell {
	return Cell{
		X: int(math.Round(p.X / g.CellSize)),
		Y: int(math.Round(p.Y / g.CellSize)),
	}
}

// CellToWorld returns the world position of a cell.
func (g *Grid) CellToWorld(c Cell) model.Point {
	return model.Point{X: float64(c.X) * g.CellSize, Y: float64(c.Y) * g.CellSize}
}

func (g *Grid) index(c Cell) (int, bool) {
	col := c.X + gridPadding
	row := c.Y + gridPadding
	if col < 0 || col >= g.stride || row < 0 || row >= g.rows {
		return 0, false
	}
	return row*g.stride + col, true
}

func (g *Grid) set(c Cell, blocked bool) {
	i, ok := g.index(c)
	if !ok {
		return
	}
	if blocked {
		g.bits[i/64] |= 1 << (uint(i) % 64)
	} else {
		g.bits[i/64] &^= 1 << (uint(i) % 64)
	}
}

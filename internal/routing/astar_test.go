package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockFunc func(Cell) bool

func (f blockFunc) Blocked(c Cell) bool { return f(c) }

var open = blockFunc(func(Cell) bool { return false })

func bends(path []Cell) int {
	n := 0
	for i := 2; i < len(path); i++ {
		d1 := Cell{path[i-1].X - path[i-2].X, path[i-1].Y - path[i-2].Y}
		d2 := Cell{path[i].X - path[i-1].X, path[i].Y - path[i-1].Y}
		if d1 != d2 {
			n++
		}
	}
	return n
}

func assertConnected(t *testing.T, path []Cell) {
	t.Helper()
	for i := 1; i < len(path); i++ {
		d := abs(path[i].X-path[i-1].X) + abs(path[i].Y-path[i-1].Y)
		assert.Equal(t, 1, d, "step %d: %v -> %v", i, path[i-1], path[i])
	}
}

func TestSearchStraightLine(t *testing.T) {
	path, ok := Search(Cell{1, 2}, Cell{6, 2}, open, 10, 10)
	require.True(t, ok)
	assert.Equal(t, []Cell{{1, 2}, {2, 2}, {3, 2}, {4, 2}, {5, 2}, {6, 2}}, path)
}

func TestSearchStartIsGoal(t *testing.T) {
	path, ok := Search(Cell{3, 3}, Cell{3, 3}, open, 10, 10)
	require.True(t, ok)
	assert.Equal(t, []Cell{{3, 3}}, path)
}

func TestSearchPrefersSingleBend(t *testing.T) {
	path, ok := Search(Cell{0, 0}, Cell{3, 3}, open, 10, 10)
	require.True(t, ok)
	assertConnected(t, path)
	assert.Equal(t, Cell{0, 0}, path[0])
	assert.Equal(t, Cell{3, 3}, path[len(path)-1])
	assert.Len(t, path, 7)
	assert.Equal(t, 1, bends(path))
}

func TestSearchDetoursAroundWall(t *testing.T) {
	// vertical wall at x=5 from y=0..7, open below
	wall := blockFunc(func(c Cell) bool {
		return c.X == 5 && c.Y >= 0 && c.Y <= 7
	})
	path, ok := Search(Cell{2, 2}, Cell{8, 2}, wall, 10, 10)
	require.True(t, ok)
	assertConnected(t, path)
	for _, c := range path {
		assert.False(t, wall.Blocked(c), "path enters wall at %v", c)
	}
	assert.Equal(t, Cell{8, 2}, path[len(path)-1])
}

func TestSearchStaysInsideWindow(t *testing.T) {
	// The wall only has a gap at y >= 8, which lies past the window's
	// lower edge of gridH+5 = 7.
	blocked := blockFunc(func(c Cell) bool {
		return c.X >= 3 && c.X <= 4 && c.Y <= 7
	})
	path, ok := Search(Cell{0, 0}, Cell{8, 0}, blocked, 30, 2)
	assert.False(t, ok)
	assert.Nil(t, path)
}

func TestSearchEnclosedGoalFails(t *testing.T) {
	goal := Cell{5, 5}
	box := blockFunc(func(c Cell) bool {
		return c != goal && abs(c.X-goal.X) <= 1 && abs(c.Y-goal.Y) <= 1
	})
	path, ok := Search(Cell{0, 0}, goal, box, 10, 10)
	assert.False(t, ok)
	assert.Nil(t, path)
}

func TestSearchRespectsIterationCap(t *testing.T) {
	// gridW*gridH*4 = 4 expansions, not enough to walk five cells.
	path, ok := Search(Cell{0, 0}, Cell{5, 0}, open, 1, 1)
	assert.False(t, ok)
	assert.Nil(t, path)
}

func TestSearchStartOutsideWindow(t *testing.T) {
	_, ok := Search(Cell{-20, 0}, Cell{2, 0}, open, 10, 10)
	assert.False(t, ok)
}

func TestSearchDeterministic(t *testing.T) {
	wall := blockFunc(func(c Cell) bool { return c.Y == 4 && c.X > 1 && c.X < 12 })
	first, ok := Search(Cell{6, 0}, Cell{7, 9}, wall, 15, 10)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := Search(Cell{6, 0}, Cell{7, 9}, wall, 15, 10)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestSearchReusesBuffers(t *testing.T) {
	// A full-height wall makes the search exhaust the window on the left.
	wall := blockFunc(func(c Cell) bool { return c.X == 150 })
	run := func() {
		_, ok := Search(Cell{1, 1}, Cell{290, 1}, wall, 300, 300)
		require.False(t, ok)
	}
	run()

	allocs := testing.AllocsPerRun(10, run)
	assert.LessOrEqual(t, allocs, 2.0, "failed searches should reuse the pooled search space")
}

func TestSearchAfterLargerWindow(t *testing.T) {
	wall := blockFunc(func(c Cell) bool { return c.X == 150 })
	_, ok := Search(Cell{1, 1}, Cell{290, 1}, wall, 300, 300)
	require.False(t, ok)

	path, ok := Search(Cell{1, 2}, Cell{6, 2}, open, 10, 10)
	require.True(t, ok)
	assert.Equal(t, []Cell{{1, 2}, {2, 2}, {3, 2}, {4, 2}, {5, 2}, {6, 2}}, path)
}

func TestSearchBytes(t *testing.T) {
	// The largest room at the finest default cell size.
	got := SearchBytes(5000, 2500)
	assert.Equal(t, 5011*2511*searchBytesPerCell, got)
	assert.Less(t, got, 400<<20)
}

func TestOpenQueueOrder(t *testing.T) {
	var q openQueue
	for i, n := range []openNode{
		{idx: 1, g: 5, h: 5},
		{idx: 2, g: 2, h: 6},
		{idx: 3, g: 4, h: 4, seq: 2},
		{idx: 4, g: 4, h: 4, seq: 1},
		{idx: 5, g: 1, h: 1},
	} {
		n.seq += uint32(i) * 10
		q.push(n)
	}
	var order []int32
	for len(q) > 0 {
		order = append(order, q.pop().idx)
	}
	// f ties break on h, then on push order.
	assert.Equal(t, []int32{5, 3, 4, 2, 1}, order)
}

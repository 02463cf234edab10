package routing

import (
	"math"
	"sync"
)

const (
	baseCost    = 1
	turnPenalty = 3

	// searchSlack is how far past the room grid the search may wander.
	searchSlack = 5
)

// Neighbour order matters for determinism: up, right, down, left.
var directions = [4]Cell{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// openNode is an entry in the open set. Entries are never updated in place;
// a better route to a cell pushes a fresh entry and the old one is skipped
// when popped.
type openNode struct {
	idx  int32 // index into the search space
	g, h int32
	seq  uint32
}

func (a openNode) before(b openNode) bool {
	if fa, fb := a.g+a.h, b.g+b.h; fa != fb {
		return fa < fb
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

// openQueue is a binary min-heap of open nodes stored by value.
type openQueue []openNode

func (q *openQueue) push(n openNode) {
	*q = append(*q, n)
	h := *q
	for i := len(h) - 1; i > 0; {
		parent := (i - 1) / 2
		if !h[i].before(h[parent]) {
			break
		}
		h[i], h[parent] = h[parent], h[i]
		i = parent
	}
}

func (q *openQueue) pop() openNode {
	h := *q
	top := h[0]
	last := len(h) - 1
	h[0] = h[last]
	h = h[:last]
	for i := 0; ; {
		least := i
		for _, c := range [2]int{2*i + 1, 2*i + 2} {
			if c < len(h) && h[c].before(h[least]) {
				least = c
			}
		}
		if least == i {
			break
		}
		h[i], h[least] = h[least], h[i]
		i = least
	}
	*q = h
	return top
}

// Per-cell state byte: bit 7 marks a closed cell, the low bits hold the
// arrival direction plus one (0 for none).
const (
	stateClosed uint8 = 1 << 7
	stateDir    uint8 = 0x7
)

// searchBytesPerCell is the bookkeeping cost of one window cell plus one
// open-set entry, which is about what a search that fails over an open
// room ends up holding.
const searchBytesPerCell = 4 + 4 + 1 + 16

// searchSpace holds per-cell bookkeeping for one search over the window
// [-searchSlack, gridW+searchSlack] x [-searchSlack, gridH+searchSlack].
// Spaces are pooled and reset between searches, so the ladder rungs of a
// route and the routes of one worker share their buffers.
type searchSpace struct {
	minX, minY int
	w, h       int
	bestG      []int32
	parent     []int32
	state      []uint8
	open       openQueue
}

var spaces = sync.Pool{New: func() any { return new(searchSpace) }}

// SearchBytes estimates the peak memory Search holds for a gridW x gridH grid.
func SearchBytes(gridW, gridH int) int {
	return (gridW + 2*searchSlack + 1) * (gridH + 2*searchSlack + 1) * searchBytesPerCell
}

func (s *searchSpace) reset(gridW, gridH int) {
	s.minX, s.minY = -searchSlack, -searchSlack
	s.w = gridW + 2*searchSlack + 1
	s.h = gridH + 2*searchSlack + 1
	n := s.w * s.h
	if cap(s.bestG) < n {
		s.bestG = make([]int32, n)
		s.parent = make([]int32, n)
		s.state = make([]uint8, n)
	}
	s.bestG, s.parent, s.state = s.bestG[:n], s.parent[:n], s.state[:n]
	for i := range s.bestG {
		s.bestG[i] = math.MaxInt32
		s.parent[i] = -1
	}
	clear(s.state)
	s.open = s.open[:0]
}

func (s *searchSpace) index(c Cell) (int, bool) {
	x := c.X - s.minX
	y := c.Y - s.minY
	if x < 0 || x >= s.w || y < 0 || y >= s.h {
		return 0, false
	}
	return y*s.w + x, true
}

func (s *searchSpace) cell(i int) Cell {
	return Cell{X: i%s.w + s.minX, Y: i/s.w + s.minY}
}

// Search finds a turn-penalised 4-connected path from start to goal.
//
// Each step costs 1 plus 3 more when it changes direction. The heuristic is
// plain Manhattan distance and ignores turns, so the result favours few bends
// without being strictly cost-optimal. Expansion is capped at 4*gridW*gridH
// pops. On failure Search returns nil and false, never a partial path.
func Search(start, goal Cell, blocked Blocker, gridW, gridH int) ([]Cell, bool) {
	space := spaces.Get().(*searchSpace)
	defer spaces.Put(space)
	space.reset(gridW, gridH)

	startIdx, ok := space.index(start)
	if !ok {
		return nil, false
	}

	heuristic := func(c Cell) int32 {
		return int32(abs(c.X-goal.X) + abs(c.Y-goal.Y))
	}

	var seq uint32
	space.bestG[startIdx] = 0
	space.open.push(openNode{idx: int32(startIdx), h: heuristic(start)})

	maxIterations := 4 * gridW * gridH
	for iterations := 0; len(space.open) > 0 && iterations < maxIterations; {
		current := space.open.pop()
		curIdx := int(current.idx)
		if space.state[curIdx]&stateClosed != 0 || current.g > space.bestG[curIdx] {
			continue // superseded entry
		}
		iterations++

		at := space.cell(curIdx)
		if at == goal {
			return space.reconstruct(curIdx), true
		}
		arrival := space.state[curIdx] & stateDir
		space.state[curIdx] |= stateClosed

		for d, step := range directions {
			next := Cell{X: at.X + step.X, Y: at.Y + step.Y}
			nextIdx, inWindow := space.index(next)
			if !inWindow || space.state[nextIdx]&stateClosed != 0 || blocked.Blocked(next) {
				continue
			}

			cost := int32(baseCost)
			if arrival != 0 && arrival != uint8(d+1) {
				cost += turnPenalty
			}
			g := current.g + cost
			if g >= space.bestG[nextIdx] {
				continue
			}

			space.bestG[nextIdx] = g
			space.parent[nextIdx] = current.idx
			space.state[nextIdx] = uint8(d + 1)
			seq++
			space.open.push(openNode{idx: int32(nextIdx), g: g, h: heuristic(next), seq: seq})
		}
	}

	return nil, false
}

func (s *searchSpace) reconstruct(goalIdx int) []Cell {
	var rev []Cell
	for i := goalIdx; i >= 0; i = int(s.parent[i]) {
		rev = append(rev, s.cell(i))
	}
	path := make([]Cell, len(rev))
	for i, c := range rev {
		path[len(rev)-1-i] = c
	}
	return path
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package routing

import (
	"math"
	"sort"

	"github.com/piwi3910/runaround/internal/model"
)

// collinearEpsilon is how far apart two parallel segments may be and still
// count as lying on the same line.
const collinearEpsilon = 0.5

// Segment is one leg of a polyline.
type Segment struct {
	Index      int
	A, B       model.Point
	Horizontal bool
}

// Degenerate reports whether the segment has zero length.
func (s Segment) Degenerate() bool { return s.A == s.B }

// fixed returns the coordinate shared by both endpoints.
func (s Segment) fixed() float64 {
	if s.Horizontal {
		return s.A.Y
	}
	return s.A.X
}

// span returns the range the segment covers along its axis.
func (s Segment) span() (lo, hi float64) {
	if s.Horizontal {
		return math.Min(s.A.X, s.B.X), math.Max(s.A.X, s.B.X)
	}
	return math.Min(s.A.Y, s.B.Y), math.Max(s.A.Y, s.B.Y)
}

// CollinearOverlap reports whether s and o share a stretch of the same line.
// Ranges must overlap by more than a point.
func (s Segment) CollinearOverlap(o Segment) bool {
	if s.Horizontal != o.Horizontal || s.Degenerate() || o.Degenerate() {
		return false
	}
	if math.Abs(s.fixed()-o.fixed()) > collinearEpsilon {
		return false
	}
	lo1, hi1 := s.span()
	lo2, hi2 := o.span()
	return hi1 > lo2 && hi2 > lo1
}

// Segments splits a flat x,y polyline into segments. A segment counts as
// horizontal when its endpoints share a y coordinate.
func Segments(points []float64) []Segment {
	pts := model.FlatToPoints(points)
	if len(pts) < 2 {
		return nil
	}
	segs := make([]Segment, 0, len(pts)-1)
	for i := 0; i+1 < len(pts); i++ {
		segs = append(segs, Segment{
			Index:      i,
			A:          pts[i],
			B:          pts[i+1],
			Horizontal: pts[i].Y == pts[i+1].Y,
		})
	}
	return segs
}

// SegmentOffset is the lateral shift applied to one segment at render time.
// Horizontal segments move along +y, vertical segments along +x.
type SegmentOffset struct {
	Index      int
	Offset     float64
	Horizontal bool
	Rank       int // distinct earlier paths sharing this stretch
}

func usable(points []float64) bool {
	return len(points) >= 4 && len(points)%2 == 0
}

// earlierPaths returns the usable paths drawn before target, in draw order.
// Repeated IDs in drawOrder count once. ok is false when target is not in
// drawOrder.
func earlierPaths(target string, paths map[string][]float64, drawOrder []string) (ids []string, ok bool) {
	seen := make(map[string]bool, len(drawOrder))
	for _, id := range drawOrder {
		if id == target {
			return ids, true
		}
		if seen[id] || !usable(paths[id]) {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return nil, false
}

// ResolveOffsets computes lane offsets for the target path's segments.
//
// A segment's rank is the number of distinct paths drawn earlier that have a
// collinear overlapping segment; its offset is rank * spacing. A target that
// is missing from drawOrder gets rank 0 everywhere. A target with no usable
// polyline yields nil.
func ResolveOffsets(target string, paths map[string][]float64, drawOrder []string, spacing float64) []SegmentOffset {
	points := paths[target]
	if !usable(points) {
		return nil
	}
	segs := Segments(points)
	earlier, _ := earlierPaths(target, paths, drawOrder)

	earlierSegs := make([][]Segment, len(earlier))
	for i, id := range earlier {
		earlierSegs[i] = Segments(paths[id])
	}

	out := make([]SegmentOffset, len(segs))
	for i, seg := range segs {
		rank := 0
		for _, other := range earlierSegs {
			if anyOverlap(seg, other) {
				rank++
			}
		}
		out[i] = SegmentOffset{
			Index:      seg.Index,
			Offset:     float64(rank) * spacing,
			Horizontal: seg.Horizontal,
			Rank:       rank,
		}
	}
	return out
}

func anyOverlap(seg Segment, others []Segment) bool {
	for _, o := range others {
		if seg.CollinearOverlap(o) {
			return true
		}
	}
	return false
}

// ResolveAll computes offsets for every usable path named in drawOrder.
func ResolveAll(paths map[string][]float64, drawOrder []string, spacing float64) map[string][]SegmentOffset {
	out := make(map[string][]SegmentOffset, len(drawOrder))
	for _, id := range drawOrder {
		if _, done := out[id]; done {
			continue
		}
		if offs := ResolveOffsets(id, paths, drawOrder, spacing); offs != nil {
			out[id] = offs
		}
	}
	return out
}

// ApplyOffsets returns the render-time polyline: every vertex moves by the
// offsets of its adjacent segments, so shifted segments stay axis-aligned.
// The stored points are not modified.
func ApplyOffsets(points []float64, offsets []SegmentOffset) []float64 {
	pts := model.FlatToPoints(points)
	if len(pts) < 2 || len(offsets) == 0 {
		return append([]float64(nil), points...)
	}
	byIndex := make(map[int]SegmentOffset, len(offsets))
	for _, o := range offsets {
		byIndex[o.Index] = o
	}

	shifted := make([]model.Point, len(pts))
	for i, p := range pts {
		var dx, dy float64
		var haveX, haveY bool
		// incoming segment first, then outgoing
		for _, si := range [2]int{i - 1, i} {
			o, ok := byIndex[si]
			if !ok || si < 0 || si >= len(pts)-1 {
				continue
			}
			if o.Horizontal && !haveY {
				dy, haveY = o.Offset, true
			} else if !o.Horizontal && !haveX {
				dx, haveX = o.Offset, true
			}
		}
		shifted[i] = model.Point{X: p.X + dx, Y: p.Y + dy}
	}
	return model.PointsToFlat(orthogonalize(shifted))
}

// SegmentThicknesses returns a stroke width per segment of the target path:
// base times one plus the number of segments from other paths that overlap it.
// It is an alternative to lane offsets for renderers that prefer to draw
// shared stretches once, thicker.
func SegmentThicknesses(target string, paths map[string][]float64, base float64) []float64 {
	segs := Segments(paths[target])
	var others []Segment
	for id, pts := range paths {
		if id == target || !usable(pts) {
			continue
		}
		others = append(others, Segments(pts)...)
	}

	out := make([]float64, len(segs))
	for i, seg := range segs {
		count := 1
		for _, o := range others {
			if seg.CollinearOverlap(o) {
				count++
			}
		}
		out[i] = float64(count) * base
	}
	return out
}

// OverlapRegion is a stretch of line shared by several paths.
type OverlapRegion struct {
	Horizontal bool
	Coord      float64 // y for horizontal regions, x for vertical ones
	From, To   float64
	PathIDs    []string // in draw order
}

// OverlapRegions lists pairwise shared stretches between paths in draw order.
// Each pair of overlapping segments yields one region covering their
// intersection; regions with the same extent are merged.
func OverlapRegions(paths map[string][]float64, drawOrder []string) []OverlapRegion {
	type tagged struct {
		id  string
		seg Segment
	}
	var all []tagged
	pos := make(map[string]int)
	for _, id := range drawOrder {
		if _, dup := pos[id]; dup || !usable(paths[id]) {
			continue
		}
		pos[id] = len(pos)
		for _, s := range Segments(paths[id]) {
			all = append(all, tagged{id: id, seg: s})
		}
	}

	var regions []OverlapRegion
	index := make(map[regionKey]int)
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			if a.id == b.id || !a.seg.CollinearOverlap(b.seg) {
				continue
			}
			lo1, hi1 := a.seg.span()
			lo2, hi2 := b.seg.span()
			key := regionKey{
				Horizontal: a.seg.Horizontal,
				Coord:      a.seg.fixed(),
				From:       math.Max(lo1, lo2),
				To:         math.Min(hi1, hi2),
			}
			k, ok := index[key]
			if !ok {
				k = len(regions)
				index[key] = k
				regions = append(regions, OverlapRegion{
					Horizontal: key.Horizontal,
					Coord:      key.Coord,
					From:       key.From,
					To:         key.To,
				})
			}
			regions[k].PathIDs = addUnique(regions[k].PathIDs, a.id, b.id)
		}
	}
	for _, r := range regions {
		ids := r.PathIDs
		sort.SliceStable(ids, func(i, j int) bool { return pos[ids[i]] < pos[ids[j]] })
	}
	return regions
}

type regionKey struct {
	Horizontal bool
	Coord      float64
	From, To   float64
}

func addUnique(ids []string, add ...string) []string {
	for _, a := range add {
		found := false
		for _, id := range ids {
			if id == a {
				found = true
				break
			}
		}
		if !found {
			ids = append(ids, a)
		}
	}
	return ids
}

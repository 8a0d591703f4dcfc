package framing

import (
	"math"
	"sort"

	"Deckframe/internal/calc/geometry"
)

// mergeBeams joins beams of the same size, ply and type that lie on one
// line and touch or overlap. Posts and footings of a merged beam are laid
// out again from scratch.
func (b *build) mergeBeams() error {
	for {
		i, j, ok := b.mergeable()
		if !ok {
			return nil
		}
		b.log.Debug("merging colinear beams", "usage", b.beams[i].Beam.Usage, "with", b.beams[j].Beam.Usage)
		b.beams[i] = b.merge(b.beams[i], b.beams[j])
		b.beams = append(b.beams[:j], b.beams[j+1:]...)
	}
}

func (b *build) mergeable() (int, int, bool) {
	for i := range b.beams {
		for j := i + 1; j < len(b.beams); j++ {
			if colinear(b.beams[i].Beam, b.beams[j].Beam) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func colinear(a, c Beam) bool {
	if a.Size != c.Size || a.Ply != c.Ply || a.IsFlush != c.IsFlush {
		return false
	}
	if geometry.Distance(a.P1, a.P2) <= geometry.Epsilon || geometry.Distance(c.P1, c.P2) <= geometry.Epsilon {
		return false
	}
	u := geometry.UnitVector(a.P1, a.P2)
	if math.Abs(u.Cross(c.P1.Sub(a.P1))) > geometry.Epsilon || math.Abs(u.Cross(c.P2.Sub(a.P1))) > geometry.Epsilon {
		return false
	}
	a1 := u.Dot(a.P2.Sub(a.P1))
	c0, c1 := u.Dot(c.P1.Sub(a.P1)), u.Dot(c.P2.Sub(a.P1))
	if c0 > c1 {
		c0, c1 = c1, c0
	}
	return c0 <= a1+geometry.Epsilon && c1 >= -geometry.Epsilon
}

func (b *build) merge(x, y beamLayout) beamLayout {
	origin := x.Beam.CenterlineP1
	u := geometry.UnitVector(origin, x.Beam.CenterlineP2)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range []geometry.Point{x.Beam.CenterlineP1, x.Beam.CenterlineP2, y.Beam.CenterlineP1, y.Beam.CenterlineP2} {
		t := u.Dot(p.Sub(origin))
		lo, hi = math.Min(lo, t), math.Max(hi, t)
	}
	x.joistSpanFeet = math.Max(x.joistSpanFeet, y.joistSpanFeet)
	return b.relayout(x, origin.Add(u.Scale(lo)), origin.Add(u.Scale(hi)))
}

// sortLocal orders every output along the ledger, then away from it.
func (b *build) sortLocal() {
	sortMembers := func(ms []Member) {
		sort.SliceStable(ms, func(i, j int) bool { return segLess(ms[i].P1, ms[i].P2, ms[j].P1, ms[j].P2) })
	}
	sortJoists := func(js []Joist) {
		sort.SliceStable(js, func(i, j int) bool { return segLess(js[i].P1, js[i].P2, js[j].P1, js[j].P2) })
	}
	sortMembers(b.diagonalLedgers)
	sortMembers(b.midSpanBlocking)
	sortMembers(b.frameBlocking)
	sortJoists(b.joists)
	sortJoists(b.rims)
	sort.SliceStable(b.beams, func(i, j int) bool {
		bi, bj := b.beams[i].Beam, b.beams[j].Beam
		return segLess(bi.CenterlineP1, bi.CenterlineP2, bj.CenterlineP1, bj.CenterlineP2)
	})
}

func segLess(a1, a2, b1, b2 geometry.Point) bool {
	ax, bx := math.Min(a1.X, a2.X), math.Min(b1.X, b2.X)
	if math.Abs(ax-bx) > geometry.Epsilon {
		return ax < bx
	}
	return math.Min(a1.Y, a2.Y) < math.Min(b1.Y, b2.Y)
}

func pointLess(p, q geometry.Point) bool {
	if math.Abs(p.X-q.X) > geometry.Epsilon {
		return p.X < q.X
	}
	return p.Y < q.Y
}

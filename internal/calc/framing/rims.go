package framing

import (
	"math"
	"sort"

	"Deckframe/internal/calc/geometry"
)

// generateRims lays the end joists along both sides of the envelope, the
// outer rim along its far edge and, for decks not hung from the house, a
// wall rim along the primary edge.
func (b *build) generateRims() error {
	ledgers := b.diagonalEdges(true)
	for _, x := range []float64{b.env.MinX, b.env.MaxX} {
		for _, j := range b.pieces(x, UsageEndJoist) {
			b.extendToDiagonalLedger(&j, ledgers)
			b.rims = append(b.rims, j)
		}
	}
	b.rims = append(b.rims, Joist{
		P1:    geometry.Point{X: b.env.MinX, Y: b.outerY},
		P2:    geometry.Point{X: b.env.MaxX, Y: b.outerY},
		Size:  b.joistSize,
		Usage: UsageOuterRim,
	})
	if b.in.AttachmentType != AttachHouseRim {
		b.rims = append(b.rims, Joist{
			P1:    geometry.Point{X: b.env.MinX, Y: b.wallY},
			P2:    geometry.Point{X: b.env.MaxX, Y: b.wallY},
			Size:  b.joistSize,
			Usage: UsageWallRim,
		})
	}
	return nil
}

// trimToDiagonals cuts the axis-aligned rims and beams back to every
// diagonal rim, clips the rims to the footprint, adds the diagonal rims
// themselves and closes any footprint edge still left open.
func (b *build) trimToDiagonals() error {
	diagonals := b.diagonalEdges(false)

	kept := b.rims[:0]
	for _, r := range b.rims {
		for _, e := range diagonals {
			if b.trimAcross(&r.P1, &r.P2, e) {
				r.TrimmedAtDiagonal = true
				r.CutAngle = miter(r.P1, r.P2, e)
			}
		}
		if !b.clipToBoundary(&r) {
			continue
		}
		kept = append(kept, r)
	}
	b.rims = kept

	for i, bl := range b.beams {
		if bl.Beam.IsDiagonal || len(bl.Posts) == 0 {
			continue
		}
		p1, p2 := bl.Beam.CenterlineP1, bl.Beam.CenterlineP2
		trimmed := false
		for _, e := range diagonals {
			if b.trimAcross(&p1, &p2, e) {
				trimmed = true
			}
		}
		if trimmed {
			b.log.Debug("beam trimmed at diagonal", "usage", bl.Beam.Usage)
			b.beams[i] = b.relayout(bl, p1, p2)
		}
	}

	joistRun := geometry.Point{Y: 1}
	for _, e := range diagonals {
		b.rims = append(b.rims, Joist{
			P1:       e.P1,
			P2:       e.P2,
			Size:     b.joistSize,
			Usage:    UsageDiagonalRim,
			CutAngle: miter(geometry.Point{}, joistRun, e),
		})
	}
	b.addJogRims()
	return nil
}

// addJogRims closes the non-ledger axis-aligned edges that no rim covers,
// such as the sides of a notch.
func (b *build) addJogRims() {
	var jogs []Joist
	for _, e := range b.shape.Edges {
		if !e.Kind.AxisAligned() || b.ledgers[e.Index] {
			continue
		}
		for _, s := range uncovered(e, b.rims) {
			s = orient(s)
			jogs = append(jogs, Joist{P1: s.P1, P2: s.P2, Size: b.joistSize, Usage: UsageJogRim})
		}
	}
	b.rims = append(b.rims, jogs...)
}

// uncovered returns the parts of e that no collinear rim lies on.
func uncovered(e geometry.Edge, rims []Joist) []geometry.Segment {
	length := e.Length()
	if length <= geometry.Epsilon {
		return nil
	}
	u := geometry.UnitVector(e.P1, e.P2)
	var covered [][2]float64
	for _, r := range rims {
		if math.Abs(u.Cross(r.P1.Sub(e.P1))) > geometry.Epsilon || math.Abs(u.Cross(r.P2.Sub(e.P1))) > geometry.Epsilon {
			continue
		}
		t1, t2 := u.Dot(r.P1.Sub(e.P1)), u.Dot(r.P2.Sub(e.P1))
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		t1, t2 = math.Max(t1, 0), math.Min(t2, length)
		if t2-t1 > geometry.Epsilon {
			covered = append(covered, [2]float64{t1, t2})
		}
	}
	sort.Slice(covered, func(i, j int) bool { return covered[i][0] < covered[j][0] })

	var gaps []geometry.Segment
	at := 0.0
	for _, c := range covered {
		if c[0]-at > geometry.Epsilon {
			gaps = append(gaps, geometry.Segment{P1: e.P1.Add(u.Scale(at)), P2: e.P1.Add(u.Scale(c[0]))})
		}
		at = math.Max(at, c[1])
	}
	if length-at > geometry.Epsilon {
		gaps = append(gaps, geometry.Segment{P1: e.P1.Add(u.Scale(at)), P2: e.P2})
	}
	return gaps
}

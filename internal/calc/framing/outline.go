package framing

import (
	"Deckframe/internal/calc/geometry"
)

// offsetEdge is a footprint edge that needs a beam behind it, moved
// inward by the joist cantilever.
type offsetEdge struct {
	edge geometry.Edge
	a, b geometry.Point
	kept bool
}

// outlineSegments derives the outer beam line from the footprint.
//
// Every edge that is not a ledger and not parallel to the joists is
// offset inward by the cantilever. Neighbouring offset edges meet where
// their lines cross; an offset edge whose neighbour was dropped runs on
// until it meets that neighbour's original line. The walk starts just
// after the primary ledger, so the result does not depend on where the
// caller started the point list.
//
// This is not general polygon offsetting: on footprints with deep
// notches an extended line can reach the wrong edge.
func (b *build) outlineSegments() []geometry.Segment {
	n := b.shape.NumEdges
	walk := make([]offsetEdge, 0, n-1)
	for k := 1; k < n; k++ {
		e := b.shape.Edge(b.primary.Index + k)
		oe := offsetEdge{edge: e}
		if e.Kind != geometry.Degenerate && e.Kind != geometry.Vertical && !b.ledgers[e.Index] {
			shift := b.shape.InwardNormal(e).Scale(b.cantilever)
			oe.a, oe.b = e.P1.Add(shift), e.P2.Add(shift)
			oe.kept = true
		}
		walk = append(walk, oe)
	}

	var segs []geometry.Segment
	for i, oe := range walk {
		if !oe.kept {
			continue
		}
		var start, end geometry.Point
		if i > 0 && walk[i-1].kept {
			start = meet(oe, walk[i-1].a, walk[i-1].b, oe.a)
		} else {
			prev := b.shape.Edge(oe.edge.Index - 1)
			start = meet(oe, prev.P1, prev.P2, oe.a)
		}
		if i+1 < len(walk) && walk[i+1].kept {
			end = meet(oe, walk[i+1].a, walk[i+1].b, oe.b)
		} else {
			next := b.shape.Edge(oe.edge.Index + 1)
			end = meet(oe, next.P1, next.P2, oe.b)
		}

		// An edge shorter than the offsets it meets folds over itself.
		if end.Sub(start).Dot(oe.b.Sub(oe.a)) <= geometry.Epsilon {
			continue
		}
		segs = append(segs, orient(geometry.Segment{P1: start, P2: end}))
	}
	return segs
}

// meet extends oe's offset line to the line p1-p2, keeping fallback when
// the two are parallel.
func meet(oe offsetEdge, p1, p2, fallback geometry.Point) geometry.Point {
	if p, ok := geometry.LineIntersection(oe.a, oe.b, p1, p2); ok {
		return p
	}
	return fallback
}

// orient puts P1 at the smaller x, or the smaller y on a vertical line.
func orient(s geometry.Segment) geometry.Segment {
	dx := s.P2.X - s.P1.X
	if dx < -geometry.Epsilon || (dx <= geometry.Epsilon && s.P2.Y < s.P1.Y) {
		s.P1, s.P2 = s.P2, s.P1
	}
	return s
}

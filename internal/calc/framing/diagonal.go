package framing

import (
	"math"

	"Deckframe/internal/calc/geometry"
)

func slanted(e geometry.Edge) bool {
	return e.Kind == geometry.Diagonal || e.Kind == geometry.Irregular
}

// diagonalEdges returns the slanted edges that are ledgers (ledger=true)
// or rims (ledger=false).
func (b *build) diagonalEdges(ledger bool) []geometry.Edge {
	var out []geometry.Edge
	for _, e := range b.shape.Edges {
		if slanted(e) && b.ledgers[e.Index] == ledger {
			out = append(out, e)
		}
	}
	return out
}

// outerDiagonals returns the diagonal rims that face away from the house.
// Joists end on these.
func (b *build) outerDiagonals() []geometry.Edge {
	var out []geometry.Edge
	for _, e := range b.diagonalEdges(false) {
		if b.shape.InwardNormal(e).Y < -geometry.Epsilon {
			out = append(out, e)
		}
	}
	return out
}

// miter is the saw angle, in degrees off square, where a board running
// from a1 to a2 meets edge e.
func miter(a1, a2 geometry.Point, e geometry.Edge) float64 {
	u := geometry.UnitVector(a1, a2)
	v := geometry.UnitVector(e.P1, e.P2)
	between := math.Acos(math.Min(1, math.Abs(u.Dot(v)))) * 180 / math.Pi
	return math.Round((90-between)*100) / 100
}

// fitJoists runs the joists out to diagonal ledgers, cuts them at the
// first outer diagonal and clips what is left to the footprint. Boards
// that end up outside the deck are dropped.
func (b *build) fitJoists() error {
	ledgers := b.diagonalEdges(true)
	outer := b.outerDiagonals()
	kept := b.joists[:0]
	for _, j := range b.joists {
		b.extendToDiagonalLedger(&j, ledgers)
		if !b.trimToOuterDiagonal(&j, outer) {
			continue
		}
		if !b.clipToBoundary(&j) {
			continue
		}
		kept = append(kept, j)
	}
	b.joists = kept
	return nil
}

// extendToDiagonalLedger moves the wall-side end of j onto a diagonal
// ledger when that brings it closer to the house. Only P1 changes.
func (b *build) extendToDiagonalLedger(j *Joist, ledgers []geometry.Edge) {
	if math.Abs(j.P1.Y-b.wallY) > geometry.Epsilon {
		return
	}
	var (
		best  geometry.Point
		angle float64
		found bool
	)
	for _, e := range ledgers {
		lo, hi := math.Min(e.P1.X, e.P2.X), math.Max(e.P1.X, e.P2.X)
		if j.P1.X < lo-geometry.Epsilon || j.P1.X > hi+geometry.Epsilon {
			continue
		}
		q, ok := geometry.LineIntersection(j.P1, j.P2, e.P1, e.P2)
		if !ok || q.Y >= j.P1.Y-geometry.Epsilon {
			continue
		}
		if !found || q.Y > best.Y {
			best, angle, found = q, miter(j.P1, j.P2, e), true
		}
	}
	if found {
		j.P1 = best
		j.CutAngle = angle
		j.TrimmedAtDiagonal = true
	}
}

// diagonalCut returns where the joist line at x first meets an outer
// diagonal, walking away from the house.
func (b *build) diagonalCut(x float64, outer []geometry.Edge) (float64, geometry.Edge, bool) {
	far := math.Max(b.env.MaxY, b.shape.Bounds().MaxY) + 1
	top := geometry.Point{X: x, Y: b.wallY}
	bottom := geometry.Point{X: x, Y: far}
	var (
		cut   float64
		edge  geometry.Edge
		found bool
	)
	for _, e := range outer {
		q, ok := geometry.SegmentIntersection(top, bottom, e.P1, e.P2)
		if !ok || q.Y <= b.wallY+geometry.Epsilon {
			continue
		}
		if !found || q.Y < cut {
			cut, edge, found = q.Y, e, true
		}
	}
	return cut, edge, found
}

// trimToOuterDiagonal cuts or extends P2 to the first outer diagonal on
// the joist's line. It reports false when the board lies entirely beyond
// the diagonal.
func (b *build) trimToOuterDiagonal(j *Joist, outer []geometry.Edge) bool {
	cut, e, ok := b.diagonalCut(j.P1.X, outer)
	if !ok {
		return true
	}
	switch {
	case j.P1.Y >= cut-geometry.Epsilon:
		return false
	case j.P2.Y > cut+geometry.Epsilon:
	case j.P2.Y < cut-geometry.Epsilon && math.Abs(j.P2.Y-b.outerY) <= geometry.Epsilon:
	default:
		return true
	}
	j.P2 = geometry.Point{X: j.P2.X, Y: cut}
	j.CutAngle = miter(j.P1, j.P2, e)
	j.TrimmedAtDiagonal = true
	return true
}

// clipToBoundary keeps j inside the footprint. Both ends inside leaves it
// alone; an end outside moves to the nearest boundary crossing; a board
// with both ends outside keeps the stretch between its first and last
// crossings or is dropped when it never enters.
func (b *build) clipToBoundary(j *Joist) bool {
	in1, in2 := b.shape.Contains(j.P1), b.shape.Contains(j.P2)
	if in1 && in2 {
		return true
	}
	xs := geometry.Crossings(j.P1, j.P2, b.shape.Edges)
	switch {
	case !in1 && !in2:
		if len(xs) < 2 {
			return false
		}
		j.P1, j.P2 = xs[0], xs[len(xs)-1]
	case !in1:
		if len(xs) == 0 {
			return false
		}
		j.P1 = xs[0]
	default:
		if len(xs) == 0 {
			return false
		}
		j.P2 = xs[len(xs)-1]
	}
	j.Clipped = true
	return geometry.Distance(j.P1, j.P2) > geometry.Epsilon
}

// trimAcross trims the segment p1-p2 where it straddles the line through
// e, moving whichever end lies on the far side of the line from the deck
// centre. Crossings outside the envelope are ignored.
func (b *build) trimAcross(p1, p2 *geometry.Point, e geometry.Edge) bool {
	q, ok := geometry.LineIntersection(*p1, *p2, e.P1, e.P2)
	if !ok || !b.env.Contains(q) {
		return false
	}
	if !geometry.PointOnSegment(q, *p1, *p2) || q.Equal(*p1) || q.Equal(*p2) {
		return false
	}
	d := e.P2.Sub(e.P1)
	side := func(p geometry.Point) float64 {
		s := d.Cross(p.Sub(e.P1))
		if math.Abs(s) <= geometry.Epsilon*d.Len() {
			return 0
		}
		return math.Copysign(1, s)
	}
	inside := side(b.center)
	if inside == 0 {
		return false
	}
	switch {
	case side(*p1) == -inside:
		*p1 = q
	case side(*p2) == -inside:
		*p2 = q
	default:
		return false
	}
	return true
}

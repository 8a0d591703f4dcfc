package framing

import (
	"math"

	"Deckframe/internal/calc/geometry"
)

// frame maps world coordinates to a local frame where the primary ledger
// runs along x and the deck lies on +y. Only quarter turns are used, so
// the mapping is exact.
type frame struct {
	turns int
}

// newFrame picks the quarter turn that sends the ledger's inward normal
// to +y.
func newFrame(inward geometry.Point) frame {
	switch {
	case math.Abs(inward.X) > math.Abs(inward.Y) && inward.X > 0:
		return frame{turns: 1}
	case math.Abs(inward.X) > math.Abs(inward.Y):
		return frame{turns: 3}
	case inward.Y < 0:
		return frame{turns: 2}
	}
	return frame{}
}

func rotate(p geometry.Point, turns int) geometry.Point {
	switch ((turns % 4) + 4) % 4 {
	case 1:
		return geometry.Point{X: -p.Y, Y: p.X}
	case 2:
		return geometry.Point{X: -p.X, Y: -p.Y}
	case 3:
		return geometry.Point{X: p.Y, Y: -p.X}
	}
	return p
}

func (f frame) toLocal(p geometry.Point) geometry.Point { return rotate(p, f.turns) }
func (f frame) toWorld(p geometry.Point) geometry.Point { return rotate(p, 4-f.turns) }

func (f frame) localPoints(pts []geometry.Point) []geometry.Point {
	out := make([]geometry.Point, len(pts))
	for i, p := range pts {
		out[i] = f.toLocal(p)
	}
	return out
}

func (f frame) localBounds(b geometry.Bounds) geometry.Bounds {
	return geometry.BoundsOf([]geometry.Point{
		f.toLocal(geometry.Point{X: b.MinX, Y: b.MinY}),
		f.toLocal(geometry.Point{X: b.MaxX, Y: b.MaxY}),
	})
}

func (f frame) member(m Member) Member {
	m.P1, m.P2 = f.toWorld(m.P1), f.toWorld(m.P2)
	return m
}

func (f frame) joist(j Joist) Joist {
	j.P1, j.P2 = f.toWorld(j.P1), f.toWorld(j.P2)
	return j
}

func (f frame) beam(b Beam) Beam {
	b.P1, b.P2 = f.toWorld(b.P1), f.toWorld(b.P2)
	b.CenterlineP1, b.CenterlineP2 = f.toWorld(b.CenterlineP1), f.toWorld(b.CenterlineP2)
	b.PositionCoordinateLineP1 = f.toWorld(b.PositionCoordinateLineP1)
	b.PositionCoordinateLineP2 = f.toWorld(b.PositionCoordinateLineP2)
	return b
}

func (f frame) post(p Post) Post {
	w := f.toWorld(geometry.Point{X: p.X, Y: p.Y})
	p.X, p.Y = w.X, w.Y
	return p
}

func (f frame) footing(ft Footing) Footing {
	w := f.toWorld(geometry.Point{X: ft.X, Y: ft.Y})
	ft.X, ft.Y = w.X, w.Y
	return ft
}

// Package geometry holds the planar helpers used by the framing engine.
//
// Coordinates are drawing pixels (PixelsPerFoot per foot) with y growing
// down the page. Every equality and collinearity test goes through Epsilon.
package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const (
	PixelsPerFoot = 24.0
	Epsilon       = 1e-3

	// diagonalTolerance is relative: |dx| and |dy| may differ by 1% and the
	// edge still counts as a 45° edge.
	diagonalTolerance = 0.01
)

// Feet converts a pixel length to feet.
func Feet(px float64) float64 { return px / PixelsPerFoot }

// Pixels converts feet to pixels.
func Pixels(ft float64) float64 { return ft * PixelsPerFoot }

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }
func (p Point) Equal(q Point) bool { return almost(p.X, q.X) && almost(p.Y, q.Y) }
func (p Point) Lerp(q Point, t float64) Point { return p.Add(q.Sub(p).Scale(t)) }

func almost(a, b float64) bool { return math.Abs(a-b) <= Epsilon }

// Distance is the euclidean distance between a and b.
func Distance(a, b Point) float64 { return b.Sub(a).Len() }

// UnitVector returns the unit direction from a to b, or the zero vector
// when the points coincide.
func UnitVector(a, b Point) Point {
	d := b.Sub(a)
	l := d.Len()
	if l <= Epsilon {
		return Point{}
	}
	return d.Scale(1 / l)
}

// Perpendicular rotates v by 90° counter-clockwise in a y-up frame.
func Perpendicular(v Point) Point { return Point{-v.Y, v.X} }

// Segment is a bounded piece of a line.
type Segment struct {
	P1 Point `json:"p1"`
	P2 Point `json:"p2"`
}

func (s Segment) Vector() Point { return s.P2.Sub(s.P1) }
func (s Segment) Length() float64 { return Distance(s.P1, s.P2) }
func (s Segment) Midpoint() Point { return s.P1.Lerp(s.P2, 0.5) }

// EdgeKind classifies an edge relative to the drawing axes.
type EdgeKind int

const (
	Degenerate EdgeKind = iota
	Horizontal
	Vertical
	Diagonal
	Irregular
)

func (k EdgeKind) String() string {
	switch k {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Diagonal:
		return "diagonal"
	case Irregular:
		return "irregular"
	}
	return "degenerate"
}

// AxisAligned reports whether the kind is horizontal or vertical.
func (k EdgeKind) AxisAligned() bool { return k == Horizontal || k == Vertical }

// Classify reports whether a→b is horizontal, vertical or a 45° diagonal.
func Classify(a, b Point) EdgeKind {
	dx := math.Abs(b.X - a.X)
	dy := math.Abs(b.Y - a.Y)
	switch {
	case dx <= Epsilon && dy <= Epsilon:
		return Degenerate
	case dy <= Epsilon:
		return Horizontal
	case dx <= Epsilon:
		return Vertical
	case math.Abs(dx-dy) <= diagonalTolerance*math.Max(dx, dy):
		return Diagonal
	}
	return Irregular
}

// LineIntersection intersects the infinite lines through a1a2 and b1b2.
// It returns false for parallel or degenerate lines.
func LineIntersection(a1, a2, b1, b2 Point) (Point, bool) {
	t, _, ok := lineParams(a1, a2, b1, b2)
	if !ok {
		return Point{}, false
	}
	return a1.Lerp(a2, t), true
}

// SegmentIntersection intersects the bounded segments a1a2 and b1b2,
// allowing Epsilon of slack at the ends.
func SegmentIntersection(a1, a2, b1, b2 Point) (Point, bool) {
	t, u, ok := lineParams(a1, a2, b1, b2)
	if !ok {
		return Point{}, false
	}
	ta := Epsilon / Distance(a1, a2)
	tb := Epsilon / Distance(b1, b2)
	if t < -ta || t > 1+ta || u < -tb || u > 1+tb {
		return Point{}, false
	}
	return a1.Lerp(a2, t), true
}

func lineParams(a1, a2, b1, b2 Point) (t, u float64, ok bool) {
	r := a2.Sub(a1)
	s := b2.Sub(b1)
	rl, sl := r.Len(), s.Len()
	if rl <= Epsilon || sl <= Epsilon {
		return 0, 0, false
	}
	denom := r.Cross(s)
	if math.Abs(denom) <= 1e-9*rl*sl {
		return 0, 0, false
	}
	q := b1.Sub(a1)
	return q.Cross(s) / denom, q.Cross(r) / denom, true
}

// PointOnSegment reports whether p lies within Epsilon of segment ab.
func PointOnSegment(p, a, b Point) bool {
	d := b.Sub(a)
	l2 := d.Dot(d)
	if l2 <= Epsilon*Epsilon {
		return Distance(p, a) <= Epsilon
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(d)/l2))
	return Distance(p, a.Lerp(b, t)) <= Epsilon
}

// SignedArea is the shoelace area of an open vertex list. It is positive
// for counter-clockwise order in a y-up frame.
func SignedArea(pts []Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := range pts {
		j := (i + 1) % n
		sum += pts[i].Cross(pts[j])
	}
	return sum / 2
}

// Winding returns +1, -1, or 0 for a degenerate polygon.
func Winding(pts []Point) int {
	a := SignedArea(pts)
	switch {
	case a > Epsilon:
		return 1
	case a < -Epsilon:
		return -1
	}
	return 0
}

func ring(pts []Point) orb.Ring {
	r := make(orb.Ring, 0, len(pts)+1)
	for _, p := range pts {
		r = append(r, orb.Point{p.X, p.Y})
	}
	if len(r) > 0 && !r[0].Equal(r[len(r)-1]) {
		r = append(r, r[0])
	}
	return r
}

// PointInPolygon reports whether p is inside pts or on its boundary.
func PointInPolygon(p Point, pts []Point) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	for i := range pts {
		if PointOnSegment(p, pts[i], pts[(i+1)%n]) {
			return true
		}
	}
	return planar.RingContains(ring(pts), orb.Point{p.X, p.Y})
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
}

func (b Bounds) Width() float64 { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }
func (b Bounds) Center() Point { return Point{(b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2} }

// Valid reports whether the box has positive area.
func (b Bounds) Valid() bool {
	return b.MaxX-b.MinX > Epsilon && b.MaxY-b.MinY > Epsilon &&
		!math.IsNaN(b.MinX+b.MaxX+b.MinY+b.MaxY) && !math.IsInf(b.MinX+b.MaxX+b.MinY+b.MaxY, 0)
}

// Contains reports whether p is inside the box, Epsilon inclusive.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.MinX-Epsilon && p.X <= b.MaxX+Epsilon &&
		p.Y >= b.MinY-Epsilon && p.Y <= b.MaxY+Epsilon
}

// BoundsOf returns the bounding box of pts.
func BoundsOf(pts []Point) Bounds {
	if len(pts) == 0 {
		return Bounds{}
	}
	bound := ring(pts).Bound()
	return Bounds{MinX: bound.Min[0], MaxX: bound.Max[0], MinY: bound.Min[1], MaxY: bound.Max[1]}
}

// Crossings returns the points where segment ab meets any of edges,
// ordered from a to b with duplicates (shared vertices) removed.
// Edges parallel to ab contribute nothing.
func Crossings(a, b Point, edges []Edge) []Point {
	var pts []Point
	for _, e := range edges {
		if p, ok := SegmentIntersection(a, b, e.P1, e.P2); ok {
			pts = append(pts, p)
		}
	}
	sort.Slice(pts, func(i, j int) bool { return Distance(a, pts[i]) < Distance(a, pts[j]) })
	out := pts[:0]
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1].Equal(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

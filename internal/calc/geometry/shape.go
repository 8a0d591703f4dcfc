package geometry

// Edge is one side of a Shape. Index is the position in the caller's
// point list, so ledger selections can refer to it.
type Edge struct {
	Index int      `json:"index"`
	P1    Point    `json:"p1"`
	P2    Point    `json:"p2"`
	Kind  EdgeKind `json:"kind"`
}

func (e Edge) Segment() Segment { return Segment{P1: e.P1, P2: e.P2} }
func (e Edge) Length() float64 { return Distance(e.P1, e.P2) }

// Shape is a deck footprint with its closing point resolved.
//
// Footprints arrive either open (N points, implicit edge from last to
// first) or closed (N+1 points, last equal to first). NormalizeShape is
// the only place that looks at the difference; everything downstream
// walks Edges.
type Shape struct {
	Points   []Point `json:"points"`
	Edges    []Edge  `json:"edges"`
	NumEdges int     `json:"numEdges"`
	Closed   bool    `json:"closed"`
}

// NormalizeShape drops a trailing closing point and builds the edge list.
// Fewer than three vertices produce a Shape without edges.
func NormalizeShape(points []Point) Shape {
	n := len(points)
	closed := n >= 2 && points[0].Equal(points[n-1])
	verts := points
	if closed {
		verts = points[:n-1]
	}
	s := Shape{Points: append([]Point(nil), verts...), Closed: closed}
	if len(verts) < 3 {
		return s
	}
	s.NumEdges = len(verts)
	s.Edges = make([]Edge, s.NumEdges)
	for i := 0; i < s.NumEdges; i++ {
		a, b := verts[i], verts[(i+1)%s.NumEdges]
		s.Edges[i] = Edge{Index: i, P1: a, P2: b, Kind: Classify(a, b)}
	}
	return s
}

// Edge returns edge i with modulo indexing; negative indices wrap.
func (s Shape) Edge(i int) Edge {
	n := s.NumEdges
	return s.Edges[((i%n)+n)%n]
}

// Valid reports whether the shape has at least three edges.
func (s Shape) Valid() bool { return s.NumEdges >= 3 }

// Bounds returns the bounding box of the vertices.
func (s Shape) Bounds() Bounds { return BoundsOf(s.Points) }

// Winding is the sign of the shoelace area of the vertices.
func (s Shape) Winding() int { return Winding(s.Points) }

// Contains reports whether p is inside the shape or on its boundary.
func (s Shape) Contains(p Point) bool { return PointInPolygon(p, s.Points) }

// InwardNormal returns the unit normal of edge e pointing into the shape.
func (s Shape) InwardNormal(e Edge) Point {
	n := Perpendicular(UnitVector(e.P1, e.P2))
	if s.Winding() < 0 {
		return n.Scale(-1)
	}
	return n
}

// OnBoundary reports whether p lies on any edge.
func (s Shape) OnBoundary(p Point) bool {
	for _, e := range s.Edges {
		if PointOnSegment(p, e.P1, e.P2) {
			return true
		}
	}
	return false
}

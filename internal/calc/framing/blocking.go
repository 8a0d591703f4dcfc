package framing

import (
	"math"
	"sort"

	"Deckframe/internal/calc/geometry"
)

// framingLines returns every board that runs with the joists.
func (b *build) framingLines() []Joist {
	lines := make([]Joist, 0, len(b.joists)+len(b.rims))
	lines = append(lines, b.joists...)
	for _, r := range b.rims {
		if math.Abs(r.P1.X-r.P2.X) <= geometry.Epsilon {
			lines = append(lines, r)
		}
	}
	return lines
}

// linesAt returns the sorted positions of the boards that cross row y.
func linesAt(lines []Joist, y float64) []float64 {
	var xs []float64
	for _, l := range lines {
		lo, hi := math.Min(l.P1.Y, l.P2.Y), math.Max(l.P1.Y, l.P2.Y)
		if y >= lo-geometry.Epsilon && y <= hi+geometry.Epsilon {
			xs = append(xs, l.P1.X)
		}
	}
	sort.Float64s(xs)
	out := xs[:0]
	for _, x := range xs {
		if len(out) > 0 && x-out[len(out)-1] <= geometry.Epsilon {
			continue
		}
		out = append(out, x)
	}
	return out
}

// rung returns a block between xa and xb on row y, if it sits on the deck.
func (b *build) rung(xa, xb, y float64, usage string) (Member, bool) {
	mid := geometry.Point{X: (xa + xb) / 2, Y: y}
	if !b.shape.Contains(mid) {
		return Member{}, false
	}
	return Member{
		P1:    geometry.Point{X: xa, Y: y},
		P2:    geometry.Point{X: xb, Y: y},
		Size:  b.joistSize,
		Usage: usage,
	}, true
}

// row blocks every bay on row y that is no wider than one joist spacing.
func (b *build) row(lines []Joist, y float64, usage string) []Member {
	xs := linesAt(lines, y)
	var out []Member
	for i := 1; i < len(xs); i++ {
		if xs[i]-xs[i-1] > b.spacing+geometry.Epsilon {
			continue
		}
		if m, ok := b.rung(xs[i-1], xs[i], y, usage); ok {
			out = append(out, m)
		}
	}
	return out
}

func hasLine(xs []float64, x float64) bool {
	i := sort.SearchFloat64s(xs, x-geometry.Epsilon)
	return i < len(xs) && math.Abs(xs[i]-x) <= geometry.Epsilon
}

// generateBlocking adds mid-span rows to every joist interval longer than
// the blocking limit and, with a picture frame, ladder blocking in the
// side bays plus a row along the outer border.
func (b *build) generateBlocking() error {
	lines := b.framingLines()

	if limit := geometry.Pixels(b.c.MaxBlockingSpacingFeet); limit > 0 {
		for _, iv := range b.spans() {
			length := iv[1] - iv[0]
			sections := int(math.Ceil(length/limit - 1e-9))
			for k := 1; k < sections; k++ {
				y := iv[0] + length*float64(k)/float64(sections)
				b.midSpanBlocking = append(b.midSpanBlocking, b.row(lines, y, UsageMidSpanBlocking)...)
			}
		}
	}

	pf := b.frameLines()
	if pf == nil || b.spacing <= geometry.Epsilon {
		return nil
	}
	bays := [][2]float64{{b.env.MinX, pf[0]}, {pf[1], b.env.MaxX}}
	for k := 1; ; k++ {
		y := b.wallY + b.spacing*float64(k)
		if y >= b.outerY-geometry.Epsilon {
			break
		}
		xs := linesAt(lines, y)
		for _, bay := range bays {
			if !hasLine(xs, bay[0]) || !hasLine(xs, bay[1]) {
				continue
			}
			if m, ok := b.rung(bay[0], bay[1], y, UsagePictureFrameBlocking); ok {
				b.frameBlocking = append(b.frameBlocking, m)
			}
		}
	}
	b.frameBlocking = append(b.frameBlocking, b.row(lines, b.outerY-b.frameInset(), UsagePictureFrameBlocking)...)
	return nil
}

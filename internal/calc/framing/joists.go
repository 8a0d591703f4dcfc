package framing

import (
	"Deckframe/internal/calc/geometry"
)

// frameInset is the picture-frame border width in pixels, 0 without one.
func (b *build) frameInset() float64 {
	switch b.in.PictureFrame {
	case FrameSingle:
		return geometry.Pixels(b.c.PictureFrameSingleInches / 12)
	case FrameDouble:
		return geometry.Pixels(b.c.PictureFrameDoubleInches / 12)
	}
	return 0
}

// frameLines returns the picture-frame joist positions, or nil when the
// deck has no frame or is too narrow for one.
func (b *build) frameLines() []float64 {
	inset := b.frameInset()
	if inset <= 0 || b.env.Width() <= 2*inset+geometry.Epsilon {
		return nil
	}
	return []float64{b.env.MinX + inset, b.env.MaxX - inset}
}

// joistLines returns the regular joist positions: every spacing from the
// left end joist, or from the left picture-frame line, strictly inside
// the outermost lines.
func (b *build) joistLines() []float64 {
	start, end := b.env.MinX, b.env.MaxX
	if pf := b.frameLines(); pf != nil {
		start, end = pf[0], pf[1]
	}
	if b.spacing <= geometry.Epsilon {
		return nil
	}
	var xs []float64
	for k := 1; ; k++ {
		x := start + b.spacing*float64(k)
		if x >= end-geometry.Epsilon {
			break
		}
		xs = append(xs, x)
	}
	return xs
}

// pieces returns the boards of one joist line at x: one piece per support
// interval, or a single continuous board.
func (b *build) pieces(x float64, usage string) []Joist {
	intervals := b.spans()
	out := make([]Joist, 0, len(intervals))
	for _, iv := range intervals {
		out = append(out, Joist{
			P1:    geometry.Point{X: x, Y: iv[0]},
			P2:    geometry.Point{X: x, Y: iv[1]},
			Size:  b.joistSize,
			Usage: usage,
		})
	}
	return out
}

func (b *build) generateJoists() error {
	for _, x := range b.frameLines() {
		b.joists = append(b.joists, b.pieces(x, UsagePictureFrame)...)
	}
	for _, x := range b.joistLines() {
		b.joists = append(b.joists, b.pieces(x, UsageJoist)...)
	}
	b.log.Debug("joists laid out", "boards", len(b.joists), "segmented", len(b.spans()) > 1)
	return nil
}

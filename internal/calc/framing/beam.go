package framing

import (
	"math"

	"Deckframe/internal/calc/geometry"
	"Deckframe/internal/calc/span"
)

// beamLayout is a beam with the posts and footings under it. Posts and
// Footings are index-aligned.
type beamLayout struct {
	Beam          Beam
	Posts         []Post
	Footings      []Footing
	joistSpanFeet float64
}

// layoutBeam builds a beam on the support line p1-p2: end posts inset
// from both ends, intermediate posts so no span exceeds the maximum post
// spacing, lumber running past the outer posts by the beam cantilever,
// and one footing per post.
//
// A zero-length line yields a zero-length beam without posts.
func (b *build) layoutBeam(p1, p2 geometry.Point, usage string, joistSpanFeet float64) beamLayout {
	beam := Beam{
		P1:                       p1,
		P2:                       p2,
		CenterlineP1:             p1,
		CenterlineP2:             p2,
		PositionCoordinateLineP1: p1,
		PositionCoordinateLineP2: p2,
		Usage:                    usage,
		Ply:                      b.in.BeamPly,
		IsFlush:                  b.in.BeamType == BeamFlush,
		IsDiagonal:               !geometry.Classify(p1, p2).AxisAligned(),
	}
	length := geometry.Distance(p1, p2)
	if length <= geometry.Epsilon {
		beam.P2 = p1
		beam.CenterlineP2 = p1
		beam.PositionCoordinateLineP2 = p1
		beam.IsDiagonal = false
		return beamLayout{Beam: beam, joistSpanFeet: joistSpanFeet}
	}

	dir := geometry.UnitVector(p1, p2)
	offsets, postSpan := postOffsets(length, geometry.Pixels(b.c.PostInsetFeet), geometry.Pixels(b.c.MaxPostSpacingFeet))
	postSpanFeet := geometry.Feet(postSpan)

	sizing := b.tables.SizeBeam(postSpanFeet, joistSpanFeet, b.in.BeamPly)
	b.warn(sizing.Warning)
	beam.Size = sizing.Size
	beam.Ply = sizing.Ply

	overhang := geometry.Pixels(b.c.BeamCantileverFeet)
	first, last := offsets[0], offsets[len(offsets)-1]
	beam.P1 = p1.Add(dir.Scale(first - overhang))
	beam.P2 = p1.Add(dir.Scale(last + overhang))
	beam.LengthFeet = geometry.Feet(last - first + 2*overhang)

	height := b.postHeightFeet(beam.Size)
	postSize := b.tables.PostSize(b.in.PostSize, height)

	bl := beamLayout{Beam: beam, joistSpanFeet: joistSpanFeet}
	for i, t := range offsets {
		at := p1.Add(dir.Scale(t))
		corner := len(offsets) > 1 && (i == 0 || i == len(offsets)-1)
		area := span.TributaryArea(postSpanFeet, joistSpanFeet, corner)
		ft := b.tables.SizeFooting(area, b.in.FootingType)
		bl.Posts = append(bl.Posts, Post{X: at.X, Y: at.Y, Size: postSize, HeightFeet: height, Usage: usage})
		bl.Footings = append(bl.Footings, Footing{
			X:             at.X,
			Y:             at.Y,
			Type:          b.in.FootingType,
			Diameter:      ft.Diameter,
			Load:          ft.Load,
			TributaryArea: area,
			Message:       ft.Message,
		})
	}
	return bl
}

// relayout rebuilds bl on a new support line, dropping its old posts.
func (b *build) relayout(bl beamLayout, p1, p2 geometry.Point) beamLayout {
	return b.layoutBeam(p1, p2, bl.Beam.Usage, bl.joistSpanFeet)
}

// postOffsets returns post positions measured from the start of a line of
// the given length, and the post-to-post span. Lines shorter than twice
// the inset get a single centre post whose span is the whole line.
func postOffsets(length, inset, maxSpacing float64) ([]float64, float64) {
	run := length - 2*inset
	if run <= geometry.Epsilon {
		return []float64{length / 2}, length
	}
	intervals := 1
	if maxSpacing > 0 {
		intervals = int(math.Ceil(run/maxSpacing - 1e-9))
		if intervals < 1 {
			intervals = 1
		}
	}
	step := run / float64(intervals)
	offsets := make([]float64, intervals+1)
	for i := range offsets {
		offsets[i] = inset + step*float64(i)
	}
	return offsets, step
}

// postHeightFeet is the deck height less the joist depth, and less the
// beam depth for drop beams.
func (b *build) postHeightFeet(beamSize string) float64 {
	h := b.in.DeckHeight - b.tables.LumberDepth(b.joistSize)
	if b.in.BeamType == BeamDrop {
		h -= b.tables.LumberDepth(beamSize)
	}
	return math.Max(0, h/12)
}

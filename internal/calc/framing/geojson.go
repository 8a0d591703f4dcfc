package framing

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"Deckframe/internal/calc/geometry"
)

// ToFeatureCollection exports a plan as GeoJSON in feet. Members become
// LineStrings and posts and footings Points; each feature carries its
// kind, usage and size as properties.
func ToFeatureCollection(c *Components) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	line := func(kind string, p1, p2 geometry.Point, size, usage string, length float64) *geojson.Feature {
		f := geojson.NewFeature(orb.LineString{feet(p1), feet(p2)})
		f.Properties["kind"] = kind
		f.Properties["usage"] = usage
		f.Properties["size"] = size
		f.Properties["lengthFeet"] = length
		fc.Append(f)
		return f
	}

	if c.Ledger != nil {
		line("ledger", c.Ledger.P1, c.Ledger.P2, c.Ledger.Size, c.Ledger.Usage, c.Ledger.LengthFeet)
	}
	for _, m := range c.DiagonalLedgers {
		line("ledger", m.P1, m.P2, m.Size, m.Usage, m.LengthFeet)
	}
	for _, bm := range c.Beams {
		f := line("beam", bm.P1, bm.P2, bm.Size, bm.Usage, bm.LengthFeet)
		f.Properties["ply"] = bm.Ply
		f.Properties["isFlush"] = bm.IsFlush
	}
	for _, j := range c.Joists {
		f := line("joist", j.P1, j.P2, j.Size, j.Usage, j.LengthFeet)
		f.Properties["cutAngle"] = j.CutAngle
	}
	for _, j := range c.RimJoists {
		f := line("rim", j.P1, j.P2, j.Size, j.Usage, j.LengthFeet)
		f.Properties["cutAngle"] = j.CutAngle
	}
	for _, m := range c.MidSpanBlocking {
		line("blocking", m.P1, m.P2, m.Size, m.Usage, m.LengthFeet)
	}
	for _, m := range c.PictureFrameBlocking {
		line("blocking", m.P1, m.P2, m.Size, m.Usage, m.LengthFeet)
	}
	for _, p := range c.Posts {
		f := geojson.NewFeature(feet(geometry.Point{X: p.X, Y: p.Y}))
		f.Properties["kind"] = "post"
		f.Properties["usage"] = p.Usage
		f.Properties["size"] = p.Size
		f.Properties["heightFeet"] = p.HeightFeet
		fc.Append(f)
	}
	for _, ft := range c.Footings {
		f := geojson.NewFeature(feet(geometry.Point{X: ft.X, Y: ft.Y}))
		f.Properties["kind"] = "footing"
		f.Properties["type"] = ft.Type
		f.Properties["diameter"] = ft.Diameter
		f.Properties["load"] = ft.Load
		fc.Append(f)
	}
	return fc
}

func feet(p geometry.Point) orb.Point {
	return orb.Point{geometry.Feet(p.X), geometry.Feet(p.Y)}
}

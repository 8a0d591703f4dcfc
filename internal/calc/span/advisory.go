package span

import (
	"fmt"
	"math"
	"sort"

	deckerr "Deckframe/internal/errors"
)

// spanTolerance absorbs pixel-to-feet rounding when comparing spans.
const spanTolerance = 1e-6

// Footing types.
const (
	FootingConcrete = "concrete"
	FootingHelical  = "helical"
	FootingPrecast  = "precast"
)

// smallestJoist is left out of tall decks.
const smallestJoist = "2x6"

// Post sizes.
const (
	PostAuto = "auto"
	Post4x4  = "4x4"
	Post6x6  = "6x6"
)

// JoistSizing is the answer to "which joist carries this span".
type JoistSizing struct {
	Size            string  `json:"size"`
	MaxSpanFeet     float64 `json:"maxSpanFeet"`
	RequiresMidBeam bool    `json:"requiresMidBeam"`
}

// MaxJoistSpan returns the tabulated span of size at the given on-center
// spacing. Spacings that fall between columns use the next wider column.
func (t *Tables) MaxJoistSpan(size string, spacingInches float64) (float64, bool) {
	spans, ok := t.JoistSpans[size]
	if !ok {
		return 0, false
	}
	for i, s := range t.JoistSpacingsInches {
		if s+spanTolerance >= spacingInches {
			return spans[i], true
		}
	}
	return 0, false
}

// SizeJoists returns the smallest joist size whose span covers spanFeet.
// 2x6 is skipped for decks at or above MinHeightForNo2x6Inches. When
// nothing covers the span the largest size is returned with
// RequiresMidBeam set.
func (t *Tables) SizeJoists(spanFeet, spacingInches, heightInches float64) (JoistSizing, error) {
	if len(t.JoistSizes) == 0 || len(t.JoistSpans) == 0 {
		return JoistSizing{}, deckerr.New(deckerr.ErrCodeNoJoistSize, "joist span table is empty")
	}
	var best JoistSizing
	for _, size := range t.JoistSizes {
		if size == smallestJoist && heightInches >= t.Constants.MinHeightForNo2x6Inches {
			continue
		}
		limit, ok := t.MaxJoistSpan(size, spacingInches)
		if !ok {
			continue
		}
		if limit+spanTolerance >= spanFeet {
			return JoistSizing{Size: size, MaxSpanFeet: limit}, nil
		}
		if limit > best.MaxSpanFeet {
			best = JoistSizing{Size: size, MaxSpanFeet: limit}
		}
	}
	if best.Size == "" {
		return JoistSizing{}, deckerr.New(deckerr.ErrCodeNoJoistSize,
			"no joist size is tabulated for %.4g\" spacing at %.4g\" deck height", spacingInches, heightInches)
	}
	best.RequiresMidBeam = true
	return best, nil
}

// MidBeamLayout splits a joist run into equal sub-spans.
type MidBeamLayout struct {
	Sections       int     `json:"sections"`
	Count          int     `json:"count"`
	SubSpanFeet    float64 `json:"subSpanFeet"`
	TotalDepthFeet float64 `json:"totalDepthFeet"`
}

// MidBeams divides totalDepthFeet into ceil(depth / maxSpan) sections,
// which needs one mid-beam fewer than sections.
func MidBeams(totalDepthFeet, maxSpanFeet float64) MidBeamLayout {
	sections := 1
	if maxSpanFeet > 0 && totalDepthFeet > maxSpanFeet+spanTolerance {
		sections = int(math.Ceil(totalDepthFeet/maxSpanFeet - spanTolerance))
	}
	return MidBeamLayout{
		Sections:       sections,
		Count:          sections - 1,
		SubSpanFeet:    totalDepthFeet / float64(sections),
		TotalDepthFeet: totalDepthFeet,
	}
}

// BeamSizing is a beam recommendation. Warning is set when the table had
// no compliant entry and the largest beam was substituted.
type BeamSizing struct {
	Size    string `json:"size"`
	Ply     int    `json:"ply"`
	Warning string `json:"warning,omitempty"`
}

// SizeBeam picks the smallest beam of ply (then ply+1) whose allowable
// span covers postSpanFeet for the given joist span.
func (t *Tables) SizeBeam(postSpanFeet, joistSpanFeet float64, ply int) BeamSizing {
	if ply < 1 {
		ply = t.Constants.DefaultBeamPly
	}
	if ply < 1 {
		ply = 2
	}
	if len(t.Beams) == 0 || len(t.BeamJoistSpansFeet) == 0 {
		return BeamSizing{Ply: ply, Warning: "beam table is empty; no beam size could be recommended"}
	}

	col := len(t.BeamJoistSpansFeet) - 1
	var warning string
	for i, s := range t.BeamJoistSpansFeet {
		if s+spanTolerance >= joistSpanFeet {
			col = i
			break
		}
	}
	if joistSpanFeet > t.BeamJoistSpansFeet[col]+spanTolerance {
		warning = fmt.Sprintf("joist span %.1f ft exceeds the beam table (%.1f ft)", joistSpanFeet, t.BeamJoistSpansFeet[col])
	}

	rows := append([]BeamRow(nil), t.Beams...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Ply != rows[j].Ply {
			return rows[i].Ply < rows[j].Ply
		}
		return t.sizeRank(rows[i].Size) < t.sizeRank(rows[j].Size)
	})

	for _, p := range []int{ply, ply + 1} {
		for _, row := range rows {
			if row.Ply == p && row.Spans[col]+spanTolerance >= postSpanFeet {
				return BeamSizing{Size: row.Size, Ply: row.Ply, Warning: warning}
			}
		}
	}

	largest := rows[0]
	for _, row := range rows[1:] {
		if row.Ply > largest.Ply || (row.Ply == largest.Ply && row.Spans[col] > largest.Spans[col]) {
			largest = row
		}
	}
	msg := fmt.Sprintf("no tabulated beam spans %.1f ft between posts with %.1f ft joists; using %d-ply %s, verify with an engineer",
		postSpanFeet, joistSpanFeet, largest.Ply, largest.Size)
	if warning != "" {
		msg = warning + "; " + msg
	}
	return BeamSizing{Size: largest.Size, Ply: largest.Ply, Warning: msg}
}

// TributaryArea is the deck area one post carries. Corner posts carry half.
func TributaryArea(postSpacingFeet, joistSpanFeet float64, isCorner bool) float64 {
	area := postSpacingFeet * joistSpanFeet
	if isCorner {
		area /= 2
	}
	return area
}

// FootingSizing is the footing recommendation for one post.
type FootingSizing struct {
	Diameter float64 `json:"diameter"`
	Load     float64 `json:"load"`
	Message  string  `json:"message,omitempty"`
}

// SizeFooting turns a tributary area into a round footing diameter in
// inches. Helical piles are not sized here and report a diameter of 0.
func (t *Tables) SizeFooting(areaSqFt float64, footingType string) FootingSizing {
	c := t.Constants
	load := areaSqFt * (c.LiveLoadPSF + c.DeadLoadPSF)
	if footingType == FootingHelical {
		return FootingSizing{Load: load, Message: "helical pile capacity is set by installation torque"}
	}
	if c.SoilBearingPSF <= 0 || len(c.FootingDiametersInches) == 0 {
		return FootingSizing{Load: load, Message: "footing table is empty"}
	}
	required := load / c.SoilBearingPSF
	diameter := math.Sqrt(4*required/math.Pi) * 12
	for _, d := range c.FootingDiametersInches {
		if d+spanTolerance >= diameter {
			return FootingSizing{Diameter: d, Load: load}
		}
	}
	largest := c.FootingDiametersInches[len(c.FootingDiametersInches)-1]
	return FootingSizing{
		Diameter: largest,
		Load:     load,
		Message:  fmt.Sprintf("%.0f lb needs a %.1f\" footing, larger than the %.0f\" maximum", load, diameter, largest),
	}
}

// CantileverFeet is how far joists of size may run past their support.
func (t *Tables) CantileverFeet(size string) float64 {
	if c, ok := t.JoistCantileverFeet[size]; ok {
		return c
	}
	return t.Constants.DefaultJoistCantileverFeet
}

// LumberDepth is the actual depth in inches of a nominal size, or 0.
func (t *Tables) LumberDepth(size string) float64 {
	return t.LumberDepthInches[size]
}

// PostSize resolves an override ("auto", "4x4", "6x6") against the post
// height.
func (t *Tables) PostSize(override string, heightFeet float64) string {
	switch override {
	case Post4x4, Post6x6:
		return override
	}
	if heightFeet > t.Constants.Max4x4PostHeightFeet {
		return Post6x6
	}
	return Post4x4
}

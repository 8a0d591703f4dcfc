package framing

import (
	"encoding/json"
	"io"
	"math"
	"reflect"
	"sort"
	"testing"

	"github.com/charmbracelet/log"

	"Deckframe/internal/calc/geometry"
	"Deckframe/internal/calc/span"
	deckerr "Deckframe/internal/errors"
)

const tol = 1e-6

func ft(x, y float64) geometry.Point {
	return geometry.Point{X: geometry.Pixels(x), Y: geometry.Pixels(y)}
}

func rect(w, d float64) []geometry.Point {
	return []geometry.Point{ft(0, 0), ft(w, 0), ft(w, d), ft(0, d)}
}

func quietEngine(tables *span.Tables) *Engine {
	return New(tables, log.New(io.Discard))
}

func mustCalc(t *testing.T, e *Engine, in Input) *Components {
	t.Helper()
	c, err := e.Calculate(in)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if c.Error != nil {
		t.Fatalf("Components.Error = %q", *c.Error)
	}
	return c
}

func standardInputs() Inputs {
	return Inputs{JoistSpacing: 16, DeckHeight: 36}
}

func countUsage(js []Joist, usage string) int {
	n := 0
	for _, j := range js {
		if j.Usage == usage {
			n++
		}
	}
	return n
}

func near(a, b float64) bool { return math.Abs(a-b) <= 1e-6 }

// assertWithinSpan checks every joist and end joist piece against the
// tabulated span for the chosen size and spacing.
func assertWithinSpan(t *testing.T, tables *span.Tables, c *Components) {
	t.Helper()
	limit, ok := tables.MaxJoistSpan(c.JoistSize, c.JoistSpacing)
	if !ok {
		t.Fatalf("no span for %s at %v in", c.JoistSize, c.JoistSpacing)
	}
	pieces := append([]Joist{}, c.Joists...)
	for _, r := range c.RimJoists {
		if r.Usage == UsageEndJoist {
			pieces = append(pieces, r)
		}
	}
	for _, j := range pieces {
		if j.LengthFeet > limit+tol {
			t.Errorf("%s %v-%v is %.2f ft, over the %.2f ft %s span", j.Usage, j.P1, j.P2, j.LengthFeet, limit, c.JoistSize)
		}
	}
}

func TestRectangleWithLedger(t *testing.T) {
	c := mustCalc(t, quietEngine(nil), Input{
		Shape:         rect(16, 12),
		LedgerIndices: LedgerIndices{0},
		Inputs:        standardInputs(),
	})

	if c.Ledger == nil || !near(c.Ledger.LengthFeet, 16) {
		t.Fatalf("Ledger = %+v, want 16 ft", c.Ledger)
	}
	if c.JoistSize != "2x10" {
		t.Errorf("JoistSize = %s, want 2x10", c.JoistSize)
	}
	if c.RequiresMidBeam || c.NumberOfMidBeams != 0 {
		t.Errorf("RequiresMidBeam = %v, NumberOfMidBeams = %d", c.RequiresMidBeam, c.NumberOfMidBeams)
	}
	if c.TotalDepthFeet != 12 || c.CornerCount != 4 {
		t.Errorf("TotalDepthFeet = %v, CornerCount = %d", c.TotalDepthFeet, c.CornerCount)
	}

	if len(c.Beams) != 1 {
		t.Fatalf("len(Beams) = %d, want 1", len(c.Beams))
	}
	beam := c.Beams[0]
	if !near(beam.LengthFeet, 16) || beam.Size != "2x10" || beam.Ply != 2 || beam.Usage != UsageOuterBeam {
		t.Errorf("outer beam = %+v", beam)
	}
	if !near(beam.CenterlineP1.Y, geometry.Pixels(10)) {
		t.Errorf("outer beam at %v ft, want 10 ft", geometry.Feet(beam.CenterlineP1.Y))
	}

	if len(c.Posts) != 3 || len(c.Footings) != 3 {
		t.Fatalf("posts = %d, footings = %d, want 3 each", len(c.Posts), len(c.Footings))
	}
	for i, want := range []float64{1, 8, 15} {
		if !near(c.Posts[i].X, geometry.Pixels(want)) {
			t.Errorf("post %d at x = %v ft, want %v", i, geometry.Feet(c.Posts[i].X), want)
		}
	}
	if !near(c.Footings[0].TributaryArea*2, c.Footings[1].TributaryArea) {
		t.Errorf("corner area %v should be half of interior %v", c.Footings[0].TributaryArea, c.Footings[1].TributaryArea)
	}

	if len(c.Joists) != 11 {
		t.Fatalf("len(Joists) = %d, want 11", len(c.Joists))
	}
	for i, j := range c.Joists {
		if !near(j.LengthFeet, 12) {
			t.Errorf("joist %d length = %v, want 12", i, j.LengthFeet)
		}
		if !near(j.P1.X, geometry.Pixels(float64(i+1)*16/12)) {
			t.Errorf("joist %d at x = %v px", i, j.P1.X)
		}
		if j.P1.Y != 0 {
			t.Errorf("joist %d P1 = %v, want on the ledger", i, j.P1)
		}
	}

	if got := countUsage(c.RimJoists, UsageEndJoist); got != 2 {
		t.Errorf("end joists = %d, want 2", got)
	}
	if got := countUsage(c.RimJoists, UsageOuterRim); got != 1 {
		t.Errorf("outer rims = %d, want 1", got)
	}
	if got := countUsage(c.RimJoists, UsageWallRim); got != 0 {
		t.Errorf("wall rims = %d, want 0 for house attachment", got)
	}
	for _, r := range c.RimJoists {
		want := 12.0
		if r.Usage == UsageOuterRim {
			want = 16
		}
		if !near(r.LengthFeet, want) {
			t.Errorf("%s length = %v, want %v", r.Usage, r.LengthFeet, want)
		}
	}

	// 12 ft runs past the 8 ft blocking limit: one row across 12 bays.
	if len(c.MidSpanBlocking) != 12 {
		t.Errorf("len(MidSpanBlocking) = %d, want 12", len(c.MidSpanBlocking))
	}
	if len(c.PictureFrameBlocking) != 0 || len(c.DiagonalLedgers) != 0 {
		t.Errorf("unexpected picture frame or diagonal members")
	}
	if c.BeamWarning != "" {
		t.Errorf("BeamWarning = %q", c.BeamWarning)
	}
}

func TestRectangleWithinBlockingLimit(t *testing.T) {
	tables := *span.Default()
	tables.Constants.MaxBlockingSpacingFeet = 12
	c := mustCalc(t, quietEngine(&tables), Input{
		Shape:         rect(16, 12),
		LedgerIndices: LedgerIndices{0},
		Inputs:        standardInputs(),
	})
	if len(c.MidSpanBlocking) != 0 {
		t.Errorf("len(MidSpanBlocking) = %d, want 0", len(c.MidSpanBlocking))
	}
}

func TestLongDeckAddsMidBeam(t *testing.T) {
	tables := *span.Default()
	tables.JoistSizes = []string{"2x8", "2x10"}
	tables.JoistSpans = map[string][]float64{
		"2x8":  {10, 10, 8},
		"2x10": {12, 12, 10},
	}

	c := mustCalc(t, quietEngine(&tables), Input{
		Shape:         rect(16, 22),
		LedgerIndices: LedgerIndices{0},
		Inputs:        standardInputs(),
	})

	if !c.RequiresMidBeam || c.NumberOfMidBeams != 1 {
		t.Fatalf("RequiresMidBeam = %v, NumberOfMidBeams = %d, want true, 1", c.RequiresMidBeam, c.NumberOfMidBeams)
	}
	if c.JoistSize != "2x10" {
		t.Errorf("JoistSize = %s, want 2x10", c.JoistSize)
	}

	var mids []Beam
	for _, b := range c.Beams {
		if b.Usage == UsageMidBeam {
			mids = append(mids, b)
		}
	}
	if len(mids) != 1 || !near(mids[0].CenterlineP1.Y, geometry.Pixels(11)) {
		t.Fatalf("mid-beams = %+v, want one at 11 ft", mids)
	}

	if len(c.Joists) != 22 {
		t.Fatalf("len(Joists) = %d, want 11 lines of 2 pieces", len(c.Joists))
	}
	for _, j := range c.Joists {
		if !near(j.LengthFeet, 11) {
			t.Errorf("joist piece %v-%v length = %v, want 11", j.P1, j.P2, j.LengthFeet)
		}
	}
	if got := countUsage(c.RimJoists, UsageEndJoist); got != 4 {
		t.Errorf("end joist pieces = %d, want 4", got)
	}
}

// The continuous 2x8 rule is a fixed carve-out (2x8, mid-beam present,
// 18 < depth <= 20 ft), not something derived from the tables.
func TestContinuous2x8Rule(t *testing.T) {
	tests := []struct {
		name       string
		depth      float64
		wantPieces int
	}{
		{"19 ft runs continuous", 19, 1},
		{"20 ft runs continuous", 20, 1},
		{"21 ft is segmented", 21, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustCalc(t, quietEngine(nil), Input{
				Shape:         rect(16, tt.depth),
				LedgerIndices: LedgerIndices{0},
				Inputs:        standardInputs(),
			})
			if c.JoistSize != "2x8" || c.NumberOfMidBeams != 1 {
				t.Fatalf("JoistSize = %s, NumberOfMidBeams = %d, want 2x8 over one mid-beam", c.JoistSize, c.NumberOfMidBeams)
			}
			if got := len(c.Joists) / 11; got != tt.wantPieces || len(c.Joists)%11 != 0 {
				t.Errorf("len(Joists) = %d, want %d pieces per line", len(c.Joists), tt.wantPieces)
			}
		})
	}
}

func TestMidBeamCountMonotonic(t *testing.T) {
	e := quietEngine(nil)
	prev := 0
	for depth := 6.0; depth <= 48; depth += 1.5 {
		c := mustCalc(t, e, Input{Shape: rect(12, depth), LedgerIndices: LedgerIndices{0}, Inputs: standardInputs()})
		if c.NumberOfMidBeams < prev {
			t.Fatalf("NumberOfMidBeams dropped from %d to %d at %v ft", prev, c.NumberOfMidBeams, depth)
		}
		prev = c.NumberOfMidBeams
	}
}

func TestJoistsRunPerpendicularToLedger(t *testing.T) {
	shape := rect(16, 12)
	for ledger := 0; ledger < 4; ledger++ {
		c := mustCalc(t, quietEngine(nil), Input{Shape: shape, LedgerIndices: LedgerIndices{ledger}, Inputs: standardInputs()})
		a, b := shape[ledger], shape[(ledger+1)%4]
		dir := geometry.UnitVector(a, b)
		if len(c.Joists) == 0 {
			t.Fatalf("ledger %d: no joists", ledger)
		}
		for _, j := range c.Joists {
			run := j.P2.Sub(j.P1)
			if math.Abs(run.Dot(dir)) > geometry.Epsilon {
				t.Errorf("ledger %d: joist %v-%v not perpendicular", ledger, j.P1, j.P2)
			}
			if !geometry.PointOnSegment(j.P1, a, b) {
				t.Errorf("ledger %d: joist P1 %v not on the ledger", ledger, j.P1)
			}
		}
		if !near(c.Ledger.LengthFeet, geometry.Feet(geometry.Distance(a, b))) {
			t.Errorf("ledger %d: length = %v", ledger, c.Ledger.LengthFeet)
		}
	}
}

func TestOpenAndClosedShapesMatch(t *testing.T) {
	shapes := map[string][]geometry.Point{
		"rectangle":  rect(16, 12),
		"cut corner": {ft(0, 0), ft(16, 0), ft(16, 8), ft(12, 12), ft(0, 12)},
		"notched":    {ft(0, 0), ft(16, 0), ft(16, 9), ft(10, 9), ft(10, 12), ft(0, 12)},
	}
	for name, open := range shapes {
		t.Run(name, func(t *testing.T) {
			closed := append(append([]geometry.Point(nil), open...), open[0])
			e := quietEngine(nil)
			a := mustCalc(t, e, Input{Shape: open, LedgerIndices: LedgerIndices{0}, Inputs: standardInputs()})
			b := mustCalc(t, e, Input{Shape: closed, LedgerIndices: LedgerIndices{0}, Inputs: standardInputs()})
			if !reflect.DeepEqual(a, b) {
				t.Errorf("open and closed footprints produced different plans")
			}
		})
	}
}

func TestCutCornerOutline(t *testing.T) {
	shape := []geometry.Point{ft(0, 0), ft(16, 0), ft(16, 8), ft(12, 12), ft(0, 12)}
	c := mustCalc(t, quietEngine(nil), Input{Shape: shape, LedgerIndices: LedgerIndices{0}, Inputs: standardInputs()})

	if len(c.Beams) != 2 {
		t.Fatalf("len(Beams) = %d, want 2", len(c.Beams))
	}
	var diag *Beam
	for i := range c.Beams {
		if c.Beams[i].IsDiagonal {
			diag = &c.Beams[i]
		}
	}
	if diag == nil {
		t.Fatal("no diagonal beam")
	}
	// Offset 2 ft inward from x+y=24 and stitched to x=16 and y=10.
	off := 2 * math.Sqrt2
	wantA, wantB := ft(24-off-10, 10), ft(16, 24-off-16)
	if !diag.CenterlineP1.Equal(wantA) || !diag.CenterlineP2.Equal(wantB) {
		t.Errorf("diagonal beam centerline = %v-%v, want %v-%v", diag.CenterlineP1, diag.CenterlineP2, wantA, wantB)
	}

	if got := countUsage(c.RimJoists, UsageDiagonalRim); got != 1 {
		t.Errorf("diagonal rims = %d, want 1", got)
	}
	for _, r := range c.RimJoists {
		if r.Usage == UsageOuterRim && !r.P2.Equal(ft(12, 12)) {
			t.Errorf("outer rim ends at %v, want trimmed to %v", r.P2, ft(12, 12))
		}
		if r.Usage == UsageDiagonalRim && r.CutAngle != 45 {
			t.Errorf("diagonal rim CutAngle = %v, want 45", r.CutAngle)
		}
	}

	trimmed := 0
	for _, j := range c.Joists {
		if j.P1.Y != 0 {
			t.Errorf("joist P1 %v moved off the ledger", j.P1)
		}
		if !geometry.PointInPolygon(j.P2, shape) {
			t.Errorf("joist P2 %v outside the footprint", j.P2)
		}
		if j.P1.X > geometry.Pixels(12)+tol {
			trimmed++
			if !j.TrimmedAtDiagonal || j.CutAngle != 45 || !near(j.P2.X+j.P2.Y, geometry.Pixels(24)) {
				t.Errorf("joist %+v should end on the diagonal", j)
			}
		}
	}
	if trimmed != 2 {
		t.Errorf("trimmed joists = %d, want 2", trimmed)
	}
}

func TestBayWindowDiagonalLedger(t *testing.T) {
	shape := []geometry.Point{ft(0, 0), ft(12, 0), ft(16, -4), ft(16, 12), ft(0, 12)}
	c := mustCalc(t, quietEngine(nil), Input{Shape: shape, LedgerIndices: LedgerIndices{0, 1}, Inputs: standardInputs()})

	if len(c.DiagonalLedgers) != 1 {
		t.Fatalf("len(DiagonalLedgers) = %d, want 1", len(c.DiagonalLedgers))
	}
	for _, b := range c.Beams {
		if b.IsDiagonal {
			t.Errorf("unexpected diagonal beam %+v", b)
		}
	}
	within := 0
	for _, j := range c.Joists {
		x := j.P1.X
		if x > geometry.Pixels(12)+tol && x < geometry.Pixels(16)-tol {
			within++
			if j.P1.Y >= -tol {
				t.Errorf("joist at x=%v: P1.Y = %v, want toward the house", x, j.P1.Y)
			}
			if !near(j.P1.X+j.P1.Y, geometry.Pixels(12)) {
				t.Errorf("joist P1 %v not on the diagonal ledger", j.P1)
			}
		} else if j.P1.Y != 0 {
			t.Errorf("joist at x=%v: P1.Y = %v, want 0", x, j.P1.Y)
		}
		if !near(j.P2.Y, geometry.Pixels(12)) {
			t.Errorf("joist P2 %v moved", j.P2)
		}
	}
	if within != 2 {
		t.Errorf("joists under the bay = %d, want 2", within)
	}
	// The longest run is from the bay's far corner, 16 ft out.
	if !near(c.TotalDepthFeet, 16) || c.JoistSize != "2x12" {
		t.Errorf("TotalDepthFeet = %v, JoistSize = %s, want 16, 2x12", c.TotalDepthFeet, c.JoistSize)
	}
	assertWithinSpan(t, span.Default(), c)
	for _, r := range c.RimJoists {
		if r.Usage == UsageEndJoist && r.P1.X == geometry.Pixels(16) && !r.P1.Equal(ft(16, -4)) {
			t.Errorf("right end joist starts at %v, want %v", r.P1, ft(16, -4))
		}
	}
}

func TestDeepBayWindowPlacesMidBeamFromBay(t *testing.T) {
	shape := []geometry.Point{ft(0, 0), ft(12, 0), ft(16, -4), ft(16, 20), ft(0, 20)}
	c := mustCalc(t, quietEngine(nil), Input{Shape: shape, LedgerIndices: LedgerIndices{0, 1}, Inputs: standardInputs()})

	if !near(c.TotalDepthFeet, 24) || c.NumberOfMidBeams != 1 || c.JoistSize != "2x10" {
		t.Fatalf("depth %v ft, %d mid-beams, %s; want 24 ft, 1, 2x10", c.TotalDepthFeet, c.NumberOfMidBeams, c.JoistSize)
	}
	for _, b := range c.Beams {
		if b.Usage == UsageMidBeam && !near(b.CenterlineP1.Y, geometry.Pixels(8)) {
			t.Errorf("mid-beam at y = %v ft, want 8 ft", geometry.Feet(b.CenterlineP1.Y))
		}
	}
	assertWithinSpan(t, span.Default(), c)
}

func TestCutCornerWithMidBeam(t *testing.T) {
	// 22 ft deep with a 45 degree corner on x+y=24 that reaches back past
	// the 11 ft mid-beam.
	shape := []geometry.Point{ft(0, 0), ft(16, 0), ft(16, 8), ft(2, 22), ft(0, 22)}
	c := mustCalc(t, quietEngine(nil), Input{Shape: shape, LedgerIndices: LedgerIndices{0}, Inputs: standardInputs()})

	if c.NumberOfMidBeams != 1 || c.JoistSize != "2x8" {
		t.Fatalf("%d mid-beams with %s, want 1 with 2x8", c.NumberOfMidBeams, c.JoistSize)
	}
	// 11 lines: every near piece survives, the two far pieces past
	// x = 13 ft lie wholly beyond the corner.
	if len(c.Joists) != 20 {
		t.Fatalf("len(Joists) = %d, want 20", len(c.Joists))
	}

	mid := geometry.Pixels(11)
	trimmedNear, trimmedFar := 0, 0
	for _, j := range c.Joists {
		onLedger, onMid := near(j.P1.Y, 0), near(j.P1.Y, mid)
		if !onLedger && !onMid {
			t.Errorf("joist %v-%v does not start on a support", j.P1, j.P2)
			continue
		}
		if !geometry.PointInPolygon(j.P2, shape) {
			t.Errorf("joist P2 %v outside the footprint", j.P2)
		}
		pastCorner := j.P1.X > geometry.Pixels(2)+tol
		switch {
		case onLedger && j.P1.X > geometry.Pixels(13)+tol:
			trimmedNear++
			if !j.TrimmedAtDiagonal || !near(j.P2.X+j.P2.Y, geometry.Pixels(24)) {
				t.Errorf("near piece %+v should end on the diagonal", j)
			}
		case onLedger:
			if j.TrimmedAtDiagonal || !near(j.P2.Y, mid) {
				t.Errorf("near piece %+v should end on the mid-beam", j)
			}
		case onMid && pastCorner:
			trimmedFar++
			if !j.TrimmedAtDiagonal || j.CutAngle != 45 || !near(j.P2.X+j.P2.Y, geometry.Pixels(24)) {
				t.Errorf("far piece %+v should end on the diagonal", j)
			}
		default:
			if j.TrimmedAtDiagonal || !near(j.P2.Y, geometry.Pixels(22)) {
				t.Errorf("far piece %+v should reach the outer rim", j)
			}
		}
	}
	if trimmedNear != 2 || trimmedFar != 8 {
		t.Errorf("trimmed near/far pieces = %d/%d, want 2/8", trimmedNear, trimmedFar)
	}
	assertWithinSpan(t, span.Default(), c)
}

func TestNotchSplitsMidBeam(t *testing.T) {
	// U-shaped deck with an 8 ft wide slot cut in from the outer side to
	// 8 ft off the ledger. The 12 ft mid-beam line crosses the slot.
	shape := []geometry.Point{
		ft(0, 0), ft(20, 0), ft(20, 24), ft(14, 24),
		ft(14, 8), ft(6, 8), ft(6, 24), ft(0, 24),
	}
	c := mustCalc(t, quietEngine(nil), Input{Shape: shape, LedgerIndices: LedgerIndices{0}, Inputs: standardInputs()})

	if c.NumberOfMidBeams != 1 {
		t.Fatalf("NumberOfMidBeams = %d, want 1", c.NumberOfMidBeams)
	}
	var mids [][2]float64
	for _, b := range c.Beams {
		if b.Usage != UsageMidBeam {
			continue
		}
		if !near(b.CenterlineP1.Y, geometry.Pixels(12)) {
			t.Errorf("mid-beam at y = %v ft, want 12 ft", geometry.Feet(b.CenterlineP1.Y))
		}
		x0, x1 := geometry.Feet(b.CenterlineP1.X), geometry.Feet(b.CenterlineP2.X)
		mids = append(mids, [2]float64{min(x0, x1), max(x0, x1)})
	}
	sort.Slice(mids, func(i, j int) bool { return mids[i][0] < mids[j][0] })
	want := [][2]float64{{0, 6}, {14, 20}}
	if len(mids) != len(want) {
		t.Fatalf("mid-beam runs = %v ft, want %v", mids, want)
	}
	for i := range want {
		if !near(mids[i][0], want[i][0]) || !near(mids[i][1], want[i][1]) {
			t.Errorf("mid-beam run %d = %v ft, want %v", i, mids[i], want[i])
		}
	}

	var midPosts []float64
	for _, p := range c.Posts {
		if !geometry.PointInPolygon(geometry.Point{X: p.X, Y: p.Y}, shape) {
			t.Errorf("%s post at (%v, %v) ft is outside the deck", p.Usage, geometry.Feet(p.X), geometry.Feet(p.Y))
		}
		if p.Usage == UsageMidBeam {
			midPosts = append(midPosts, geometry.Feet(p.X))
		}
	}
	sort.Float64s(midPosts)
	wantPosts := []float64{1, 5, 15, 19}
	if len(midPosts) != len(wantPosts) {
		t.Fatalf("mid-beam posts at x = %v ft, want %v", midPosts, wantPosts)
	}
	for i := range wantPosts {
		if !near(midPosts[i], wantPosts[i]) {
			t.Errorf("mid-beam posts at x = %v ft, want %v", midPosts, wantPosts)
			break
		}
	}
	for _, f := range c.Footings {
		if !geometry.PointInPolygon(geometry.Point{X: f.X, Y: f.Y}, shape) {
			t.Errorf("footing at (%v, %v) ft is outside the deck", geometry.Feet(f.X), geometry.Feet(f.Y))
		}
	}
	assertWithinSpan(t, span.Default(), c)
}

func TestNotchedFootprintGetsJogRims(t *testing.T) {
	shape := []geometry.Point{ft(0, 0), ft(16, 0), ft(16, 9), ft(10, 9), ft(10, 12), ft(0, 12)}
	c := mustCalc(t, quietEngine(nil), Input{Shape: shape, LedgerIndices: LedgerIndices{0}, Inputs: standardInputs()})

	if got := countUsage(c.RimJoists, UsageJogRim); got != 2 {
		t.Errorf("jog rims = %d, want 2", got)
	}
	if len(c.Beams) != 2 {
		t.Errorf("len(Beams) = %d, want one beam behind each outer edge", len(c.Beams))
	}
	for _, j := range c.Joists {
		if j.P1.X > geometry.Pixels(10) {
			if !j.Clipped || !near(j.P2.Y, geometry.Pixels(9)) {
				t.Errorf("joist in the notch = %+v, want clipped at 9 ft", j)
			}
		}
	}
}

func TestWallSideAttachments(t *testing.T) {
	tests := []struct {
		attachment string
		wantWallY  float64
	}{
		{AttachFloating, 2},
		{AttachConcrete, 1},
	}
	for _, tt := range tests {
		t.Run(tt.attachment, func(t *testing.T) {
			in := standardInputs()
			in.AttachmentType = tt.attachment
			c := mustCalc(t, quietEngine(nil), Input{Shape: rect(16, 12), LedgerIndices: LedgerIndices{0}, Inputs: in})
			if c.Ledger != nil {
				t.Errorf("Ledger = %+v, want none", c.Ledger)
			}
			if got := countUsage(c.RimJoists, UsageWallRim); got != 1 {
				t.Errorf("wall rims = %d, want 1", got)
			}
			found := false
			for _, b := range c.Beams {
				if b.Usage == UsageWallBeam {
					found = true
					if !near(b.CenterlineP1.Y, geometry.Pixels(tt.wantWallY)) {
						t.Errorf("wall beam at %v ft, want %v", geometry.Feet(b.CenterlineP1.Y), tt.wantWallY)
					}
				}
			}
			if !found {
				t.Error("no wall beam")
			}
		})
	}
}

func TestPictureFrame(t *testing.T) {
	in := standardInputs()
	in.PictureFrame = FrameSingle
	c := mustCalc(t, quietEngine(nil), Input{Shape: rect(16, 12), LedgerIndices: LedgerIndices{0}, Inputs: in})

	frames, regular := 0, 0
	for _, j := range c.Joists {
		switch j.Usage {
		case UsagePictureFrame:
			frames++
		case UsageJoist:
			regular++
		}
	}
	if frames != 2 || regular != 11 {
		t.Errorf("picture frame lines = %d, joists = %d, want 2 and 11", frames, regular)
	}

	ladder := 0
	for _, m := range c.PictureFrameBlocking {
		if near(m.LengthFeet, 0.5) && near(m.P1.Y, m.P2.Y) && m.P1.Y < geometry.Pixels(11) {
			ladder++
		}
	}
	if ladder != 16 {
		t.Errorf("ladder rungs = %d, want 8 rows in each side bay", ladder)
	}
	if len(c.PictureFrameBlocking) != 30 {
		t.Errorf("len(PictureFrameBlocking) = %d, want 16 ladder rungs plus a 14-bay border row", len(c.PictureFrameBlocking))
	}
}

func TestPostSpacingBound(t *testing.T) {
	c := mustCalc(t, quietEngine(nil), Input{Shape: rect(40, 10), LedgerIndices: LedgerIndices{0}, Inputs: standardInputs()})
	limit := geometry.Pixels(span.Default().Constants.MaxPostSpacingFeet) + geometry.Epsilon
	if len(c.Posts) < 2 {
		t.Fatalf("len(Posts) = %d", len(c.Posts))
	}
	for i := 1; i < len(c.Posts); i++ {
		a, b := c.Posts[i-1], c.Posts[i]
		if a.Y != b.Y {
			continue
		}
		if d := b.X - a.X; d > limit {
			t.Errorf("posts %d and %d are %v ft apart", i-1, i, geometry.Feet(d))
		}
	}
}

func TestCalculateErrors(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		code deckerr.Code
	}{
		{"two points", Input{Shape: []geometry.Point{ft(0, 0), ft(4, 0)}, LedgerIndices: LedgerIndices{0}}, deckerr.ErrCodeInvalidInput},
		{"collinear points", Input{Shape: []geometry.Point{ft(0, 0), ft(4, 0), ft(8, 0)}, LedgerIndices: LedgerIndices{0}}, deckerr.ErrCodeInvalidInput},
		{"no ledger", Input{Shape: rect(10, 10)}, deckerr.ErrCodeInvalidLedger},
		{"ledger out of range", Input{Shape: rect(10, 10), LedgerIndices: LedgerIndices{4}}, deckerr.ErrCodeInvalidLedger},
		{"diagonal-only ledger", Input{
			Shape:         []geometry.Point{ft(0, 0), ft(10, 0), ft(14, 4), ft(0, 4)},
			LedgerIndices: LedgerIndices{1},
		}, deckerr.ErrCodeInvalidLedger},
		{"bad dimensions", Input{
			Shape:          rect(10, 10),
			LedgerIndices:  LedgerIndices{0},
			DeckDimensions: DeckDimensions{Bounds: geometry.Bounds{MinX: 10, MaxX: 0, MinY: 0, MaxY: 10}},
		}, deckerr.ErrCodeInvalidDimensions},
		{"unknown attachment", Input{
			Shape:         rect(10, 10),
			LedgerIndices: LedgerIndices{0},
			Inputs:        Inputs{AttachmentType: "bolted"},
		}, deckerr.ErrCodeInvalidInput},
		{"oversized footprint", Input{
			Shape:         rect(250, 10),
			LedgerIndices: LedgerIndices{0},
		}, deckerr.ErrCodeInvalidDimensions},
		{"untabulated spacing", Input{
			Shape:         rect(10, 10),
			LedgerIndices: LedgerIndices{0},
			Inputs:        Inputs{JoistSpacing: 32},
		}, deckerr.ErrCodeNoJoistSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := quietEngine(nil).Calculate(tt.in)
			if !deckerr.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if c == nil || !c.Failed() || *c.Error != err.Error() {
				t.Fatalf("Components.Error not set: %+v", c)
			}
			if c.Beams == nil || c.Joists == nil || c.Posts == nil {
				t.Error("slices should be empty, not nil")
			}
		})
	}
}

func TestLedgerIndicesJSON(t *testing.T) {
	tests := []struct {
		in   string
		want LedgerIndices
	}{
		{`{"ledgerIndices": 2}`, LedgerIndices{2}},
		{`{"ledgerIndices": [2, 3]}`, LedgerIndices{2, 3}},
		{`{"ledgerIndices": null}`, nil},
		{`{}`, nil},
	}
	for _, tt := range tests {
		var in Input
		if err := json.Unmarshal([]byte(tt.in), &in); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
		}
		if !reflect.DeepEqual(in.LedgerIndices, tt.want) {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, in.LedgerIndices, tt.want)
		}
	}

	var in Input
	if err := json.Unmarshal([]byte(`{"ledgerIndices": "north"}`), &in); err == nil {
		t.Error("string ledger index should fail")
	}
}

func TestErrorFieldIsNullOnSuccess(t *testing.T) {
	c := mustCalc(t, quietEngine(nil), Input{Shape: rect(10, 8), LedgerIndices: LedgerIndices{0}, Inputs: standardInputs()})
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["error"]) != "null" {
		t.Errorf("error = %s, want null", raw["error"])
	}
}

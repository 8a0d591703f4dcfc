package framing

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"Deckframe/internal/calc/geometry"
	"Deckframe/internal/calc/span"
	deckerr "Deckframe/internal/errors"
)

// 2x8 joists over a mid-beam on a deck deeper than 18 ft and no deeper
// than 20 ft run as continuous boards.
const (
	forcedSingleSize         = "2x8"
	forcedSingleMinDepthFeet = 18.0
	forcedSingleMaxDepthFeet = 20.0
)

const defaultDeckHeightInches = 36.0

// Engine computes framing plans against one edition of the span tables.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	Tables *span.Tables
	Logger *log.Logger
}

// New returns an Engine. Nil arguments fall back to the embedded tables
// and the default logger.
func New(tables *span.Tables, logger *log.Logger) *Engine {
	return &Engine{Tables: tables, Logger: logger}
}

var defaultEngine = &Engine{}

// Calculate runs the default engine.
func Calculate(in Input) (*Components, error) { return defaultEngine.Calculate(in) }

// Calculate turns a footprint and construction choices into a framing
// plan. The returned Components is never nil; on failure its Error field
// is set and the coded error is returned as well.
func (e *Engine) Calculate(in Input) (*Components, error) {
	b, err := e.newBuild(in)
	if err != nil {
		return failed(newComponents(), err)
	}

	stages := []struct {
		name string
		run  func(*build) error
	}{
		{"size joists", (*build).sizeJoists},
		{"wall side", (*build).placeWallSide},
		{"outer beams", (*build).placeOuterBeams},
		{"mid-beams", (*build).placeMidBeams},
		{"supports", (*build).deriveSupports},
		{"joists", (*build).generateJoists},
		{"fit joists", (*build).fitJoists},
		{"rims", (*build).generateRims},
		{"trim to diagonals", (*build).trimToDiagonals},
		{"blocking", (*build).generateBlocking},
		{"merge beams", (*build).mergeBeams},
	}
	for _, st := range stages {
		if err := st.run(b); err != nil {
			b.log.Debug("framing stopped", "stage", st.name, "err", err)
			return failed(b.result(), err)
		}
		b.log.Debug("framing stage", "stage", st.name, "beams", len(b.beams), "joists", len(b.joists), "rims", len(b.rims))
	}
	return b.result(), nil
}

func failed(c *Components, err error) (*Components, error) {
	msg := err.Error()
	c.Error = &msg
	return c, err
}

// beamPlan is the mid-beam arrangement: noMidBeam, singleMidBeam or
// multipleMidBeams.
type beamPlan interface {
	lines() []float64
}

type noMidBeam struct{}

type singleMidBeam struct {
	y float64
}

type multipleMidBeams struct {
	ys []float64
}

func (noMidBeam) lines() []float64 { return nil }
func (p singleMidBeam) lines() []float64 { return []float64{p.y} }
func (p multipleMidBeams) lines() []float64 { return p.ys }

// build is the state of one calculation. All geometry is in the local
// frame until result() rotates it back.
type build struct {
	tables *span.Tables
	c      span.Constants
	log    *log.Logger
	in     Inputs

	frame   frame
	shape   geometry.Shape
	ledgers map[int]bool
	primary geometry.Edge
	env     geometry.Bounds
	center  geometry.Point
	wallY   float64
	outerY  float64

	start        float64 // local y of the deepest diagonal ledger point, or wallY
	depthFeet    float64
	joistSize    string
	spacing      float64
	cantilever   float64
	layout       span.MidBeamLayout
	requiresMid  bool
	plan         beamPlan
	forcedSingle bool
	supports     []float64

	ledger          *Member
	diagonalLedgers []Member
	beams           []beamLayout
	joists          []Joist
	rims            []Joist
	midSpanBlocking []Member
	frameBlocking   []Member
	warnings        []string
}

func (e *Engine) newBuild(in Input) (*build, error) {
	tables := e.Tables
	if tables == nil {
		tables = span.Default()
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	logger := e.Logger
	if logger == nil {
		logger = log.Default()
	}

	inputs, err := withDefaults(in.Inputs, tables.Constants)
	if err != nil {
		return nil, err
	}

	world := geometry.NormalizeShape(in.Shape)
	if !world.Valid() {
		return nil, deckerr.New(deckerr.ErrCodeInvalidInput, "shape needs at least 3 points, got %d", len(world.Points))
	}
	if world.Winding() == 0 {
		return nil, deckerr.New(deckerr.ErrCodeInvalidInput, "shape has no area")
	}

	ledgers, primary, err := selectLedgers(world, in.LedgerIndices)
	if err != nil {
		return nil, err
	}

	f := newFrame(world.InwardNormal(primary))
	local := geometry.NormalizeShape(f.localPoints(world.Points))

	env := local.Bounds()
	if !in.DeckDimensions.isZero() {
		if !in.DeckDimensions.Valid() {
			return nil, deckerr.New(deckerr.ErrCodeInvalidDimensions, "deck dimensions %+v are not a box", in.DeckDimensions.Bounds)
		}
		env = f.localBounds(in.DeckDimensions.Bounds)
	}
	if !env.Valid() {
		return nil, deckerr.New(deckerr.ErrCodeInvalidDimensions, "footprint bounding box is empty")
	}
	if limit := tables.Constants.MaxDeckSideFeet; limit > 0 {
		lb := local.Bounds()
		w := geometry.Feet(max(lb.Width(), env.Width()))
		h := geometry.Feet(max(lb.Height(), env.Height()))
		if w > limit || h > limit {
			return nil, deckerr.New(deckerr.ErrCodeInvalidDimensions,
				"deck is %.1f x %.1f ft, over the %.0f ft limit per side", w, h, limit)
		}
	}

	b := &build{
		tables:  tables,
		c:       tables.Constants,
		log:     logger,
		in:      inputs,
		frame:   f,
		shape:   local,
		ledgers: ledgers,
		primary: local.Edge(primary.Index),
		env:     env,
		center:  env.Center(),
		plan:    noMidBeam{},
	}
	b.wallY = b.primary.P1.Y
	b.outerY = env.MaxY
	if b.outerY-b.wallY <= geometry.Epsilon {
		return nil, deckerr.New(deckerr.ErrCodeInvalidDimensions, "deck has no depth beyond the ledger")
	}
	return b, nil
}

func withDefaults(in Inputs, c span.Constants) (Inputs, error) {
	if in.AttachmentType == "" {
		in.AttachmentType = AttachHouseRim
	}
	if in.BeamType == "" {
		in.BeamType = BeamDrop
	}
	if in.JoistSpacing <= 0 {
		in.JoistSpacing = 16
	}
	if in.DeckHeight <= 0 {
		in.DeckHeight = defaultDeckHeightInches
	}
	if in.PictureFrame == "" {
		in.PictureFrame = FrameNone
	}
	if in.FootingType == "" {
		in.FootingType = span.FootingConcrete
	}
	if in.PostSize == "" {
		in.PostSize = span.PostAuto
	}
	if in.BeamPly <= 0 {
		in.BeamPly = c.DefaultBeamPly
	}

	switch in.AttachmentType {
	case AttachHouseRim, AttachFloating, AttachConcrete:
	default:
		return in, deckerr.New(deckerr.ErrCodeInvalidInput, "unknown attachment type %q", in.AttachmentType)
	}
	switch in.BeamType {
	case BeamFlush, BeamDrop:
	default:
		return in, deckerr.New(deckerr.ErrCodeInvalidInput, "unknown beam type %q", in.BeamType)
	}
	switch in.PictureFrame {
	case FrameNone, FrameSingle, FrameDouble:
	default:
		return in, deckerr.New(deckerr.ErrCodeInvalidInput, "unknown picture frame %q", in.PictureFrame)
	}
	switch in.FootingType {
	case span.FootingConcrete, span.FootingHelical, span.FootingPrecast:
	default:
		return in, deckerr.New(deckerr.ErrCodeInvalidInput, "unknown footing type %q", in.FootingType)
	}
	switch in.PostSize {
	case span.PostAuto, span.Post4x4, span.Post6x6:
	default:
		return in, deckerr.New(deckerr.ErrCodeInvalidInput, "unknown post size %q", in.PostSize)
	}
	return in, nil
}

// selectLedgers validates the ledger indices and returns the primary
// edge: the first axis-aligned one.
func selectLedgers(s geometry.Shape, indices LedgerIndices) (map[int]bool, geometry.Edge, error) {
	if len(indices) == 0 {
		return nil, geometry.Edge{}, deckerr.New(deckerr.ErrCodeInvalidLedger, "no ledger edge selected")
	}
	set := make(map[int]bool, len(indices))
	primary := -1
	for _, i := range indices {
		if i < 0 || i >= s.NumEdges {
			return nil, geometry.Edge{}, deckerr.New(deckerr.ErrCodeInvalidLedger, "ledger index %d out of range [0,%d)", i, s.NumEdges)
		}
		if s.Edges[i].Kind == geometry.Degenerate {
			return nil, geometry.Edge{}, deckerr.New(deckerr.ErrCodeInvalidLedger, "ledger edge %d has no length", i)
		}
		set[i] = true
		if primary < 0 && s.Edges[i].Kind.AxisAligned() {
			primary = i
		}
	}
	if primary < 0 {
		return nil, geometry.Edge{}, deckerr.New(deckerr.ErrCodeInvalidLedger, "no horizontal or vertical edge among ledger indices %v", []int(indices))
	}
	return set, s.Edges[primary], nil
}

// runStart is where the longest joists start: the ledger line, or the
// deepest point of a diagonal ledger set back from it.
func (b *build) runStart() float64 {
	y := b.wallY
	for _, e := range b.diagonalEdges(true) {
		y = min(y, e.P1.Y, e.P2.Y)
	}
	return y
}

func (b *build) sizeJoists() error {
	b.start = b.runStart()
	b.depthFeet = geometry.Feet(b.outerY - b.start)
	sizing, err := b.tables.SizeJoists(b.depthFeet, b.in.JoistSpacing, b.in.DeckHeight)
	if err != nil {
		return err
	}
	b.layout = span.MidBeams(b.depthFeet, sizing.MaxSpanFeet)
	if sizing.RequiresMidBeam {
		b.requiresMid = true
		sizing, err = b.tables.SizeJoists(b.layout.SubSpanFeet, b.in.JoistSpacing, b.in.DeckHeight)
		if err != nil {
			return err
		}
	}
	b.joistSize = sizing.Size
	b.forcedSingle = b.layout.Count > 0 && b.joistSize == forcedSingleSize &&
		b.depthFeet > forcedSingleMinDepthFeet && b.depthFeet <= forcedSingleMaxDepthFeet
	b.spacing = geometry.Pixels(b.in.JoistSpacing / 12)
	b.cantilever = geometry.Pixels(b.tables.CantileverFeet(b.joistSize))

	b.log.Debug("joists sized", "size", b.joistSize, "depthFeet", b.depthFeet,
		"midBeams", b.layout.Count, "subSpanFeet", b.layout.SubSpanFeet, "forcedSingle", b.forcedSingle)
	return nil
}

// placeWallSide puts a ledger on the primary edge for house attachment,
// or a wall-side beam for floating and concrete decks. Diagonal ledger
// edges become their own members either way.
func (b *build) placeWallSide() error {
	switch b.in.AttachmentType {
	case AttachHouseRim:
		b.ledger = &Member{P1: b.primary.P1, P2: b.primary.P2, Size: b.joistSize, Usage: UsageLedger}
	default:
		offset := b.cantilever
		if b.in.AttachmentType == AttachConcrete {
			offset = geometry.Pixels(b.c.DropBeamSetbackFeet)
		}
		y := b.wallY + offset
		for _, x := range b.extentsAt(y) {
			b.beams = append(b.beams, b.layoutBeam(geometry.Point{X: x[0], Y: y}, geometry.Point{X: x[1], Y: y}, UsageWallBeam, b.layout.SubSpanFeet))
		}
	}
	for _, e := range b.diagonalEdges(true) {
		b.diagonalLedgers = append(b.diagonalLedgers, Member{P1: e.P1, P2: e.P2, Size: b.joistSize, Usage: UsageDiagonalLedger})
	}
	return nil
}

func (b *build) placeOuterBeams() error {
	segs := b.outlineSegments()
	for _, s := range segs {
		b.beams = append(b.beams, b.layoutBeam(s.P1, s.P2, UsageOuterBeam, b.layout.SubSpanFeet))
	}
	if len(segs) > 0 {
		return nil
	}

	y := b.outerY - b.cantilever
	if y <= b.wallY+geometry.Epsilon {
		y = (b.wallY + b.outerY) / 2
	}
	extents := b.extentsAt(y)
	if len(extents) == 0 {
		return deckerr.New(deckerr.ErrCodeInvalidDimensions, "no room for an outer beam %.2f ft from the ledger", geometry.Feet(y-b.wallY))
	}
	for _, x := range extents {
		b.beams = append(b.beams, b.layoutBeam(geometry.Point{X: x[0], Y: y}, geometry.Point{X: x[1], Y: y}, UsageOuterBeam, b.layout.SubSpanFeet))
	}
	return nil
}

func (b *build) placeMidBeams() error {
	step := geometry.Pixels(b.layout.SubSpanFeet)
	var ys []float64
	for i := 1; i <= b.layout.Count; i++ {
		y := b.start + step*float64(i)
		if y <= b.wallY+geometry.Epsilon {
			return deckerr.New(deckerr.ErrCodeMidBeamDegenerate,
				"mid-beam %d falls behind the ledger line, inside the diagonal ledger recess", i)
		}
		extents := b.extentsAt(y)
		if len(extents) == 0 {
			if b.forcedSingle {
				b.log.Debug("skipping degenerate mid-beam", "index", i)
				continue
			}
			return deckerr.New(deckerr.ErrCodeMidBeamDegenerate,
				"mid-beam %d at %.2f ft from the ledger has no length inside the footprint", i, geometry.Feet(y-b.wallY))
		}
		for _, x := range extents {
			b.beams = append(b.beams, b.layoutBeam(geometry.Point{X: x[0], Y: y}, geometry.Point{X: x[1], Y: y}, UsageMidBeam, b.layout.SubSpanFeet))
		}
		ys = append(ys, y)
	}
	switch len(ys) {
	case 0:
		b.plan = noMidBeam{}
	case 1:
		b.plan = singleMidBeam{y: ys[0]}
	default:
		b.plan = multipleMidBeams{ys: ys}
	}
	return nil
}

func (b *build) deriveSupports() error {
	b.supports = append([]float64{b.wallY}, b.plan.lines()...)
	b.supports = append(b.supports, b.outerY)
	return nil
}

// spans returns the joist pieces' nominal [start, end] intervals.
func (b *build) spans() [][2]float64 {
	if b.forcedSingle || len(b.supports) <= 2 {
		return [][2]float64{{b.wallY, b.outerY}}
	}
	out := make([][2]float64, 0, len(b.supports)-1)
	for i := 1; i < len(b.supports); i++ {
		out = append(out, [2]float64{b.supports[i-1], b.supports[i]})
	}
	return out
}

// extentsAt returns the x-ranges of the line y that lie inside the
// footprint, left to right. A notch splits the line into several ranges.
func (b *build) extentsAt(y float64) [][2]float64 {
	lb := b.shape.Bounds()
	a := geometry.Point{X: min(b.env.MinX, lb.MinX) - 1, Y: y}
	c := geometry.Point{X: max(b.env.MaxX, lb.MaxX) + 1, Y: y}
	xs := geometry.Crossings(a, c, b.shape.Edges)

	var out [][2]float64
	for i := 1; i < len(xs); i++ {
		x0, x1 := xs[i-1].X, xs[i].X
		if x1-x0 <= geometry.Epsilon || !b.shape.Contains(geometry.Point{X: (x0 + x1) / 2, Y: y}) {
			continue
		}
		if n := len(out); n > 0 && x0-out[n-1][1] <= geometry.Epsilon {
			out[n-1][1] = x1
			continue
		}
		out = append(out, [2]float64{x0, x1})
	}
	return out
}

func (b *build) warn(msg string) {
	if msg == "" {
		return
	}
	for _, w := range b.warnings {
		if w == msg {
			return
		}
	}
	b.warnings = append(b.warnings, msg)
}

// result rotates the local plan back to world coordinates.
func (b *build) result() *Components {
	b.sortLocal()

	c := newComponents()
	f := b.frame
	if b.ledger != nil {
		m := f.member(withLength(*b.ledger))
		c.Ledger = &m
	}
	for _, m := range b.diagonalLedgers {
		c.DiagonalLedgers = append(c.DiagonalLedgers, f.member(withLength(m)))
	}
	type support struct {
		post    Post
		footing Footing
	}
	var supports []support
	for _, bl := range b.beams {
		c.Beams = append(c.Beams, f.beam(bl.Beam))
		for i := range bl.Posts {
			supports = append(supports, support{bl.Posts[i], bl.Footings[i]})
		}
	}
	sort.SliceStable(supports, func(i, j int) bool {
		return pointLess(geometry.Point{X: supports[i].post.X, Y: supports[i].post.Y}, geometry.Point{X: supports[j].post.X, Y: supports[j].post.Y})
	})
	for _, s := range supports {
		c.Posts = append(c.Posts, f.post(s.post))
		c.Footings = append(c.Footings, f.footing(s.footing))
	}
	for _, j := range b.joists {
		c.Joists = append(c.Joists, f.joist(joistLength(j)))
	}
	for _, j := range b.rims {
		c.RimJoists = append(c.RimJoists, f.joist(joistLength(j)))
	}
	for _, m := range b.midSpanBlocking {
		c.MidSpanBlocking = append(c.MidSpanBlocking, f.member(withLength(m)))
	}
	for _, m := range b.frameBlocking {
		c.PictureFrameBlocking = append(c.PictureFrameBlocking, f.member(withLength(m)))
	}

	c.TotalDepthFeet = b.depthFeet
	c.CornerCount = b.shape.NumEdges
	c.BeamWarning = strings.Join(b.warnings, "; ")
	c.JoistSize = b.joistSize
	c.JoistSpacing = b.in.JoistSpacing
	c.RequiresMidBeam = b.requiresMid
	c.NumberOfMidBeams = len(b.plan.lines())
	return c
}

func withLength(m Member) Member {
	m.LengthFeet = geometry.Feet(geometry.Distance(m.P1, m.P2))
	return m
}

func joistLength(j Joist) Joist {
	j.LengthFeet = geometry.Feet(geometry.Distance(j.P1, j.P2))
	return j
}

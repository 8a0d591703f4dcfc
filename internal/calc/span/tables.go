// Package span answers the sizing questions the framing engine asks:
// which joist carries a span, which beam carries a post span, how big a
// footing has to be. All answers come from read-only Tables.
package span

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"

	deckerr "Deckframe/internal/errors"
)

//go:embed defaults.toml
var defaultTOML []byte

// Constants are the scale and code constants that travel with a table
// edition.
type Constants struct {
	PostInsetFeet              float64   `toml:"post_inset_feet" json:"postInsetFeet"`
	MaxPostSpacingFeet         float64   `toml:"max_post_spacing_feet" json:"maxPostSpacingFeet"`
	BeamCantileverFeet         float64   `toml:"beam_cantilever_feet" json:"beamCantileverFeet"`
	DefaultJoistCantileverFeet float64   `toml:"default_joist_cantilever_feet" json:"defaultJoistCantileverFeet"`
	MinHeightForNo2x6Inches    float64   `toml:"min_height_for_no_2x6_inches" json:"minHeightForNo2x6Inches"`
	MaxBlockingSpacingFeet     float64   `toml:"max_blocking_spacing_feet" json:"maxBlockingSpacingFeet"`
	PictureFrameSingleInches   float64   `toml:"picture_frame_single_inches" json:"pictureFrameSingleInches"`
	PictureFrameDoubleInches   float64   `toml:"picture_frame_double_inches" json:"pictureFrameDoubleInches"`
	DropBeamSetbackFeet        float64   `toml:"drop_beam_setback_feet" json:"dropBeamSetbackFeet"`
	MaxDeckSideFeet            float64   `toml:"max_deck_side_feet" json:"maxDeckSideFeet"`
	Max4x4PostHeightFeet       float64   `toml:"max_4x4_post_height_feet" json:"max4x4PostHeightFeet"`
	DefaultBeamPly             int       `toml:"default_beam_ply" json:"defaultBeamPly"`
	LiveLoadPSF                float64   `toml:"live_load_psf" json:"liveLoadPsf"`
	DeadLoadPSF                float64   `toml:"dead_load_psf" json:"deadLoadPsf"`
	SoilBearingPSF             float64   `toml:"soil_bearing_psf" json:"soilBearingPsf"`
	FootingDiametersInches     []float64 `toml:"footing_diameters_inches" json:"footingDiametersInches"`
}

// BeamRow is one size/ply line of the beam table.
type BeamRow struct {
	Size  string    `toml:"size" json:"size"`
	Ply   int       `toml:"ply" json:"ply"`
	Spans []float64 `toml:"spans" json:"spans"`
}

// Tables is one edition of the span, beam and footing tables.
type Tables struct {
	Constants           Constants            `toml:"constants" json:"constants"`
	JoistSizes          []string             `toml:"joist_sizes" json:"joistSizes"`
	JoistSpacingsInches []float64            `toml:"joist_spacings_inches" json:"joistSpacingsInches"`
	JoistSpans          map[string][]float64 `toml:"joist_spans" json:"joistSpans"`
	JoistCantileverFeet map[string]float64   `toml:"joist_cantilever_feet" json:"joistCantileverFeet"`
	LumberDepthInches   map[string]float64   `toml:"lumber_depth_inches" json:"lumberDepthInches"`
	BeamJoistSpansFeet  []float64            `toml:"beam_joist_spans_feet" json:"beamJoistSpansFeet"`
	Beams               []BeamRow            `toml:"beam" json:"beams"`
}

var loadDefault = sync.OnceValues(func() (*Tables, error) {
	return Parse(defaultTOML)
})

// Default returns the embedded tables. The result is shared and must not
// be modified.
func Default() *Tables {
	t, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("span: embedded tables: %v", err))
	}
	return t
}

// Load reads a tables file. An empty path returns the embedded tables.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, deckerr.Wrap(deckerr.ErrCodeInvalidTables, err, "read %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML tables and checks that rows line up with their
// column headers.
func Parse(data []byte) (*Tables, error) {
	var t Tables
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, deckerr.Wrap(deckerr.ErrCodeInvalidTables, err, "decode tables")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate reports rows whose length does not match their header. Empty
// tables are allowed; the sizing functions report them when asked.
func (t *Tables) Validate() error {
	for size, spans := range t.JoistSpans {
		if len(spans) != len(t.JoistSpacingsInches) {
			return deckerr.New(deckerr.ErrCodeInvalidTables,
				"joist_spans[%q] has %d values for %d spacings", size, len(spans), len(t.JoistSpacingsInches))
		}
	}
	for _, row := range t.Beams {
		if len(row.Spans) != len(t.BeamJoistSpansFeet) {
			return deckerr.New(deckerr.ErrCodeInvalidTables,
				"beam %d-ply %s has %d values for %d joist spans", row.Ply, row.Size, len(row.Spans), len(t.BeamJoistSpansFeet))
		}
		if row.Ply < 1 {
			return deckerr.New(deckerr.ErrCodeInvalidTables, "beam %s has ply %d", row.Size, row.Ply)
		}
	}
	if t.Constants.MaxPostSpacingFeet < 0 || t.Constants.PostInsetFeet < 0 {
		return deckerr.New(deckerr.ErrCodeInvalidTables, "post spacing constants must not be negative")
	}
	if t.Constants.MaxDeckSideFeet < 0 {
		return deckerr.New(deckerr.ErrCodeInvalidTables, "max_deck_side_feet must not be negative")
	}
	return nil
}

func (t *Tables) sizeRank(size string) int {
	for i, s := range t.JoistSizes {
		if s == size {
			return i
		}
	}
	return len(t.JoistSizes)
}

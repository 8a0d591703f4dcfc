package framing

import (
	"bytes"
	"encoding/json"

	"Deckframe/internal/calc/geometry"
)

// Attachment types.
const (
	AttachHouseRim = "house_rim"
	AttachFloating = "floating"
	AttachConcrete = "concrete"
)

// Beam types.
const (
	BeamFlush = "flush"
	BeamDrop  = "drop"
)

// Picture frame modes.
const (
	FrameNone   = "none"
	FrameSingle = "single"
	FrameDouble = "double"
)

// Member usages.
const (
	UsageLedger               = "ledger"
	UsageDiagonalLedger       = "diagonal_ledger"
	UsageOuterBeam            = "outer_beam"
	UsageMidBeam              = "mid_beam"
	UsageWallBeam             = "wall_beam"
	UsageJoist                = "joist"
	UsagePictureFrame         = "picture_frame"
	UsageEndJoist             = "end_joist"
	UsageOuterRim             = "outer_rim"
	UsageWallRim              = "wall_rim"
	UsageDiagonalRim          = "diagonal_rim"
	UsageJogRim               = "jog_rim"
	UsageMidSpanBlocking      = "mid_span_blocking"
	UsagePictureFrameBlocking = "picture_frame_blocking"
)

// Inputs are the construction choices of one deck.
type Inputs struct {
	AttachmentType string  `json:"attachmentType"`
	BeamType       string  `json:"beamType"`
	JoistSpacing   float64 `json:"joistSpacing"` // inches on center
	DeckHeight     float64 `json:"deckHeight"`   // inches
	PictureFrame   string  `json:"pictureFrame"`
	FootingType    string  `json:"footingType"`
	PostSize       string  `json:"postSize"`
	BeamPly        int     `json:"beamPly,omitempty"`
}

// DeckDimensions is the placement envelope. A zero value is derived from
// the shape.
type DeckDimensions struct {
	geometry.Bounds
	WidthFeet float64 `json:"widthFeet,omitempty"`
}

func (d DeckDimensions) isZero() bool {
	return d.MinX == 0 && d.MaxX == 0 && d.MinY == 0 && d.MaxY == 0
}

// LedgerIndices selects the shape edges attached to the house. The first
// axis-aligned entry is the primary ledger.
//
// JSON accepts a single number or an array.
type LedgerIndices []int

func (l *LedgerIndices) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var many []int
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*l = many
		return nil
	}
	var one int
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = LedgerIndices{one}
	return nil
}

// Input is one framing request.
type Input struct {
	Shape          []geometry.Point `json:"shape"`
	LedgerIndices  LedgerIndices    `json:"ledgerIndices"`
	Inputs         Inputs           `json:"inputs"`
	DeckDimensions DeckDimensions   `json:"deckDimensions"`
}

// Member is a straight piece of lumber.
type Member struct {
	P1         geometry.Point `json:"p1"`
	P2         geometry.Point `json:"p2"`
	Size       string         `json:"size"`
	LengthFeet float64        `json:"lengthFeet"`
	Usage      string         `json:"usage"`
}

// Beam is a support member. P1/P2 are the lumber ends; the centerline is
// the support line between the end posts' insets.
type Beam struct {
	P1                       geometry.Point `json:"p1"`
	P2                       geometry.Point `json:"p2"`
	CenterlineP1             geometry.Point `json:"centerlineP1"`
	CenterlineP2             geometry.Point `json:"centerlineP2"`
	PositionCoordinateLineP1 geometry.Point `json:"positionCoordinateLineP1"`
	PositionCoordinateLineP2 geometry.Point `json:"positionCoordinateLineP2"`
	Size                     string         `json:"size"`
	Ply                      int            `json:"ply"`
	LengthFeet               float64        `json:"lengthFeet"`
	Usage                    string         `json:"usage"`
	IsFlush                  bool           `json:"isFlush"`
	IsDiagonal               bool           `json:"isDiagonal"`
}

// Joist is a joist or rim joist. P1 is always the wall side.
// CutAngle is the miter in degrees at a trimmed end, 0 for a square cut.
type Joist struct {
	P1                geometry.Point `json:"p1"`
	P2                geometry.Point `json:"p2"`
	Size              string         `json:"size"`
	LengthFeet        float64        `json:"lengthFeet"`
	Usage             string         `json:"usage"`
	CutAngle          float64        `json:"cutAngle"`
	TrimmedAtDiagonal bool           `json:"trimmedAtDiagonal"`
	Clipped           bool           `json:"clipped"`
}

type Post struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Size       string  `json:"size"`
	HeightFeet float64 `json:"heightFeet"`
	Usage      string  `json:"usage"`
}

type Footing struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Type          string  `json:"type"`
	Diameter      float64 `json:"diameter"`
	Load          float64 `json:"load"`
	TributaryArea float64 `json:"tributaryArea"`
	Message       string  `json:"message,omitempty"`
}

// Components is the framing plan. When Error is set the slices hold
// whatever was built before the failure.
type Components struct {
	Ledger               *Member   `json:"ledger"`
	Beams                []Beam    `json:"beams"`
	Joists               []Joist   `json:"joists"`
	Posts                []Post    `json:"posts"`
	Footings             []Footing `json:"footings"`
	RimJoists            []Joist   `json:"rimJoists"`
	MidSpanBlocking      []Member  `json:"midSpanBlocking"`
	PictureFrameBlocking []Member  `json:"pictureFrameBlocking"`
	DiagonalLedgers      []Member  `json:"diagonalLedgers"`
	Error                *string   `json:"error"`
	TotalDepthFeet       float64   `json:"totalDepthFeet"`
	CornerCount          int       `json:"cornerCount"`
	BeamWarning          string    `json:"beamWarning,omitempty"`
	JoistSize            string    `json:"joistSize"`
	JoistSpacing         float64   `json:"joistSpacing"`
	RequiresMidBeam      bool      `json:"requiresMidBeam"`
	NumberOfMidBeams     int       `json:"numberOfMidBeams"`
}

func newComponents() *Components {
	return &Components{
		Beams:                []Beam{},
		Joists:               []Joist{},
		Posts:                []Post{},
		Footings:             []Footing{},
		RimJoists:            []Joist{},
		MidSpanBlocking:      []Member{},
		PictureFrameBlocking: []Member{},
		DiagonalLedgers:      []Member{},
	}
}

// Failed reports whether the calculation stopped with an error.
func (c *Components) Failed() bool { return c.Error != nil }

// Package importer frames rectangular decks listed in a spreadsheet.
//
// The first sheet is read; row 1 is a header. Columns:
//
//	name, width_ft, depth_ft, joist_spacing_in, deck_height_in,
//	attachment, beam_type, picture_frame, footing_type
//
// Only name, width and depth are required. The ledger runs along the
// width.
package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"Deckframe/internal/calc/framing"
	"Deckframe/internal/calc/geometry"
	deckerr "Deckframe/internal/errors"
)

type Row struct {
	Row   int                 `json:"row"`
	Name  string              `json:"name"`
	Plan  *framing.Components `json:"plan,omitempty"`
	Error string              `json:"error,omitempty"`
}

type Result struct {
	Count   int   `json:"count"`
	Skipped int   `json:"skipped"`
	Results []Row `json:"results"`
}

// Import reads r as XLSX and frames every row. Rows that cannot be parsed
// or framed are reported with their error.
func Import(r io.Reader, e *framing.Engine) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, deckerr.Wrap(deckerr.ErrCodeInvalidInput, err, "not a spreadsheet")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		return Result{}, deckerr.New(deckerr.ErrCodeInvalidInput, "sheet %q has no data rows", sheet)
	}
	if e == nil {
		e = framing.New(nil, nil)
	}

	res := Result{Results: []Row{}}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		out := Row{Row: i + 1}
		if len(row) > 0 {
			out.Name = strings.TrimSpace(row[0])
		}
		input, err := parseDeckRow(row)
		if err != nil {
			out.Error = err.Error()
			res.Skipped++
			res.Results = append(res.Results, out)
			continue
		}
		plan, err := e.Calculate(input)
		out.Plan = plan
		if err != nil {
			out.Error = err.Error()
			res.Skipped++
		} else {
			res.Count++
		}
		res.Results = append(res.Results, out)
	}
	return res, nil
}

func parseDeckRow(row []string) (framing.Input, error) {
	if len(row) < 3 {
		return framing.Input{}, fmt.Errorf("need name, width and depth")
	}
	width, err := toFloat(row[1])
	if err != nil {
		return framing.Input{}, fmt.Errorf("width %q: %w", row[1], err)
	}
	depth, err := toFloat(row[2])
	if err != nil {
		return framing.Input{}, fmt.Errorf("depth %q: %w", row[2], err)
	}
	if width <= 0 || depth <= 0 {
		return framing.Input{}, fmt.Errorf("width and depth must be positive")
	}

	var in framing.Inputs
	if v := cell(row, 3); v != "" {
		if in.JoistSpacing, err = toFloat(v); err != nil {
			return framing.Input{}, fmt.Errorf("joist spacing %q: %w", v, err)
		}
	}
	if v := cell(row, 4); v != "" {
		if in.DeckHeight, err = toFloat(v); err != nil {
			return framing.Input{}, fmt.Errorf("deck height %q: %w", v, err)
		}
	}
	in.AttachmentType = cell(row, 5)
	in.BeamType = cell(row, 6)
	in.PictureFrame = cell(row, 7)
	in.FootingType = cell(row, 8)

	w, d := geometry.Pixels(width), geometry.Pixels(depth)
	return framing.Input{
		Shape:         []geometry.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: d}, {X: 0, Y: d}},
		LedgerIndices: framing.LedgerIndices{0},
		Inputs:        in,
	}, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.ToLower(strings.TrimSpace(row[i]))
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func toFloat(s string) (float64, error) {
	var v float64
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%f", &v)
	return v, err
}

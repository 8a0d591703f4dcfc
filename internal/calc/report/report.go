// Package report renders a framing plan as a PDF: a summary of the
// inputs, a plan drawing, the member schedule and any warnings.
package report

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/phpdave11/gofpdf"

	"Deckframe/internal/calc/framing"
	"Deckframe/internal/calc/geometry"
	"Deckframe/internal/calc/materials"
)

type Meta struct {
	Project string `json:"project"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Notes   string `json:"notes"`
}

const (
	margin     = 15.0
	planHeight = 110.0
)

// Write renders plan to w. take may be empty; the cut list section is
// left out then.
func Write(w io.Writer, meta Meta, in framing.Inputs, plan *framing.Components, take materials.Takeoff) error {
	if meta.Title == "" {
		meta.Title = "Deck Framing Plan"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, meta.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", meta.Project))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Author: %s", meta.Author))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(10)

	section(pdf, "Inputs")
	keyValues(pdf, [][2]string{
		{"Attachment", orDefault(in.AttachmentType)},
		{"Beam type", orDefault(in.BeamType)},
		{"Joist spacing", fmt.Sprintf("%g in", plan.JoistSpacing)},
		{"Deck height", orDefault(inches(in.DeckHeight))},
		{"Picture frame", orDefault(in.PictureFrame)},
		{"Footings", orDefault(in.FootingType)},
		{"Depth", fmt.Sprintf("%.2f ft", plan.TotalDepthFeet)},
		{"Joists", fmt.Sprintf("%s @ %g in", plan.JoistSize, plan.JoistSpacing)},
		{"Mid-beams", fmt.Sprintf("%d", plan.NumberOfMidBeams)},
	})

	section(pdf, "Plan")
	drawPlan(pdf, plan)

	section(pdf, "Member schedule")
	schedule(pdf, plan)

	if len(take.Lines) > 0 {
		section(pdf, "Cut list")
		table(pdf, []string{"Usage", "Size", "Stock", "Count"}, []float64{70, 30, 30, 30}, cutRows(take))
	}

	if plan.BeamWarning != "" || meta.Notes != "" {
		section(pdf, "Notes")
		if plan.BeamWarning != "" {
			pdf.SetTextColor(160, 40, 40)
			pdf.MultiCell(0, 6, "Beam: "+plan.BeamWarning, "", "L", false)
			pdf.SetTextColor(0, 0, 0)
		}
		if meta.Notes != "" {
			pdf.MultiCell(0, 6, meta.Notes, "", "L", false)
		}
	}

	return pdf.Output(w)
}

func orDefault(s string) string {
	if s == "" {
		return "default"
	}
	return s
}

func inches(v float64) string {
	if v <= 0 {
		return ""
	}
	return fmt.Sprintf("%g in", v)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
}

func keyValues(pdf *gofpdf.Fpdf, kv [][2]string) {
	for _, p := range kv {
		pdf.CellFormat(45, 6, p[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, p[1], "", 1, "L", false, 0, "")
	}
}

func table(pdf *gofpdf.Fpdf, header []string, widths []float64, rows [][]string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		for i, v := range row {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// scheduleRow groups members of one usage and size.
type scheduleRow struct {
	usage, size string
	count       int
	feet        float64
}

func schedule(pdf *gofpdf.Fpdf, plan *framing.Components) {
	var order []string
	groups := map[string]*scheduleRow{}
	add := func(usage, size string, feet float64) {
		key := usage + "/" + size
		g, ok := groups[key]
		if !ok {
			g = &scheduleRow{usage: usage, size: size}
			groups[key] = g
			order = append(order, key)
		}
		g.count++
		g.feet += feet
	}
	if plan.Ledger != nil {
		add(plan.Ledger.Usage, plan.Ledger.Size, plan.Ledger.LengthFeet)
	}
	for _, m := range plan.DiagonalLedgers {
		add(m.Usage, m.Size, m.LengthFeet)
	}
	for _, b := range plan.Beams {
		add(b.Usage, fmt.Sprintf("%d-ply %s", b.Ply, b.Size), b.LengthFeet)
	}
	for _, j := range plan.Joists {
		add(j.Usage, j.Size, j.LengthFeet)
	}
	for _, j := range plan.RimJoists {
		add(j.Usage, j.Size, j.LengthFeet)
	}
	for _, m := range plan.MidSpanBlocking {
		add(m.Usage, m.Size, m.LengthFeet)
	}
	for _, m := range plan.PictureFrameBlocking {
		add(m.Usage, m.Size, m.LengthFeet)
	}

	rows := make([][]string, 0, len(order)+2)
	for _, k := range order {
		g := groups[k]
		rows = append(rows, []string{g.usage, g.size, fmt.Sprintf("%d", g.count), fmt.Sprintf("%.1f", g.feet)})
	}
	if len(plan.Posts) > 0 {
		rows = append(rows, []string{"post", plan.Posts[0].Size, fmt.Sprintf("%d", len(plan.Posts)), fmt.Sprintf("%.1f", plan.Posts[0].HeightFeet*float64(len(plan.Posts)))})
	}
	if len(plan.Footings) > 0 {
		rows = append(rows, []string{"footing", plan.Footings[0].Type, fmt.Sprintf("%d", len(plan.Footings)), ""})
	}
	table(pdf, []string{"Usage", "Size", "Count", "Total ft"}, []float64{70, 40, 25, 25}, rows)
}

func cutRows(t materials.Takeoff) [][]string {
	rows := make([][]string, 0, len(t.Lines))
	for _, l := range t.Lines {
		rows = append(rows, []string{l.Usage, l.Size, fmt.Sprintf("%d ft", l.StockFeet), fmt.Sprintf("%d", l.Count)})
	}
	return rows
}

// drawPlan scales the plan into a box under the cursor, y down as in the
// drawing coordinates.
func drawPlan(pdf *gofpdf.Fpdf, plan *framing.Components) {
	var pts []geometry.Point
	collect := func(ps ...geometry.Point) { pts = append(pts, ps...) }
	for _, b := range plan.Beams {
		collect(b.P1, b.P2)
	}
	for _, j := range plan.Joists {
		collect(j.P1, j.P2)
	}
	for _, j := range plan.RimJoists {
		collect(j.P1, j.P2)
	}
	if plan.Ledger != nil {
		collect(plan.Ledger.P1, plan.Ledger.P2)
	}
	if len(pts) == 0 {
		pdf.Cell(0, 6, "(nothing to draw)")
		pdf.Ln(8)
		return
	}
	env := geometry.BoundsOf(pts)

	pageW, _ := pdf.GetPageSize()
	boxW := pageW - 2*margin
	scale := math.Min(boxW/math.Max(env.Width(), 1), planHeight/math.Max(env.Height(), 1))
	x0, y0 := margin, pdf.GetY()
	at := func(p geometry.Point) (float64, float64) {
		return x0 + (p.X-env.MinX)*scale, y0 + (p.Y-env.MinY)*scale
	}
	line := func(p1, p2 geometry.Point) {
		ax, ay := at(p1)
		bx, by := at(p2)
		pdf.Line(ax, ay, bx, by)
	}

	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(120, 120, 120)
	for _, j := range plan.Joists {
		line(j.P1, j.P2)
	}
	for _, m := range plan.MidSpanBlocking {
		line(m.P1, m.P2)
	}
	for _, m := range plan.PictureFrameBlocking {
		line(m.P1, m.P2)
	}
	pdf.SetLineWidth(0.4)
	pdf.SetDrawColor(0, 0, 0)
	for _, j := range plan.RimJoists {
		line(j.P1, j.P2)
	}
	pdf.SetLineWidth(0.8)
	pdf.SetDrawColor(30, 80, 160)
	for _, b := range plan.Beams {
		line(b.P1, b.P2)
	}
	pdf.SetDrawColor(160, 40, 40)
	if plan.Ledger != nil {
		line(plan.Ledger.P1, plan.Ledger.P2)
	}
	for _, m := range plan.DiagonalLedgers {
		line(m.P1, m.P2)
	}
	pdf.SetFillColor(0, 0, 0)
	for _, p := range plan.Posts {
		x, y := at(geometry.Point{X: p.X, Y: p.Y})
		pdf.Circle(x, y, 0.8, "F")
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.SetY(y0 + env.Height()*scale + 4)
}

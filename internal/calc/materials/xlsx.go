package materials

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	cutListSheet = "Cut list"
	supportSheet = "Posts & footings"
)

// WriteXLSX writes the takeoff as a workbook with a cut-list sheet and a
// posts and footings sheet.
func WriteXLSX(w io.Writer, t Takeoff) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", cutListSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(supportSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	rows := [][]any{{"Usage", "Size", "Stock (ft)", "Count", "Linear ft"}}
	for _, l := range t.Lines {
		rows = append(rows, []any{l.Usage, l.Size, l.StockFeet, l.Count, l.LinearFeet})
	}
	rows = append(rows, []any{"Total", "", "", t.Boards, t.TotalLinearFeet})
	if err := writeRows(f, cutListSheet, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(cutListSheet, "A1", "E1", bold); err != nil {
		return err
	}

	rows = [][]any{{"Post", "Count", "Height (ft)"}}
	for _, p := range t.Posts {
		rows = append(rows, []any{p.Size, p.Count, p.HeightFeet})
	}
	rows = append(rows, []any{}, []any{"Footing", "Diameter (in)", "Count"})
	footingHeader := len(rows)
	for _, ft := range t.Footings {
		rows = append(rows, []any{ft.Type, ft.Diameter, ft.Count})
	}
	if err := writeRows(f, supportSheet, rows); err != nil {
		return err
	}
	for _, r := range []int{1, footingHeader} {
		from, _ := excelize.CoordinatesToCellName(1, r)
		to, _ := excelize.CoordinatesToCellName(3, r)
		if err := f.SetCellStyle(supportSheet, from, to, bold); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

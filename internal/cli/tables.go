package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) tablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "Print the active span tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.tables()
			if err != nil {
				return err
			}

			headers := []string{"Joist"}
			for _, s := range t.JoistSpacingsInches {
				headers = append(headers, fmt.Sprintf("%g in o.c.", s))
			}
			headers = append(headers, "Cantilever")
			var rows [][]string
			for _, size := range t.JoistSizes {
				row := []string{size}
				for _, v := range t.JoistSpans[size] {
					row = append(row, fmt.Sprintf("%.2f", v))
				}
				row = append(row, fmt.Sprintf("%.2f", t.CantileverFeet(size)))
				rows = append(rows, row)
			}
			printTitle(c.Out, "Joist spans (ft)")
			renderTable(c.Out, headers, rows)

			headers = []string{"Beam"}
			for _, s := range t.BeamJoistSpansFeet {
				headers = append(headers, fmt.Sprintf("%g ft", s))
			}
			rows = rows[:0]
			for _, b := range t.Beams {
				row := []string{fmt.Sprintf("%d-ply %s", b.Ply, b.Size)}
				for _, v := range b.Spans {
					row = append(row, fmt.Sprintf("%.2f", v))
				}
				rows = append(rows, row)
			}
			printTitle(c.Out, "Beam spans by joist span (ft)")
			renderTable(c.Out, headers, rows)

			k := t.Constants
			printKeyValue(c.Out, "Post spacing", fmt.Sprintf("%g ft max, %g ft inset", k.MaxPostSpacingFeet, k.PostInsetFeet))
			printKeyValue(c.Out, "Loads", fmt.Sprintf("%g live + %g dead psf", k.LiveLoadPSF, k.DeadLoadPSF))
			printKeyValue(c.Out, "Soil", fmt.Sprintf("%g psf", k.SoilBearingPSF))
			diam := make([]string, len(k.FootingDiametersInches))
			for i, d := range k.FootingDiametersInches {
				diam[i] = fmt.Sprintf("%g", d)
			}
			printKeyValue(c.Out, "Footings", strings.Join(diam, ", ")+" in")
			return nil
		},
	}
}

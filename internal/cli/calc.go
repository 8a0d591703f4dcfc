package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"Deckframe/internal/calc/framing"
)

const (
	formatText    = "text"
	formatJSON    = "json"
	formatGeoJSON = "geojson"
)

func (c *CLI) calcCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "calc <request.json|->",
		Short: "Frame a deck and print the plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, plan, err := c.plan(args[0])
			switch format {
			case formatJSON:
				if plan != nil {
					if encErr := writeJSON(c.Out, plan); encErr != nil {
						return encErr
					}
				}
				return err
			case formatGeoJSON:
				if err != nil {
					return err
				}
				data, err := framing.ToFeatureCollection(plan).MarshalJSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.Out, string(data))
				return err
			case formatText:
				if err != nil {
					printError(c.Out, "%v", err)
					return err
				}
				printSummary(c.Out, plan)
				return nil
			default:
				return fmt.Errorf("unknown format %q (want text, json or geojson)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json, geojson")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSummary(w io.Writer, p *framing.Components) {
	printTitle(w, "Framing plan")
	printKeyValue(w, "Depth", fmt.Sprintf("%.2f ft", p.TotalDepthFeet))
	printKeyValue(w, "Corners", fmt.Sprintf("%d", p.CornerCount))
	printKeyValue(w, "Joists", fmt.Sprintf("%s @ %g in", p.JoistSize, p.JoistSpacing))
	printKeyValue(w, "Mid-beams", fmt.Sprintf("%d", p.NumberOfMidBeams))
	if p.Ledger != nil {
		printKeyValue(w, "Ledger", fmt.Sprintf("%s, %.2f ft", p.Ledger.Size, p.Ledger.LengthFeet))
	}
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(p.Beams))
	for _, b := range p.Beams {
		rows = append(rows, []string{b.Usage, fmt.Sprintf("%d-ply %s", b.Ply, b.Size), fmt.Sprintf("%.2f", b.LengthFeet), fmt.Sprintf("%t", b.IsFlush)})
	}
	renderTable(w, []string{"Beam", "Size", "Length ft", "Flush"}, rows)

	counts := []struct {
		name string
		n    int
	}{
		{"joists", len(p.Joists)},
		{"rim joists", len(p.RimJoists)},
		{"posts", len(p.Posts)},
		{"footings", len(p.Footings)},
		{"mid-span blocks", len(p.MidSpanBlocking)},
		{"frame blocks", len(p.PictureFrameBlocking)},
		{"diagonal ledgers", len(p.DiagonalLedgers)},
	}
	rows = rows[:0]
	for _, ct := range counts {
		rows = append(rows, []string{ct.name, fmt.Sprintf("%d", ct.n)})
	}
	renderTable(w, []string{"Member", "Count"}, rows)

	if p.BeamWarning != "" {
		printWarning(w, "%s", p.BeamWarning)
	}
}

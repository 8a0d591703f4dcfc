package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"Deckframe/internal/calc/materials"
)

func (c *CLI) materialsCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "materials <request.json|->",
		Short: "Print the cut list, or write it as XLSX with -o",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, plan, err := c.plan(args[0])
			if err != nil {
				return err
			}
			take, err := materials.Calculate(plan)
			if err != nil {
				return err
			}

			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := materials.WriteXLSX(f, take); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				printFile(c.Out, output)
				return nil
			}

			rows := make([][]string, 0, len(take.Lines))
			for _, l := range take.Lines {
				rows = append(rows, []string{l.Usage, l.Size, fmt.Sprintf("%d", l.StockFeet), fmt.Sprintf("%d", l.Count)})
			}
			printTitle(c.Out, "Cut list")
			renderTable(c.Out, []string{"Usage", "Size", "Stock ft", "Count"}, rows)
			printKeyValue(c.Out, "Boards", fmt.Sprintf("%d", take.Boards))
			printKeyValue(c.Out, "Linear ft", fmt.Sprintf("%.0f", take.TotalLinearFeet))
			for _, p := range take.Posts {
				printKeyValue(c.Out, "Posts "+p.Size, fmt.Sprintf("%d × %.2f ft", p.Count, p.HeightFeet))
			}
			for _, f := range take.Footings {
				printKeyValue(c.Out, "Footings", fmt.Sprintf("%d × %s %g in", f.Count, f.Type, f.Diameter))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write an XLSX workbook to this path")
	return cmd
}

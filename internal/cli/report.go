package cli

import (
	"os"

	"github.com/spf13/cobra"

	"Deckframe/internal/calc/materials"
	"Deckframe/internal/calc/report"
)

func (c *CLI) reportCommand() *cobra.Command {
	var (
		output string
		meta   report.Meta
	)
	cmd := &cobra.Command{
		Use:   "report <request.json|->",
		Short: "Write the PDF framing report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, plan, err := c.plan(args[0])
			if err != nil {
				return err
			}
			take, err := materials.Calculate(plan)
			if err != nil {
				return err
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := report.Write(f, meta, in.Inputs, plan, take); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printFile(c.Out, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "framing-plan.pdf", "PDF path")
	cmd.Flags().StringVar(&meta.Project, "project", "", "project name")
	cmd.Flags().StringVar(&meta.Author, "author", "", "author")
	cmd.Flags().StringVar(&meta.Title, "title", "", "report title")
	cmd.Flags().StringVar(&meta.Notes, "notes", "", "free-form notes")
	return cmd
}

// Package cli implements the deckframe command-line interface.
//
// Every command reads one framing request as JSON (the body the HTTP API
// takes) from a file argument, or from stdin when the argument is "-".
//
// # Commands
//
//   - calc: frame a deck and print a summary, JSON or GeoJSON
//   - materials: print the cut list, or write it as XLSX
//   - report: write the PDF framing report
//   - tables: print the active span tables
//
// All commands support --verbose (-v) for debug logging and --tables to
// load span tables from a TOML file.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"Deckframe/internal/calc/framing"
	"Deckframe/internal/calc/span"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Out    io.Writer
	In     io.Reader

	tablesPath string
}

// New creates a CLI writing results to stdout and logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Out: os.Stdout,
		In:  os.Stdin,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "deckframe",
		Short:        "Deckframe lays out deck framing from a footprint",
		Long:         `Deckframe turns a deck footprint and a few construction choices into a framing plan: ledger, beams, posts, footings, joists, rims and blocking.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.tablesPath, "tables", "", "span tables TOML file (default: embedded tables)")

	root.AddCommand(c.calcCommand())
	root.AddCommand(c.materialsCommand())
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.tablesCommand())
	return root
}

func (c *CLI) tables() (*span.Tables, error) {
	if c.tablesPath == "" {
		return span.Default(), nil
	}
	c.Logger.Debug("loading span tables", "path", c.tablesPath)
	return span.Load(c.tablesPath)
}

func (c *CLI) engine() (*framing.Engine, error) {
	t, err := c.tables()
	if err != nil {
		return nil, err
	}
	return framing.New(t, c.Logger.WithPrefix("framing")), nil
}

func (c *CLI) readInput(path string) (framing.Input, error) {
	var r io.Reader = c.In
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return framing.Input{}, err
		}
		defer f.Close()
		r = f
	}
	var in framing.Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return framing.Input{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return in, nil
}

// plan reads and frames the request at path. A plan that failed is
// returned along with its error.
func (c *CLI) plan(path string) (framing.Input, *framing.Components, error) {
	in, err := c.readInput(path)
	if err != nil {
		return in, nil, err
	}
	e, err := c.engine()
	if err != nil {
		return in, nil, err
	}
	p := newProgress(c.Logger)
	plan, err := e.Calculate(in)
	if err != nil {
		return in, plan, err
	}
	p.done(fmt.Sprintf("Framed %s", path))
	return in, plan, nil
}

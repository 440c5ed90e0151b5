// Package reportcmd implements the `lexmem report` command.
package reportcmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/go-ports/lexmemory/cmd/lexmem/shared"
	"github.com/go-ports/lexmemory/internal/report"
)

// Command implements `lexmem report`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	output string
	sel    string
}

// New creates the report command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "report",
		Short: "Generate the comprehensive JSON report",
		Long: `Generate the comprehensive JSON report: dataset summary, the unfiltered
velocity, transplant and crisis analyses, and a set of sample queries.

With --select, the JSONPath expression is evaluated against the report and
the result is printed instead of writing a file (unless --output is also given).`,
		Args: cobra.NoArgs,
		RunE: c.run,
	}

	f := c.cmd.Flags()
	f.StringVarP(&c.output, "output", "o", report.DefaultOutput, "Report file path (relative paths resolve against the data dir)")
	f.StringVar(&c.sel, "select", "", "JSONPath expression to print, e.g. $.analyses.crisis_analysis")

	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	svc, err := c.ctx.OpenService(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	r, err := report.Generate(cmd.Context(), svc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if c.sel != "" {
		v, err := report.Select(r, c.sel)
		if err != nil {
			return err
		}
		if err := shared.PrintJSON(out, v); err != nil {
			return err
		}
		if !cmd.Flags().Changed("output") {
			return nil
		}
	}

	path := c.output
	if !filepath.IsAbs(path) {
		path = filepath.Join(svc.DataDir, path)
	}
	if err := report.Write(path, r); err != nil {
		return err
	}
	fmt.Fprintf(out, "Report written: %s\n", path)
	return nil
}

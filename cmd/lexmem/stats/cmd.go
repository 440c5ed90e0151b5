// Package statscmd implements the `lexmem stats` command.
package statscmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/lexmemory/cmd/lexmem/shared"
)

// Command implements `lexmem stats`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	asJSON bool
}

// New creates the stats command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "stats",
		Short: "Show dataset and index statistics",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().BoolVar(&c.asJSON, "json", false, "Print statistics as JSON")
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

	st := svc.Stats()
	out := cmd.OutOrStdout()
	if c.asJSON {
		return shared.PrintJSON(out, st)
	}

	fmt.Fprintf(out, "Data dir:          %s\n", st.DataDir)
	fmt.Fprintf(out, "Evolution cases:   %d\n", st.Datasets.EvolutionCases)
	fmt.Fprintf(out, "Crisis periods:    %d\n", st.Datasets.CrisisPeriods)
	fmt.Fprintf(out, "Velocity metrics:  %d\n", st.Datasets.VelocityMetrics)
	fmt.Fprintf(out, "Transplants:       %d\n", st.Datasets.TransplantCases)
	fmt.Fprintf(out, "Indexed keywords:  %d\n", st.Index.Keywords)
	fmt.Fprintf(out, "Indexed years:     %d\n", st.Index.Years)
	fmt.Fprintf(out, "Categories:        %d\n", st.Index.Categories)
	fmt.Fprintf(out, "Temporal window:   %d-%d\n", st.TemporalAnalysis.StartYear, st.TemporalAnalysis.EndYear)
	if len(st.Warnings) > 0 {
		fmt.Fprintf(out, "\nWarnings (%d skipped records):\n", st.Index.Skipped)
		for _, w := range st.Warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}
	return nil
}

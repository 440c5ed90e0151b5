// Package analyzecmd implements the `lexmem analyze` command group.
package analyzecmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/go-ports/lexmemory/cmd/lexmem/shared"
	"github.com/go-ports/lexmemory/internal/service"
)

// Command implements `lexmem analyze`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the analyze command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "analyze",
		Short: "Aggregate analyses over velocity metrics, transplants and crises",
	}
	c.cmd.AddCommand(
		c.newAggregate("velocity [legal-area]", "Summarize velocity metrics, optionally for one legal area",
			func(ctx context.Context, svc *service.Service, filter string) (any, error) {
				return svc.AnalyzeVelocity(ctx, filter)
			}),
		c.newAggregate("transplants [origin-country]", "Summarize legal transplants, optionally from one origin country",
			func(ctx context.Context, svc *service.Service, filter string) (any, error) {
				return svc.TrackTransplants(ctx, filter)
			}),
		c.newAggregate("crisis [crisis-type]", "Summarize crisis impact, optionally for crisis types containing the text",
			func(ctx context.Context, svc *service.Service, filter string) (any, error) {
				return svc.CrisisImpact(ctx, filter)
			}),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

type aggregateFunc func(ctx context.Context, svc *service.Service, filter string) (any, error)

func (c *Command) newAggregate(use, short string, fn aggregateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter string
			if len(args) == 1 {
				filter = args[0]
			}

			svc, err := c.ctx.OpenService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			out, err := fn(cmd.Context(), svc, filter)
			if err != nil {
				return err
			}
			return shared.PrintJSON(cmd.OutOrStdout(), out)
		},
	}
}

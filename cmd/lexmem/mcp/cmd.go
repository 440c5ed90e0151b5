// Package mcpcmd implements the `lexmem mcp` command.
package mcpcmd

import (
	"github.com/spf13/cobra"

	"github.com/go-ports/lexmemory/cmd/lexmem/shared"
	internalmcp "github.com/go-ports/lexmemory/internal/mcp"
)

// Command implements `lexmem mcp`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the mcp command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "mcp",
		Short: "Start the lexmem MCP server (stdio transport)",
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	dir, _ := c.ctx.ResolveDataDir()
	return internalmcp.Serve(cmd.Context(), dir)
}

// Package querycmd implements the `lexmem query` command.
package querycmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-ports/lexmemory/cmd/lexmem/shared"
	"github.com/go-ports/lexmemory/internal/models"
)

// Command implements `lexmem query`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	recordType string
	limit      int
	asJSON     bool
}

// New creates the query command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "query <text>",
		Short: "Answer a natural-language question from the indexed cases and crises",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.run,
	}

	f := c.cmd.Flags()
	f.StringVar(&c.recordType, "type", "", "Restrict to one record type (case | crisis)")
	f.IntVar(&c.limit, "limit", 0, "Maximum number of matches (default: retrieval_top_k from config)")
	f.BoolVar(&c.asJSON, "json", false, "Print the full result as JSON")

	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	filter, err := models.ParseRecordType(c.recordType)
	if err != nil {
		return err
	}

	svc, err := c.ctx.OpenService(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	out := cmd.OutOrStdout()
	res, err := svc.QueryTopK(cmd.Context(), strings.Join(args, " "), filter, c.limit)
	if err != nil {
		var qerr *models.QueryError
		if c.asJSON && errors.As(err, &qerr) {
			if perr := shared.PrintJSON(out, qerr.Failure()); perr != nil {
				return perr
			}
		}
		return err
	}

	if c.asJSON {
		return shared.PrintJSON(out, res)
	}

	fmt.Fprintln(out, res.Response)
	fmt.Fprintf(out, "\nConfianza: %.2f\n", res.Confidence)
	fmt.Fprintf(out, "Casos relevantes: %d\n", len(res.RelevantCaseIDs))
	if len(res.RelevantCaseIDs) > 0 {
		fmt.Fprintf(out, "  %s\n", strings.Join(res.RelevantCaseIDs, ", "))
	}
	if len(res.Sources) > 0 {
		fmt.Fprintf(out, "Fuentes: %s\n", strings.Join(res.Sources, ", "))
	}
	return nil
}

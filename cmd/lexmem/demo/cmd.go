// Package democmd implements the `lexmem demo` command.
package democmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-ports/lexmemory/cmd/lexmem/shared"
	"github.com/go-ports/lexmemory/internal/models"
)

// Queries are the demonstration questions run by `lexmem demo`.
var Queries = []string{
	"¿Cómo evolucionó el fideicomiso financiero en Argentina?",
	"¿Qué impacto tuvo la hiperinflación en la evolución legal?",
	"Analizar el éxito del amparo como transplante legal",
	"¿Cómo aceleró la crisis de 2001 los cambios legales?",
}

// Command implements `lexmem demo`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the demo command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "demo",
		Short: "Run the demonstration queries and aggregate analyses",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	svc, err := c.ctx.OpenService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	out := cmd.OutOrStdout()
	st := svc.Stats()
	fmt.Fprintf(out, "Casos de evolución: %d | Crisis: %d | Métricas: %d | Transplantes: %d\n",
		st.Datasets.EvolutionCases, st.Datasets.CrisisPeriods,
		st.Datasets.VelocityMetrics, st.Datasets.TransplantCases)

	for i, q := range Queries {
		fmt.Fprintf(out, "\n[%d] %s\n", i+1, q)
		res, err := svc.Query(ctx, q, "")
		if err != nil {
			var qerr *models.QueryError
			if !errors.As(err, &qerr) {
				return err
			}
			fmt.Fprintf(out, "  Error: %s\n", qerr.Failure().Error)
			continue
		}
		fmt.Fprintf(out, "  Confianza: %.2f\n", res.Confidence)
		fmt.Fprintf(out, "  Casos relevantes: %d\n", len(res.RelevantCaseIDs))
		areas := "-"
		if len(res.Analysis.LegalAreasMentioned) > 0 {
			areas = strings.Join(res.Analysis.LegalAreasMentioned, ", ")
		}
		fmt.Fprintf(out, "  Áreas legales: %s\n", areas)
	}

	vel, err := svc.AnalyzeVelocity(ctx, "")
	if err != nil {
		return err
	}
	tr, err := svc.TrackTransplants(ctx, "")
	if err != nil {
		return err
	}
	cr, err := svc.CrisisImpact(ctx, "")
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\nAnálisis agregados:")
	fmt.Fprintf(out, "  Métricas de velocidad: %d\n", vel.TotalMetrics)
	fmt.Fprintf(out, "  Transplantes: %d\n", tr.TotalTransplants)
	fmt.Fprintf(out, "  Crisis: %d\n", cr.TotalCrises)
	return nil
}

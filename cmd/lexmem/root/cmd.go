// Package rootcmd wires the root cobra.Command for the lexmem CLI binary.
package rootcmd

import (
	"github.com/spf13/cobra"

	analyzecmd "github.com/go-ports/lexmemory/cmd/lexmem/analyze"
	configcmd "github.com/go-ports/lexmemory/cmd/lexmem/config"
	democmd "github.com/go-ports/lexmemory/cmd/lexmem/demo"
	mcpcmd "github.com/go-ports/lexmemory/cmd/lexmem/mcp"
	querycmd "github.com/go-ports/lexmemory/cmd/lexmem/query"
	reportcmd "github.com/go-ports/lexmemory/cmd/lexmem/report"
	"github.com/go-ports/lexmemory/cmd/lexmem/shared"
	statscmd "github.com/go-ports/lexmemory/cmd/lexmem/stats"
	versioncmd "github.com/go-ports/lexmemory/cmd/lexmem/version"
)

// New creates and returns the root cobra.Command for the lexmem CLI.
func New() *cobra.Command {
	ctx := &shared.Context{}

	root := &cobra.Command{
		Use:           "lexmem",
		Short:         "Legal evolution memory index for Argentine law",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			ctx.SetupLogging(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	pf := root.PersistentFlags()
	pf.StringVar(
		&ctx.DataDir, "data-dir", "",
		"Directory holding config.yaml and the CSV datasets (default: $LEXMEM_DATA env → persisted config → current dir)",
	)
	pf.BoolVarP(&ctx.Verbose, "verbose", "v", false, "Enable debug logging on stderr")

	root.AddCommand(
		querycmd.New(ctx).Cmd(),
		analyzecmd.New(ctx).Cmd(),
		reportcmd.New(ctx).Cmd(),
		democmd.New(ctx).Cmd(),
		statscmd.New(ctx).Cmd(),
		configcmd.New(ctx).Cmd(),
		mcpcmd.New(ctx).Cmd(),
		versioncmd.New(ctx).Cmd(),
	)

	return root
}

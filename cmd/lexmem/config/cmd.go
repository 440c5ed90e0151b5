// Package configcmd implements the `lexmem config` command group.
package configcmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-ports/lexmemory/cmd/lexmem/shared"
	"github.com/go-ports/lexmemory/internal/config"
)

const configTemplate = `# lexmem configuration
# Every key is optional; missing or invalid values fall back to the defaults shown.

# Maximum number of matches returned per query.
retrieval_top_k: 20

# Legal areas recognized when analyzing a synthesized answer.
legal_domains:
  - constitucional
  - civil
  - comercial
  - financiero
  - administrativo
  - procesal
  - criminal
  - laboral
  - tributario
  - cambiario
  - bancario
  - ambiental

# Rendered record content is cut to this many characters (0 disables the cap).
max_memory_length: 10000

temporal_analysis:
  start_year: 1950
  end_year: 2024

# Sources answers are attributed to.
reality_filter:
  enabled: true
  primary_sources: [InfoLeg, SAIJ, CSJN, Boletín Oficial]
  verification_threshold: 0.95

# CSV files, relative to the data directory.
datasets:
  evolution_cases: evolution_cases.csv
  velocity_metrics: velocity_metrics.csv
  transplants_tracking: transplants_tracking.csv
  crisis_periods: crisis_periods.csv
`

// Command implements `lexmem config`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the config command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		RunE:  c.runShow,
	}
	c.cmd.AddCommand(
		newConfigInit(ctx),
		newSetDataDir(ctx),
		newClearDataDir(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runShow(cmd *cobra.Command, _ []string) error {
	dir, source := c.ctx.ResolveDataDir()
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	data := map[string]any{
		"config":          cfg,
		"data_dir":        dir,
		"data_dir_source": source,
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(b))
	return nil
}

// ---------------------------------------------------------------------------
// config init
// ---------------------------------------------------------------------------

func newConfigInit(ctx *shared.Context) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a starter config.yaml in the data directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := ctx.ResolveDataDir()
			cfgPath := filepath.Join(dir, config.FileName)
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfgPath); err == nil && !force {
				fmt.Fprintf(out, "Config already exists at %s\n", cfgPath)
				fmt.Fprintln(out, "Use --force to overwrite.")
				return nil
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(cfgPath, []byte(configTemplate), 0o600); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s\n", cfgPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config")
	return cmd
}

// ---------------------------------------------------------------------------
// config set-data-dir
// ---------------------------------------------------------------------------

func newSetDataDir(_ *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "set-data-dir <path>",
		Short: "Persist the data directory (used when LEXMEM_DATA is unset)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := config.SetPersistedDataDir(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Persisted data dir: %s\n", resolved)
			fmt.Fprintf(out, "Override anytime with %s or --data-dir.\n", config.EnvDataDir)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// config clear-data-dir
// ---------------------------------------------------------------------------

func newClearDataDir(_ *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-data-dir",
		Short: "Remove the persisted data directory from global config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			changed, err := config.ClearPersistedDataDir()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if changed {
				fmt.Fprintln(out, "Cleared persisted data dir setting.")
			} else {
				fmt.Fprintln(out, "No persisted data dir setting was found.")
			}
			return nil
		},
	}
}

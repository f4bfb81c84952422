// Package cli provides the command-line interface for semgen.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/semgen/internal/cli/commands"
	"github.com/leapstack-labs/semgen/internal/cli/config"
	"github.com/leapstack-labs/semgen/internal/cli/output"
	"github.com/leapstack-labs/semgen/pkg/dialect"
	"github.com/spf13/cobra"

	// Register adapters
	_ "github.com/leapstack-labs/semgen/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/semgen/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/semgen/pkg/adapters/sqlite"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile    string
		targetFlag string
	)

	rootCmd := &cobra.Command{
		Use:   "semgen",
		Short: "semgen - semantic model sampling SQL generator",
		Long: `semgen turns a semantic model into the SQL that samples its data.

It normalizes models written with separate dimensions, time_dimensions and
measures into a single column list, tells simple aggregations apart from
row-level columns, and renders or runs the queries that fill each column's
sample_values.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "version" {
				return nil
			}

			cfg, err := config.LoadConfigWithTarget(cfgFile, targetFlag, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", "path", configFile)
			}
			if targetFlag != "" {
				logger.Debug("using environment", "name", targetFlag)
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./semgen.yaml, searched upward)")
	pf.StringVarP(&targetFlag, "target", "t", "", "Environment from semgen.yaml to use (e.g., dev, prod)")
	pf.String("model", "", "Path to the semantic model YAML file")
	pf.Int("limit", config.DefaultLimit, "Row limit of every sampling query")
	pf.Int("max-values", config.DefaultMaxValues, "Distinct sample values kept per column")
	pf.Int("concurrency", config.DefaultConcurrency, "Tables sampled in parallel")
	pf.String("dialect", "", "SQL dialect (default: target type, else snowflake)")
	pf.StringSlice("aggregates", nil, "Extra aggregate function names")
	pf.String("database", "", "Database file to sample (DuckDB or SQLite)")
	pf.String("state", config.DefaultStateFile, "Run history database (empty disables)")
	pf.BoolP("verbose", "v", false, "Verbose output")
	pf.StringP("output", "o", "", "Output format (auto|text|markdown|json|yaml)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		modes := make([]string, 0, len(output.Modes))
		for _, m := range output.Modes {
			modes = append(modes, string(m))
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})

	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return dialect.List(), cobra.ShellCompDirectiveNoFileComp
	})

	_ = rootCmd.RegisterFlagCompletionFunc("target", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"dev", "staging", "prod"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewNormalizeCommand())
	rootCmd.AddCommand(commands.NewClassifyCommand())
	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(commands.NewSampleCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewExplainCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for semgen.

To load completions:

Bash:
  $ source <(semgen completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ semgen completion bash > /etc/bash_completion.d/semgen
  # macOS:
  $ semgen completion bash > $(brew --prefix)/etc/bash_completion.d/semgen

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ semgen completion zsh > "${fpath[1]}/_semgen"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ semgen completion fish | source

  # To load completions for each session, execute once:
  $ semgen completion fish > ~/.config/fish/completions/semgen.fish

PowerShell:
  PS> semgen completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> semgen completion powershell > semgen.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}

package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/semgen/pkg/adapter"
	"github.com/leapstack-labs/semgen/pkg/dialect"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Print the semgen version together with the SQL dialects it can
classify for and the target types it can sample from.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "semgen v%s\n", version)
			_, _ = fmt.Fprintln(out, "Semantic model sampling SQL generator")
			_, _ = fmt.Fprintf(out, "dialects: %s\n", strings.Join(dialect.List(), ", "))
			if targets := adapter.ListAdapters(); len(targets) > 0 {
				_, _ = fmt.Fprintf(out, "targets:  %s\n", strings.Join(targets, ", "))
			}
		},
	}
}

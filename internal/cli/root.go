// Package cli implements the kanban command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kanban",
		Short: "Markdown kanban boards from the command line",
		Long: `Kanban parses markdown board documents (headings as columns,
checkbox items as cards), mutates them through path-addressed tree
operations, and aggregates many documents into one synthesized view.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("vault", "", "Aggregation root directory (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")

	rootCmd.AddCommand(
		newParseCommand(),
		newMoveCommand(),
		newArchiveCommand(),
		newAggregateCommand(),
		newWatchCommand(),
	)

	return rootCmd
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/erduoya77/obsidian-kanban/internal/aggregate"
)

func newAggregateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "aggregate",
		Short: "Scan the vault and print the synthesized board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			scanner := aggregate.NewScanner(
				e.cfg.VaultDir, e.store, e.index, e.resolver, e.logger,
				aggregate.WithMarkerKey(e.cfg.MarkerKey),
				aggregate.WithConcurrency(e.cfg.ScanConcurrency),
			)
			defer scanner.Close()

			synthesized, err := scanner.Scan(cmd.Context())
			if err != nil {
				return err
			}
			printBoard(cmd, synthesized)
			return nil
		},
	}
}

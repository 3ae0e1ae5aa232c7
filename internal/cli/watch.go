package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/erduoya77/obsidian-kanban/internal/aggregate"
	"github.com/erduoya77/obsidian-kanban/internal/board"
	"github.com/erduoya77/obsidian-kanban/internal/storage"
)

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the vault and rescan on document changes",
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

			unsubscribe := scanner.Subscribe(func(b *board.Board) {
				items := 0
				for _, lane := range b.Lanes {
					items += len(lane.Items)
				}
				e.logger.Info("board updated",
					"lanes", len(b.Lanes), "items", items, "errors", len(b.Errors))
			})
			defer unsubscribe()

			watcher, err := storage.NewWatcher(200*time.Millisecond, e.logger)
			if err != nil {
				return err
			}
			if err := watcher.Add(e.cfg.VaultDir); err != nil {
				return err
			}

			ctx := cmd.Context()
			if _, err := scanner.Scan(ctx); err != nil {
				return err
			}

			go func() {
				for change := range watcher.Changes() {
					e.logger.Debug("change", "kind", change.Kind, "path", change.Path)
					if _, err := scanner.Scan(ctx); err != nil && ctx.Err() == nil {
						e.logger.Error("rescan failed", "err", err)
					}
				}
			}()

			return watcher.Run(ctx)
		},
	}
}

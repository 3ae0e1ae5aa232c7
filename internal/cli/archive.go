package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/erduoya77/obsidian-kanban/internal/board"
)

func newArchiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <file>",
		Short: "Move all completed items into the archive section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			b, r, err := e.loadBoard(cmd, args[0])
			if err != nil {
				return err
			}
			archived := board.ArchiveCompleted(b, r, time.Now())
			if err := e.saveBoard(cmd, args[0], archived); err != nil {
				return err
			}
			cmd.Printf("archived %d items\n", len(archived.Archive)-len(b.Archive))
			return nil
		},
	}
}

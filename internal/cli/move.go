package cli

import (
	"github.com/spf13/cobra"

	"github.com/erduoya77/obsidian-kanban/internal/board"
	"github.com/erduoya77/obsidian-kanban/internal/treeop"
)

func newMoveCommand() *cobra.Command {
	var markDone bool

	cmd := &cobra.Command{
		Use:   "move <file> <from> <to>",
		Short: "Move a lane or item by path and rewrite the document",
		Long: `Move relocates the entity at the from path to the to path.
Paths are comma-separated indices: "1" addresses a lane, "1,2" an item.
With --done, an item moved into place is marked complete.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			b, _, err := e.loadBoard(cmd, args[0])
			if err != nil {
				return err
			}

			from, err := parsePath(args[1])
			if err != nil {
				return err
			}
			to, err := parsePath(args[2])
			if err != nil {
				return err
			}

			var onInsert treeop.InsertTransform
			if markDone {
				onInsert = func(entity any) any {
					item, ok := entity.(board.Item)
					if !ok {
						return entity
					}
					return item.WithCheckChar(b.DoneChar, b.DoneChar)
				}
			}

			moved, err := treeop.Move(b, from, to, nil, onInsert)
			if err != nil {
				return err
			}
			return e.saveBoard(cmd, args[0], moved)
		},
	}

	cmd.Flags().BoolVar(&markDone, "done", false, "Mark the moved item complete on insertion")
	return cmd
}

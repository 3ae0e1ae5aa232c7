package cli

import (
	"github.com/spf13/cobra"
)

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse one board document and print its lanes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			b, _, err := e.loadBoard(cmd, args[0])
			if err != nil {
				return err
			}
			printBoard(cmd, b)
			return nil
		},
	}
}

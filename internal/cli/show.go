package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

func newShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display every bucket with its items in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, closeBoard, err := s.openBoard(cmd)
			if err != nil {
				return err
			}
			defer closeBoard()

			board, err := backend.LoadBoard(cmd.Context())
			if err != nil {
				return storeErr(err)
			}

			if s.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), board)
			}
			printBoard(cmd.OutOrStdout(), board)
			return nil
		},
	}
}

// printBoard renders the board as text:
//
//	[0] Backlog (2)
//	    0  #7  Write docs
//	    1  #9  Fix login
func printBoard(w io.Writer, board *types.Board) {
	for i, bucket := range board.Buckets {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "[%d] %s (%d)\n", bucket.ID, bucket.Title, len(bucket.Items))
		for pos, item := range bucket.Items {
			fmt.Fprintf(w, "    %d  #%d  %s\n", pos, item.ID, item.Title)
			if item.Description != nil && *item.Description != "" {
				fmt.Fprintf(w, "          %s\n", *item.Description)
			}
		}
	}
}

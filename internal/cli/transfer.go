package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd(s *session) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board as JSONL, one bucket per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, closeBoard, err := s.openBoard(cmd)
			if err != nil {
				return err
			}
			defer closeBoard()

			if output == "" || output == "-" {
				return storeErr(backend.ExportBoard(cmd.Context(), cmd.OutOrStdout()))
			}
			if err := backend.ExportBoardFile(cmd.Context(), output); err != nil {
				return storeErr(err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "exported board to", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func newImportCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all items with the content of a board JSONL file",
		Long: `Replace every item on the board with the items in a JSONL file written by
export. Each bucket's items are renumbered from 0 in file order. Buckets
must already exist. Use "-" to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, closeBoard, err := s.openBoard(cmd)
			if err != nil {
				return err
			}
			defer closeBoard()

			if args[0] == "-" {
				err = backend.ImportBoard(cmd.Context(), cmd.InOrStdin())
			} else {
				err = backend.ImportBoardFile(cmd.Context(), args[0])
			}
			if err != nil {
				return storeErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "imported board from", args[0])
			return nil
		},
	}
}

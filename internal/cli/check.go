package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

func newCheckCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that every bucket's positions are dense and unique",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, closeBoard, err := s.openBoard(cmd)
			if err != nil {
				return err
			}
			defer closeBoard()

			err = backend.Check(cmd.Context())
			if s.flags.jsonMode {
				report := map[string]any{"consistent": err == nil}
				if err != nil {
					report["error"] = err.Error()
				}
				if perr := printJSON(cmd.OutOrStdout(), report); perr != nil {
					return perr
				}
			}
			if err != nil {
				if errors.Is(err, types.ErrInconsistentState) {
					return sysErr(fmt.Errorf("board is inconsistent: %w", err))
				}
				return storeErr(err)
			}
			if !s.flags.jsonMode {
				fmt.Fprintln(cmd.OutOrStdout(), "board is consistent")
			}
			return nil
		},
	}
}

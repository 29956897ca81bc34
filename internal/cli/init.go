package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize board storage",
		Long:  "Create the configuration and data directories, write a default\nconfig.yaml, and create the database with the configured buckets.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The root PersistentPreRunE already wrote config.yaml.
			backend, closeBoard, err := s.openBoard(cmd)
			if err != nil {
				return err
			}
			defer closeBoard()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Board initialized")
			fmt.Fprintln(out, "  config:", s.configDir)
			fmt.Fprintln(out, "  data:  ", backend.Path())
			return nil
		},
	}
}

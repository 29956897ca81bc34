package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

func newRemoveCmd(s *session) *cobra.Command {
	var bucket string

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an item from its bucket",
		Long: `Delete an item. Items after it in the bucket move one place earlier.
--bucket names the bucket holding the item; when omitted it is looked up.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID("item id", args[0])
			if err != nil {
				return err
			}

			backend, closeBoard, err := s.openBoard(cmd)
			if err != nil {
				return err
			}
			defer closeBoard()
			ctx := cmd.Context()

			var bucketID int64
			if bucket != "" {
				if bucketID, err = parseID("bucket id", bucket); err != nil {
					return err
				}
			} else {
				board, err := backend.LoadBoard(ctx)
				if err != nil {
					return storeErr(err)
				}
				slot, ok := board.Locate(itemID)
				if !ok {
					return userErr(fmt.Errorf("item %d: %w", itemID, types.ErrNotFound))
				}
				bucketID = slot.BucketID
			}

			if err := backend.DeleteItem(ctx, types.Item{ID: itemID}, bucketID); err != nil {
				return storeErr(err)
			}

			if s.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]int64{"id": itemID, "bucket_id": bucketID})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted item %d from bucket %d\n", itemID, bucketID)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "bucket holding the item")
	return cmd
}

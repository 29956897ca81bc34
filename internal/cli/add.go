package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

func newAddCmd(s *session) *cobra.Command {
	var (
		bucketID int64
		position int64
		itemID   int64
		title    string
		desc     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Insert a new item into a bucket",
		Long: `Insert a new item at --pos in --bucket. Items at or after that position
move one place later. Without --pos the item goes to the end of the bucket;
without --id it gets one more than the largest id on the board. Those
defaults are read before the insert runs, so two adds racing on the same
board can fail with a duplicate id or an invalid position; pass --pos and
--id explicitly when running adds concurrently.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, closeBoard, err := s.openBoard(cmd)
			if err != nil {
				return err
			}
			defer closeBoard()
			ctx := cmd.Context()

			if !cmd.Flags().Changed("pos") || !cmd.Flags().Changed("id") {
				board, err := backend.LoadBoard(ctx)
				if err != nil {
					return storeErr(err)
				}
				if !cmd.Flags().Changed("pos") {
					bucket := board.Bucket(bucketID)
					if bucket == nil {
						return userErr(fmt.Errorf("bucket %d: %w", bucketID, types.ErrNotFound))
					}
					position = int64(len(bucket.Items))
				}
				if !cmd.Flags().Changed("id") {
					itemID = nextItemID(board)
				}
			}

			item := types.Item{ID: itemID, Title: title}
			if cmd.Flags().Changed("desc") {
				item.Description = &desc
			}
			target := types.Slot{BucketID: bucketID, Position: position}
			if err := backend.InsertItem(ctx, item, target); err != nil {
				return storeErr(err)
			}

			if s.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), placement{Item: item, Slot: target})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added item %d at %d:%d\n", item.ID, target.BucketID, target.Position)
			return nil
		},
	}

	cmd.Flags().Int64Var(&bucketID, "bucket", 0, "bucket to insert into")
	cmd.Flags().Int64Var(&position, "pos", 0, "position in the bucket (default: end)")
	cmd.Flags().Int64Var(&itemID, "id", 0, "item id (default: next free id)")
	cmd.Flags().StringVar(&title, "title", "", "item title")
	cmd.Flags().StringVar(&desc, "desc", "", "item description")
	cmd.MarkFlagRequired("title")
	return cmd
}

// placement is the JSON result of add and move.
type placement struct {
	Item types.Item `json:"item"`
	types.Slot
}

// nextItemID returns one more than the largest item id on the board.
func nextItemID(board *types.Board) int64 {
	var maxID int64
	for _, bucket := range board.Buckets {
		for _, item := range bucket.Items {
			maxID = max(maxID, item.ID)
		}
	}
	return maxID + 1
}

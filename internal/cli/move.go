package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

func newMoveCmd(s *session) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "move <id> --to BUCKET:POSITION",
		Short: "Move an item to another position or bucket",
		Long: `Move an item to --to. --from names the slot the item occupies now; when it
is omitted the item's current slot is looked up. The destination position
counts places after the item has been taken out of its source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID("item id", args[0])
			if err != nil {
				return err
			}
			toBucket, toPos, err := parseSlot(to)
			if err != nil {
				return err
			}

			backend, closeBoard, err := s.openBoard(cmd)
			if err != nil {
				return err
			}
			defer closeBoard()
			ctx := cmd.Context()

			board, err := backend.LoadBoard(ctx)
			if err != nil {
				return storeErr(err)
			}
			current, ok := board.Locate(itemID)
			if !ok {
				return userErr(fmt.Errorf("item %d: %w", itemID, types.ErrNotFound))
			}
			source := current
			if from != "" {
				if source.BucketID, source.Position, err = parseSlot(from); err != nil {
					return err
				}
			}

			item := findItem(board, itemID)
			target := types.Slot{BucketID: toBucket, Position: toPos}
			if err := backend.MoveItem(ctx, item, source, target); err != nil {
				return storeErr(err)
			}

			if s.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), placement{Item: item, Slot: target})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved item %d from %d:%d to %d:%d\n",
				itemID, source.BucketID, source.Position, target.BucketID, target.Position)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "current slot of the item, BUCKET:POSITION")
	cmd.Flags().StringVar(&to, "to", "", "destination slot, BUCKET:POSITION")
	cmd.MarkFlagRequired("to")
	return cmd
}

// findItem returns the item with id from board. The caller has already
// located it.
func findItem(board *types.Board, id int64) types.Item {
	slot, _ := board.Locate(id)
	return board.Bucket(slot.BucketID).Items[slot.Position]
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

// InsertItem stores item and places it at target. Items at or after
// target.Position move one slot later. The position must lie in
// [0, size of the bucket]; anything else is ErrInvalidPosition.
func (b *Backend) InsertItem(ctx context.Context, item types.Item, target types.Slot) (err error) {
	op := fmt.Sprintf("insert item %d", item.ID)
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := target.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	release, err := b.acquire()
	if err != nil {
		return err
	}
	defer release()

	log := b.opLogger("insert", "item_id", item.ID, "bucket_id", target.BucketID, "position", target.Position)
	start := time.Now()
	defer func() { logOutcome(log, start, err) }()

	return b.withTx(ctx, op, func(tx *sql.Tx) error {
		if err := bucketExists(ctx, tx, target.BucketID); err != nil {
			return err
		}
		size, err := bucketSize(ctx, tx, target.BucketID)
		if err != nil {
			return err
		}
		if target.Position > size {
			return fmt.Errorf("%w: position %d beyond bucket %d of size %d",
				types.ErrInvalidPosition, target.Position, target.BucketID, size)
		}

		if err := insertItemRow(ctx, tx, item); err != nil {
			return err
		}
		return insertMembership(ctx, tx, item.ID, target)
	})
}

// MoveItem takes the item out of from and places it at to in the same
// transaction, so both buckets change together or not at all. from must be
// the slot the item occupies now (ErrNotFound otherwise). to.Position is
// checked against the destination size after the item has been removed.
func (b *Backend) MoveItem(ctx context.Context, item types.Item, from, to types.Slot) (err error) {
	op := fmt.Sprintf("move item %d", item.ID)
	if err := from.Validate(); err != nil {
		return fmt.Errorf("%s: from: %w", op, err)
	}
	if err := to.Validate(); err != nil {
		return fmt.Errorf("%s: to: %w", op, err)
	}

	release, err := b.acquire()
	if err != nil {
		return err
	}
	defer release()

	log := b.opLogger("move", "item_id", item.ID,
		"from_bucket", from.BucketID, "from_position", from.Position,
		"to_bucket", to.BucketID, "to_position", to.Position)
	start := time.Now()
	defer func() { logOutcome(log, start, err) }()

	return b.withTx(ctx, op, func(tx *sql.Tx) error {
		pos, err := memberPosition(ctx, tx, item.ID, from.BucketID)
		if err != nil {
			return err
		}
		if pos != from.Position {
			return fmt.Errorf("item %d is at position %d of bucket %d, not %d: %w",
				item.ID, pos, from.BucketID, from.Position, types.ErrNotFound)
		}
		if err := bucketExists(ctx, tx, to.BucketID); err != nil {
			return err
		}

		if err := removeMembership(ctx, tx, item.ID, from); err != nil {
			return err
		}

		size, err := bucketSize(ctx, tx, to.BucketID)
		if err != nil {
			return err
		}
		if to.Position > size {
			return fmt.Errorf("%w: position %d beyond bucket %d of size %d",
				types.ErrInvalidPosition, to.Position, to.BucketID, size)
		}
		return insertMembership(ctx, tx, item.ID, to)
	})
}

// DeleteItem removes the item's membership in bucketID, closes the gap,
// and deletes the item. ErrNotFound if the item is not in that bucket; in
// that case nothing is written.
func (b *Backend) DeleteItem(ctx context.Context, item types.Item, bucketID int64) (err error) {
	op := fmt.Sprintf("delete item %d", item.ID)

	release, err := b.acquire()
	if err != nil {
		return err
	}
	defer release()

	log := b.opLogger("delete", "item_id", item.ID, "bucket_id", bucketID)
	start := time.Now()
	defer func() { logOutcome(log, start, err) }()

	return b.withTx(ctx, op, func(tx *sql.Tx) error {
		pos, err := memberPosition(ctx, tx, item.ID, bucketID)
		if err != nil {
			return err
		}
		slot := types.Slot{BucketID: bucketID, Position: pos}
		if err := removeMembership(ctx, tx, item.ID, slot); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE id = ?", item.ID); err != nil {
			return storageErr("delete item row", err)
		}
		return nil
	})
}

// insertItemRow writes the item's content row. ErrDuplicateItem if the id
// is taken.
func insertItemRow(ctx context.Context, tx *sql.Tx, item types.Item) error {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM items WHERE id = ?", item.ID).Scan(&one)
	if err == nil {
		return types.ErrDuplicateItem
	}
	if err != sql.ErrNoRows {
		return storageErr("check item", err)
	}

	var desc sql.NullString
	if item.Description != nil {
		desc = sql.NullString{String: *item.Description, Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO items (id, title, description) VALUES (?, ?, ?)",
		item.ID, item.Title, desc); err != nil {
		return storageErr("insert item row", err)
	}
	return nil
}

// memberPosition returns the item's position in bucketID, or ErrNotFound
// if the item is not a member of that bucket.
func memberPosition(ctx context.Context, tx *sql.Tx, itemID, bucketID int64) (int64, error) {
	var pos int64
	err := tx.QueryRowContext(ctx,
		"SELECT position FROM memberships WHERE item_id = ? AND bucket_id = ?",
		itemID, bucketID).Scan(&pos)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("item %d in bucket %d: %w", itemID, bucketID, types.ErrNotFound)
	}
	if err != nil {
		return 0, storageErr("find membership", err)
	}
	return pos, nil
}

// insertMembership opens slot by shifting siblings at or after it one
// later, then records the item there.
func insertMembership(ctx context.Context, tx *sql.Tx, itemID int64, slot types.Slot) error {
	if err := shiftPositions(ctx, tx, slot.BucketID, slot.Position, +1); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO memberships (item_id, bucket_id, position) VALUES (?, ?, ?)",
		itemID, slot.BucketID, slot.Position); err != nil {
		return storageErr("insert membership", err)
	}
	return nil
}

// removeMembership deletes the item's membership and shifts siblings after
// slot one earlier.
func removeMembership(ctx context.Context, tx *sql.Tx, itemID int64, slot types.Slot) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM memberships WHERE item_id = ?", itemID); err != nil {
		return storageErr("delete membership", err)
	}
	return shiftPositions(ctx, tx, slot.BucketID, slot.Position, -1)
}

// sibling is a membership captured before renumbering.
type sibling struct {
	itemID   int64
	position int64
}

// shiftPositions adds delta to the position of every member of bucketID on
// the pivot's side: position >= pivot when delta > 0, position > pivot when
// delta < 0.
//
// The affected rows are read in full before any update runs, so no update
// can match a row an earlier update in the same pass already moved. Updates
// run from the far end toward the pivot (descending for +1, ascending for
// -1) so each new position is free when written and UNIQUE(bucket_id,
// position) never trips mid-pass.
func shiftPositions(ctx context.Context, tx *sql.Tx, bucketID, pivot, delta int64) error {
	query := "SELECT item_id, position FROM memberships WHERE bucket_id = ? AND position >= ? ORDER BY position ASC"
	if delta < 0 {
		query = "SELECT item_id, position FROM memberships WHERE bucket_id = ? AND position > ? ORDER BY position ASC"
	}

	rows, err := tx.QueryContext(ctx, query, bucketID, pivot)
	if err != nil {
		return storageErr("select siblings", err)
	}
	var siblings []sibling
	for rows.Next() {
		var s sibling
		if err := rows.Scan(&s.itemID, &s.position); err != nil {
			rows.Close()
			return storageErr("scan sibling", err)
		}
		siblings = append(siblings, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return storageErr("iterate siblings", err)
	}
	rows.Close()

	if len(siblings) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx,
		"UPDATE memberships SET position = ? WHERE bucket_id = ? AND item_id = ?")
	if err != nil {
		return storageErr("prepare shift", err)
	}
	defer stmt.Close()

	apply := func(s sibling) error {
		if _, err := stmt.ExecContext(ctx, s.position+delta, bucketID, s.itemID); err != nil {
			return storageErr(fmt.Sprintf("shift item %d", s.itemID), err)
		}
		return nil
	}
	if delta > 0 {
		for i := len(siblings) - 1; i >= 0; i-- {
			if err := apply(siblings[i]); err != nil {
				return err
			}
		}
		return nil
	}
	for _, s := range siblings {
		if err := apply(s); err != nil {
			return err
		}
	}
	return nil
}

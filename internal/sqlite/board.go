package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

// Membership rows joined with item content. The ORDER BY is load-bearing:
// readBoard appends rows in the order returned and never sorts.
const selectBoardRows = `
	SELECT m.bucket_id, m.position, m.item_id, i.id, i.title, i.description
	FROM memberships AS m
	LEFT JOIN items AS i ON i.id = m.item_id
	ORDER BY m.bucket_id ASC, m.position ASC, m.item_id ASC`

// LoadBoard returns every bucket in ascending id order, each with its items
// in position order. Both queries run in one transaction so no mutation is
// observed halfway. A membership pointing at a missing bucket or item, or a
// position that breaks the dense 0..N-1 run, fails with ErrInconsistentState.
func (b *Backend) LoadBoard(ctx context.Context) (*types.Board, error) {
	release, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	var board *types.Board
	err = b.withTx(ctx, "load board", func(tx *sql.Tx) error {
		var err error
		board, err = readBoard(ctx, tx)
		return err
	})
	if err != nil {
		if isInconsistent(err) {
			b.logger.Error("inconsistent board state", "op", "load_board", "error", err)
		}
		return nil, err
	}
	return board, nil
}

// readBoard loads buckets then joined membership rows and assembles the
// board.
func readBoard(ctx context.Context, tx *sql.Tx) (*types.Board, error) {
	board := &types.Board{Buckets: []types.Bucket{}}
	index := make(map[int64]int)

	rows, err := tx.QueryContext(ctx, "SELECT id, title FROM buckets ORDER BY id ASC")
	if err != nil {
		return nil, storageErr("query buckets", err)
	}
	for rows.Next() {
		bucket := types.Bucket{Items: []types.Item{}}
		if err := rows.Scan(&bucket.ID, &bucket.Title); err != nil {
			rows.Close()
			return nil, storageErr("scan bucket", err)
		}
		index[bucket.ID] = len(board.Buckets)
		board.Buckets = append(board.Buckets, bucket)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, storageErr("iterate buckets", err)
	}
	rows.Close()

	rows, err = tx.QueryContext(ctx, selectBoardRows)
	if err != nil {
		return nil, storageErr("query memberships", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := hydrateBoardRow(rows)
		if err != nil {
			return nil, err
		}
		i, ok := index[r.bucketID]
		if !ok {
			return nil, inconsistent("item %d is in unknown bucket %d", r.itemID, r.bucketID)
		}
		if !r.itemFound {
			return nil, inconsistent("membership in bucket %d points at missing item %d", r.bucketID, r.itemID)
		}
		bucket := &board.Buckets[i]
		if want := int64(len(bucket.Items)); r.position != want {
			return nil, inconsistent("bucket %d: item %d at position %d, want %d", r.bucketID, r.itemID, r.position, want)
		}
		bucket.Items = append(bucket.Items, r.item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate memberships", err)
	}

	return board, nil
}

// boardRow is one membership joined with its item.
type boardRow struct {
	bucketID  int64
	position  int64
	itemID    int64
	itemFound bool
	item      types.Item
}

// hydrateBoardRow converts a joined row into a boardRow. A NULL item id
// means the membership has no item row.
func hydrateBoardRow(rows *sql.Rows) (boardRow, error) {
	var (
		r     boardRow
		id    sql.NullInt64
		title sql.NullString
		desc  sql.NullString
	)
	if err := rows.Scan(&r.bucketID, &r.position, &r.itemID, &id, &title, &desc); err != nil {
		return r, storageErr("scan membership", err)
	}
	if !id.Valid {
		return r, nil
	}
	r.itemFound = true
	r.item = types.Item{ID: id.Int64, Title: title.String}
	if desc.Valid {
		d := desc.String
		r.item.Description = &d
	}
	return r, nil
}

// bucketExists returns ErrNotFound if no bucket has the given id.
func bucketExists(ctx context.Context, tx *sql.Tx, bucketID int64) error {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM buckets WHERE id = ?", bucketID).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("bucket %d: %w", bucketID, types.ErrNotFound)
	}
	if err != nil {
		return storageErr(fmt.Sprintf("check bucket %d", bucketID), err)
	}
	return nil
}

// bucketSize returns the number of memberships in the bucket.
func bucketSize(ctx context.Context, tx *sql.Tx, bucketID int64) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM memberships WHERE bucket_id = ?", bucketID).Scan(&n)
	if err != nil {
		return 0, storageErr(fmt.Sprintf("count bucket %d", bucketID), err)
	}
	return n, nil
}

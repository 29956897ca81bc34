package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const selectCheckRows = `
	SELECT m.bucket_id, m.position, m.item_id,
	       b.id IS NOT NULL, i.id IS NOT NULL
	FROM memberships AS m
	LEFT JOIN buckets AS b ON b.id = m.bucket_id
	LEFT JOIN items AS i ON i.id = m.item_id
	ORDER BY m.bucket_id ASC, m.position ASC, m.item_id ASC`

const selectHomelessItems = `
	SELECT id FROM items
	WHERE id NOT IN (SELECT item_id FROM memberships)
	ORDER BY id ASC`

// Check scans every membership and reports all faults at once: positions
// that are not the dense run 0..N-1, memberships to a missing bucket or
// item, and items with no membership. Nothing is repaired.
func (b *Backend) Check(ctx context.Context) error {
	release, err := b.acquire()
	if err != nil {
		return err
	}
	defer release()

	var problems []string
	err = b.withTx(ctx, "check", func(tx *sql.Tx) error {
		var err error
		problems, err = findProblems(ctx, tx)
		return err
	})
	if err != nil {
		return err
	}
	if len(problems) == 0 {
		return nil
	}

	err = inconsistent("%s", strings.Join(problems, "; "))
	b.logger.Error("inconsistent board state", "op", "check", "problems", len(problems), "error", err)
	return err
}

func findProblems(ctx context.Context, tx *sql.Tx) ([]string, error) {
	var problems []string

	rows, err := tx.QueryContext(ctx, selectCheckRows)
	if err != nil {
		return nil, storageErr("query memberships", err)
	}
	var (
		curBucket int64
		next      int64
		started   bool
	)
	for rows.Next() {
		var (
			bucketID, position, itemID int64
			hasBucket, hasItem         bool
		)
		if err := rows.Scan(&bucketID, &position, &itemID, &hasBucket, &hasItem); err != nil {
			rows.Close()
			return nil, storageErr("scan membership", err)
		}
		if !started || bucketID != curBucket {
			curBucket, next, started = bucketID, 0, true
		}
		if !hasBucket {
			problems = append(problems, fmt.Sprintf("item %d is in unknown bucket %d", itemID, bucketID))
		}
		if !hasItem {
			problems = append(problems, fmt.Sprintf("membership in bucket %d points at missing item %d", bucketID, itemID))
		}
		if position != next {
			problems = append(problems, fmt.Sprintf("bucket %d: item %d at position %d, want %d", bucketID, itemID, position, next))
		}
		next++
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, storageErr("iterate memberships", err)
	}
	rows.Close()

	rows, err = tx.QueryContext(ctx, selectHomelessItems)
	if err != nil {
		return nil, storageErr("query items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr("scan item", err)
		}
		problems = append(problems, fmt.Sprintf("item %d has no bucket", id))
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate items", err)
	}

	return problems, nil
}

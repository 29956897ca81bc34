package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

// seedBuckets creates the configured buckets if the buckets table is empty
// (first run). Later attaches leave existing buckets alone even if the
// configured list changed.
func seedBuckets(ctx context.Context, db *sql.DB, seeds []types.BucketSeed) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("seed buckets: begin", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM buckets").Scan(&count); err != nil {
		return storageErr("seed buckets: count", err)
	}
	if count > 0 {
		return nil
	}

	for _, s := range seeds {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO buckets (id, title) VALUES (?, ?)", s.ID, s.Title); err != nil {
			return storageErr(fmt.Sprintf("seed bucket %d", s.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("seed buckets: commit", err)
	}
	return nil
}

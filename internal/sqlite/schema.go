package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

// Schema DDL. One membership row per live item; UNIQUE(bucket_id, position)
// makes a duplicate position a constraint violation.
const (
	createBuckets = `CREATE TABLE IF NOT EXISTS buckets (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL
);`

	createItems = `CREATE TABLE IF NOT EXISTS items (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT
);`

	createMemberships = `CREATE TABLE IF NOT EXISTS memberships (
    item_id INTEGER PRIMARY KEY,
    bucket_id INTEGER NOT NULL,
    position INTEGER NOT NULL CHECK (position >= 0),
    UNIQUE (bucket_id, position),
    FOREIGN KEY (item_id) REFERENCES items(id),
    FOREIGN KEY (bucket_id) REFERENCES buckets(id)
);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createBuckets,
	createItems,
	createMemberships,
}

// applySchema creates any missing table. Safe to run on every Attach.
func applySchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("apply schema: %w: %w", types.ErrStorageUnavailable, err)
		}
	}
	return nil
}

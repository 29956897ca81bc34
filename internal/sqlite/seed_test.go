// Unit tests for bucket seeding and schema setup on attach.
package sqlite

import (
	"context"
	"database/sql"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

// setupTestDB opens a fresh database file through openDB and applies the
// schema, without seeding.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := types.Config{Backend: types.BackendSQLite, Driver: types.DriverModernc}
	db, err := openDB(cfg, filepath.Join(t.TempDir(), DBFileName))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, applySchema(context.Background(), db))
	return db
}

func bucketTitles(t *testing.T, db *sql.DB) map[int64]string {
	t.Helper()
	rows, err := db.Query("SELECT id, title FROM buckets")
	require.NoError(t, err)
	defer rows.Close()
	out := map[int64]string{}
	for rows.Next() {
		var id int64
		var title string
		require.NoError(t, rows.Scan(&id, &title))
		out[id] = title
	}
	require.NoError(t, rows.Err())
	return out
}

func TestSeedBuckets_EmptyTable(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, seedBuckets(ctx, db, types.DefaultBuckets))
	assert.Equal(t, map[int64]string{0: "Backlog", 1: "In Progress", 2: "Done"}, bucketTitles(t, db))
}

func TestSeedBuckets_SkipsWhenBucketsExist(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, seedBuckets(ctx, db, []types.BucketSeed{{ID: 5, Title: "Inbox"}}))
	require.NoError(t, seedBuckets(ctx, db, types.DefaultBuckets))

	assert.Equal(t, map[int64]string{5: "Inbox"}, bucketTitles(t, db))
}

func TestSeedBuckets_RollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Repeated id violates the primary key on the second insert.
	err := seedBuckets(ctx, db, []types.BucketSeed{{ID: 1, Title: "a"}, {ID: 1, Title: "b"}})
	assert.ErrorIs(t, err, types.ErrStorageUnavailable)
	assert.Empty(t, bucketTitles(t, db))
}

func TestApplySchema_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, applySchema(context.Background(), db))
}

func TestSchema_RejectsDuplicatePosition(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, seedBuckets(ctx, db, types.DefaultBuckets))

	_, err := db.Exec("INSERT INTO items (id, title) VALUES (1, 'a'), (2, 'b')")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO memberships (item_id, bucket_id, position) VALUES (1, 0, 0)")
	require.NoError(t, err)

	_, err = db.Exec("INSERT INTO memberships (item_id, bucket_id, position) VALUES (2, 0, 0)")
	assert.Error(t, err, "two items at one position")
	_, err = db.Exec("INSERT INTO memberships (item_id, bucket_id, position) VALUES (2, 9, 0)")
	assert.Error(t, err, "unknown bucket")
	_, err = db.Exec("INSERT INTO memberships (item_id, bucket_id, position) VALUES (2, 1, -1)")
	assert.Error(t, err, "negative position")
}

func TestDSN(t *testing.T) {
	got := dsn("/data/kanban.db", 250)
	require.True(t, strings.HasPrefix(got, "file:/data/kanban.db?"), got)

	q, err := url.ParseQuery(strings.SplitN(got, "?", 2)[1])
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"foreign_keys(1)",
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
		"busy_timeout(250)",
	}, q["_pragma"])
	assert.Equal(t, "immediate", q.Get("_txlock"))
}

func TestDSN_EscapesPath(t *testing.T) {
	got := dsn("/data/a?b#c d/kanban.db", 250)
	assert.True(t, strings.HasPrefix(got, "file:/data/a%3Fb%23c%20d/kanban.db?"), got)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "/data/a?b#c d/kanban.db", u.Path)
	assert.Equal(t, "immediate", u.Query().Get("_txlock"))
}

package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

var testDrivers = []string{types.DriverModernc, types.DriverNcruces}

// newTestBackend attaches a backend on a fresh data dir with buckets 0 and 1.
func newTestBackend(t *testing.T, driver string) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
		Driver:  driver,
		Buckets: []types.BucketSeed{
			{ID: 0, Title: "Backlog"},
			{ID: 1, Title: "In Progress"},
		},
	}))
	t.Cleanup(func() { b.Detach() })
	return b
}

// forEachDriver runs fn as a subtest against every SQLite driver.
func forEachDriver(t *testing.T, fn func(t *testing.T, b *Backend)) {
	t.Helper()
	for _, driver := range testDrivers {
		t.Run(driver, func(t *testing.T) {
			fn(t, newTestBackend(t, driver))
		})
	}
}

// forEachDriverConfig runs fn as a subtest for every driver name, leaving
// attach to fn.
func forEachDriverConfig(t *testing.T, fn func(t *testing.T, driver string)) {
	t.Helper()
	for _, driver := range testDrivers {
		t.Run(driver, func(t *testing.T) { fn(t, driver) })
	}
}

// layout returns the item ids of every bucket in position order.
func layout(t *testing.T, b *Backend) map[int64][]int64 {
	t.Helper()
	board, err := b.LoadBoard(context.Background())
	require.NoError(t, err)
	out := make(map[int64][]int64, len(board.Buckets))
	for _, bucket := range board.Buckets {
		ids := []int64{}
		for _, item := range bucket.Items {
			ids = append(ids, item.ID)
		}
		out[bucket.ID] = ids
	}
	return out
}

// fill inserts items with the given ids at the end of bucketID.
func fill(t *testing.T, b *Backend, bucketID int64, ids ...int64) {
	t.Helper()
	ctx := context.Background()
	for i, id := range ids {
		require.NoError(t, b.InsertItem(ctx, item(id), types.Slot{BucketID: bucketID, Position: int64(i)}))
	}
}

func item(id int64) types.Item {
	return types.Item{ID: id, Title: "item"}
}

func slot(bucketID, position int64) types.Slot {
	return types.Slot{BucketID: bucketID, Position: position}
}

// execNoFK runs statements on a single connection with foreign keys off,
// used to plant corrupt rows.
func execNoFK(t *testing.T, b *Backend, stmts ...string) {
	t.Helper()
	ctx := context.Background()
	conn, err := b.db.Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF")
	require.NoError(t, err)
	for _, s := range stmts {
		_, err := conn.ExecContext(ctx, s)
		require.NoError(t, err)
	}
	_, err = conn.ExecContext(ctx, "PRAGMA foreign_keys = ON")
	require.NoError(t, err)
}

package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

func TestBackend_Attach(t *testing.T) {
	for _, driver := range testDrivers {
		t.Run(driver, func(t *testing.T) {
			tmpDir := t.TempDir()
			b := NewBackend()
			config := types.Config{
				Backend: types.BackendSQLite,
				DataDir: tmpDir,
				Driver:  driver,
			}

			require.NoError(t, b.Attach(config))
			defer b.Detach()

			_, err := os.Stat(filepath.Join(tmpDir, DBFileName))
			assert.NoError(t, err, "database file should exist")
			assert.Equal(t, filepath.Join(tmpDir, DBFileName), b.Path())

			assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
		})
	}
}

func TestBackend_AttachCreatesDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "data")
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}))
	defer b.Detach()

	info, err := os.Stat(dataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestBackend_AttachDataDirWithURIChars(t *testing.T) {
	forEachDriverConfig(t, func(t *testing.T, driver string) {
		parent := t.TempDir()
		dataDir := filepath.Join(parent, "a?b#c")
		b := NewBackend()
		require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir, Driver: driver}))
		defer b.Detach()

		ctx := context.Background()
		require.NoError(t, b.InsertItem(ctx, item(1), slot(0, 0)))

		dbPath := filepath.Join(dataDir, DBFileName)
		assert.Equal(t, dbPath, b.Path())
		_, err := os.Stat(dbPath)
		assert.NoError(t, err, "database file should be inside the data dir")

		entries, err := os.ReadDir(parent)
		require.NoError(t, err)
		require.Len(t, entries, 1, "nothing may be written beside the data dir")
		assert.Equal(t, "a?b#c", entries[0].Name())
	})
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  types.Config
		wantErr error
	}{
		{"empty backend", types.Config{DataDir: t.TempDir()}, types.ErrBackendEmpty},
		{"unknown backend", types.Config{Backend: "postgres", DataDir: t.TempDir()}, types.ErrBackendUnknown},
		{"unknown driver", types.Config{Backend: types.BackendSQLite, Driver: "cgo", DataDir: t.TempDir()}, types.ErrDriverUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBackend()
			assert.ErrorIs(t, b.Attach(tt.config), tt.wantErr)
			_, err := b.LoadBoard(context.Background())
			assert.ErrorIs(t, err, types.ErrDetached)
		})
	}
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))

	require.NoError(t, b.Detach())
	assert.NoError(t, b.Detach(), "Detach should be idempotent")
	assert.Empty(t, b.Path())

	ctx := context.Background()
	_, err := b.LoadBoard(ctx)
	assert.ErrorIs(t, err, types.ErrDetached)
	assert.ErrorIs(t, b.InsertItem(ctx, item(1), slot(0, 0)), types.ErrDetached)
	assert.ErrorIs(t, b.MoveItem(ctx, item(1), slot(0, 0), slot(1, 0)), types.ErrDetached)
	assert.ErrorIs(t, b.DeleteItem(ctx, item(1), 0), types.ErrDetached)
	assert.ErrorIs(t, b.Check(ctx), types.ErrDetached)
}

func TestBackend_SeedsDefaultBuckets(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	defer b.Detach()

	board, err := b.LoadBoard(context.Background())
	require.NoError(t, err)
	require.Len(t, board.Buckets, len(types.DefaultBuckets))
	for i, seed := range types.DefaultBuckets {
		assert.Equal(t, seed.ID, board.Buckets[i].ID)
		assert.Equal(t, seed.Title, board.Buckets[i].Title)
		assert.Empty(t, board.Buckets[i].Items)
	}
}

func TestBackend_PersistsAcrossAttach(t *testing.T) {
	for _, driver := range testDrivers {
		t.Run(driver, func(t *testing.T) {
			dataDir := t.TempDir()
			config := types.Config{Backend: types.BackendSQLite, DataDir: dataDir, Driver: driver}
			ctx := context.Background()

			b := NewBackend()
			require.NoError(t, b.Attach(config))
			require.NoError(t, b.InsertItem(ctx, item(1), slot(0, 0)))
			require.NoError(t, b.InsertItem(ctx, item(2), slot(0, 1)))
			require.NoError(t, b.Detach())

			// A different bucket list on a later attach does not reseed.
			config.Buckets = []types.BucketSeed{{ID: 9, Title: "Other"}}
			require.NoError(t, b.Attach(config))
			defer b.Detach()

			got := layout(t, b)
			assert.Equal(t, []int64{1, 2}, got[0])
			_, hasOther := got[9]
			assert.False(t, hasOther, "buckets are only seeded into an empty store")
		})
	}
}

// Tests for board JSONL export and import.
package sqlite

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

func TestExportBoard_OneBucketPerLine(t *testing.T) {
	b := newTestBackend(t, types.DriverModernc)
	ctx := context.Background()
	fill(t, b, 0, 7, 8)

	var buf bytes.Buffer
	require.NoError(t, b.ExportBoard(ctx, &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"id":0,"title":"Backlog","items":[{"id":7,"title":"item"},{"id":8,"title":"item"}]}`, lines[0])
	assert.Equal(t, `{"id":1,"title":"In Progress","items":[]}`, lines[1])
}

func TestExportImport_RoundTrip(t *testing.T) {
	forEachDriver(t, func(t *testing.T, b *Backend) {
		ctx := context.Background()
		desc := "details"
		require.NoError(t, b.InsertItem(ctx, types.Item{ID: 1, Title: "first", Description: &desc}, slot(0, 0)))
		fill(t, b, 1, 2, 3)
		want, err := b.LoadBoard(ctx)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, b.ExportBoard(ctx, &buf))

		other := newTestBackend(t, types.DriverModernc)
		require.NoError(t, other.ImportBoard(ctx, &buf))
		got, err := other.LoadBoard(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NoError(t, other.Check(ctx))
	})
}

func TestImportBoard_ReplacesExistingItems(t *testing.T) {
	b := newTestBackend(t, types.DriverModernc)
	ctx := context.Background()
	fill(t, b, 0, 1, 2, 3)

	doc := `{"id":1,"title":"In Progress","items":[{"id":3,"title":"kept id"},{"id":9,"title":"new"}]}` + "\n"
	require.NoError(t, b.ImportBoard(ctx, strings.NewReader(doc)))

	got := layout(t, b)
	assert.Equal(t, []int64{}, got[0])
	assert.Equal(t, []int64{3, 9}, got[1])
}

func TestImportBoard_FailuresLeaveBoardUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "unknown bucket",
			doc:     `{"id":42,"title":"Nowhere","items":[{"id":5,"title":"x"}]}`,
			wantErr: types.ErrNotFound,
		},
		{
			name: "duplicate item",
			doc: `{"id":0,"title":"Backlog","items":[{"id":5,"title":"x"}]}
{"id":1,"title":"In Progress","items":[{"id":5,"title":"y"}]}`,
			wantErr: types.ErrDuplicateItem,
		},
		{
			name:    "empty title",
			doc:     `{"id":0,"title":"Backlog","items":[{"id":5,"title":""}]}`,
			wantErr: types.ErrInvalidTitle,
		},
		{
			name: "bucket listed twice",
			doc: `{"id":0,"title":"Backlog","items":[{"id":5,"title":"x"}]}
{"id":0,"title":"Backlog","items":[{"id":6,"title":"y"}]}`,
			wantErr: types.ErrInvalidDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBackend(t, types.DriverModernc)
			ctx := context.Background()
			fill(t, b, 0, 1, 2)
			before := layout(t, b)

			err := b.ImportBoard(ctx, strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotErrorIs(t, err, types.ErrStorageUnavailable)
			assert.Equal(t, before, layout(t, b))
		})
	}
}

func TestImportBoard_MalformedLine(t *testing.T) {
	b := newTestBackend(t, types.DriverModernc)
	ctx := context.Background()
	fill(t, b, 0, 1)

	doc := "{\"id\":0,\"title\":\"Backlog\",\"items\":[]}\n\n{not json\n"
	err := b.ImportBoard(ctx, strings.NewReader(doc))
	assert.ErrorIs(t, err, types.ErrInvalidDocument)
	assert.Contains(t, err.Error(), "line 3")
	assert.Equal(t, []int64{1}, layout(t, b)[0])
}

func TestExportBoardFile_Atomic(t *testing.T) {
	b := newTestBackend(t, types.DriverModernc)
	ctx := context.Background()
	fill(t, b, 0, 1)

	path := filepath.Join(t.TempDir(), "out", "board.jsonl")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	require.NoError(t, b.ExportBoardFile(ctx, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Contains(t, string(data), `"id":1`)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")

	other := newTestBackend(t, types.DriverNcruces)
	require.NoError(t, other.ImportBoardFile(ctx, path))
	assert.Equal(t, []int64{1}, layout(t, other)[0])
}

func TestImportBoardFile_Missing(t *testing.T) {
	b := newTestBackend(t, types.DriverModernc)
	err := b.ImportBoardFile(context.Background(), filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

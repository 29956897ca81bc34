package sqlite

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

// Board JSONL format: one bucket per line, in ascending bucket id order,
// each carrying its items in position order:
//
//	{"id":0,"title":"Backlog","items":[{"id":7,"title":"Write docs"}]}
//	{"id":1,"title":"In Progress","items":[]}

// ExportBoard writes a snapshot of the board to w as JSONL.
func (b *Backend) ExportBoard(ctx context.Context, w io.Writer) error {
	board, err := b.LoadBoard(ctx)
	if err != nil {
		return err
	}
	return writeBoardJSONL(w, board)
}

// ExportBoardFile writes a snapshot of the board to path. The file is
// replaced atomically: readers see either the old or the new content.
func (b *Backend) ExportBoardFile(ctx context.Context, path string) error {
	board, err := b.LoadBoard(ctx)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, func(w io.Writer) error {
		return writeBoardJSONL(w, board)
	})
}

// ImportBoard replaces every item and membership with the content of a
// board JSONL document, in one transaction. Items are placed at positions
// 0..N-1 in document order. Buckets must already exist (ErrNotFound
// otherwise); their titles are left unchanged. A malformed line or a bucket
// listed twice is ErrInvalidDocument, a repeated item id ErrDuplicateItem,
// and an empty title ErrInvalidTitle; on any error nothing is changed.
func (b *Backend) ImportBoard(ctx context.Context, r io.Reader) (err error) {
	buckets, err := readBoardJSONL(r)
	if err != nil {
		return err
	}

	release, err := b.acquire()
	if err != nil {
		return err
	}
	defer release()

	log := b.opLogger("import", "buckets", len(buckets))
	start := time.Now()
	defer func() { logOutcome(log, start, err) }()

	return b.withTx(ctx, "import board", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM memberships"); err != nil {
			return storageErr("clear memberships", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM items"); err != nil {
			return storageErr("clear items", err)
		}

		for _, bucket := range buckets {
			if err := bucketExists(ctx, tx, bucket.ID); err != nil {
				return err
			}
			for pos, item := range bucket.Items {
				if err := item.Validate(); err != nil {
					return fmt.Errorf("item %d: %w", item.ID, err)
				}
				if err := insertItemRow(ctx, tx, item); err != nil {
					return fmt.Errorf("item %d: %w", item.ID, err)
				}
				if _, err := tx.ExecContext(ctx,
					"INSERT INTO memberships (item_id, bucket_id, position) VALUES (?, ?, ?)",
					item.ID, bucket.ID, pos); err != nil {
					return storageErr("insert membership", err)
				}
			}
		}
		return nil
	})
}

// ImportBoardFile imports the board JSONL document at path.
func (b *Backend) ImportBoardFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return b.ImportBoard(ctx, f)
}

// writeBoardJSONL writes one bucket record per line.
func writeBoardJSONL(w io.Writer, board *types.Board) error {
	enc := json.NewEncoder(w)
	for _, bucket := range board.Buckets {
		if err := enc.Encode(bucket); err != nil {
			return fmt.Errorf("writing bucket %d: %w", bucket.ID, err)
		}
	}
	return nil
}

// readBoardJSONL decodes bucket records. Empty lines are skipped. A
// malformed line or a repeated bucket id is ErrInvalidDocument, since
// importing a partial board would drop items.
func readBoardJSONL(r io.Reader) ([]types.Bucket, error) {
	var buckets []types.Bucket
	seen := make(map[int64]int)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var bucket types.Bucket
		if err := json.Unmarshal(data, &bucket); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", types.ErrInvalidDocument, line, err)
		}
		if first, ok := seen[bucket.ID]; ok {
			return nil, fmt.Errorf("%w: line %d: bucket %d already listed on line %d",
				types.ErrInvalidDocument, line, bucket.ID, first)
		}
		seen[bucket.ID] = line
		buckets = append(buckets, bucket)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning board: %w", err)
	}
	return buckets, nil
}

// writeFileAtomic writes path using the temp-file, fsync, rename pattern.
func writeFileAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".board-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if err := write(w); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

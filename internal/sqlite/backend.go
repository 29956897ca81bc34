// Package sqlite implements the SQLite storage backend for the kanban board.
//
// The backend owns one shared connection pool for its lifetime. Reads go
// through the snapshot reader (LoadBoard); writes go through the position
// engine (InsertItem, MoveItem, DeleteItem), each inside one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/kanban/internal/logging"
	"github.com/mesh-intelligence/kanban/pkg/types"
)

// DBFileName is the database file created inside Config.DataDir.
const DBFileName = "kanban.db"

var _ types.Store = (*Backend)(nil)

// Backend implements types.Store on top of an SQLite database file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	logger   *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for mutation and consistency records.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{logger: logging.Discard()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, opens the database, applies the
// schema, and seeds buckets on first use.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w: %w", types.ErrStorageUnavailable, err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)
	db, err := openDB(config, dbPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return err
	}
	if err := seedBuckets(ctx, db, config.GetBuckets()); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.attached = true

	b.logger.Debug("backend attached",
		"path", dbPath,
		"driver", config.GetDriver())
	return nil
}

// Detach releases all resources held by the backend.
// After Detach, all operations return ErrDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("close database: %w: %w", types.ErrStorageUnavailable, err)
		}
		b.db = nil
	}

	b.attached = false
	b.logger.Debug("backend detached")
	return nil
}

// Path returns the database file path, or "" when detached.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return ""
	}
	dataDir := b.config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	return filepath.Join(dataDir, DBFileName)
}

// acquire takes the read lock for the duration of an operation and returns
// the release func. Returns ErrDetached when the backend is not attached.
func (b *Backend) acquire() (func(), error) {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return nil, types.ErrDetached
	}
	return b.mu.RUnlock, nil
}

// opLogger returns a logger tagged with a fresh UUID v7 operation id.
func (b *Backend) opLogger(op string, args ...any) *slog.Logger {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		id = uuid.New()
	}
	return b.logger.With(append([]any{"op", op, "op_id", id.String()}, args...)...)
}

// logOutcome records the result of a mutation: debug on success, error on
// inconsistent state, warn for every other failure.
func logOutcome(l *slog.Logger, start time.Time, err error) {
	elapsed := time.Since(start)
	switch {
	case err == nil:
		l.Debug("committed", "elapsed", elapsed)
	case isInconsistent(err):
		l.Error("inconsistent board state", "error", err, "elapsed", elapsed)
	default:
		l.Warn("rolled back", "error", err, "elapsed", elapsed)
	}
}

package types

import (
	"context"
	"errors"
)

// Store is the boundary the command layer uses to read and mutate a board.
// Every mutating call runs in a single transaction: it either commits in
// full or leaves storage untouched.
type Store interface {
	// Attach opens the backend described by config, creating the data
	// directory, schema, and seeded buckets as needed. Returns
	// ErrAlreadyAttached if called while attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, every other operation returns ErrDetached.
	Detach() error

	// LoadBoard returns a consistent snapshot of all buckets and their
	// items in position order.
	LoadBoard(ctx context.Context) (*Board, error)

	// InsertItem stores a new item at target, shifting the items at or
	// after target.Position one slot later.
	InsertItem(ctx context.Context, item Item, target Slot) error

	// MoveItem relocates the item from one slot to another, within a
	// bucket or across buckets. Item content is not modified.
	MoveItem(ctx context.Context, item Item, from, to Slot) error

	// DeleteItem removes the item and its membership in bucketID, closing
	// the gap it leaves.
	DeleteItem(ctx context.Context, item Item, bucketID int64) error

	// Check verifies that every bucket holds a dense, duplicate-free run
	// of positions and that every membership points at a live item and
	// bucket. Returns ErrInconsistentState otherwise.
	Check(ctx context.Context) error
}

// Store lifecycle errors.
var (
	ErrDetached        = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Operation errors. Storage driver faults never cross the Store boundary
// bare: they are wrapped with ErrStorageUnavailable.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInconsistentState  = errors.New("inconsistent board state")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateItem      = errors.New("item already exists")
	ErrInvalidPosition    = errors.New("invalid position")
	ErrInvalidTitle       = errors.New("item title must not be empty")
	ErrInvalidDocument    = errors.New("invalid board document")
)

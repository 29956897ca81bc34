package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

// withTx runs fn inside one transaction on the backend's pool. fn's error
// aborts the transaction and is returned prefixed with op; a begin or commit
// failure is reported as ErrStorageUnavailable. Cancelling ctx before commit
// rolls everything back.
func (b *Backend) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(op+": begin", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr(op+": commit", err)
	}
	return nil
}

// storageErr wraps a driver error so that it matches ErrStorageUnavailable
// while keeping the cause (including context cancellation) in the chain.
func storageErr(what string, err error) error {
	return fmt.Errorf("%s: %w: %w", what, types.ErrStorageUnavailable, err)
}

// inconsistent reports a consistency fault found while reading.
func inconsistent(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrInconsistentState, fmt.Sprintf(format, args...))
}

func isInconsistent(err error) bool {
	return errors.Is(err, types.ErrInconsistentState)
}

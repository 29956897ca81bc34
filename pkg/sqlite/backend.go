// Package sqlite provides the public API for the SQLite board backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/kanban/internal/sqlite"
	"github.com/mesh-intelligence/kanban/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend(nil)
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".kanban-db",
//	})
//	defer store.Detach()
func NewBackend(logger *slog.Logger) types.Store {
	return sqlite.NewBackend(sqlite.WithLogger(logger))
}

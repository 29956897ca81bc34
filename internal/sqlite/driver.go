package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

// driverNames maps Config.Driver values to database/sql driver names.
var driverNames = map[string]string{
	types.DriverModernc: "sqlite",
	types.DriverNcruces: "sqlite3",
}

// dsn builds the file: URI for path. The path is percent-escaped so '?' and
// '#' in directory names stay part of the file name. Pragmas are applied to
// every pooled connection. _txlock=immediate makes BEGIN take the write lock, so two
// transactions never interleave their reads and writes.
func dsn(path string, busyTimeoutMS int) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	q.Set("_txlock", "immediate")
	u := url.URL{
		Scheme:   "file",
		OmitHost: true,
		Path:     filepath.ToSlash(path),
		RawQuery: q.Encode(),
	}
	return u.String()
}

// openDB opens and pings the database with the driver named in config.
func openDB(config types.Config, path string) (*sql.DB, error) {
	name, ok := driverNames[config.GetDriver()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrDriverUnknown, config.Driver)
	}

	db, err := sql.Open(name, dsn(path, config.GetBusyTimeoutMS()))
	if err != nil {
		return nil, fmt.Errorf("open database: %w: %w", types.ErrStorageUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w: %w", types.ErrStorageUnavailable, err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

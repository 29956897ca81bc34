// Shared helpers for board CLI commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kanban/internal/logging"
	"github.com/mesh-intelligence/kanban/internal/sqlite"
)

var errBadSlot = errors.New("slot must be BUCKET:POSITION")

// openBoard resolves the data directory, builds the logger, and attaches a
// SQLite backend. The caller must call the returned close function.
func (s *session) openBoard(cmd *cobra.Command) (*sqlite.Backend, func(), error) {
	dataDir, err := s.resolveDataDir()
	if err != nil {
		return nil, nil, sysErr(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg, err := storeConfig(s.v, dataDir)
	if err != nil {
		return nil, nil, userErr(err)
	}

	logCfg := logConfig(s.v)
	logCfg.Output = cmd.ErrOrStderr()
	logger, logCloser, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, userErr(fmt.Errorf("config: %w", err))
	}

	backend := sqlite.NewBackend(sqlite.WithLogger(logger))
	if err := backend.Attach(cfg); err != nil {
		logCloser.Close()
		return nil, nil, sysErr(fmt.Errorf("attach backend: %w", err))
	}
	return backend, func() {
		backend.Detach()
		logCloser.Close()
	}, nil
}

// parseID parses an item or bucket id argument.
func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, userErr(fmt.Errorf("invalid %s %q", what, s))
	}
	return id, nil
}

// parseSlot parses "BUCKET:POSITION".
func parseSlot(s string) (bucketID, position int64, err error) {
	b, p, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, userErr(fmt.Errorf("%w: %q", errBadSlot, s))
	}
	bucketID, err1 := strconv.ParseInt(b, 10, 64)
	position, err2 := strconv.ParseInt(p, 10, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, userErr(fmt.Errorf("%w: %q", errBadSlot, s))
	}
	return bucketID, position, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysErr(fmt.Errorf("marshal JSON: %w", err))
	}
	fmt.Fprintln(w, string(out))
	return nil
}

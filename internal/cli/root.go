// Package cli implements the board command-line interface: the command
// layer that turns user requests into Store calls against the local
// SQLite board.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/kanban/internal/paths"
	"github.com/mesh-intelligence/kanban/pkg/kanban"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// session carries the state of one command invocation: parsed global flags
// and the config loaded by the root PersistentPreRunE.
type session struct {
	flags     rootFlags
	configDir string
	v         *viper.Viper
}

// NewRootCmd creates the top-level "board" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	s := &session{}

	root := &cobra.Command{
		Use:     "board",
		Short:   "A local kanban board backed by SQLite",
		Long:    "Board keeps items in ordered buckets. Positions in every bucket\nstay dense from 0 no matter how items are added, moved, or removed.",
		Version: kanban.Version,
		// Errors are reported once by Execute.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return s.loadSettings()
		},
	}

	root.PersistentFlags().StringVar(&s.flags.configDir, "config-dir", "", "configuration directory (default: per-user config dir)")
	root.PersistentFlags().StringVar(&s.flags.dataDir, "data-dir", "", "data directory (default: per-user data dir)")
	root.PersistentFlags().BoolVar(&s.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(s))
	root.AddCommand(newShowCmd(s))
	root.AddCommand(newAddCmd(s))
	root.AddCommand(newMoveCmd(s))
	root.AddCommand(newRemoveCmd(s))
	root.AddCommand(newCheckCmd(s))
	root.AddCommand(newExportCmd(s))
	root.AddCommand(newImportCmd(s))

	return root
}

// Execute runs the root command and exits with the matching exit code.
// SIGINT and SIGTERM cancel the running operation, which rolls back.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, NewRootCmd(), os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, root *cobra.Command, stderr io.Writer) int {
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "board:", err)
	return exitCode(err)
}

// loadSettings resolves the config directory and reads config.yaml from it.
func (s *session) loadSettings() error {
	dir, err := paths.ResolveConfigDir(s.flags.configDir)
	if err != nil {
		return sysErr(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(dir)
	if err != nil {
		return sysErr(err)
	}
	s.configDir, s.v = dir, v
	return nil
}

// resolveDataDir applies --data-dir > config.yaml data_dir >
// KANBAN_DATA_DIR > platform default.
func (s *session) resolveDataDir() (string, error) {
	return paths.ResolveDataDir(s.flags.dataDir, s.v.GetString(cfgKeyDataDir))
}

// exitError carries the process exit code for err.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userErr(err error) error { return &exitError{code: exitUserError, err: err} }
func sysErr(err error) error  { return &exitError{code: exitSysError, err: err} }

// exitCode maps err to a process exit code. Errors that carry no code come
// from cobra's argument and flag parsing and count as user errors.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

package types

import (
	"errors"
	"fmt"
)

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Driver selects the SQLite driver: DriverModernc (default) or
	// DriverNcruces.
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`

	// BusyTimeoutMS is how long a transaction waits for the write lock
	// before failing with ErrStorageUnavailable. Zero means
	// DefaultBusyTimeoutMS.
	BusyTimeoutMS int `json:"busy_timeout_ms,omitempty" yaml:"busy_timeout_ms,omitempty"`

	// Buckets are seeded on Attach when storage holds no bucket yet.
	Buckets []BucketSeed `json:"buckets,omitempty" yaml:"buckets,omitempty"`
}

// BucketSeed describes a bucket created on first attach.
type BucketSeed struct {
	ID    int64  `json:"id" yaml:"id" mapstructure:"id"`
	Title string `json:"title" yaml:"title" mapstructure:"title"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Supported SQLite drivers.
const (
	DriverModernc = "modernc"
	DriverNcruces = "ncruces"
)

// DefaultBusyTimeoutMS is used when Config.BusyTimeoutMS is zero.
const DefaultBusyTimeoutMS = 5000

// DefaultBuckets is the bucket set seeded when the config names none.
var DefaultBuckets = []BucketSeed{
	{ID: 0, Title: "Backlog"},
	{ID: 1, Title: "In Progress"},
	{ID: 2, Title: "Done"},
}

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDriverUnknown  = errors.New("unknown sqlite driver")
	ErrBucketSeed     = errors.New("invalid bucket seed")
	ErrBusyTimeoutNeg = errors.New("busy timeout must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

var knownDrivers = map[string]bool{
	"":            true,
	DriverModernc: true,
	DriverNcruces: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if !knownDrivers[c.Driver] {
		return fmt.Errorf("%w: %q", ErrDriverUnknown, c.Driver)
	}
	if c.BusyTimeoutMS < 0 {
		return ErrBusyTimeoutNeg
	}
	seen := make(map[int64]bool, len(c.Buckets))
	for _, b := range c.Buckets {
		if b.Title == "" {
			return fmt.Errorf("%w: bucket %d has no title", ErrBucketSeed, b.ID)
		}
		if seen[b.ID] {
			return fmt.Errorf("%w: bucket id %d repeated", ErrBucketSeed, b.ID)
		}
		seen[b.ID] = true
	}
	return nil
}

// GetDriver returns the configured driver, defaulting to DriverModernc.
func (c Config) GetDriver() string {
	if c.Driver == "" {
		return DriverModernc
	}
	return c.Driver
}

// GetBusyTimeoutMS returns the busy timeout, defaulting to
// DefaultBusyTimeoutMS.
func (c Config) GetBusyTimeoutMS() int {
	if c.BusyTimeoutMS == 0 {
		return DefaultBusyTimeoutMS
	}
	return c.BusyTimeoutMS
}

// GetBuckets returns the buckets to seed, defaulting to DefaultBuckets.
func (c Config) GetBuckets() []BucketSeed {
	if len(c.Buckets) == 0 {
		return DefaultBuckets
	}
	return c.Buckets
}

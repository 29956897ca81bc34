// Config loading for the board CLI.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/kanban/internal/logging"
	"github.com/mesh-intelligence/kanban/internal/paths"
	"github.com/mesh-intelligence/kanban/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyDriver        = "driver"
	cfgKeyBusyTimeoutMS = "busy_timeout_ms"
	cfgKeyLogLevel      = "log_level"
	cfgKeyLogFormat     = "log_format"
	cfgKeyLogFile       = "log_file"
	cfgKeyBuckets       = "buckets"
)

const configHeader = `# Board CLI configuration.
# data_dir is optional; --data-dir overrides it.
# buckets are created the first time the data directory is opened.
`

// fileConfig is the shape of config.yaml written on first run.
type fileConfig struct {
	Backend       string             `yaml:"backend"`
	DataDir       string             `yaml:"data_dir,omitempty"`
	Driver        string             `yaml:"driver"`
	BusyTimeoutMS int                `yaml:"busy_timeout_ms"`
	LogLevel      string             `yaml:"log_level"`
	LogFormat     string             `yaml:"log_format"`
	LogFile       string             `yaml:"log_file,omitempty"`
	Buckets       []types.BucketSeed `yaml:"buckets"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Backend:       types.BackendSQLite,
		Driver:        types.DriverModernc,
		BusyTimeoutMS: types.DefaultBusyTimeoutMS,
		LogLevel:      "info",
		LogFormat:     "text",
		Buckets:       types.DefaultBuckets,
	}
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	def := defaultFileConfig()
	v := viper.New()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyDriver, def.Driver)
	v.SetDefault(cfgKeyBusyTimeoutMS, def.BusyTimeoutMS)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyLogFormat, def.LogFormat)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile writes config.yaml with default values when the
// file does not exist yet.
func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	body, err := yaml.Marshal(defaultFileConfig())
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), body...), 0o644)
}

// storeConfig builds the Store config from v for dataDir.
func storeConfig(v *viper.Viper, dataDir string) (types.Config, error) {
	var buckets []types.BucketSeed
	if err := v.UnmarshalKey(cfgKeyBuckets, &buckets); err != nil {
		return types.Config{}, fmt.Errorf("config %s: %w", cfgKeyBuckets, err)
	}
	cfg := types.Config{
		Backend:       v.GetString(cfgKeyBackend),
		DataDir:       dataDir,
		Driver:        v.GetString(cfgKeyDriver),
		BusyTimeoutMS: v.GetInt(cfgKeyBusyTimeoutMS),
		Buckets:       buckets,
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// logConfig builds the logger config from v.
func logConfig(v *viper.Viper) logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = v.GetString(cfgKeyLogLevel)
	cfg.Format = v.GetString(cfgKeyLogFormat)
	cfg.File = v.GetString(cfgKeyLogFile)
	return cfg
}

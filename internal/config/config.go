// Package config resolves schedule's settings from defaults, an optional
// YAML config file, SCHEDULE_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pfrederiksen/schedule/internal/logger"
	"github.com/pfrederiksen/schedule/internal/storage"
)

// Keys understood in the config file and as SCHEDULE_<KEY> variables.
const (
	KeyFile         = "file"
	KeyLogLevel     = "log_level"
	KeyLogFile      = "log_file"
	KeyLogMaxSizeMB = "log_max_size_mb"
)

// EnvPrefix is prepended to environment variable names.
const EnvPrefix = "SCHEDULE"

// Config is the resolved configuration.
type Config struct {
	// File is the calendar JSON file.
	File string `mapstructure:"file"`

	// LogLevel is the minimum level written to the log.
	LogLevel string `mapstructure:"log_level"`

	// LogFile, if set, sends log lines to a rotated file instead of stderr.
	LogFile string `mapstructure:"log_file"`

	// LogMaxSizeMB is the size at which LogFile is rotated.
	LogMaxSizeMB int `mapstructure:"log_max_size_mb"`
}

// NewViper returns a viper instance with defaults and environment
// bindings installed. Callers bind their flags before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyFile, storage.DefaultFileName)
	v.SetDefault(KeyLogLevel, "error")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogMaxSizeMB, 10)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultPath returns the config file looked up when none is given,
// e.g. ~/.config/schedule/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "schedule", "config.yaml")
}

// Load reads the config file at path into v and returns the resolved
// Config. An explicit path must exist; when path is empty the default
// location is tried and silently skipped if absent.
func Load(v *viper.Viper, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
			if explicit || !missing {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize fills blank values with defaults and validates the rest.
func (c *Config) Normalize() error {
	c.File = strings.TrimSpace(c.File)
	if c.File == "" {
		c.File = storage.DefaultFileName
	}
	if c.LogLevel == "" {
		c.LogLevel = "error"
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}
	if c.LogMaxSizeMB <= 0 {
		c.LogMaxSizeMB = 10
	}
	return nil
}

// Package config loads daybook's configuration from the data directory's
// daybook.yaml, environment variables (DAYBOOK_*), and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/daybook-app/daybook/internal/e2ee"
	"github.com/daybook-app/daybook/internal/store"
)

// ConfigFileName is the config file looked up inside the data directory
// (without extension; yaml).
const ConfigFileName = "daybook"

// Config is the resolved configuration.
type Config struct {
	// DataDir holds the durable store document, the key file, and logs.
	DataDir string `mapstructure:"data_dir"`

	// UserID is the account all local collections are scoped to.
	UserID string `mapstructure:"user_id"`

	Remote RemoteConfig `mapstructure:"remote"`
	Sync   SyncConfig   `mapstructure:"sync"`
	Log    LogConfig    `mapstructure:"log"`
}

// RemoteConfig locates the remote backend.
type RemoteConfig struct {
	// DatabasePath is the SQLite backend database. Relative paths resolve
	// against the data directory.
	DatabasePath string `mapstructure:"database_path"`
}

// SyncConfig controls background synchronization.
type SyncConfig struct {
	// Auto gates opportunistic background sync. Explicit `daybook sync`
	// always runs regardless.
	Auto bool `mapstructure:"auto"`

	// Interval is the background retry cadence.
	Interval time.Duration `mapstructure:"interval"`
}

// LogConfig controls the daemon's rotating log file.
type LogConfig struct {
	// File is the daemon log path; empty logs to stderr. Relative paths
	// resolve against the data directory.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DefaultDataDir returns ~/.daybook.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".daybook"
	}
	return filepath.Join(home, ".daybook")
}

// Load resolves configuration for the given data directory. A missing config
// file is not an error; defaults and environment variables apply.
func Load(dataDir string) (*Config, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dataDir)

	v.SetEnvPrefix("DAYBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", dataDir)
	v.SetDefault("user_id", "local")
	v.SetDefault("remote.database_path", "daybook-remote.db")
	v.SetDefault("sync.auto", true)
	v.SetDefault("sync.interval", 30*time.Second)
	v.SetDefault("log.file", "daybook-daemon.log")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.UserID == "" {
		return nil, fmt.Errorf("user_id cannot be empty")
	}
	if !filepath.IsAbs(cfg.Remote.DatabasePath) {
		cfg.Remote.DatabasePath = filepath.Join(cfg.DataDir, cfg.Remote.DatabasePath)
	}
	if cfg.Log.File != "" && !filepath.IsAbs(cfg.Log.File) {
		cfg.Log.File = filepath.Join(cfg.DataDir, cfg.Log.File)
	}
	return &cfg, nil
}

// StatePath returns the durable store document location.
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, store.StateFileName)
}

// KeyPath returns the encryption key file location.
func (c *Config) KeyPath() string {
	return filepath.Join(c.DataDir, e2ee.KeyFileName)
}

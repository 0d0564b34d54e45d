// Package config holds the YAML file configuration for the calky CLI.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gillohner/calky/cache"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the remote store.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// RemoteURL is the base URL of the object store holding the calendar
	// blobs.
	RemoteURL string `yaml:"remote_url" json:"remote_url"`

	// Owner is the public identifier under which calendars are stored. It
	// scopes both the remote paths and the local cache namespace.
	Owner string `yaml:"owner" json:"owner"`

	// BasicAuth, if non-nil, is sent with every request to the remote store.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	// FreshWindow is how long a locally written snapshot is trusted over a
	// disagreeing remote etag, as a Go duration string (e.g. "40m").
	FreshWindow string `yaml:"fresh_window" json:"fresh_window"`

	// CachePath is where document snapshots are persisted between
	// invocations.
	CachePath string `yaml:"cache_path" json:"cache_path"`

	// Listen is the HTTP listen address for the development blob store
	// started by `calky serve`.
	Listen string `yaml:"listen" json:"listen"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		RemoteURL:   "http://127.0.0.1:8090",
		FreshWindow: cache.DefaultFreshWindow.String(),
		CachePath:   defaultCachePath(),
		Listen:      "127.0.0.1:8090",
		LogLevel:    "info",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.RemoteURL == "" {
		c.RemoteURL = "http://127.0.0.1:8090"
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8090"
	}
	if _, err := time.ParseDuration(c.FreshWindow); err != nil {
		c.FreshWindow = cache.DefaultFreshWindow.String()
	}
	if c.CachePath == "" {
		c.CachePath = defaultCachePath()
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}
}

// FreshWindowDuration parses FreshWindow. Normalize guarantees it parses, so
// a zero duration only appears for a hand-built unnormalized Config.
func (c *Config) FreshWindowDuration() time.Duration {
	d, err := time.ParseDuration(c.FreshWindow)
	if err != nil {
		return cache.DefaultFreshWindow
	}
	return d
}

// SlogLevel maps LogLevel onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load loads configuration from the given YAML path. A missing file is a
// first run: the default config is written with 0600 perms and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with 0600
// permissions, creating the parent directory when needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calky-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save so callers holding a *Config can
// write it back directly.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// DefaultPath is where the CLI looks for its configuration when no explicit
// path is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "calky.yaml"
	}
	return filepath.Join(home, ".config", "calky", "config.yaml")
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "calky-cache.json"
	}
	return filepath.Join(dir, "calky", "cache.json")
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFirstRunCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8090", cfg.RemoteURL)
	assert.Equal(t, "info", cfg.LogLevel)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.RemoteURL = "https://store.example.com"
	cfg.Owner = "z32pubkey"
	cfg.BasicAuth = &BasicAuthConfig{Username: "alice", Password: "hunter2"}
	cfg.FreshWindow = "15m"
	cfg.LogLevel = "debug"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://store.example.com", loaded.RemoteURL)
	assert.Equal(t, "z32pubkey", loaded.Owner)
	require.NotNil(t, loaded.BasicAuth)
	assert.Equal(t, "alice", loaded.BasicAuth.Username)
	assert.Equal(t, 15*time.Minute, loaded.FreshWindowDuration())
	assert.Equal(t, slog.LevelDebug, loaded.SlogLevel())
}

func TestNormalizeRepairsBadValues(t *testing.T) {
	cfg := &Config{FreshWindow: "soonish", LogLevel: "loud"}
	cfg.Normalize()

	assert.Equal(t, "40m0s", cfg.FreshWindow)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 40*time.Minute, cfg.FreshWindowDuration())
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("remote_url: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

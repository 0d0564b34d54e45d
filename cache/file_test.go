package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")

	store := NewFile(path)
	store.Set("a", []byte("alpha"))
	store.Set("b", []byte("beta"))
	store.Delete("b")

	reopened := NewFile(path)
	value, ok := reopened.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", string(value))
	_, ok = reopened.Get("b")
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, reopened.Keys())
}

func TestFileStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewFile(path)
	assert.Empty(t, store.Keys())

	store.Set("a", []byte("alpha"))
	value, ok := NewFile(path).Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", string(value))
}

func TestFileStoreWorksWithSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewFile(path)

	Write(store, "owner", "cal-1", Snapshot{Document: "BEGIN:VCALENDAR"})

	snap, ok := Read(NewFile(path), "owner", "cal-1")
	require.True(t, ok)
	assert.Equal(t, "BEGIN:VCALENDAR", snap.Document)
	assert.True(t, snap.ETag.IsAbsent())
}

package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// File is a Store persisted as a single JSON object on disk, so snapshots
// survive between CLI invocations. Every mutation rewrites the file through
// a temp-file rename; the cache is best effort, so write failures are
// swallowed and surface only as future misses.
type File struct {
	mu      sync.RWMutex
	path    string
	entries map[string]string
}

// NewFile opens (or initializes) the store at path. An unreadable or corrupt
// file starts the store empty rather than failing.
func NewFile(path string) *File {
	f := &File{path: path, entries: make(map[string]string)}
	if data, err := os.ReadFile(path); err == nil {
		var entries map[string]string
		if json.Unmarshal(data, &entries) == nil && entries != nil {
			f.entries = entries
		}
	}
	return f
}

func (f *File) Get(key string) ([]byte, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	value, ok := f.entries[key]
	if !ok {
		return nil, false
	}
	return []byte(value), true
}

func (f *File) Set(key string, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[key] = string(value)
	f.persistLocked()
}

func (f *File) Delete(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.entries, key)
	f.persistLocked()
}

func (f *File) Keys() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	keys := make([]string, 0, len(f.entries))
	for key := range f.entries {
		keys = append(keys, key)
	}
	return keys
}

func (f *File) persistLocked() {
	data, err := json.Marshal(f.entries)
	if err != nil {
		return
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return
	}
	tmp, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return
	}
	if err := tmp.Close(); err != nil {
		return
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return
	}
	_ = os.Rename(tmpName, f.path)
}

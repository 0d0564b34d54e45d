// Package cache holds the local, best-effort shadow of a calendar's
// document/etag pair. The backing store is a plain key-value capability so
// callers can swap the browser-profile file store for an in-memory map in
// tests.
package cache

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/samber/mo"
)

// keyPrefix versions the on-disk layout; bump it when Snapshot changes
// incompatibly.
const keyPrefix = "calky_ics_cache_v1"

// DefaultFreshWindow is how long a snapshot written by a local mutation is
// trusted over a disagreeing remote etag signal.
const DefaultFreshWindow = 40 * time.Minute

// Store is the key-value capability a Snapshot cache needs. Implementations
// must be safe for use from a single process; values are opaque bytes.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
	Keys() []string
}

// Snapshot is the cached state of one calendar: the full document text, the
// etag it was read or written under, and when it was stored. A snapshot is
// always written as a whole, never field by field.
type Snapshot struct {
	Document  string            `json:"document"`
	ETag      mo.Option[string] `json:"etag"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Fresh reports whether the snapshot is inside the freshness window at now.
func (s Snapshot) Fresh(now time.Time, window time.Duration) bool {
	return now.Sub(s.UpdatedAt) < window
}

// Key builds the composite cache key for one (owner, calendar) pair.
func Key(owner, calendarID string) string {
	return keyPrefix + ":" + owner + ":" + calendarID
}

// Read loads the snapshot for (owner, calendarID). A missing or undecodable
// entry reads as absent; the cache never fails, it just misses.
func Read(store Store, owner, calendarID string) (Snapshot, bool) {
	raw, ok := store.Get(Key(owner, calendarID))
	if !ok {
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, false
	}
	return snap, true
}

// Write stores the full snapshot tuple for (owner, calendarID).
func Write(store Store, owner, calendarID string, snap Snapshot) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	store.Set(Key(owner, calendarID), raw)
}

// Clear removes the snapshot for one calendar.
func Clear(store Store, owner, calendarID string) {
	store.Delete(Key(owner, calendarID))
}

// ClearAll removes every snapshot belonging to owner.
func ClearAll(store Store, owner string) {
	prefix := keyPrefix + ":" + owner + ":"
	for _, key := range store.Keys() {
		if strings.HasPrefix(key, prefix) {
			store.Delete(key)
		}
	}
}

// Package calclient synchronizes per-user calendar documents stored as
// single iCalendar blobs in a remote object store. Reads arbitrate between
// a local cache and the remote etag side-channel; writes are conditional on
// a content-hash etag with exactly one conflict retry that re-applies the
// logical edit against a fresh remote read.
package calclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gillohner/calky/cache"
	"github.com/gillohner/calky/ics"
	"github.com/gillohner/calky/internal/blobclient"
)

// Client defines the calendar synchronization operations.
type Client interface {
	// GetDocument resolves the current calendar document, arbitrating
	// between the local cache and the remote store.
	GetDocument(ctx context.Context, calendarID string) (Document, error)
	// ListEvents decodes the current document into events sorted by start.
	ListEvents(ctx context.Context, calendarID string) ([]ics.EventRecord, error)

	// AddEvent appends a new event and returns its UID.
	AddEvent(ctx context.Context, calendarID string, input ics.NewEventInput) (string, error)
	// UpdateEvent replaces the event identified by uid with a re-encoded
	// block built from updates.
	UpdateEvent(ctx context.Context, calendarID, uid string, updates ics.NewEventInput) error
	// DeleteEvent removes the event identified by uid. Removing an unknown
	// UID is a no-op.
	DeleteEvent(ctx context.Context, calendarID, uid string) error

	// EnsureIndex reads the calendar index, creating an empty one on first
	// access.
	EnsureIndex(ctx context.Context) (Index, error)
	// GetIndex reads the calendar index; a missing index reads as empty.
	GetIndex(ctx context.Context) (Index, error)
	// GetProps reads a calendar's properties; nil when the calendar does
	// not exist.
	GetProps(ctx context.Context, calendarID string) (*CalendarProps, error)

	// CreateCalendar provisions props, document, etag side-channel and
	// index entry for a new calendar, optionally seeding one event.
	CreateCalendar(ctx context.Context, init InitProps, initialEvent *ics.NewEventInput) (*CreatedCalendar, error)
	// UpdateProps merges updates into a calendar's properties and keeps
	// the index entry in sync.
	UpdateProps(ctx context.Context, calendarID string, updates PropsUpdate) (*CalendarProps, error)
	// DeleteCalendar removes the calendar from the index, purges its cache
	// entry and best-effort deletes its blobs.
	DeleteCalendar(ctx context.Context, calendarID string) error

	// ClearCache drops the cached snapshot for one calendar.
	ClearCache(calendarID string)
	// ClearAllCache drops every cached snapshot of this owner.
	ClearAllCache()
}

var (
	// ErrConflict is returned when a conditional write fails twice for the
	// same logical edit. Callers should tell the user to retry.
	ErrConflict = errors.New("write conflict")
	// ErrNotFound is returned when a calendar's properties do not exist.
	ErrNotFound = errors.New("calendar not found")
	// ErrReadOnly is returned when a mutation targets a read-only calendar.
	ErrReadOnly = errors.New("calendar is read-only")
	// ErrStorageUnavailable is returned when the remote store answers a
	// write with an unexpected status.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

const (
	contentTypeCalendar = "text/calendar; charset=utf-8"
	contentTypeJSON     = "application/json"
	contentTypePlain    = "text/plain; charset=utf-8"
)

type calendarClient struct {
	blob        blobclient.Client
	store       cache.Store
	owner       string
	logger      *slog.Logger
	freshWindow time.Duration
	now         func() time.Time
}

// Option tweaks client construction.
type Option func(*calendarClient)

// WithFreshWindow overrides the duration a locally written cache entry is
// trusted over a disagreeing remote etag.
func WithFreshWindow(window time.Duration) Option {
	return func(c *calendarClient) { c.freshWindow = window }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *calendarClient) { c.now = now }
}

// New constructs a calendar client for one owner. The blob client and cache
// store are injected so tests can swap either; the client is created once
// per process and torn down with it. A nil logger discards debug output.
func New(blob blobclient.Client, store cache.Store, owner string, logger *slog.Logger, opts ...Option) Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &calendarClient{
		blob:        blob,
		store:       store,
		owner:       owner,
		logger:      logger,
		freshWindow: cache.DefaultFreshWindow,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

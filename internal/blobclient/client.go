// Package blobclient wraps http.Client for the path-addressed object store
// that holds calendar blobs. It exposes plain GET/PUT/DELETE with
// conditional-write support; all higher-level semantics (etag arbitration,
// retries) live in calclient.
package blobclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// Client is the transport capability the sync layer depends on. HTTP
// statuses are reported through Response so callers can treat 404 and 412
// as signals rather than errors; only transport-level failures return a
// non-nil error.
type Client interface {
	Get(ctx context.Context, path string) (*Response, error)
	Put(ctx context.Context, path string, contentType string, body []byte, ifMatch string) (*Response, error)
	Delete(ctx context.Context, path string) (*Response, error)
}

// Response carries the pieces of an object-store reply the sync layer needs.
type Response struct {
	StatusCode int
	Body       []byte
	ETag       string
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// NotFound reports a missing blob.
func (r *Response) NotFound() bool {
	return r.StatusCode == http.StatusNotFound
}

// PreconditionFailed reports a conditional-write conflict. Some stores
// answer 409 instead of 412 for a failed If-Match, so both count.
func (r *Response) PreconditionFailed() bool {
	return r.StatusCode == http.StatusPreconditionFailed || r.StatusCode == http.StatusConflict
}

// ConditionalWriteConflict reports whether a write that carried ifMatch
// failed its precondition. A 404 counts when a condition was sent: the blob
// the condition named is gone, which is a lost race, not a transport fault.
func (r *Response) ConditionalWriteConflict(ifMatch string) bool {
	return r.PreconditionFailed() || (ifMatch != "" && r.NotFound())
}

type clientWrapper struct {
	client  *http.Client
	baseURL url.URL
	logger  *slog.Logger
}

// New creates a client wrapper around httpClient rooted at baseURL. The
// logger is required, matching how the rest of the module treats injected
// loggers.
func New(httpClient *http.Client, baseURL url.URL, logger *slog.Logger) (Client, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &clientWrapper{client: httpClient, baseURL: baseURL, logger: logger}, nil
}

// resolveURL resolves a blob path against the base URL.
func (c *clientWrapper) resolveURL(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse path %q: %w", path, err)
	}
	return c.baseURL.ResolveReference(ref), nil
}

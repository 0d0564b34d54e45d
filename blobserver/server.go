// Package blobserver is an in-memory, path-addressed blob store speaking
// the object-store contract the sync layer expects: GET/PUT/DELETE on
// arbitrary paths, ETag on reads, and conditional PUT via If-Match. It
// backs integration tests and the `calky serve` development mode; it is not
// a production store.
package blobserver

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

type blob struct {
	data        []byte
	contentType string
	etag        string
}

// Server holds the blobs behind a mutex. The zero value is not usable; use
// New.
type Server struct {
	mu     sync.RWMutex
	blobs  map[string]blob
	logger *slog.Logger
}

// New creates an empty store. A nil logger discards debug output.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		blobs:  make(map[string]blob),
		logger: logger,
	}
}

// ETagFor computes the entity tag the store hands out for given content:
// a weak tag over the SHA-256 of the bytes. It intentionally matches the
// fingerprint scheme the sync layer writes into its etag side-channel.
func ETagFor(data []byte) string {
	sum := sha256.Sum256(data)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

// Handler returns the HTTP surface of the store.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/*", s.handleGet)
	r.Put("/*", s.handlePut)
	r.Delete("/*", s.handleDelete)
	return r
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	b, ok := s.blobs[r.URL.Path]
	s.mu.RUnlock()

	if !ok {
		s.logger.Debug("blob not found", "path", r.URL.Path)
		http.NotFound(w, r)
		return
	}

	if b.contentType != "" {
		w.Header().Set("Content-Type", b.contentType)
	}
	w.Header().Set("ETag", b.etag)
	_, _ = w.Write(b.data)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ifMatch := r.Header.Get("If-Match"); ifMatch != "" {
		current, exists := s.blobs[r.URL.Path]
		if !exists {
			// The blob the condition names is gone: report it missing so
			// the writer re-reads instead of treating this as a bad etag.
			s.logger.Debug("conditional write against missing blob", "path", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if current.etag != ifMatch {
			s.logger.Debug("precondition failed",
				"path", r.URL.Path,
				"if_match", ifMatch)
			w.WriteHeader(http.StatusPreconditionFailed)
			return
		}
	}

	_, existed := s.blobs[r.URL.Path]
	etag := ETagFor(body)
	s.blobs[r.URL.Path] = blob{
		data:        body,
		contentType: r.Header.Get("Content-Type"),
		etag:        etag,
	}

	s.logger.Debug("blob stored", "path", r.URL.Path, "etag", etag, "bytes", len(body))

	w.Header().Set("ETag", etag)
	if existed {
		w.WriteHeader(http.StatusNoContent)
	} else {
		w.WriteHeader(http.StatusCreated)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[r.URL.Path]; !ok {
		http.NotFound(w, r)
		return
	}
	delete(s.blobs, r.URL.Path)
	w.WriteHeader(http.StatusNoContent)
}

// Put seeds a blob directly, bypassing HTTP. Intended for tests that need
// to simulate a concurrent external writer.
func (s *Server) Put(path, contentType string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	etag := ETagFor(data)
	s.blobs[path] = blob{data: append([]byte(nil), data...), contentType: contentType, etag: etag}
	return etag
}

// Get reads a blob directly, bypassing HTTP.
func (s *Server) Get(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[path]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b.data...), true
}

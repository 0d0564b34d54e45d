package blobserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, handler http.Handler, method, path, ifMatch, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if ifMatch != "" {
		req.Header.Set("If-Match", ifMatch)
	}
	if method == http.MethodPut {
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGetMissingBlob(t *testing.T) {
	handler := New(nil).Handler()
	rec := doRequest(t, handler, http.MethodGet, "/pub/calky/cal/x/calendar.ics", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutThenGet(t *testing.T) {
	handler := New(nil).Handler()

	put := doRequest(t, handler, http.MethodPut, "/pub/calky/index.json", "", `{"calendars":[]}`)
	assert.Equal(t, http.StatusCreated, put.Code)
	etag := put.Header().Get("ETag")
	require.NotEmpty(t, etag)

	get := doRequest(t, handler, http.MethodGet, "/pub/calky/index.json", "", "")
	assert.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, `{"calendars":[]}`, get.Body.String())
	assert.Equal(t, etag, get.Header().Get("ETag"))
	assert.Equal(t, "text/plain; charset=utf-8", get.Header().Get("Content-Type"))
}

func TestConditionalPut(t *testing.T) {
	handler := New(nil).Handler()

	first := doRequest(t, handler, http.MethodPut, "/doc", "", "v1")
	etag := first.Header().Get("ETag")

	// Matching If-Match succeeds and rotates the etag.
	second := doRequest(t, handler, http.MethodPut, "/doc", etag, "v2")
	assert.Equal(t, http.StatusNoContent, second.Code)
	assert.NotEqual(t, etag, second.Header().Get("ETag"))

	// The old etag no longer matches.
	third := doRequest(t, handler, http.MethodPut, "/doc", etag, "v3")
	assert.Equal(t, http.StatusPreconditionFailed, third.Code)

	// If-Match against a missing blob reports the blob gone, so conditional
	// writers re-read instead of fighting over a dead etag.
	missing := doRequest(t, handler, http.MethodPut, "/other", etag, "v1")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestUnconditionalPutOverwrites(t *testing.T) {
	handler := New(nil).Handler()
	doRequest(t, handler, http.MethodPut, "/doc", "", "v1")
	rec := doRequest(t, handler, http.MethodPut, "/doc", "", "v2")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	get := doRequest(t, handler, http.MethodGet, "/doc", "", "")
	assert.Equal(t, "v2", get.Body.String())
}

func TestDelete(t *testing.T) {
	handler := New(nil).Handler()
	doRequest(t, handler, http.MethodPut, "/doc", "", "v1")

	del := doRequest(t, handler, http.MethodDelete, "/doc", "", "")
	assert.Equal(t, http.StatusNoContent, del.Code)

	again := doRequest(t, handler, http.MethodDelete, "/doc", "", "")
	assert.Equal(t, http.StatusNotFound, again.Code)
}

func TestETagForIsDeterministic(t *testing.T) {
	assert.Equal(t, ETagFor([]byte("x")), ETagFor([]byte("x")))
	assert.NotEqual(t, ETagFor([]byte("x")), ETagFor([]byte("y")))
	assert.True(t, strings.HasPrefix(ETagFor(nil), `W/"`))
}

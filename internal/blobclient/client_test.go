package blobclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	baseURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := New(server.Client(), *baseURL, logger)
	require.NoError(t, err)
	return client
}

func TestNewRequiresLogger(t *testing.T) {
	_, err := New(http.DefaultClient, url.URL{}, nil)
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/pub/calky/index.json", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("t"), "cache-busting parameter missing")
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))

		w.Header().Set("ETag", `"abc"`)
		_, _ = w.Write([]byte(`{"calendars":[]}`))
	}))

	resp, err := client.Get(context.Background(), "/pub/calky/index.json")
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, `"abc"`, resp.ETag)
	assert.Equal(t, `{"calendars":[]}`, string(resp.Body))
}

func TestGetNotFoundIsNotAnError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	resp, err := client.Get(context.Background(), "/missing")
	require.NoError(t, err)
	assert.True(t, resp.NotFound())
}

func TestPutConditional(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, `W/"old"`, r.Header.Get("If-Match"))
		assert.Equal(t, "text/calendar; charset=utf-8", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "BEGIN:VCALENDAR", string(body))

		w.WriteHeader(http.StatusPreconditionFailed)
	}))

	resp, err := client.Put(context.Background(), "/cal.ics", "text/calendar; charset=utf-8", []byte("BEGIN:VCALENDAR"), `W/"old"`)
	require.NoError(t, err)
	assert.True(t, resp.PreconditionFailed())
}

func TestPutUnconditionalOmitsIfMatch(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["If-Match"]
		assert.False(t, present)
		w.WriteHeader(http.StatusCreated)
	}))

	resp, err := client.Put(context.Background(), "/cal.ics", "text/calendar; charset=utf-8", nil, "")
	require.NoError(t, err)
	assert.True(t, resp.OK())
}

func TestDelete(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))

	resp, err := client.Delete(context.Background(), "/cal.ics")
	require.NoError(t, err)
	assert.True(t, resp.OK())
}

func TestBasicAuthTransport(t *testing.T) {
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
	}))
	t.Cleanup(server.Close)

	transport := NewBasicAuthTransport("alice", "secret", nil, nil)
	httpClient := &http.Client{Transport: transport}

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := httpClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "secret", gotPass)
}

func TestBasicAuthTransportRejectsEmptyCredentials(t *testing.T) {
	transport := NewBasicAuthTransport("", "", nil, nil)
	req, err := http.NewRequest(http.MethodGet, "http://example.invalid/", nil)
	require.NoError(t, err)

	_, err = transport.RoundTrip(req)
	assert.Error(t, err)
}

func TestConditionalWriteConflict(t *testing.T) {
	etag := `W/"abc"`
	assert.True(t, (&Response{StatusCode: http.StatusPreconditionFailed}).ConditionalWriteConflict(etag))
	assert.True(t, (&Response{StatusCode: http.StatusConflict}).ConditionalWriteConflict(etag))
	// 404 counts only when a condition was actually sent: the blob the
	// condition named is gone.
	assert.True(t, (&Response{StatusCode: http.StatusNotFound}).ConditionalWriteConflict(etag))
	assert.False(t, (&Response{StatusCode: http.StatusNotFound}).ConditionalWriteConflict(""))
	assert.False(t, (&Response{StatusCode: http.StatusNoContent}).ConditionalWriteConflict(etag))
}

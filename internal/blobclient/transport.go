package blobclient

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
)

// BasicAuthTransport implements http.RoundTripper and adds Basic Auth
// credentials to outgoing requests. Session handling proper is an external
// collaborator; this is the transport-level hook it plugs into.
type BasicAuthTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// NewBasicAuthTransport creates a transport with the given credentials. If
// transport is nil, http.DefaultTransport is used.
func NewBasicAuthTransport(username, password string, transport http.RoundTripper, logger *slog.Logger) *BasicAuthTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BasicAuthTransport{
		Username:  username,
		Password:  password,
		Transport: transport,
		Logger:    logger,
	}
}

// RoundTrip adds credentials and delegates to the underlying transport.
func (t *BasicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Username == "" {
		return nil, errors.New("basic auth username cannot be empty")
	}
	if t.Password == "" {
		return nil, errors.New("basic auth password cannot be empty")
	}
	if t.Transport == nil {
		return nil, errors.New("transport cannot be nil")
	}

	t.Logger.Debug("outgoing request", "method", req.Method, "url", req.URL.String())

	req.SetBasicAuth(t.Username, t.Password)
	resp, err := t.Transport.RoundTrip(req)
	if err == nil && resp != nil {
		t.Logger.Debug("incoming response", "status", resp.Status)
	}
	return resp, err
}

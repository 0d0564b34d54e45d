package blobclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Get fetches the blob at path. Listing layers in front of the store are
// eventually consistent, so every read carries a cache-busting query
// parameter and a no-cache header to reach the origin.
func (c *clientWrapper) Get(ctx context.Context, path string) (*Response, error) {
	resolvedURL, err := c.resolveURL(path)
	if err != nil {
		return nil, err
	}

	query := resolvedURL.Query()
	query.Set("t", strconv.FormatInt(time.Now().UnixMilli(), 10))
	resolvedURL.RawQuery = query.Encode()

	c.logger.Debug("starting GET request", "url", resolvedURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolvedURL.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("GET request failed", "url", resolvedURL.String(), "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("GET request complete",
		"url", resolvedURL.String(),
		"status", resp.Status,
		"body_length", len(body))

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		ETag:       resp.Header.Get("ETag"),
	}, nil
}

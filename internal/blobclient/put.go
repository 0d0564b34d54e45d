package blobclient

import (
	"bytes"
	"context"
	"net/http"
)

// Put writes the blob at path. When ifMatch is non-empty the write is
// conditional; a 412 or 409 reply is reported through the Response, not as
// an error, so the caller can run its conflict retry.
func (c *clientWrapper) Put(ctx context.Context, path string, contentType string, body []byte, ifMatch string) (*Response, error) {
	resolvedURL, err := c.resolveURL(path)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("starting PUT request",
		"url", resolvedURL.String(),
		"if_match", ifMatch,
		"body_length", len(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, resolvedURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	if ifMatch != "" {
		req.Header.Set("If-Match", ifMatch)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("PUT request failed", "url", resolvedURL.String(), "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	c.logger.Debug("PUT request complete",
		"url", resolvedURL.String(),
		"status", resp.Status,
		"new_etag", resp.Header.Get("ETag"))

	return &Response{
		StatusCode: resp.StatusCode,
		ETag:       resp.Header.Get("ETag"),
	}, nil
}

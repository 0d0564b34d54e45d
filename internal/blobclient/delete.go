package blobclient

import (
	"context"
	"net/http"
)

// Delete removes the blob at path. Deleting an absent blob reports 404
// through the Response; callers treating deletes as best effort can ignore
// it.
func (c *clientWrapper) Delete(ctx context.Context, path string) (*Response, error) {
	resolvedURL, err := c.resolveURL(path)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("starting DELETE request", "url", resolvedURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, resolvedURL.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("DELETE request failed", "url", resolvedURL.String(), "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	c.logger.Debug("DELETE request complete", "url", resolvedURL.String(), "status", resp.Status)

	return &Response{StatusCode: resp.StatusCode}, nil
}

package calclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/mo"

	"github.com/gillohner/calky/cache"
	"github.com/gillohner/calky/ics"
	"github.com/gillohner/calky/internal/blobclient"
)

// GetDocument resolves the current document for a calendar.
//
// The remote etag side-channel is consulted first: when it agrees with the
// cached snapshot the (usually much larger) document body is not
// downloaded at all. When the side-channel disagrees but the snapshot was
// written inside the freshness window, the cache wins — the listing layer
// in front of the store is eventually consistent and a fresh local write is
// more trustworthy than a stale-looking remote signal. Otherwise the remote
// body is fetched and the cache refreshed. A cache entry of any age is the
// last resort when the remote read fails, and a calendar with no document
// at all resolves to an empty Document, not an error.
func (c *calendarClient) GetDocument(ctx context.Context, calendarID string) (Document, error) {
	local, hasLocal := cache.Read(c.store, c.owner, calendarID)

	remoteETag := c.readRemoteETag(ctx, calendarID)

	if hasLocal {
		if localETag, ok := local.ETag.Get(); ok {
			if serverETag, ok := remoteETag.Get(); ok && localETag == serverETag {
				cacheReadsTotal.WithLabelValues(cacheReasonETagMatch).Inc()
				return Document{ICS: local.Document, ETag: local.ETag}, nil
			}
		}
		if remoteETag.IsPresent() && local.Fresh(c.now(), c.freshWindow) {
			c.logger.Debug("preferring fresh cache over disagreeing remote etag",
				"calendar_id", calendarID,
				"cache_age", c.now().Sub(local.UpdatedAt))
			cacheReadsTotal.WithLabelValues(cacheReasonFresh).Inc()
			return Document{ICS: local.Document, ETag: local.ETag}, nil
		}
	}

	resp, err := c.blob.Get(ctx, documentPath(calendarID))
	if err != nil || !resp.OK() {
		if hasLocal {
			c.logger.Debug("remote document unavailable, serving cache",
				"calendar_id", calendarID, "error", err)
			cacheReadsTotal.WithLabelValues(cacheReasonFallback).Inc()
			return Document{ICS: local.Document, ETag: local.ETag}, nil
		}
		if err != nil {
			return Document{}, fmt.Errorf("failed to read calendar document: %w", err)
		}
		// No document yet is an empty state, not an error.
		return Document{}, nil
	}

	remoteFetchesTotal.Inc()
	body := string(resp.Body)
	cache.Write(c.store, c.owner, calendarID, cache.Snapshot{
		Document:  body,
		ETag:      remoteETag,
		UpdatedAt: c.now(),
	})
	return Document{ICS: body, ETag: remoteETag}, nil
}

// fetchRemoteDocument bypasses the cache entirely: the conflict retry must
// re-apply its edit against what the store actually holds, not against a
// snapshot that just lost a race. The cache is refreshed with the result.
func (c *calendarClient) fetchRemoteDocument(ctx context.Context, calendarID string) (Document, error) {
	remoteETag := c.readRemoteETag(ctx, calendarID)

	resp, err := c.blob.Get(ctx, documentPath(calendarID))
	if err != nil {
		return Document{}, fmt.Errorf("failed to re-read calendar document: %w", err)
	}
	if !resp.OK() {
		return Document{}, nil
	}

	body := string(resp.Body)
	cache.Write(c.store, c.owner, calendarID, cache.Snapshot{
		Document:  body,
		ETag:      remoteETag,
		UpdatedAt: c.now(),
	})
	return Document{ICS: body, ETag: remoteETag}, nil
}

// readRemoteETag reads the etag side-channel. The side-channel is a
// convenience, not authoritative, so every failure mode collapses to
// absent.
func (c *calendarClient) readRemoteETag(ctx context.Context, calendarID string) mo.Option[string] {
	resp, err := c.blob.Get(ctx, etagPath(calendarID))
	if err != nil || !resp.OK() {
		return mo.None[string]()
	}
	etag := strings.TrimSpace(string(resp.Body))
	if etag == "" {
		return mo.None[string]()
	}
	return mo.Some(etag)
}

// ListEvents decodes the current document and returns its events ordered
// by start time.
func (c *calendarClient) ListEvents(ctx context.Context, calendarID string) ([]ics.EventRecord, error) {
	doc, err := c.GetDocument(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	events := ics.Decode(doc.ICS)
	ics.SortByStart(events)
	return events, nil
}

// ClearCache drops the cached snapshot for one calendar.
func (c *calendarClient) ClearCache(calendarID string) {
	cache.Clear(c.store, c.owner, calendarID)
}

// ClearAllCache drops every cached snapshot of this owner.
func (c *calendarClient) ClearAllCache() {
	cache.ClearAll(c.store, c.owner)
}

// readJSON fetches and decodes a JSON blob. The HTTP status is reported
// alongside so callers can treat 404 as an empty state.
func (c *calendarClient) readJSON(ctx context.Context, path string, v any) (int, error) {
	resp, err := c.blob.Get(ctx, path)
	if err != nil {
		return 0, err
	}
	if !resp.OK() {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}

// writeJSON encodes and stores a JSON blob without conditional semantics.
func (c *calendarClient) writeJSON(ctx context.Context, path string, v any) (*blobclient.Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return c.blob.Put(ctx, path, contentTypeJSON, body, "")
}

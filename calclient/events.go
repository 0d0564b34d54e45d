package calclient

import (
	"context"
	"fmt"

	"github.com/samber/mo"

	"github.com/gillohner/calky/cache"
	"github.com/gillohner/calky/ics"
)

// editFunc applies one logical edit to the current document text. The same
// function is re-run against a freshly read base when the first conditional
// write loses a race, so it must be safe to apply twice.
type editFunc func(current string) string

// AddEvent encodes input as a new VEVENT and appends it to the calendar
// document. The generated UID is returned.
func (c *calendarClient) AddEvent(ctx context.Context, calendarID string, input ics.NewEventInput) (string, error) {
	props, err := c.mutableProps(ctx, calendarID)
	if err != nil {
		return "", err
	}

	uid := ics.NewUID()
	block, err := ics.EncodeEvent(input, uid)
	if err != nil {
		return "", err
	}

	err = c.mutateDocument(ctx, calendarID, props, func(current string) string {
		return ics.Append(current, block)
	})
	if err != nil {
		return "", err
	}
	return uid, nil
}

// UpdateEvent re-encodes the event under its existing UID and swaps it into
// the document. When the UID is absent the update degrades to an append.
func (c *calendarClient) UpdateEvent(ctx context.Context, calendarID, uid string, updates ics.NewEventInput) error {
	props, err := c.mutableProps(ctx, calendarID)
	if err != nil {
		return err
	}

	block, err := ics.EncodeEvent(updates, uid)
	if err != nil {
		return err
	}

	return c.mutateDocument(ctx, calendarID, props, func(current string) string {
		return ics.ReplaceByUID(current, uid, block)
	})
}

// DeleteEvent removes the event identified by uid. Removing a UID that is
// not in the document is a no-op and performs no write.
func (c *calendarClient) DeleteEvent(ctx context.Context, calendarID, uid string) error {
	props, err := c.mutableProps(ctx, calendarID)
	if err != nil {
		return err
	}

	return c.mutateDocument(ctx, calendarID, props, func(current string) string {
		return ics.RemoveByUID(current, uid)
	})
}

// mutableProps loads calendar properties and rejects mutations against
// read-only calendars. A calendar without properties is still writable;
// the document then starts from a default envelope.
func (c *calendarClient) mutableProps(ctx context.Context, calendarID string) (*CalendarProps, error) {
	props, err := c.GetProps(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	if props != nil && props.ReadOnly {
		return nil, fmt.Errorf("calendar %s: %w", calendarID, ErrReadOnly)
	}
	return props, nil
}

// mutateDocument runs the optimistic-concurrency state machine for one
// logical edit: resolve the current document, apply the edit, write
// conditionally on the resolved etag, and on a precondition conflict
// re-read the remote state and re-apply the edit exactly once. After a
// successful write the fingerprint side-channel, the local cache and the
// calendar ctag are updated.
func (c *calendarClient) mutateDocument(ctx context.Context, calendarID string, props *CalendarProps, apply editFunc) error {
	doc, err := c.GetDocument(ctx, calendarID)
	if err != nil {
		return err
	}
	current := doc.ICS
	if current == "" {
		current = ics.NewDocument(documentProps(props))
	}

	next := apply(current)
	if next == current {
		return nil
	}

	ifMatch := doc.ETag.OrElse("")
	resp, err := c.blob.Put(ctx, documentPath(calendarID), contentTypeCalendar, []byte(next), ifMatch)
	if err != nil {
		return fmt.Errorf("failed to write calendar document: %w", err)
	}

	switch {
	case resp.ConditionalWriteConflict(ifMatch):
		writeConflictsTotal.Inc()
		c.logger.Debug("conditional write conflicted, retrying once",
			"calendar_id", calendarID,
			"etag", ifMatch)

		reread, err := c.fetchRemoteDocument(ctx, calendarID)
		if err != nil {
			return err
		}
		base := reread.ICS
		if base == "" {
			base = ics.NewDocument(documentProps(props))
		}
		next = apply(base)

		resp, err = c.blob.Put(ctx, documentPath(calendarID), contentTypeCalendar, []byte(next), reread.ETag.OrElse(""))
		if err != nil {
			return fmt.Errorf("failed to write calendar document: %w", err)
		}
		if !resp.OK() {
			conflictRetryFailuresTotal.Inc()
			return fmt.Errorf("calendar %s changed concurrently (status %d): %w", calendarID, resp.StatusCode, ErrConflict)
		}
	case !resp.OK():
		return fmt.Errorf("failed to write calendar document (status %d): %w", resp.StatusCode, ErrStorageUnavailable)
	}

	nextETag := Fingerprint(next)
	etagResp, err := c.blob.Put(ctx, etagPath(calendarID), contentTypePlain, []byte(nextETag), "")
	if err != nil {
		return fmt.Errorf("failed to update etag side-channel: %w", err)
	}
	if !etagResp.OK() {
		return fmt.Errorf("failed to update etag side-channel (status %d): %w", etagResp.StatusCode, ErrStorageUnavailable)
	}

	cache.Write(c.store, c.owner, calendarID, cache.Snapshot{
		Document:  next,
		ETag:      mo.Some(nextETag),
		UpdatedAt: c.now(),
	})

	c.bumpCtag(ctx, calendarID)
	return nil
}

package calclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/gillohner/calky/cache"
	"github.com/gillohner/calky/ics"
)

// GetProps reads a calendar's properties. A calendar without a props blob
// reads as nil without error.
func (c *calendarClient) GetProps(ctx context.Context, calendarID string) (*CalendarProps, error) {
	var props CalendarProps
	status, err := c.readJSON(ctx, propsPath(calendarID), &props)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar props: %w", err)
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("failed to load calendar props (status %d): %w", status, ErrStorageUnavailable)
	}
	return &props, nil
}

// GetIndex reads the calendar index. A missing index reads as empty.
func (c *calendarClient) GetIndex(ctx context.Context) (Index, error) {
	var index Index
	status, err := c.readJSON(ctx, indexPath(), &index)
	if err != nil {
		return Index{}, fmt.Errorf("failed to load calendar index: %w", err)
	}
	if status == http.StatusNotFound {
		return Index{Calendars: []IndexEntry{}}, nil
	}
	if status < 200 || status >= 300 {
		return Index{}, fmt.Errorf("failed to load calendar index (status %d): %w", status, ErrStorageUnavailable)
	}
	if index.Calendars == nil {
		index.Calendars = []IndexEntry{}
	}
	return index, nil
}

// EnsureIndex reads the calendar index, creating an empty one on first
// access so that a new user never sees a missing-index error.
func (c *calendarClient) EnsureIndex(ctx context.Context) (Index, error) {
	var index Index
	status, err := c.readJSON(ctx, indexPath(), &index)
	if err != nil {
		return Index{}, fmt.Errorf("failed to load calendar index: %w", err)
	}
	if status >= 200 && status < 300 {
		if index.Calendars == nil {
			index.Calendars = []IndexEntry{}
		}
		return index, nil
	}
	if status != http.StatusNotFound {
		return Index{}, fmt.Errorf("failed to load calendar index (status %d): %w", status, ErrStorageUnavailable)
	}

	empty := Index{Calendars: []IndexEntry{}}
	resp, err := c.writeJSON(ctx, indexPath(), empty)
	if err != nil {
		return Index{}, fmt.Errorf("failed to create calendar index: %w", err)
	}
	if !resp.OK() {
		return Index{}, fmt.Errorf("failed to create calendar index (status %d): %w", resp.StatusCode, ErrStorageUnavailable)
	}
	return empty, nil
}

// CreateCalendar provisions a new calendar: props blob, base document,
// fingerprint side-channel and an index entry, optionally seeding one
// event. The new calendar starts at ctag v1.
func (c *calendarClient) CreateCalendar(ctx context.Context, init InitProps, initialEvent *ics.NewEventInput) (*CreatedCalendar, error) {
	if init.DisplayName == "" {
		return nil, fmt.Errorf("calendar display name is required")
	}

	id := uuid.NewString()

	index, err := c.EnsureIndex(ctx)
	if err != nil {
		return nil, err
	}

	method := init.Method
	if method == "" {
		method = "PUBLISH"
	}
	calscale := init.CalScale
	if calscale == "" {
		calscale = "GREGORIAN"
	}
	props := CalendarProps{
		ID:          id,
		DisplayName: init.DisplayName,
		Color:       init.Color,
		Timezone:    init.Timezone,
		Description: init.Description,
		Method:      method,
		CalScale:    calscale,
		CTag:        "v1",
		ReadOnly:    false,
		Owner:       c.owner,
	}

	document := ics.NewDocument(documentProps(&props))
	if initialEvent != nil {
		block, err := ics.EncodeEvent(*initialEvent, "")
		if err != nil {
			return nil, err
		}
		document = ics.Append(document, block)
	}
	etag := Fingerprint(document)

	if resp, err := c.writeJSON(ctx, propsPath(id), props); err != nil {
		return nil, fmt.Errorf("failed to write calendar props: %w", err)
	} else if !resp.OK() {
		return nil, fmt.Errorf("failed to write calendar props (status %d): %w", resp.StatusCode, ErrStorageUnavailable)
	}
	if resp, err := c.blob.Put(ctx, documentPath(id), contentTypeCalendar, []byte(document), ""); err != nil {
		return nil, fmt.Errorf("failed to write calendar document: %w", err)
	} else if !resp.OK() {
		return nil, fmt.Errorf("failed to write calendar document (status %d): %w", resp.StatusCode, ErrStorageUnavailable)
	}
	if resp, err := c.blob.Put(ctx, etagPath(id), contentTypePlain, []byte(etag), ""); err != nil {
		return nil, fmt.Errorf("failed to write etag side-channel: %w", err)
	} else if !resp.OK() {
		return nil, fmt.Errorf("failed to write etag side-channel (status %d): %w", resp.StatusCode, ErrStorageUnavailable)
	}

	cache.Write(c.store, c.owner, id, cache.Snapshot{
		Document:  document,
		ETag:      mo.Some(etag),
		UpdatedAt: c.now(),
	})

	entry := IndexEntry{
		ID:          id,
		Href:        collectionPath(id),
		DisplayName: props.DisplayName,
		Color:       props.Color,
		ReadOnly:    props.ReadOnly,
	}
	updated := Index{Calendars: append([]IndexEntry{entry}, index.Calendars...)}
	if resp, err := c.writeJSON(ctx, indexPath(), updated); err != nil {
		return nil, fmt.Errorf("failed to update calendar index: %w", err)
	} else if !resp.OK() {
		return nil, fmt.Errorf("failed to update calendar index (status %d): %w", resp.StatusCode, ErrStorageUnavailable)
	}

	c.logger.Debug("calendar created", "calendar_id", id, "display_name", props.DisplayName)

	return &CreatedCalendar{ID: id, Props: props, Document: document, ETag: etag}, nil
}

// UpdateProps merges a partial update into the calendar's properties,
// mirrors display name and color into the index entry, and bumps the ctag.
func (c *calendarClient) UpdateProps(ctx context.Context, calendarID string, updates PropsUpdate) (*CalendarProps, error) {
	props, err := c.GetProps(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	if props == nil {
		return nil, fmt.Errorf("calendar %s: %w", calendarID, ErrNotFound)
	}

	if updates.DisplayName != nil {
		props.DisplayName = *updates.DisplayName
	}
	if updates.Color != nil {
		props.Color = *updates.Color
	}
	if updates.Timezone != nil {
		props.Timezone = *updates.Timezone
	}
	if updates.Description != nil {
		props.Description = *updates.Description
	}
	if updates.Method != nil {
		props.Method = *updates.Method
	}
	if updates.CalScale != nil {
		props.CalScale = *updates.CalScale
	}

	if resp, err := c.writeJSON(ctx, propsPath(calendarID), props); err != nil {
		return nil, fmt.Errorf("failed to update calendar props: %w", err)
	} else if !resp.OK() {
		return nil, fmt.Errorf("failed to update calendar props (status %d): %w", resp.StatusCode, ErrStorageUnavailable)
	}

	index, err := c.GetIndex(ctx)
	if err != nil {
		return nil, err
	}
	for i, entry := range index.Calendars {
		if entry.ID == calendarID {
			index.Calendars[i].DisplayName = props.DisplayName
			index.Calendars[i].Color = props.Color
		}
	}
	if resp, err := c.writeJSON(ctx, indexPath(), index); err != nil {
		return nil, fmt.Errorf("failed to update calendar index: %w", err)
	} else if !resp.OK() {
		return nil, fmt.Errorf("failed to update calendar index (status %d): %w", resp.StatusCode, ErrStorageUnavailable)
	}

	c.bumpCtag(ctx, calendarID)
	return props, nil
}

// DeleteCalendar removes the calendar from the index, purges its cached
// snapshot and best-effort deletes its blobs. Index consumers stop seeing
// the calendar immediately even if a blob delete fails.
func (c *calendarClient) DeleteCalendar(ctx context.Context, calendarID string) error {
	index, err := c.GetIndex(ctx)
	if err != nil {
		return err
	}

	kept := make([]IndexEntry, 0, len(index.Calendars))
	for _, entry := range index.Calendars {
		if entry.ID != calendarID {
			kept = append(kept, entry)
		}
	}
	updated := Index{Calendars: kept}

	if resp, err := c.writeJSON(ctx, indexPath(), updated); err != nil {
		return fmt.Errorf("failed to update calendar index: %w", err)
	} else if !resp.OK() {
		return fmt.Errorf("failed to update calendar index (status %d): %w", resp.StatusCode, ErrStorageUnavailable)
	}

	cache.Clear(c.store, c.owner, calendarID)

	for _, path := range []string{documentPath(calendarID), etagPath(calendarID), propsPath(calendarID)} {
		if _, err := c.blob.Delete(ctx, path); err != nil {
			c.logger.Debug("failed to delete calendar blob", "path", path, "error", err)
		}
	}
	return nil
}

// bumpCtag increments the calendar's v<N> revision tag. The bump is best
// effort: a failure here leaves index consumers one change behind but the
// mutation that triggered it has already committed.
func (c *calendarClient) bumpCtag(ctx context.Context, calendarID string) {
	props, err := c.GetProps(ctx, calendarID)
	if err != nil || props == nil {
		return
	}

	current := 1
	if n, err := strconv.Atoi(strings.TrimPrefix(props.CTag, "v")); err == nil {
		current = n
	}
	props.CTag = "v" + strconv.Itoa(current+1)

	if _, err := c.writeJSON(ctx, propsPath(calendarID), props); err != nil {
		c.logger.Debug("failed to bump ctag", "calendar_id", calendarID, "error", err)
	}
}

package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tallysheet/tally/internal/model"
)

const entriesPath = "/rest/v1/time_entries"

// ListEntries returns the user's entries with date in [from, to] inclusive,
// ordered by date then start time. Empty from/to leave that bound open.
func (c *Client) ListEntries(ctx context.Context, userID, from, to string) ([]model.TimeEntry, error) {
	q := url.Values{}
	q.Set("user_id", "eq."+userID)
	if from != "" {
		q.Add("date", "gte."+from)
	}
	if to != "" {
		q.Add("date", "lte."+to)
	}
	q.Set("order", "date.asc,start_time.asc")

	var entries []model.TimeEntry
	if err := c.do(ctx, http.MethodGet, entriesPath, q, nil, &entries); err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return entries, nil
}

// RecentEntry returns the user's most recently dated entry, used to prefill
// rate, currency and break defaults for new entries. ErrNotFound when the
// user has no entries yet.
func (c *Client) RecentEntry(ctx context.Context, userID string) (model.TimeEntry, error) {
	q := url.Values{}
	q.Set("user_id", "eq."+userID)
	q.Set("order", "date.desc,start_time.desc")
	q.Set("limit", "1")

	var entries []model.TimeEntry
	if err := c.do(ctx, http.MethodGet, entriesPath, q, nil, &entries); err != nil {
		return model.TimeEntry{}, fmt.Errorf("fetching recent entry: %w", err)
	}
	if len(entries) == 0 {
		return model.TimeEntry{}, ErrNotFound
	}
	return entries[0], nil
}

// CreateEntry stores a new entry and returns it with the server-assigned ID.
func (c *Client) CreateEntry(ctx context.Context, e model.TimeEntry) (model.TimeEntry, error) {
	var created []model.TimeEntry
	if err := c.do(ctx, http.MethodPost, entriesPath, nil, e, &created); err != nil {
		return model.TimeEntry{}, fmt.Errorf("creating entry: %w", err)
	}
	if len(created) == 0 {
		return model.TimeEntry{}, fmt.Errorf("creating entry: empty response")
	}
	return created[0], nil
}

// UpdateEntry overwrites the entry with the given ID and returns the stored
// record.
func (c *Client) UpdateEntry(ctx context.Context, id string, e model.TimeEntry) (model.TimeEntry, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)

	var updated []model.TimeEntry
	if err := c.do(ctx, http.MethodPatch, entriesPath, q, e, &updated); err != nil {
		return model.TimeEntry{}, fmt.Errorf("updating entry %s: %w", id, err)
	}
	if len(updated) == 0 {
		return model.TimeEntry{}, fmt.Errorf("updating entry %s: %w", id, ErrNotFound)
	}
	return updated[0], nil
}

// DeleteEntry removes the entry with the given ID.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	if err := c.do(ctx, http.MethodDelete, entriesPath, q, nil, nil); err != nil {
		return fmt.Errorf("deleting entry %s: %w", id, err)
	}
	return nil
}

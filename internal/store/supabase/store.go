// Package supabase implements the record store against a Supabase project's
// PostgREST endpoint. Row-level scoping mirrors the app's RLS policies: every
// request carries the owner filter explicitly as well.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hemchdev/aura/internal/httpclient"
	"github.com/hemchdev/aura/internal/logging"
	"github.com/hemchdev/aura/internal/store"
)

// Config configures the PostgREST client.
type Config struct {
	// ProjectURL is the project base, e.g. https://abc.supabase.co.
	ProjectURL string
	// AnonKey is sent as the apikey header.
	AnonKey string
	// Timeout bounds each request; zero means 15s.
	Timeout time.Duration
}

// Client is a store.Store backed by Supabase.
type Client struct {
	baseURL string
	anonKey string
	session store.SessionContext
	http    *http.Client
	logger  logging.Logger
	now     func() time.Time
}

// New builds a Supabase-backed store scoped to the session owner.
func New(cfg Config, session store.SessionContext, logger logging.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	logger = logging.OrNop(logger)
	return &Client{
		baseURL: strings.TrimRight(cfg.ProjectURL, "/") + "/rest/v1",
		anonKey: cfg.AnonKey,
		session: session,
		http:    httpclient.New(timeout, logger),
		logger:  logger,
		now:     time.Now,
	}
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, body any) ([]byte, error) {
	endpoint := c.baseURL + "/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s body: %w", table, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	token := c.session.AccessToken
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("%s %s: %s", method, table, msg)
	}
	return raw, nil
}

func (c *Client) ownerQuery() url.Values {
	q := url.Values{}
	q.Set("owner_id", "eq."+c.session.UserID)
	return q
}

func decodeRows[T any](raw []byte) ([]T, error) {
	var rows []T
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rows, nil
}

func firstRow[T any](raw []byte, op string) (T, error) {
	var zero T
	rows, err := decodeRows[T](raw)
	if err != nil {
		return zero, store.NewError(op, err)
	}
	if len(rows) == 0 {
		return zero, &store.Error{Op: op, Message: "record not found", Err: store.ErrNotFound}
	}
	return rows[0], nil
}

func (c *Client) InsertEvent(ctx context.Context, event store.Event) (store.Event, error) {
	event.OwnerID = c.session.UserID
	raw, err := c.do(ctx, http.MethodPost, "events", nil, event)
	if err != nil {
		return store.Event{}, store.NewError("create event", err)
	}
	return firstRow[store.Event](raw, "create event")
}

func (c *Client) UpdateEvent(ctx context.Context, id string, patch store.EventPatch) (store.Event, error) {
	q := c.ownerQuery()
	q.Set("id", "eq."+id)
	raw, err := c.do(ctx, http.MethodPatch, "events", q, eventPatchBody(patch))
	if err != nil {
		return store.Event{}, store.NewError("update event", err)
	}
	return firstRow[store.Event](raw, "update event")
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	q := c.ownerQuery()
	q.Set("id", "eq."+id)
	if _, err := c.do(ctx, http.MethodDelete, "events", q, nil); err != nil {
		return store.NewError("delete event", err)
	}
	return nil
}

func (c *Client) GetEvent(ctx context.Context, id string) (store.Event, error) {
	q := c.ownerQuery()
	q.Set("id", "eq."+id)
	raw, err := c.do(ctx, http.MethodGet, "events", q, nil)
	if err != nil {
		return store.Event{}, store.NewError("get event", err)
	}
	return firstRow[store.Event](raw, "get event")
}

func (c *Client) EventsByFilter(ctx context.Context, filter store.Filter) ([]store.Event, error) {
	q := c.ownerQuery()
	q.Set("order", "start_time.asc")
	if filter.StartDate != nil {
		q.Add("start_time", "gte."+filter.StartDate.Format(time.RFC3339))
	}
	if filter.EndDate != nil {
		q.Add("start_time", "lte."+filter.EndDate.Format(time.RFC3339))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	raw, err := c.do(ctx, http.MethodGet, "events", q, nil)
	if err != nil {
		return nil, store.NewError("list events", err)
	}
	rows, err := decodeRows[store.Event](raw)
	if err != nil {
		return nil, store.NewError("list events", err)
	}
	return rows, nil
}

func (c *Client) SearchEvents(ctx context.Context, query string) ([]store.Event, error) {
	q := c.ownerQuery()
	q.Set("order", "start_time.asc")
	if query != "" {
		pattern := "*" + query + "*"
		q.Set("or", fmt.Sprintf("(title.ilike.%s,description.ilike.%s,location.ilike.%s)", pattern, pattern, pattern))
	}
	raw, err := c.do(ctx, http.MethodGet, "events", q, nil)
	if err != nil {
		return nil, store.NewError("search events", err)
	}
	rows, err := decodeRows[store.Event](raw)
	if err != nil {
		return nil, store.NewError("search events", err)
	}
	return rows, nil
}

func (c *Client) InsertReminder(ctx context.Context, reminder store.Reminder) (store.Reminder, error) {
	reminder.OwnerID = c.session.UserID
	if reminder.Text == "" {
		reminder.Text = reminder.Title
	}
	raw, err := c.do(ctx, http.MethodPost, "reminders", nil, reminder)
	if err != nil {
		return store.Reminder{}, store.NewError("create reminder", err)
	}
	return firstRow[store.Reminder](raw, "create reminder")
}

func (c *Client) UpdateReminder(ctx context.Context, id string, patch store.ReminderPatch) (store.Reminder, error) {
	q := c.ownerQuery()
	q.Set("id", "eq."+id)
	raw, err := c.do(ctx, http.MethodPatch, "reminders", q, c.reminderPatchBody(patch))
	if err != nil {
		return store.Reminder{}, store.NewError("update reminder", err)
	}
	return firstRow[store.Reminder](raw, "update reminder")
}

func (c *Client) DeleteReminder(ctx context.Context, id string) error {
	q := c.ownerQuery()
	q.Set("id", "eq."+id)
	if _, err := c.do(ctx, http.MethodDelete, "reminders", q, nil); err != nil {
		return store.NewError("delete reminder", err)
	}
	return nil
}

func (c *Client) GetReminder(ctx context.Context, id string) (store.Reminder, error) {
	q := c.ownerQuery()
	q.Set("id", "eq."+id)
	raw, err := c.do(ctx, http.MethodGet, "reminders", q, nil)
	if err != nil {
		return store.Reminder{}, store.NewError("get reminder", err)
	}
	return firstRow[store.Reminder](raw, "get reminder")
}

func (c *Client) RemindersByFilter(ctx context.Context, filter store.Filter) ([]store.Reminder, error) {
	q := c.ownerQuery()
	q.Set("order", "remind_at.asc")
	if filter.StartDate != nil {
		q.Add("remind_at", "gte."+filter.StartDate.Format(time.RFC3339))
	}
	if filter.EndDate != nil {
		q.Add("remind_at", "lte."+filter.EndDate.Format(time.RFC3339))
	}
	if filter.Completed != nil {
		q.Set("completed", "is."+strconv.FormatBool(*filter.Completed))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	raw, err := c.do(ctx, http.MethodGet, "reminders", q, nil)
	if err != nil {
		return nil, store.NewError("list reminders", err)
	}
	rows, err := decodeRows[store.Reminder](raw)
	if err != nil {
		return nil, store.NewError("list reminders", err)
	}
	return rows, nil
}

func (c *Client) SearchReminders(ctx context.Context, query string) ([]store.Reminder, error) {
	q := c.ownerQuery()
	q.Set("order", "remind_at.asc")
	if query != "" {
		pattern := "*" + query + "*"
		q.Set("or", fmt.Sprintf("(title.ilike.%s,text.ilike.%s)", pattern, pattern))
	}
	raw, err := c.do(ctx, http.MethodGet, "reminders", q, nil)
	if err != nil {
		return nil, store.NewError("search reminders", err)
	}
	rows, err := decodeRows[store.Reminder](raw)
	if err != nil {
		return nil, store.NewError("search reminders", err)
	}
	return rows, nil
}

// eventPatchBody renders only the fields present in the patch; absent fields
// never reach the wire, so they are never nulled by accident.
func eventPatchBody(patch store.EventPatch) map[string]any {
	body := map[string]any{}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}
	if patch.Location != nil {
		body["location"] = *patch.Location
	}
	if patch.StartTime != nil {
		body["start_time"] = patch.StartTime.Format(time.RFC3339)
	}
	if patch.EndTime != nil {
		body["end_time"] = patch.EndTime.Format(time.RFC3339)
	}
	if patch.AllDay != nil {
		body["all_day"] = *patch.AllDay
	}
	return body
}

func (c *Client) reminderPatchBody(patch store.ReminderPatch) map[string]any {
	body := map[string]any{}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Text != nil {
		body["text"] = *patch.Text
	}
	if patch.RemindAt != nil {
		body["remind_at"] = patch.RemindAt.Format(time.RFC3339)
	}
	if patch.Completed != nil {
		body["completed"] = *patch.Completed
		if *patch.Completed {
			body["completed_at"] = c.now().Format(time.RFC3339)
		} else {
			body["completed_at"] = nil
		}
	}
	return body
}

var _ store.Store = (*Client)(nil)

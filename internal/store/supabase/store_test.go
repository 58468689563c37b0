package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemchdev/aura/internal/store"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(Config{ProjectURL: srv.URL, AnonKey: "anon-key"}, store.SessionContext{
		UserID:      "user-1",
		AccessToken: "jwt-token",
	}, nil)
	c.now = func() time.Time { return time.Date(2025, 7, 9, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestInsertEventSendsAuthAndOwner(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/events", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var event store.Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		assert.Equal(t, "user-1", event.OwnerID)

		event.ID = "evt-1"
		_ = json.NewEncoder(w).Encode([]store.Event{event})
	})

	created, err := client.InsertEvent(context.Background(), store.Event{Title: "Meeting"})
	require.NoError(t, err)
	assert.Equal(t, "evt-1", created.ID)
	assert.Equal(t, "user-1", created.OwnerID)
}

func TestEventsByFilterBuildsPostgrestQuery(t *testing.T) {
	lo := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2025, 7, 9, 23, 59, 59, 0, time.UTC)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "eq.user-1", q.Get("owner_id"))
		assert.Equal(t, "start_time.asc", q.Get("order"))
		assert.Equal(t, "3", q.Get("limit"))
		assert.ElementsMatch(t,
			[]string{"gte." + lo.Format(time.RFC3339), "lte." + hi.Format(time.RFC3339)},
			q["start_time"])
		_, _ = w.Write([]byte("[]"))
	})

	_, err := client.EventsByFilter(context.Background(), store.Filter{
		StartDate: &lo, EndDate: &hi, Limit: 3,
	})
	require.NoError(t, err)
}

func TestSearchRemindersUsesIlikeUnion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "(title.ilike.*milk*,text.ilike.*milk*)", r.URL.Query().Get("or"))
		_, _ = w.Write([]byte(`[{"id":"rem-1","title":"Buy milk"}]`))
	})

	found, err := client.SearchReminders(context.Background(), "milk")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "rem-1", found[0].ID)
}

func TestUpdateReminderCompletionPatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.rem-1", r.URL.Query().Get("id"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, true, body["completed"])
		assert.Equal(t, "2025-07-09T12:00:00Z", body["completed_at"])
		assert.NotContains(t, body, "title", "absent fields stay off the wire")

		_, _ = w.Write([]byte(`[{"id":"rem-1","completed":true,"completed_at":"2025-07-09T12:00:00Z"}]`))
	})

	done := true
	updated, err := client.UpdateReminder(context.Background(), "rem-1", store.ReminderPatch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	require.NotNil(t, updated.CompletedAt)
}

func TestUpdateEventNoRowsIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})

	title := "x"
	_, err := client.UpdateEvent(context.Background(), "missing", store.EventPatch{Title: &title})
	assert.True(t, store.IsNotFound(err))
}

func TestStoreErrorCarriesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"row-level security violation"}`))
	})

	_, err := client.InsertEvent(context.Background(), store.Event{Title: "x"})
	require.Error(t, err)
	var storeErr *store.Error
	require.ErrorAs(t, err, &storeErr)
	assert.Contains(t, storeErr.Error(), "row-level security violation")
}

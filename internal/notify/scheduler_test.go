package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemchdev/aura/internal/store"
)

type captureSink struct {
	mu        sync.Mutex
	delivered []Trigger
}

func (c *captureSink) Deliver(_ context.Context, trigger Trigger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delivered = append(c.delivered, trigger)
}

func (c *captureSink) all() []Trigger {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Trigger, len(c.delivered))
	copy(out, c.delivered)
	return out
}

var schedNow = time.Date(2025, 7, 9, 12, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T) (*Scheduler, *captureSink, *time.Time) {
	t.Helper()
	sink := &captureSink{}
	s := NewScheduler(sink, nil)
	current := schedNow
	s.SetClock(func() time.Time { return current })
	return s, sink, &current
}

func TestSweepDeliversDueTriggers(t *testing.T) {
	ctx := context.Background()
	s, sink, current := newTestScheduler(t)

	start := schedNow.Add(time.Hour)
	require.NoError(t, s.ScheduleEventReminder(ctx, "evt-1", "Meeting", start, 15))
	require.NoError(t, s.ScheduleReminderAt(ctx, "rem-1", "Call mom", "about the trip", schedNow.Add(2*time.Hour)))
	assert.Equal(t, 2, s.Pending())

	s.Sweep(ctx)
	assert.Empty(t, sink.all(), "nothing due yet")

	*current = schedNow.Add(45 * time.Minute) // event lead time reached
	s.Sweep(ctx)
	delivered := sink.all()
	require.Len(t, delivered, 1)
	assert.Equal(t, TriggerEventReminder, delivered[0].Type)
	assert.Equal(t, "evt-1", delivered[0].EventID)
	assert.Equal(t, 1, s.Pending())

	s.Sweep(ctx)
	assert.Len(t, sink.all(), 1, "delivered trigger does not repeat")
}

func TestSchedulePastTriggerIsSilentNoop(t *testing.T) {
	ctx := context.Background()
	s, sink, _ := newTestScheduler(t)

	require.NoError(t, s.ScheduleReminderAt(ctx, "rem-old", "Old", "", schedNow.Add(-time.Minute)))
	assert.Equal(t, 0, s.Pending())
	s.Sweep(ctx)
	assert.Empty(t, sink.all())
}

func TestCancelByRecordID(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestScheduler(t)

	require.NoError(t, s.ScheduleEventReminder(ctx, "evt-1", "Meeting", schedNow.Add(time.Hour), 15))
	require.NoError(t, s.ScheduleReminderAt(ctx, "rem-1", "Call", "", schedNow.Add(time.Hour)))

	require.NoError(t, s.Cancel(ctx, "evt-1"))
	assert.Equal(t, 1, s.Pending())
	require.NoError(t, s.Cancel(ctx, "reminder:rem-1"))
	assert.Equal(t, 0, s.Pending())
}

func TestRescheduleReplacesPendingTrigger(t *testing.T) {
	ctx := context.Background()
	s, sink, current := newTestScheduler(t)

	require.NoError(t, s.ScheduleReminderAt(ctx, "rem-1", "Call", "", schedNow.Add(10*time.Minute)))
	require.NoError(t, s.ScheduleReminderAt(ctx, "rem-1", "Call", "", schedNow.Add(30*time.Minute)))
	assert.Equal(t, 1, s.Pending(), "same reminder keeps one trigger")

	*current = schedNow.Add(15 * time.Minute)
	s.Sweep(ctx)
	assert.Empty(t, sink.all(), "old trigger time was replaced")
}

func TestActionSnoozeReschedules(t *testing.T) {
	ctx := context.Background()
	s, sink, current := newTestScheduler(t)
	st := store.NewMemory(store.SessionContext{UserID: "u"})
	handler := NewActionHandler(st, s, nil)
	handler.SetClock(func() time.Time { return *current })

	trigger := Trigger{ID: "reminder:rem-1", Type: TriggerReminder, ReminderID: "rem-1", Title: "Call"}
	require.NoError(t, handler.Handle(ctx, ActionSnooze5, trigger))
	assert.Equal(t, 1, s.Pending())

	*current = schedNow.Add(4 * time.Minute)
	s.Sweep(ctx)
	assert.Empty(t, sink.all())

	*current = schedNow.Add(6 * time.Minute)
	s.Sweep(ctx)
	assert.Len(t, sink.all(), 1)
}

func TestActionMarkDoneCompletesReminder(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestScheduler(t)
	st := store.NewMemory(store.SessionContext{UserID: "u"})
	created, err := st.InsertReminder(ctx, store.Reminder{Title: "Call mom", RemindAt: schedNow})
	require.NoError(t, err)

	handler := NewActionHandler(st, s, nil)
	trigger := Trigger{Type: TriggerReminder, ReminderID: created.ID, Title: created.Title}
	require.NoError(t, handler.Handle(ctx, ActionDone, trigger))

	updated, err := st.GetReminder(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	require.NotNil(t, updated.CompletedAt)
}

func TestUnknownActionRejected(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	handler := NewActionHandler(store.NewMemory(store.SessionContext{UserID: "u"}), s, nil)
	err := handler.Handle(context.Background(), "explode", Trigger{})
	assert.Error(t, err)
}

package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemchdev/aura/internal/assistant/classifier"
	"github.com/hemchdev/aura/internal/assistant/intent"
	"github.com/hemchdev/aura/internal/notify"
	"github.com/hemchdev/aura/internal/session"
	"github.com/hemchdev/aura/internal/store"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

// recordingStore counts mutations and can inject failures, so tests can
// prove that ambiguous or empty matches never reach a write.
type recordingStore struct {
	store.Store
	mutations int
	failWith  error
}

func (r *recordingStore) mutate() error {
	if r.failWith != nil {
		return r.failWith
	}
	r.mutations++
	return nil
}

func (r *recordingStore) InsertEvent(ctx context.Context, event store.Event) (store.Event, error) {
	if err := r.mutate(); err != nil {
		return store.Event{}, err
	}
	return r.Store.InsertEvent(ctx, event)
}

func (r *recordingStore) UpdateEvent(ctx context.Context, id string, patch store.EventPatch) (store.Event, error) {
	if err := r.mutate(); err != nil {
		return store.Event{}, err
	}
	return r.Store.UpdateEvent(ctx, id, patch)
}

func (r *recordingStore) DeleteEvent(ctx context.Context, id string) error {
	if err := r.mutate(); err != nil {
		return err
	}
	return r.Store.DeleteEvent(ctx, id)
}

func (r *recordingStore) InsertReminder(ctx context.Context, reminder store.Reminder) (store.Reminder, error) {
	if err := r.mutate(); err != nil {
		return store.Reminder{}, err
	}
	return r.Store.InsertReminder(ctx, reminder)
}

func (r *recordingStore) UpdateReminder(ctx context.Context, id string, patch store.ReminderPatch) (store.Reminder, error) {
	if err := r.mutate(); err != nil {
		return store.Reminder{}, err
	}
	return r.Store.UpdateReminder(ctx, id, patch)
}

func (r *recordingStore) DeleteReminder(ctx context.Context, id string) error {
	if err := r.mutate(); err != nil {
		return err
	}
	return r.Store.DeleteReminder(ctx, id)
}

// referenceNow is Monday 2025-07-07, 09:00 UTC.
var referenceNow = time.Date(2025, 7, 7, 9, 0, 0, 0, time.UTC)

type fixture struct {
	engine    *Engine
	store     *recordingStore
	memory    *store.Memory
	scheduler *notify.Scheduler
	sink      *captureSink
}

type captureSink struct {
	delivered []notify.Trigger
}

func (c *captureSink) Deliver(_ context.Context, trigger notify.Trigger) {
	c.delivered = append(c.delivered, trigger)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	memory := store.NewMemory(store.SessionContext{UserID: "user-1"})
	memory.SetClock(func() time.Time { return referenceNow })
	recording := &recordingStore{Store: memory}
	sink := &captureSink{}
	scheduler := notify.NewScheduler(sink, nil)
	scheduler.SetClock(func() time.Time { return referenceNow })
	engine := NewEngine(recording, &classifier.Scripted{}, scheduler, nil)
	engine.SetClock(func() time.Time { return referenceNow })
	return &fixture{engine: engine, store: recording, memory: memory, scheduler: scheduler, sink: sink}
}

// "Schedule a meeting with John next Monday at 10am": the event lands on the
// resolved date and a reminder is queued 15 minutes ahead.
func TestCreateEventSingleDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	outcome := f.engine.Resolve(ctx, intent.Structured{
		Intent: intent.CreateEvent,
		Entities: intent.Entities{
			Title: strp("Meeting with John"),
			Date:  strp("2025-07-14"),
			Time:  strp("10:00"),
		},
		Confidence: 0.95,
	})
	require.True(t, outcome.OK)
	assert.Equal(t, OutcomeCreated, outcome.Kind)
	assert.Contains(t, outcome.Message, "Meeting with John")

	events, err := f.memory.EventsByFilter(ctx, store.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, time.Date(2025, 7, 14, 10, 0, 0, 0, time.UTC), events[0].StartTime)
	assert.Equal(t, time.Date(2025, 7, 14, 11, 0, 0, 0, time.UTC), events[0].EndTime, "default one hour")
	assert.False(t, events[0].AllDay)

	require.Equal(t, 1, f.scheduler.Pending(), "reminder queued")
	f.scheduler.SetClock(func() time.Time { return time.Date(2025, 7, 14, 9, 44, 0, 0, time.UTC) })
	f.scheduler.Sweep(ctx)
	assert.Empty(t, f.sink.delivered, "not due before the 15 minute lead")
	f.scheduler.SetClock(func() time.Time { return time.Date(2025, 7, 14, 9, 45, 0, 0, time.UTC) })
	f.scheduler.Sweep(ctx)
	require.Len(t, f.sink.delivered, 1)
	assert.Equal(t, time.Date(2025, 7, 14, 9, 45, 0, 0, time.UTC), f.sink.delivered[0].FireAt)
}

// "Block time for vacation this week": multi-day events are all-day and get
// no reminder.
func TestCreateEventMultiDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	wednesday := time.Date(2025, 7, 9, 14, 0, 0, 0, time.UTC)
	f.engine.SetClock(func() time.Time { return wednesday })

	outcome := f.engine.Resolve(ctx, intent.Structured{
		Intent: intent.CreateEvent,
		Entities: intent.Entities{
			Title:     strp("Vacation"),
			MultiDay:  boolp(true),
			DateRange: strp("this_week"),
		},
	})
	require.True(t, outcome.OK)

	events, err := f.memory.EventsByFilter(ctx, store.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].AllDay)
	assert.Equal(t, time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC), events[0].StartTime)
	assert.Equal(t, 13, events[0].EndTime.Day())
	assert.Equal(t, 23, events[0].EndTime.Hour())

	assert.Equal(t, 0, f.scheduler.Pending(), "no reminder for all-day spans")
}

func TestCreateEventMissingFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	outcome := f.engine.Resolve(ctx, intent.Structured{
		Intent:   intent.CreateEvent,
		Entities: intent.Entities{Title: strp("Dentist")},
	})
	assert.False(t, outcome.OK)
	assert.Equal(t, OutcomeNotFound, outcome.Kind)
	assert.Equal(t, 0, f.store.mutations, "no write without a schedule")

	outcome = f.engine.Resolve(ctx, intent.Structured{Intent: intent.CreateEvent})
	assert.False(t, outcome.OK)
	assert.Equal(t, 0, f.store.mutations)
}

func TestCreateEventStoreFailureSurfacesMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.failWith = &store.Error{Op: "create event", Message: "quota exceeded for plan"}

	outcome := f.engine.Resolve(ctx, intent.Structured{
		Intent:   intent.CreateEvent,
		Entities: intent.Entities{Title: strp("Sync"), Date: strp("2025-07-08")},
	})
	assert.False(t, outcome.OK)
	assert.Contains(t, outcome.Message, "quota exceeded for plan", "store error text forwarded verbatim")
}

func TestCreateRecurringEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	outcome := f.engine.Resolve(ctx, intent.Structured{
		Intent: intent.CreateEvent,
		Entities: intent.Entities{
			Title:     strp("Standup"),
			Date:      strp("2025-07-08"),
			Time:      strp("09:30"),
			Recurring: strp("daily"),
		},
	})
	require.True(t, outcome.OK)
	assert.Contains(t, outcome.Message, "5 occurrences")

	events, err := f.memory.EventsByFilter(ctx, store.Filter{})
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestCreateReminderDefaultsTextAndSchedules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	outcome := f.engine.Resolve(ctx, intent.Structured{
		Intent: intent.CreateReminder,
		Entities: intent.Entities{
			Title:        strp("Call mom"),
			RelativeTime: strp("tomorrow"),
			Time:         strp("18:00"),
		},
	})
	require.True(t, outcome.OK)

	reminders, err := f.memory.RemindersByFilter(ctx, store.Filter{})
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "Call mom", reminders[0].Text, "text defaults to title")
	assert.Equal(t, time.Date(2025, 7, 8, 18, 0, 0, 0, time.UTC), reminders[0].RemindAt)
	assert.Equal(t, 1, f.scheduler.Pending())
}

func TestCreateReminderRequiresSchedule(t *testing.T) {
	f := newFixture(t)
	outcome := f.engine.Resolve(context.Background(), intent.Structured{
		Intent:   intent.SetReminder,
		Entities: intent.Entities{Title: strp("Pay rent")},
	})
	assert.False(t, outcome.OK)
	assert.Equal(t, 0, f.store.mutations)
}

// Two events both matching "lunch": the engine enumerates both and performs
// no deletion.
func TestDeleteEventAmbiguityWithholdsMutation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedEvent(t, f, "Lunch with Ana", referenceNow.Add(2*time.Hour))
	seedEvent(t, f, "Team lunch", referenceNow.Add(26*time.Hour))
	f.store.mutations = 0

	outcome := f.engine.Resolve(ctx, intent.Structured{
		Intent:   intent.DeleteEvent,
		Entities: intent.Entities{SearchQuery: strp("lunch")},
	})
	assert.Equal(t, OutcomeClarification, outcome.Kind)
	assert.Contains(t, outcome.Message, "Lunch with Ana")
	assert.Contains(t, outcome.Message, "Team lunch")
	assert.Equal(t, 0, f.store.mutations, "no mutation on ambiguity")

	events, err := f.memory.EventsByFilter(ctx, store.Filter{})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestUpdateEventZeroCandidates(t *testing.T) {
	f := newFixture(t)
	outcome := f.engine.Resolve(context.Background(), intent.Structured{
		Intent:   intent.UpdateEvent,
		Entities: intent.Entities{SearchQuery: strp("yoga")},
	})
	assert.False(t, outcome.OK)
	assert.Equal(t, OutcomeNotFound, outcome.Kind)
	assert.Equal(t, 0, f.store.mutations)
}

func TestDeleteEventWithoutKeyShortCircuits(t *testing.T) {
	f := newFixture(t)
	seedEvent(t, f, "Only event", referenceNow.Add(time.Hour))
	f.store.mutations = 0

	outcome := f.engine.Resolve(context.Background(), intent.Structured{Intent: intent.DeleteEvent})
	assert.False(t, outcome.OK)
	assert.Contains(t, outcome.Message, "Which event")
	assert.Equal(t, 0, f.store.mutations)
}

func TestUpdateEventFallsBackToToday(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedEvent(t, f, "Morning sync", referenceNow.Add(time.Hour))
	f.store.mutations = 0

	outcome := f.engine.Resolve(ctx, intent.Structured{
		Intent:   intent.UpdateEvent,
		Entities: intent.Entities{Location: strp("Room 4")},
	})
	require.True(t, outcome.OK, outcome.Message)

	events, err := f.memory.EventsByFilter(ctx, store.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Room 4", events[0].Location)
}

func TestUpdateEventTimeOnlyKeepsDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created := seedEvent(t, f, "Dentist", time.Date(2025, 8, 1, 14, 0, 0, 0, time.UTC))

	outcome := f.engine.Resolve(ctx, intent.Structured{
		Intent:   intent.UpdateEvent,
		Entities: intent.Entities{SearchQuery: strp("dentist"), Time: strp("15:30")},
	})
	require.True(t, outcome.OK)

	updated, err := f.memory.GetEvent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 8, 1, 15, 30, 0, 0, time.UTC), updated.StartTime)
	assert.Equal(t, time.Date(2025, 8, 1, 16, 30, 0, 0, time.UTC), updated.EndTime, "duration preserved")
}

func TestUpdateEventDateOnlyKeepsClock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created := seedEvent(t, f, "Dentist", time.Date(2025, 8, 1, 14, 0, 0, 0, time.UTC))

	outcome := f.engine.Resolve(ctx, intent.Structured{
		Intent:   intent.UpdateEvent,
		Entities: intent.Entities{SearchQuery: strp("dentist"), Date: strp("2025-08-05")},
	})
	require.True(t, outcome.OK)

	updated, err := f.memory.GetEvent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 8, 5, 14, 0, 0, 0, time.UTC), updated.StartTime)
}

// A bare time entity moves the reminder's clock, not its date.
func TestUpdateReminderTimeOnlyKeepsDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created, err := f.memory.InsertReminder(ctx, store.Reminder{
		Title:    "Submit report",
		RemindAt: time.Date(2025, 8, 1, 17, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	outcome := f.engine.Resolve(ctx, intent.Structured{
		Intent:   intent.UpdateReminder,
		Entities: intent.Entities{SearchQuery: strp("report"), Time: strp("09:00")},
	})
	require.True(t, outcome.OK)

	updated, err := f.memory.GetReminder(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC), updated.RemindAt)
}

func TestDeleteReminderSingleMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.memory.InsertReminder(ctx, store.Reminder{Title: "Water plants", RemindAt: referenceNow})
	require.NoError(t, err)

	outcome := f.engine.Resolve(ctx, intent.Structured{
		Intent:   intent.DeleteReminder,
		Entities: intent.Entities{SearchQuery: strp("plants")},
	})
	require.True(t, outcome.OK)
	assert.Equal(t, OutcomeDeleted, outcome.Kind)

	reminders, err := f.memory.RemindersByFilter(ctx, store.Filter{})
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestListEventsByDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedEvent(t, f, "Today's standup", referenceNow.Add(time.Hour))
	seedEvent(t, f, "Next week planning", referenceNow.AddDate(0, 0, 7))

	outcome := f.engine.Resolve(ctx, intent.Structured{
		Intent:   intent.GetEvents,
		Entities: intent.Entities{RelativeTime: strp("today")},
	})
	require.True(t, outcome.OK)
	assert.Contains(t, outcome.Message, "1. Today's standup")
	assert.NotContains(t, outcome.Message, "planning")
}

func TestListEventsEmpty(t *testing.T) {
	f := newFixture(t)
	outcome := f.engine.Resolve(context.Background(), intent.Structured{Intent: intent.GetEvents})
	require.True(t, outcome.OK)
	assert.Contains(t, outcome.Message, "don't have any events")
}

func TestListRemindersSkipsCompleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.memory.InsertReminder(ctx, store.Reminder{Title: "Open task", RemindAt: referenceNow})
	require.NoError(t, err)
	_, err = f.memory.InsertReminder(ctx, store.Reminder{Title: "Done task", RemindAt: referenceNow, Completed: true})
	require.NoError(t, err)

	outcome := f.engine.Resolve(ctx, intent.Structured{Intent: intent.GetReminders})
	require.True(t, outcome.OK)
	assert.Contains(t, outcome.Message, "Open task")
	assert.NotContains(t, outcome.Message, "Done task")
}

func TestGeneralIntentPassesResponseThrough(t *testing.T) {
	f := newFixture(t)
	outcome := f.engine.Resolve(context.Background(), intent.Structured{
		Intent:       intent.General,
		ResponseText: "Hello! How can I help?",
	})
	assert.True(t, outcome.OK)
	assert.Equal(t, "Hello! How can I help?", outcome.Message)
	assert.Equal(t, 0, f.store.mutations)
}

func TestHandleUtteranceAppendsExactlyOneOutcome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	scripted := &classifier.Scripted{}
	scripted.Push(intent.Structured{
		Intent:   intent.CreateEvent,
		Entities: intent.Entities{Title: strp("Demo"), Date: strp("2025-07-10")},
	})
	f.engine.classifier = scripted

	log := session.NewLog("user-1", nil, nil)
	outcome, err := f.engine.HandleUtterance(ctx, log, "schedule a demo thursday", false)
	require.NoError(t, err)
	require.True(t, outcome.OK)

	msgs := log.Messages()
	require.Len(t, msgs, 2, "user message plus one outcome")
	assert.Equal(t, session.RoleUser, msgs[0].Role)
	assert.Equal(t, session.RoleAssistant, msgs[1].Role)
	assert.Equal(t, outcome.Message, msgs[1].Content)
	assert.Equal(t, msgs[0].ID, msgs[1].RepliesTo)
}

func TestHandleUtteranceRecoversTransportFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	scripted := &classifier.Scripted{}
	scripted.PushErr(&classifier.TransportError{Err: errors.New("connection refused")})
	f.engine.classifier = scripted

	log := session.NewLog("user-1", nil, nil)
	outcome, err := f.engine.HandleUtterance(ctx, log, "hello", false)
	require.NoError(t, err, "transport failure is recovered, not propagated")
	assert.False(t, outcome.OK)
	assert.Equal(t, classifier.UnavailableResponseText, outcome.Message)
	require.Len(t, log.Messages(), 2)
}

func TestAgendaQueriesBothCollections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedEvent(t, f, "Standup", referenceNow.Add(time.Hour))
	_, err := f.memory.InsertReminder(ctx, store.Reminder{Title: "Pay rent", RemindAt: referenceNow.Add(2 * time.Hour)})
	require.NoError(t, err)
	_, err = f.memory.InsertReminder(ctx, store.Reminder{Title: "Old", RemindAt: referenceNow.AddDate(0, 0, -3)})
	require.NoError(t, err)

	events, reminders, err := f.engine.Agenda(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Len(t, reminders, 1)
	assert.Equal(t, "Pay rent", reminders[0].Title)
}

func seedEvent(t *testing.T, f *fixture, title string, start time.Time) store.Event {
	t.Helper()
	created, err := f.memory.InsertEvent(context.Background(), store.Event{
		Title:     title,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.NoError(t, err)
	return created
}

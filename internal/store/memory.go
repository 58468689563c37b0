package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and offline mode. It applies
// the same owner scoping and ordering rules as the hosted backends.
type Memory struct {
	mu        sync.RWMutex
	owner     string
	now       func() time.Time
	events    map[string]Event
	reminders map[string]Reminder
}

// NewMemory constructs an empty in-memory store scoped to the session owner.
func NewMemory(session SessionContext) *Memory {
	return &Memory{
		owner:     session.UserID,
		now:       time.Now,
		events:    make(map[string]Event),
		reminders: make(map[string]Reminder),
	}
}

// SetClock overrides the timestamp source, for tests.
func (m *Memory) SetClock(now func() time.Time) {
	m.now = now
}

func (m *Memory) InsertEvent(_ context.Context, event Event) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.OwnerID = m.owner
	if event.EndTime.Before(event.StartTime) {
		event.EndTime = event.StartTime
	}
	m.events[event.ID] = event
	return event, nil
}

func (m *Memory) UpdateEvent(_ context.Context, id string, patch EventPatch) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[id]
	if !ok || event.OwnerID != m.owner {
		return Event{}, &Error{Op: "update event", Message: "event not found", Err: ErrNotFound}
	}
	patch.Apply(&event)
	m.events[id] = event
	return event, nil
}

func (m *Memory) DeleteEvent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[id]
	if !ok || event.OwnerID != m.owner {
		return &Error{Op: "delete event", Message: "event not found", Err: ErrNotFound}
	}
	delete(m.events, id)
	return nil
}

func (m *Memory) GetEvent(_ context.Context, id string) (Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	event, ok := m.events[id]
	if !ok || event.OwnerID != m.owner {
		return Event{}, &Error{Op: "get event", Message: "event not found", Err: ErrNotFound}
	}
	return event, nil
}

func (m *Memory) EventsByFilter(_ context.Context, filter Filter) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Event
	for _, event := range m.events {
		if event.OwnerID != m.owner {
			continue
		}
		if filter.StartDate != nil && event.StartTime.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && event.StartTime.After(*filter.EndDate) {
			continue
		}
		out = append(out, event)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *Memory) SearchEvents(_ context.Context, query string) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(query)
	var out []Event
	for _, event := range m.events {
		if event.OwnerID != m.owner {
			continue
		}
		if needle == "" ||
			strings.Contains(strings.ToLower(event.Title), needle) ||
			strings.Contains(strings.ToLower(event.Description), needle) ||
			strings.Contains(strings.ToLower(event.Location), needle) {
			out = append(out, event)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *Memory) InsertReminder(_ context.Context, reminder Reminder) (Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	reminder.OwnerID = m.owner
	if reminder.Text == "" {
		reminder.Text = reminder.Title
	}
	if reminder.Completed && reminder.CompletedAt == nil {
		stamp := m.now()
		reminder.CompletedAt = &stamp
	}
	if !reminder.Completed {
		reminder.CompletedAt = nil
	}
	m.reminders[reminder.ID] = reminder
	return reminder, nil
}

func (m *Memory) UpdateReminder(_ context.Context, id string, patch ReminderPatch) (Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reminder, ok := m.reminders[id]
	if !ok || reminder.OwnerID != m.owner {
		return Reminder{}, &Error{Op: "update reminder", Message: "reminder not found", Err: ErrNotFound}
	}
	patch.Apply(&reminder, m.now())
	m.reminders[id] = reminder
	return reminder, nil
}

func (m *Memory) DeleteReminder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reminder, ok := m.reminders[id]
	if !ok || reminder.OwnerID != m.owner {
		return &Error{Op: "delete reminder", Message: "reminder not found", Err: ErrNotFound}
	}
	delete(m.reminders, id)
	return nil
}

func (m *Memory) GetReminder(_ context.Context, id string) (Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reminder, ok := m.reminders[id]
	if !ok || reminder.OwnerID != m.owner {
		return Reminder{}, &Error{Op: "get reminder", Message: "reminder not found", Err: ErrNotFound}
	}
	return reminder, nil
}

func (m *Memory) RemindersByFilter(_ context.Context, filter Filter) ([]Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Reminder
	for _, reminder := range m.reminders {
		if reminder.OwnerID != m.owner {
			continue
		}
		if filter.StartDate != nil && reminder.RemindAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && reminder.RemindAt.After(*filter.EndDate) {
			continue
		}
		if filter.Completed != nil && reminder.Completed != *filter.Completed {
			continue
		}
		out = append(out, reminder)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemindAt.Before(out[j].RemindAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *Memory) SearchReminders(_ context.Context, query string) ([]Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(query)
	var out []Reminder
	for _, reminder := range m.reminders {
		if reminder.OwnerID != m.owner {
			continue
		}
		if needle == "" ||
			strings.Contains(strings.ToLower(reminder.Title), needle) ||
			strings.Contains(strings.ToLower(reminder.Text), needle) {
			out = append(out, reminder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemindAt.Before(out[j].RemindAt) })
	return out, nil
}

var _ Store = (*Memory)(nil)

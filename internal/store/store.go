// Package store defines the user-scoped record store for events and
// reminders, plus an in-memory implementation used by tests and offline
// mode. Hosted backends live in the supabase and postgres subpackages.
package store

import (
	"context"
	"time"
)

// SessionContext identifies the authenticated user a store (or classifier)
// acts on behalf of. It is passed explicitly to constructors instead of
// living in process-wide state.
type SessionContext struct {
	UserID      string
	AccessToken string
}

// Filter narrows list queries. Date bounds are inclusive; Completed applies
// only to reminders. A zero Limit means no limit.
type Filter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Completed *bool
	Limit     int
}

// Store is the persistence contract consumed by the resolution engine.
// Implementations scope every operation to the SessionContext owner; records
// of other users are never visible. All failures are reported as *Error.
type Store interface {
	InsertEvent(ctx context.Context, event Event) (Event, error)
	UpdateEvent(ctx context.Context, id string, patch EventPatch) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
	GetEvent(ctx context.Context, id string) (Event, error)
	// EventsByFilter returns events ordered by start time ascending.
	EventsByFilter(ctx context.Context, filter Filter) ([]Event, error)
	// SearchEvents performs a case-insensitive substring match over title,
	// description, and location. An empty query matches everything.
	SearchEvents(ctx context.Context, query string) ([]Event, error)

	InsertReminder(ctx context.Context, reminder Reminder) (Reminder, error)
	UpdateReminder(ctx context.Context, id string, patch ReminderPatch) (Reminder, error)
	DeleteReminder(ctx context.Context, id string) error
	GetReminder(ctx context.Context, id string) (Reminder, error)
	// RemindersByFilter returns reminders ordered by remind time ascending.
	RemindersByFilter(ctx context.Context, filter Filter) ([]Reminder, error)
	// SearchReminders matches over title and text.
	SearchReminders(ctx context.Context, query string) ([]Reminder, error)
}

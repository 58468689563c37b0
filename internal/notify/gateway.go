// Package notify schedules time-triggered local notifications for events and
// reminders. The engine treats scheduling as best-effort: a failed schedule
// never rolls back the record mutation that preceded it.
package notify

import (
	"context"
	"time"
)

// TriggerType tags what produced a notification.
type TriggerType string

const (
	TriggerEventReminder    TriggerType = "event_reminder"
	TriggerReminder         TriggerType = "reminder"
	TriggerAssistantMessage TriggerType = "assistant_message"
)

// Trigger is a pending or delivered notification.
type Trigger struct {
	ID         string
	Type       TriggerType
	EventID    string
	ReminderID string
	Title      string
	Body       string
	FireAt     time.Time
}

// Gateway is the scheduling contract the resolution engine calls. Scheduling
// a trigger time already in the past is a silent no-op, not an error.
type Gateway interface {
	ScheduleEventReminder(ctx context.Context, eventID, title string, eventStart time.Time, leadMinutes int) error
	ScheduleReminderAt(ctx context.Context, reminderID, title, body string, remindAt time.Time) error
	Cancel(ctx context.Context, identifier string) error
}

// Sink receives triggers when they fire.
type Sink interface {
	Deliver(ctx context.Context, trigger Trigger)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, trigger Trigger)

func (f SinkFunc) Deliver(ctx context.Context, trigger Trigger) { f(ctx, trigger) }

// Nop returns a gateway that drops every call, for surfaces with no
// notification capability.
func Nop() Gateway {
	return nopGateway{}
}

type nopGateway struct{}

func (nopGateway) ScheduleEventReminder(context.Context, string, string, time.Time, int) error {
	return nil
}
func (nopGateway) ScheduleReminderAt(context.Context, string, string, string, time.Time) error {
	return nil
}
func (nopGateway) Cancel(context.Context, string) error { return nil }

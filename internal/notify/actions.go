package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/hemchdev/aura/internal/logging"
	"github.com/hemchdev/aura/internal/store"
)

// Notification actions a user can take on a delivered trigger.
const (
	ActionSnooze5  = "snooze_5"
	ActionSnooze10 = "snooze_10"
	ActionDone     = "mark_done"
)

// ActionHandler reacts to user responses on delivered notifications by
// re-entering the same store/gateway operations the resolution engine uses.
type ActionHandler struct {
	store   store.Store
	gateway Gateway
	logger  logging.Logger
	now     func() time.Time
}

// NewActionHandler wires an action handler.
func NewActionHandler(st store.Store, gateway Gateway, logger logging.Logger) *ActionHandler {
	return &ActionHandler{
		store:   st,
		gateway: gateway,
		logger:  logging.OrNop(logger),
		now:     time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (h *ActionHandler) SetClock(now func() time.Time) {
	h.now = now
}

// Handle applies one action to one trigger.
func (h *ActionHandler) Handle(ctx context.Context, action string, trigger Trigger) error {
	switch action {
	case ActionSnooze5:
		return h.snooze(ctx, trigger, 5*time.Minute)
	case ActionSnooze10:
		return h.snooze(ctx, trigger, 10*time.Minute)
	case ActionDone:
		if trigger.ReminderID == "" {
			return fmt.Errorf("mark done: trigger %s has no reminder", trigger.ID)
		}
		done := true
		if _, err := h.store.UpdateReminder(ctx, trigger.ReminderID, store.ReminderPatch{Completed: &done}); err != nil {
			return err
		}
		return h.gateway.Cancel(ctx, trigger.ReminderID)
	default:
		return fmt.Errorf("unknown notification action %q", action)
	}
}

func (h *ActionHandler) snooze(ctx context.Context, trigger Trigger, offset time.Duration) error {
	fireAt := h.now().Add(offset)
	switch trigger.Type {
	case TriggerReminder:
		return h.gateway.ScheduleReminderAt(ctx, trigger.ReminderID, trigger.Title, trigger.Body, fireAt)
	case TriggerEventReminder:
		return h.gateway.ScheduleEventReminder(ctx, trigger.EventID, trigger.Title, fireAt, 0)
	default:
		return fmt.Errorf("cannot snooze trigger type %q", trigger.Type)
	}
}

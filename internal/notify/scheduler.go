package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hemchdev/aura/internal/logging"
)

// Scheduler is a local Gateway implementation: triggers are held in memory
// and a once-a-minute sweep delivers the ones that have come due.
type Scheduler struct {
	mu      sync.Mutex
	pending map[string]Trigger
	sink    Sink
	cron    *cron.Cron
	logger  logging.Logger
	now     func() time.Time
}

// NewScheduler builds a scheduler delivering to sink.
func NewScheduler(sink Sink, logger logging.Logger) *Scheduler {
	return &Scheduler{
		pending: make(map[string]Trigger),
		sink:    sink,
		logger:  logging.OrNop(logger),
		now:     time.Now,
	}
}

// SetSink replaces the delivery sink. Call before Start.
func (s *Scheduler) SetSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// SetClock overrides the time source, for tests.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Start begins the minute sweep. Overlapping sweeps are skipped rather than
// queued.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc("@every 1m", func() { s.Sweep(ctx) }); err != nil {
		return fmt.Errorf("register sweep: %w", err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("notification scheduler started")
	return nil
}

// Stop halts the sweep; pending triggers stay queued.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		c.Stop()
	}
}

// Sweep delivers every trigger that is due. It is safe to call directly.
func (s *Scheduler) Sweep(ctx context.Context) {
	s.mu.Lock()
	now := s.now()
	var due []Trigger
	for id, trigger := range s.pending {
		if !trigger.FireAt.After(now) {
			due = append(due, trigger)
			delete(s.pending, id)
		}
	}
	s.mu.Unlock()

	for _, trigger := range due {
		s.logger.Debug("delivering trigger %s (%s)", trigger.ID, trigger.Type)
		s.sink.Deliver(ctx, trigger)
	}
}

// Pending returns the number of queued triggers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Scheduler) ScheduleEventReminder(_ context.Context, eventID, title string, eventStart time.Time, leadMinutes int) error {
	fireAt := eventStart.Add(-time.Duration(leadMinutes) * time.Minute)
	return s.schedule(Trigger{
		ID:      "event:" + eventID,
		Type:    TriggerEventReminder,
		EventID: eventID,
		Title:   title,
		Body:    fmt.Sprintf("%s starts at %s", title, eventStart.Format("3:04 PM")),
		FireAt:  fireAt,
	})
}

func (s *Scheduler) ScheduleReminderAt(_ context.Context, reminderID, title, body string, remindAt time.Time) error {
	return s.schedule(Trigger{
		ID:         "reminder:" + reminderID,
		Type:       TriggerReminder,
		ReminderID: reminderID,
		Title:      title,
		Body:       body,
		FireAt:     remindAt,
	})
}

func (s *Scheduler) schedule(trigger Trigger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if trigger.FireAt.Before(s.now()) {
		// Past trigger times are dropped silently by contract.
		s.logger.Debug("skipping past trigger %s at %s", trigger.ID, trigger.FireAt)
		return nil
	}
	s.pending[trigger.ID] = trigger
	return nil
}

// Cancel drops any pending trigger tied to the identifier, which may be a
// trigger id or a bare event/reminder record id.
func (s *Scheduler) Cancel(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, trigger := range s.pending {
		if id == identifier || trigger.EventID == identifier || trigger.ReminderID == identifier {
			delete(s.pending, id)
		}
	}
	return nil
}

var _ Gateway = (*Scheduler)(nil)

// Package assistant holds the intent resolution engine: it maps structured
// classifications onto store operations, resolves ambiguity, and produces
// exactly one outcome message per utterance.
package assistant

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hemchdev/aura/internal/assistant/classifier"
	"github.com/hemchdev/aura/internal/assistant/intent"
	"github.com/hemchdev/aura/internal/dates"
	"github.com/hemchdev/aura/internal/logging"
	"github.com/hemchdev/aura/internal/notify"
	"github.com/hemchdev/aura/internal/session"
	"github.com/hemchdev/aura/internal/store"
)

const (
	// defaultEventMinutes is the event length assumed when the user gives
	// no duration.
	defaultEventMinutes = 60
	// defaultLeadMinutes is the notification lead time for single-day
	// events.
	defaultLeadMinutes = 15
	// recurringOccurrences bounds how many records a recurring create
	// expands into.
	recurringOccurrences = 5
)

// Engine resolves classified intents against the record store.
type Engine struct {
	store      store.Store
	classifier classifier.Client
	gateway    notify.Gateway
	logger     logging.Logger
	now        func() time.Time
}

// NewEngine wires a resolution engine.
func NewEngine(st store.Store, cl classifier.Client, gateway notify.Gateway, logger logging.Logger) *Engine {
	if gateway == nil {
		gateway = notify.Nop()
	}
	return &Engine{
		store:      st,
		classifier: cl,
		gateway:    gateway,
		logger:     logging.OrNop(logger),
		now:        time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// HandleUtterance runs the full pipeline for one user message: append to the
// log, classify, resolve, append the outcome. Classifier transport failures
// are recovered into an apologetic "unsupported" outcome, so the returned
// error is reserved for failures of the recovery itself.
func (e *Engine) HandleUtterance(ctx context.Context, log *session.Log, text string, voice bool) (Outcome, error) {
	history := log.Window(session.ContextWindow)
	log.AppendUser(ctx, text, voice)

	structured, err := e.classifier.Classify(ctx, text, history)
	if err != nil {
		var transport *classifier.TransportError
		if !errors.As(err, &transport) {
			return Outcome{}, err
		}
		e.logger.Warn("classifier transport failure, degrading: %v", err)
		structured = classifier.Unavailable()
	}

	outcome := e.Resolve(ctx, structured)
	log.AppendAssistant(ctx, outcome.Message)
	return outcome, nil
}

// Resolve dispatches one structured intent to its handler. Every branch
// terminates in exactly one outcome; no store error escapes as an error
// value.
func (e *Engine) Resolve(ctx context.Context, structured intent.Structured) Outcome {
	e.logger.Debug("resolving intent=%s confidence=%.2f", structured.Intent, structured.Confidence)
	ent := structured.Entities
	switch structured.Intent {
	case intent.CreateEvent:
		return e.createEvent(ctx, ent)
	case intent.CreateReminder, intent.SetReminder:
		return e.createReminder(ctx, ent)
	case intent.GetEvents:
		return e.listEvents(ctx, ent)
	case intent.GetReminders:
		return e.listReminders(ctx, ent)
	case intent.UpdateEvent:
		return e.updateEvent(ctx, ent)
	case intent.DeleteEvent:
		return e.deleteEvent(ctx, ent)
	case intent.UpdateReminder:
		return e.updateReminder(ctx, ent)
	case intent.DeleteReminder:
		return e.deleteReminder(ctx, ent)
	default:
		// general, get_information, clarify, unsupported: surface the
		// classifier's reply as-is.
		text := structured.ResponseText
		if text == "" {
			text = classifier.FallbackResponseText
		}
		return info(text, structured.Intent != intent.Unsupported)
	}
}

// Agenda returns today's events and pending reminders, queried concurrently.
func (e *Engine) Agenda(ctx context.Context) ([]store.Event, []store.Reminder, error) {
	lo, hi := dates.DayBounds(e.now())
	open := false

	var events []store.Event
	var reminders []store.Reminder
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = e.store.EventsByFilter(gctx, store.Filter{StartDate: &lo, EndDate: &hi})
		return err
	})
	g.Go(func() error {
		var err error
		reminders, err = e.store.RemindersByFilter(gctx, store.Filter{StartDate: &lo, EndDate: &hi, Completed: &open})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return events, reminders, nil
}

// singleDay strips multi-day markers so the resolver takes the single-day
// path, as reminders always do.
func singleDay(ent intent.Entities) intent.Entities {
	ent.MultiDay = nil
	ent.DateRange = nil
	return ent
}

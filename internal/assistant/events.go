package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/hemchdev/aura/internal/assistant/intent"
	"github.com/hemchdev/aura/internal/dates"
	"github.com/hemchdev/aura/internal/store"
)

func (e *Engine) createEvent(ctx context.Context, ent intent.Entities) Outcome {
	hasSchedule := intent.HasText(ent.Date) || ent.IsMultiDay() || intent.HasText(ent.DateRange) ||
		intent.HasText(ent.RelativeTime)
	switch {
	case !intent.HasText(ent.Title) && !hasSchedule:
		return failure(OutcomeNotFound, "I need a title and a date to create an event. What should I schedule, and when?")
	case !intent.HasText(ent.Title):
		return failure(OutcomeNotFound, "What should I call this event?")
	case !hasSchedule:
		return failure(OutcomeNotFound, fmt.Sprintf("When should I schedule %q?", *ent.Title))
	}

	resolution := dates.Resolve(ent, e.now())
	event := store.Event{
		Title:       *ent.Title,
		Description: intent.StringOr(ent.Description, ""),
		Location:    intent.StringOr(ent.Location, ""),
		StartTime:   resolution.Start,
		AllDay:      resolution.MultiDay,
	}
	if resolution.MultiDay {
		event.EndTime = resolution.End
	} else {
		minutes := intent.IntOr(ent.DurationMinutes, defaultEventMinutes)
		event.EndTime = resolution.Start.Add(time.Duration(minutes) * time.Minute)
	}

	// A recurring single-day event expands into a bounded series.
	if !resolution.MultiDay && intent.HasText(ent.Recurring) {
		return e.createRecurringEvents(ctx, event, *ent.Recurring, ent)
	}

	created, err := e.store.InsertEvent(ctx, event)
	if err != nil {
		return failure(OutcomeFailed, fmt.Sprintf("I couldn't create the event: %s", err))
	}

	e.scheduleEventNotification(ctx, created, ent)

	return success(OutcomeCreated,
		fmt.Sprintf("I've scheduled %q for %s.", created.Title, formatEventWindow(created)))
}

func (e *Engine) createRecurringEvents(ctx context.Context, template store.Event, token string, ent intent.Entities) Outcome {
	duration := template.EndTime.Sub(template.StartTime)
	var first *store.Event
	count := 0
	for _, start := range dates.ExpandRecurring(token, template.StartTime, recurringOccurrences) {
		event := template
		event.StartTime = start
		event.EndTime = start.Add(duration)
		created, err := e.store.InsertEvent(ctx, event)
		if err != nil {
			if count == 0 {
				return failure(OutcomeFailed, fmt.Sprintf("I couldn't create the event: %s", err))
			}
			e.logger.Warn("recurring expansion stopped after %d events: %v", count, err)
			break
		}
		count++
		if first == nil {
			copied := created
			first = &copied
		}
	}
	e.scheduleEventNotification(ctx, *first, ent)
	return success(OutcomeCreated,
		fmt.Sprintf("I've scheduled %q %s, starting %s (%d occurrences).",
			first.Title, token, formatEventWindow(*first), count))
}

// scheduleEventNotification is fire-and-forget: the record is already
// committed, so a scheduling failure is logged and swallowed. Multi-day
// events get no reminder unless the classifier asked for one explicitly.
func (e *Engine) scheduleEventNotification(ctx context.Context, event store.Event, ent intent.Entities) {
	lead := 0
	switch {
	case !event.AllDay:
		lead = intent.IntOr(ent.ReminderMinutes, defaultLeadMinutes)
	case ent.ReminderMinutes != nil:
		lead = *ent.ReminderMinutes
	default:
		return
	}
	if err := e.gateway.ScheduleEventReminder(ctx, event.ID, event.Title, event.StartTime, lead); err != nil {
		e.logger.Warn("failed to schedule notification for event %s: %v", event.ID, err)
	}
}

func (e *Engine) listEvents(ctx context.Context, ent intent.Entities) Outcome {
	filter := store.Filter{Limit: intent.IntOr(ent.Limit, 0)}
	var dayLabel string
	if intent.HasText(ent.Date) || intent.HasText(ent.RelativeTime) {
		day := dates.Resolve(singleDay(ent), e.now()).Start
		lo, hi := dates.DayBounds(day)
		filter.StartDate = &lo
		filter.EndDate = &hi
		dayLabel = " for " + formatDay(day)
	}

	events, err := e.store.EventsByFilter(ctx, filter)
	if err != nil {
		return failure(OutcomeFailed, fmt.Sprintf("I couldn't fetch your events: %s", err))
	}
	if len(events) == 0 {
		return listed(fmt.Sprintf("You don't have any events%s.", dayLabel))
	}
	return listed(renderEventList(fmt.Sprintf("Here are your events%s:", dayLabel), events))
}

// locateEvents finds update/delete candidates. The search key is the
// explicit searchQuery, else the title; with neither, update falls back to
// today's events while delete refuses to guess.
func (e *Engine) locateEvents(ctx context.Context, ent intent.Entities, allowFallback bool) ([]store.Event, Outcome, bool) {
	var query string
	switch {
	case intent.HasText(ent.SearchQuery):
		query = *ent.SearchQuery
	case intent.HasText(ent.Title):
		query = *ent.Title
	case allowFallback:
		lo, hi := dates.DayBounds(e.now())
		events, err := e.store.EventsByFilter(ctx, store.Filter{StartDate: &lo, EndDate: &hi})
		if err != nil {
			return nil, failure(OutcomeFailed, fmt.Sprintf("I couldn't look up your events: %s", err)), false
		}
		return events, Outcome{}, true
	default:
		return nil, failure(OutcomeNotFound, "Which event do you mean? Give me a few words from its title."), false
	}

	events, err := e.store.SearchEvents(ctx, query)
	if err != nil {
		return nil, failure(OutcomeFailed, fmt.Sprintf("I couldn't look up your events: %s", err)), false
	}
	return events, Outcome{}, true
}

func (e *Engine) updateEvent(ctx context.Context, ent intent.Entities) Outcome {
	candidates, outcome, ok := e.locateEvents(ctx, ent, true)
	if !ok {
		return outcome
	}
	switch len(candidates) {
	case 0:
		return failure(OutcomeNotFound, "I couldn't find a matching event to update.")
	case 1:
	default:
		return clarification(renderEventList(
			fmt.Sprintf("I found %d matching events. Which one should I update?", len(candidates)),
			candidates))
	}
	target := candidates[0]

	patch := store.EventPatch{
		Title:       ent.Title,
		Description: ent.Description,
		Location:    ent.Location,
	}
	if start, changed := e.rescheduledStart(target.StartTime, ent); changed {
		// Shift the end by the same delta so the duration survives.
		end := target.EndTime.Add(start.Sub(target.StartTime))
		patch.StartTime = &start
		patch.EndTime = &end
	}

	updated, err := e.store.UpdateEvent(ctx, target.ID, patch)
	if err != nil {
		return failure(OutcomeFailed, fmt.Sprintf("I couldn't update %q: %s", target.Title, err))
	}

	if patch.StartTime != nil && !updated.AllDay {
		if err := e.gateway.Cancel(ctx, updated.ID); err != nil {
			e.logger.Warn("failed to cancel notification for event %s: %v", updated.ID, err)
		}
		e.scheduleEventNotification(ctx, updated, ent)
	}

	return success(OutcomeUpdated,
		fmt.Sprintf("I've updated %q — now %s.", updated.Title, formatEventWindow(updated)))
}

func (e *Engine) deleteEvent(ctx context.Context, ent intent.Entities) Outcome {
	candidates, outcome, ok := e.locateEvents(ctx, ent, false)
	if !ok {
		return outcome
	}
	switch len(candidates) {
	case 0:
		return failure(OutcomeNotFound, "I couldn't find a matching event to delete.")
	case 1:
	default:
		return clarification(renderEventList(
			fmt.Sprintf("I found %d matching events. Which one should I delete?", len(candidates)),
			candidates))
	}
	target := candidates[0]

	if err := e.store.DeleteEvent(ctx, target.ID); err != nil {
		return failure(OutcomeFailed, fmt.Sprintf("I couldn't delete %q: %s", target.Title, err))
	}
	if err := e.gateway.Cancel(ctx, target.ID); err != nil {
		e.logger.Warn("failed to cancel notification for event %s: %v", target.ID, err)
	}
	return success(OutcomeDeleted, fmt.Sprintf("I've deleted %q.", target.Title))
}

// rescheduledStart computes a new start from partial date/time entities,
// preserving whichever half the user did not mention: a bare time keeps the
// original date, a bare date keeps the original clock time.
func (e *Engine) rescheduledStart(current time.Time, ent intent.Entities) (time.Time, bool) {
	hasDate := intent.HasText(ent.Date) || intent.HasText(ent.RelativeTime)
	hasTime := intent.HasText(ent.Time)
	switch {
	case hasDate && hasTime:
		return dates.Resolve(singleDay(ent), e.now()).Start, true
	case hasTime:
		if t, ok := dates.ApplyClock(current, *ent.Time); ok {
			return t, true
		}
		return current, false
	case hasDate:
		day := dates.Resolve(intent.Entities{Date: ent.Date, RelativeTime: ent.RelativeTime}, e.now()).Start
		return time.Date(day.Year(), day.Month(), day.Day(),
			current.Hour(), current.Minute(), current.Second(), current.Nanosecond(),
			current.Location()), true
	default:
		return current, false
	}
}

package assistant

import (
	"context"
	"fmt"

	"github.com/hemchdev/aura/internal/assistant/intent"
	"github.com/hemchdev/aura/internal/dates"
	"github.com/hemchdev/aura/internal/store"
)

func (e *Engine) createReminder(ctx context.Context, ent intent.Entities) Outcome {
	hasSchedule := intent.HasText(ent.Date) || intent.HasText(ent.RelativeTime)
	switch {
	case !intent.HasText(ent.Title) && !hasSchedule:
		return failure(OutcomeNotFound, "I need to know what to remind you about and when.")
	case !intent.HasText(ent.Title):
		return failure(OutcomeNotFound, "What should the reminder say?")
	case !hasSchedule:
		return failure(OutcomeNotFound, fmt.Sprintf("When should I remind you about %q?", *ent.Title))
	}

	text := intent.StringOr(ent.ReminderText, intent.StringOr(ent.Description, *ent.Title))
	remindAt := dates.Resolve(singleDay(ent), e.now()).Start

	created, err := e.store.InsertReminder(ctx, store.Reminder{
		Title:    *ent.Title,
		Text:     text,
		RemindAt: remindAt,
	})
	if err != nil {
		return failure(OutcomeFailed, fmt.Sprintf("I couldn't create the reminder: %s", err))
	}

	if err := e.gateway.ScheduleReminderAt(ctx, created.ID, created.Title, created.Text, created.RemindAt); err != nil {
		e.logger.Warn("failed to schedule notification for reminder %s: %v", created.ID, err)
	}

	return success(OutcomeCreated,
		fmt.Sprintf("I'll remind you about %q at %s.", created.Title, formatDayTime(created.RemindAt)))
}

func (e *Engine) listReminders(ctx context.Context, ent intent.Entities) Outcome {
	open := false
	filter := store.Filter{Completed: &open, Limit: intent.IntOr(ent.Limit, 0)}
	var dayLabel string
	if intent.HasText(ent.Date) || intent.HasText(ent.RelativeTime) {
		day := dates.Resolve(singleDay(ent), e.now()).Start
		lo, hi := dates.DayBounds(day)
		filter.StartDate = &lo
		filter.EndDate = &hi
		dayLabel = " for " + formatDay(day)
	}

	reminders, err := e.store.RemindersByFilter(ctx, filter)
	if err != nil {
		return failure(OutcomeFailed, fmt.Sprintf("I couldn't fetch your reminders: %s", err))
	}
	if len(reminders) == 0 {
		return listed(fmt.Sprintf("You don't have any pending reminders%s.", dayLabel))
	}
	return listed(renderReminderList(fmt.Sprintf("Here are your reminders%s:", dayLabel), reminders))
}

// locateReminders finds update/delete candidates by searchQuery, title, or
// reminder text. Reminders never fall back to a date window; without a
// usable key the engine asks instead of guessing.
func (e *Engine) locateReminders(ctx context.Context, ent intent.Entities) ([]store.Reminder, Outcome, bool) {
	var query string
	switch {
	case intent.HasText(ent.SearchQuery):
		query = *ent.SearchQuery
	case intent.HasText(ent.Title):
		query = *ent.Title
	case intent.HasText(ent.ReminderText):
		query = *ent.ReminderText
	default:
		return nil, failure(OutcomeNotFound, "Which reminder do you mean? Give me a few words from it."), false
	}

	reminders, err := e.store.SearchReminders(ctx, query)
	if err != nil {
		return nil, failure(OutcomeFailed, fmt.Sprintf("I couldn't look up your reminders: %s", err)), false
	}
	return reminders, Outcome{}, true
}

func (e *Engine) updateReminder(ctx context.Context, ent intent.Entities) Outcome {
	candidates, outcome, ok := e.locateReminders(ctx, ent)
	if !ok {
		return outcome
	}
	switch len(candidates) {
	case 0:
		return failure(OutcomeNotFound, "I couldn't find a matching reminder to update.")
	case 1:
	default:
		return clarification(renderReminderList(
			fmt.Sprintf("I found %d matching reminders. Which one should I update?", len(candidates)),
			candidates))
	}
	target := candidates[0]

	patch := store.ReminderPatch{Title: ent.Title}
	if ent.ReminderText != nil {
		patch.Text = ent.ReminderText
	} else if ent.Description != nil {
		patch.Text = ent.Description
	}
	if remindAt, changed := e.rescheduledStart(target.RemindAt, ent); changed {
		patch.RemindAt = &remindAt
	}

	updated, err := e.store.UpdateReminder(ctx, target.ID, patch)
	if err != nil {
		return failure(OutcomeFailed, fmt.Sprintf("I couldn't update %q: %s", target.Title, err))
	}

	if patch.RemindAt != nil {
		if err := e.gateway.Cancel(ctx, updated.ID); err != nil {
			e.logger.Warn("failed to cancel notification for reminder %s: %v", updated.ID, err)
		}
		if err := e.gateway.ScheduleReminderAt(ctx, updated.ID, updated.Title, updated.Text, updated.RemindAt); err != nil {
			e.logger.Warn("failed to reschedule notification for reminder %s: %v", updated.ID, err)
		}
	}

	return success(OutcomeUpdated,
		fmt.Sprintf("I've updated %q — now set for %s.", updated.Title, formatDayTime(updated.RemindAt)))
}

func (e *Engine) deleteReminder(ctx context.Context, ent intent.Entities) Outcome {
	candidates, outcome, ok := e.locateReminders(ctx, ent)
	if !ok {
		return outcome
	}
	switch len(candidates) {
	case 0:
		return failure(OutcomeNotFound, "I couldn't find a matching reminder to delete.")
	case 1:
	default:
		return clarification(renderReminderList(
			fmt.Sprintf("I found %d matching reminders. Which one should I delete?", len(candidates)),
			candidates))
	}
	target := candidates[0]

	if err := e.store.DeleteReminder(ctx, target.ID); err != nil {
		return failure(OutcomeFailed, fmt.Sprintf("I couldn't delete %q: %s", target.Title, err))
	}
	if err := e.gateway.Cancel(ctx, target.ID); err != nil {
		e.logger.Warn("failed to cancel notification for reminder %s: %v", target.ID, err)
	}
	return success(OutcomeDeleted, fmt.Sprintf("I've deleted the reminder %q.", target.Title))
}

package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/hemchdev/aura/internal/store"
)

func formatDayTime(t time.Time) string {
	return t.Format("Mon, Jan 2 at 3:04 PM")
}

func formatDay(t time.Time) string {
	return t.Format("Mon, Jan 2")
}

// formatEventWindow renders an event's resolved window: a clock interval for
// timed events, a date span for all-day ones.
func formatEventWindow(event store.Event) string {
	if event.AllDay {
		startDay := event.StartTime.Format("2006-01-02")
		endDay := event.EndTime.Format("2006-01-02")
		if startDay == endDay {
			return formatDay(event.StartTime) + " (all day)"
		}
		return fmt.Sprintf("%s – %s (all day)", formatDay(event.StartTime), formatDay(event.EndTime))
	}
	return formatDayTime(event.StartTime)
}

func renderEventList(header string, events []store.Event) string {
	var b strings.Builder
	b.WriteString(header)
	for i, event := range events {
		b.WriteString(fmt.Sprintf("\n%d. %s — %s", i+1, event.Title, formatEventWindow(event)))
		if event.Location != "" {
			b.WriteString(" @ " + event.Location)
		}
		if event.Description != "" {
			b.WriteString(" (" + event.Description + ")")
		}
	}
	return b.String()
}

func renderReminderList(header string, reminders []store.Reminder) string {
	var b strings.Builder
	b.WriteString(header)
	for i, reminder := range reminders {
		b.WriteString(fmt.Sprintf("\n%d. %s — %s", i+1, reminder.Title, formatDayTime(reminder.RemindAt)))
		if reminder.Text != "" && reminder.Text != reminder.Title {
			b.WriteString(" (" + reminder.Text + ")")
		}
	}
	return b.String()
}

// Package ics renders stored events as an iCalendar document, so a user's
// schedule can be imported into any standard calendar client.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/hemchdev/aura/internal/store"
)

const prodID = "-//hemchdev//Aura//EN"

// Export serializes events into a VCALENDAR payload. All-day events are
// emitted with date-only DTSTART/DTEND per RFC 5545; timed events carry UTC
// timestamps.
func Export(events []store.Event) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)

	for _, event := range events {
		uid := event.ID
		if uid == "" {
			uid = fmt.Sprintf("%d@aura", event.StartTime.UnixNano())
		}
		ve := cal.AddEvent(uid)
		ve.SetSummary(event.Title)
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}
		if event.Location != "" {
			ve.SetLocation(event.Location)
		}
		if event.AllDay {
			ve.SetAllDayStartAt(event.StartTime)
			// DTEND is exclusive for date-only values, so round the
			// inclusive stored end up to the next day.
			ve.SetAllDayEndAt(dayAfter(event.EndTime))
		} else {
			ve.SetStartAt(event.StartTime.UTC())
			ve.SetEndAt(event.EndTime.UTC())
		}
	}
	return cal.Serialize()
}

func dayAfter(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}

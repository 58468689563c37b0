package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ical "github.com/arran4/golang-ical"

	"github.com/hemchdev/aura/internal/store"
)

func TestExportTimedEvent(t *testing.T) {
	payload := Export([]store.Event{{
		ID:        "evt-1",
		Title:     "Morning sync",
		Location:  "Room 4",
		StartTime: time.Date(2025, 7, 14, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 7, 14, 11, 0, 0, 0, time.UTC),
	}})

	assert.Contains(t, payload, "BEGIN:VCALENDAR")
	assert.Contains(t, payload, "SUMMARY:Morning sync")
	assert.Contains(t, payload, "LOCATION:Room 4")
	assert.Contains(t, payload, "UID:evt-1")
	assert.Contains(t, payload, "20250714T100000Z")

	cal, err := ical.ParseCalendar(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)
}

func TestExportAllDaySpanUsesExclusiveEnd(t *testing.T) {
	payload := Export([]store.Event{{
		ID:        "evt-2",
		Title:     "Vacation",
		AllDay:    true,
		StartTime: time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 7, 13, 23, 59, 59, 999_000_000, time.UTC),
	}})

	assert.Contains(t, payload, "DTSTART;VALUE=DATE:20250707")
	assert.Contains(t, payload, "DTEND;VALUE=DATE:20250714")
}

func TestExportEmpty(t *testing.T) {
	payload := Export(nil)
	assert.Contains(t, payload, "BEGIN:VCALENDAR")
	assert.NotContains(t, payload, "BEGIN:VEVENT")
}

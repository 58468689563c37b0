package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandRecurring(t *testing.T) {
	start := time.Date(2025, 7, 7, 9, 0, 0, 0, time.UTC) // Monday

	daily := ExpandRecurring("daily", start, 3)
	require.Len(t, daily, 3)
	assert.Equal(t, start, daily[0])
	assert.Equal(t, start.AddDate(0, 0, 1), daily[1])
	assert.Equal(t, start.AddDate(0, 0, 2), daily[2])

	weekly := ExpandRecurring("weekly", start, 2)
	require.Len(t, weekly, 2)
	assert.Equal(t, start.AddDate(0, 0, 7), weekly[1])

	monthly := ExpandRecurring("monthly", start, 2)
	require.Len(t, monthly, 2)
	assert.Equal(t, start.AddDate(0, 1, 0), monthly[1])

	weekdays := ExpandRecurring("weekdays", start.AddDate(0, 0, 4), 2) // Friday
	require.Len(t, weekdays, 2)
	assert.Equal(t, time.Monday, weekdays[1].Weekday(), "weekend skipped")
}

func TestExpandRecurringUnknownToken(t *testing.T) {
	start := time.Date(2025, 7, 7, 9, 0, 0, 0, time.UTC)
	got := ExpandRecurring("fortnightly-ish", start, 5)
	require.Len(t, got, 1)
	assert.Equal(t, start, got[0])
}

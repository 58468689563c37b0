// Package dates resolves natural-language temporal entities into concrete
// instants and spans. Every function here is total: malformed input falls
// back to the reference time instead of returning an error, so conversation
// flow never breaks on a bad date.
package dates

import (
	"strconv"
	"strings"
	"time"

	"github.com/hemchdev/aura/internal/assistant/intent"
)

// Resolution is a resolved schedule for one intent.
type Resolution struct {
	Start    time.Time
	End      time.Time
	MultiDay bool
}

// Named date-range tokens the classifier may emit.
const (
	RangeThisWeek   = "this_week"
	RangeNextWeek   = "next_week"
	RangeNext3Weeks = "next_3_weeks"
	RangeThisMonth  = "this_month"
	RangeNextMonth  = "next_month"
)

// Resolve converts the temporal entities of a classification into a concrete
// start (and, for multi-day spans, end) relative to now.
func Resolve(ent intent.Entities, now time.Time) Resolution {
	if ent.IsMultiDay() && intent.HasText(ent.DateRange) {
		return resolveRange(ent, now)
	}
	return Resolution{Start: resolveSingle(ent, now)}
}

func resolveRange(ent intent.Entities, now time.Time) Resolution {
	var start, end time.Time
	switch strings.ToLower(strings.TrimSpace(*ent.DateRange)) {
	case RangeThisWeek:
		start = startOfWeek(now)
		end = start.AddDate(0, 0, 6)
	case RangeNextWeek:
		start = startOfWeek(now).AddDate(0, 0, 7)
		end = start.AddDate(0, 0, 6)
	case RangeNext3Weeks:
		start = now.AddDate(0, 0, 1)
		end = start.AddDate(0, 0, 21)
	case RangeThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, -1)
	case RangeNextMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
		end = start.AddDate(0, 1, -1)
	default:
		// Unrecognized token: honor an explicit endDate if one was
		// extracted, otherwise degrade to a single day.
		if intent.HasText(ent.EndDate) {
			endDate, ok := ParseDate(*ent.EndDate, now.Location())
			if ok {
				start = now
				if intent.HasText(ent.Date) {
					if d, ok := ParseDate(*ent.Date, now.Location()); ok {
						start = d
					}
				}
				end = endDate
				break
			}
		}
		return Resolution{Start: resolveSingle(ent, now)}
	}
	if end.Before(start) {
		end = start
	}
	return Resolution{
		Start:    StartOfDay(start),
		End:      EndOfDay(end),
		MultiDay: true,
	}
}

func resolveSingle(ent intent.Entities, now time.Time) time.Time {
	start := now
	dated := false
	switch {
	case ent.RelativeTime != nil && strings.EqualFold(*ent.RelativeTime, "today"):
		dated = true
	case ent.RelativeTime != nil && strings.EqualFold(*ent.RelativeTime, "tomorrow"):
		start = now.AddDate(0, 0, 1)
		dated = true
	case intent.HasText(ent.Date):
		if d, ok := ParseDate(*ent.Date, now.Location()); ok {
			start = d
			dated = true
		}
	}

	if intent.HasText(ent.Time) {
		if t, ok := ApplyClock(start, *ent.Time); ok {
			return t
		}
	}
	if dated {
		// No usable time of day: default to noon.
		return time.Date(start.Year(), start.Month(), start.Day(), 12, 0, 0, 0, start.Location())
	}
	return start
}

// ParseDate parses an explicit date entity. It accepts YYYY-MM-DD and
// RFC 3339 timestamps; ok is false when neither form matches.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), true
	}
	return time.Time{}, false
}

// ApplyClock sets the HH:MM clock of hhmm onto the calendar day of base.
func ApplyClock(base time.Time, hhmm string) (time.Time, bool) {
	parts := strings.SplitN(strings.TrimSpace(hhmm), ":", 2)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, false
	}
	return time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location()), true
}

// StartOfDay floors t to midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay ceils t to 23:59:59.999.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// DayBounds returns the inclusive [StartOfDay, EndOfDay] window of t, used
// to build store filters for "events on <date>" queries.
func DayBounds(t time.Time) (time.Time, time.Time) {
	return StartOfDay(t), EndOfDay(t)
}

func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(t.AddDate(0, 0, -(weekday - 1)))
}

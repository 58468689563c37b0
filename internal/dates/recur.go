package dates

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// ExpandRecurring lists up to count occurrences of a recurring schedule
// starting at start. Recognized tokens: daily, weekly, monthly, weekdays.
// Unknown tokens yield just the start occurrence, keeping the pipeline total.
func ExpandRecurring(token string, start time.Time, count int) []time.Time {
	if count <= 0 {
		count = 1
	}
	opts := rrule.ROption{Dtstart: start, Count: count}
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "daily":
		opts.Freq = rrule.DAILY
	case "weekly":
		opts.Freq = rrule.WEEKLY
	case "monthly":
		opts.Freq = rrule.MONTHLY
	case "weekdays":
		opts.Freq = rrule.DAILY
		opts.Byweekday = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR}
	default:
		return []time.Time{start}
	}
	rule, err := rrule.NewRRule(opts)
	if err != nil {
		return []time.Time{start}
	}
	occurrences := rule.All()
	if len(occurrences) == 0 {
		return []time.Time{start}
	}
	return occurrences
}

// Package intent defines the structured classification result the LLM
// produces for a user utterance.
package intent

// Name is the classified purpose of an utterance.
type Name string

const (
	CreateEvent    Name = "create_event"
	SetReminder    Name = "set_reminder"
	CreateReminder Name = "create_reminder"
	GetInformation Name = "get_information"
	GetEvents      Name = "get_events"
	GetReminders   Name = "get_reminders"
	UpdateEvent    Name = "update_event"
	DeleteEvent    Name = "delete_event"
	UpdateReminder Name = "update_reminder"
	DeleteReminder Name = "delete_reminder"
	Clarify        Name = "clarify"
	Unsupported    Name = "unsupported"
	General        Name = "general"
)

// Known reports whether n is part of the classifier vocabulary.
func (n Name) Known() bool {
	switch n {
	case CreateEvent, SetReminder, CreateReminder, GetInformation, GetEvents,
		GetReminders, UpdateEvent, DeleteEvent, UpdateReminder, DeleteReminder,
		Clarify, Unsupported, General:
		return true
	}
	return false
}

// Entities is the sparse field bag extracted alongside the intent. Every
// field is a pointer so that absence can be told apart from an explicit
// zero value.
type Entities struct {
	Title           *string `json:"title,omitempty"`
	Date            *string `json:"date,omitempty"` // YYYY-MM-DD
	Time            *string `json:"time,omitempty"` // HH:MM, 24h
	RelativeTime    *string `json:"relativeTime,omitempty"`
	Description     *string `json:"description,omitempty"`
	Location        *string `json:"location,omitempty"`
	ReminderText    *string `json:"reminderText,omitempty"`
	ReminderMinutes *int    `json:"reminderMinutes,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	SearchQuery     *string `json:"searchQuery,omitempty"`
	DateRange       *string `json:"dateRange,omitempty"`
	MultiDay        *bool   `json:"multiDay,omitempty"`
	EndDate         *string `json:"endDate,omitempty"`
	Limit           *int    `json:"limit,omitempty"`
	Priority        *string `json:"priority,omitempty"`
	Recurring       *string `json:"recurring,omitempty"`
}

// IsMultiDay reports whether the classifier flagged a multi-day span.
func (e Entities) IsMultiDay() bool {
	return e.MultiDay != nil && *e.MultiDay
}

// Structured is the full classification payload for one utterance.
type Structured struct {
	Intent       Name     `json:"intent"`
	Entities     Entities `json:"entities"`
	Confidence   float64  `json:"confidence"`
	ResponseText string   `json:"responseText"`
}

// String-pointer helpers used across the resolution pipeline.

// StringOr returns *p, or fallback when p is nil.
func StringOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

// IntOr returns *p, or fallback when p is nil.
func IntOr(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}

// HasText reports whether p holds a non-empty string.
func HasText(p *string) bool {
	return p != nil && *p != ""
}

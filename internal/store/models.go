package store

import "time"

// Event is a calendar entry owned by a single user.
type Event struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	AllDay      bool      `json:"all_day"`
	Location    string    `json:"location"`
}

// Reminder is a dated to-do owned by a single user. CompletedAt is non-nil
// exactly when Completed is true.
type Reminder struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	RemindAt    time.Time  `json:"remind_at"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// EventPatch is a partial update; nil fields are left untouched.
type EventPatch struct {
	Title       *string
	Description *string
	Location    *string
	StartTime   *time.Time
	EndTime     *time.Time
	AllDay      *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Location == nil &&
		p.StartTime == nil && p.EndTime == nil && p.AllDay == nil
}

// ReminderPatch is a partial update; nil fields are left untouched.
// Setting Completed to true stamps CompletedAt; setting it to false clears
// it. The pairing is maintained by the store, not the caller.
type ReminderPatch struct {
	Title     *string
	Text      *string
	RemindAt  *time.Time
	Completed *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p ReminderPatch) IsEmpty() bool {
	return p.Title == nil && p.Text == nil && p.RemindAt == nil && p.Completed == nil
}

// Apply copies the patch onto e.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.AllDay != nil {
		e.AllDay = *p.AllDay
	}
}

// Apply copies the patch onto r, keeping the completed/completedAt invariant.
func (p ReminderPatch) Apply(r *Reminder, now time.Time) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Text != nil {
		r.Text = *p.Text
	}
	if p.RemindAt != nil {
		r.RemindAt = *p.RemindAt
	}
	if p.Completed != nil {
		r.Completed = *p.Completed
		if r.Completed {
			stamp := now
			r.CompletedAt = &stamp
		} else {
			r.CompletedAt = nil
		}
	}
}

// Package postgres implements the record store directly against PostgreSQL,
// for self-hosted deployments that skip the Supabase API layer.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/hemchdev/aura/internal/session"
	"github.com/hemchdev/aura/internal/store"
)

// Store is a store.Store (and session.Recorder) backed by a *sql.DB.
type Store struct {
	db    *sql.DB
	owner string
	now   func() time.Time
}

// Open connects to the database, verifies the connection, and returns a
// store scoped to the session owner.
func Open(databaseURL string, sess store.SessionContext) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewWithDB(db, sess), nil
}

// NewWithDB wraps an existing connection pool.
func NewWithDB(db *sql.DB, sess store.SessionContext) *Store {
	return &Store{db: db, owner: sess.UserID, now: time.Now}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) InsertEvent(ctx context.Context, event store.Event) (store.Event, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.OwnerID = s.owner
	if event.EndTime.Before(event.StartTime) {
		event.EndTime = event.StartTime
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, owner_id, title, description, start_time, end_time, all_day, location)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.OwnerID, event.Title, event.Description,
		event.StartTime, event.EndTime, event.AllDay, event.Location,
	)
	if err != nil {
		return store.Event{}, store.NewError("create event", err)
	}
	return event, nil
}

func (s *Store) UpdateEvent(ctx context.Context, id string, patch store.EventPatch) (store.Event, error) {
	set, args := []string{}, []any{}
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.StartTime != nil {
		add("start_time", *patch.StartTime)
	}
	if patch.EndTime != nil {
		add("end_time", *patch.EndTime)
	}
	if patch.AllDay != nil {
		add("all_day", *patch.AllDay)
	}
	if len(set) == 0 {
		return s.GetEvent(ctx, id)
	}
	args = append(args, id, s.owner)
	query := fmt.Sprintf(
		`UPDATE events SET %s WHERE id = $%d AND owner_id = $%d
		 RETURNING id, owner_id, title, description, start_time, end_time, all_day, location`,
		strings.Join(set, ", "), len(args)-1, len(args),
	)
	event, err := scanEvent(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return store.Event{}, &store.Error{Op: "update event", Message: "event not found", Err: store.ErrNotFound}
	}
	if err != nil {
		return store.Event{}, store.NewError("update event", err)
	}
	return event, nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM events WHERE id = $1 AND owner_id = $2`, id, s.owner)
	if err != nil {
		return store.NewError("delete event", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &store.Error{Op: "delete event", Message: "event not found", Err: store.ErrNotFound}
	}
	return nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (store.Event, error) {
	event, err := scanEvent(s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, start_time, end_time, all_day, location
		 FROM events WHERE id = $1 AND owner_id = $2`, id, s.owner))
	if err == sql.ErrNoRows {
		return store.Event{}, &store.Error{Op: "get event", Message: "event not found", Err: store.ErrNotFound}
	}
	if err != nil {
		return store.Event{}, store.NewError("get event", err)
	}
	return event, nil
}

func (s *Store) EventsByFilter(ctx context.Context, filter store.Filter) ([]store.Event, error) {
	where, args := []string{"owner_id = $1"}, []any{s.owner}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where = append(where, fmt.Sprintf("start_time >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where = append(where, fmt.Sprintf("start_time <= $%d", len(args)))
	}
	query := fmt.Sprintf(
		`SELECT id, owner_id, title, description, start_time, end_time, all_day, location
		 FROM events WHERE %s ORDER BY start_time ASC`, strings.Join(where, " AND "))
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return s.queryEvents(ctx, "list events", query, args...)
}

func (s *Store) SearchEvents(ctx context.Context, query string) ([]store.Event, error) {
	pattern := "%" + query + "%"
	return s.queryEvents(ctx, "search events",
		`SELECT id, owner_id, title, description, start_time, end_time, all_day, location
		 FROM events
		 WHERE owner_id = $1 AND (title ILIKE $2 OR description ILIKE $2 OR location ILIKE $2)
		 ORDER BY start_time ASC`,
		s.owner, pattern)
}

func (s *Store) queryEvents(ctx context.Context, op, query string, args ...any) ([]store.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewError(op, err)
	}
	defer func() { _ = rows.Close() }()
	var out []store.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, store.NewError(op, err)
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewError(op, err)
	}
	return out, nil
}

func (s *Store) InsertReminder(ctx context.Context, reminder store.Reminder) (store.Reminder, error) {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	reminder.OwnerID = s.owner
	if reminder.Text == "" {
		reminder.Text = reminder.Title
	}
	if reminder.Completed && reminder.CompletedAt == nil {
		stamp := s.now()
		reminder.CompletedAt = &stamp
	}
	if !reminder.Completed {
		reminder.CompletedAt = nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (id, owner_id, title, text, remind_at, completed, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		reminder.ID, reminder.OwnerID, reminder.Title, reminder.Text,
		reminder.RemindAt, reminder.Completed, reminder.CompletedAt,
	)
	if err != nil {
		return store.Reminder{}, store.NewError("create reminder", err)
	}
	return reminder, nil
}

func (s *Store) UpdateReminder(ctx context.Context, id string, patch store.ReminderPatch) (store.Reminder, error) {
	set, args := []string{}, []any{}
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Text != nil {
		add("text", *patch.Text)
	}
	if patch.RemindAt != nil {
		add("remind_at", *patch.RemindAt)
	}
	if patch.Completed != nil {
		add("completed", *patch.Completed)
		if *patch.Completed {
			add("completed_at", s.now())
		} else {
			add("completed_at", nil)
		}
	}
	if len(set) == 0 {
		return s.GetReminder(ctx, id)
	}
	args = append(args, id, s.owner)
	query := fmt.Sprintf(
		`UPDATE reminders SET %s WHERE id = $%d AND owner_id = $%d
		 RETURNING id, owner_id, title, text, remind_at, completed, completed_at`,
		strings.Join(set, ", "), len(args)-1, len(args),
	)
	reminder, err := scanReminder(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return store.Reminder{}, &store.Error{Op: "update reminder", Message: "reminder not found", Err: store.ErrNotFound}
	}
	if err != nil {
		return store.Reminder{}, store.NewError("update reminder", err)
	}
	return reminder, nil
}

func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE id = $1 AND owner_id = $2`, id, s.owner)
	if err != nil {
		return store.NewError("delete reminder", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &store.Error{Op: "delete reminder", Message: "reminder not found", Err: store.ErrNotFound}
	}
	return nil
}

func (s *Store) GetReminder(ctx context.Context, id string) (store.Reminder, error) {
	reminder, err := scanReminder(s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, text, remind_at, completed, completed_at
		 FROM reminders WHERE id = $1 AND owner_id = $2`, id, s.owner))
	if err == sql.ErrNoRows {
		return store.Reminder{}, &store.Error{Op: "get reminder", Message: "reminder not found", Err: store.ErrNotFound}
	}
	if err != nil {
		return store.Reminder{}, store.NewError("get reminder", err)
	}
	return reminder, nil
}

func (s *Store) RemindersByFilter(ctx context.Context, filter store.Filter) ([]store.Reminder, error) {
	where, args := []string{"owner_id = $1"}, []any{s.owner}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where = append(where, fmt.Sprintf("remind_at >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where = append(where, fmt.Sprintf("remind_at <= $%d", len(args)))
	}
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		where = append(where, fmt.Sprintf("completed = $%d", len(args)))
	}
	query := fmt.Sprintf(
		`SELECT id, owner_id, title, text, remind_at, completed, completed_at
		 FROM reminders WHERE %s ORDER BY remind_at ASC`, strings.Join(where, " AND "))
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return s.queryReminders(ctx, "list reminders", query, args...)
}

func (s *Store) SearchReminders(ctx context.Context, query string) ([]store.Reminder, error) {
	pattern := "%" + query + "%"
	return s.queryReminders(ctx, "search reminders",
		`SELECT id, owner_id, title, text, remind_at, completed, completed_at
		 FROM reminders
		 WHERE owner_id = $1 AND (title ILIKE $2 OR text ILIKE $2)
		 ORDER BY remind_at ASC`,
		s.owner, pattern)
}

func (s *Store) queryReminders(ctx context.Context, op, query string, args ...any) ([]store.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewError(op, err)
	}
	defer func() { _ = rows.Close() }()
	var out []store.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, store.NewError(op, err)
		}
		out = append(out, reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewError(op, err)
	}
	return out, nil
}

// AppendMessage persists one conversation message; the log is append-only.
func (s *Store) AppendMessage(ctx context.Context, ownerID string, msg session.Message) error {
	var repliesTo any
	if msg.RepliesTo != "" {
		repliesTo = msg.RepliesTo
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, owner_id, role, content, created_at, voice_origin, replies_to)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		msg.ID, ownerID, string(msg.Role), msg.Content, msg.Timestamp, msg.VoiceOrigin, repliesTo,
	)
	if err != nil {
		return store.NewError("append message", err)
	}
	return nil
}

// RecentMessages returns the newest limit messages in chronological order.
func (s *Store) RecentMessages(ctx context.Context, ownerID string, limit int) ([]session.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, created_at, voice_origin, COALESCE(replies_to::text, '')
		 FROM (
		     SELECT * FROM messages WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2
		 ) recent ORDER BY created_at ASC`,
		ownerID, limit,
	)
	if err != nil {
		return nil, store.NewError("load messages", err)
	}
	defer func() { _ = rows.Close() }()
	var out []session.Message
	for rows.Next() {
		var msg session.Message
		var role string
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &msg.Timestamp, &msg.VoiceOrigin, &msg.RepliesTo); err != nil {
			return nil, store.NewError("load messages", err)
		}
		msg.Role = session.Role(role)
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewError("load messages", err)
	}
	return out, nil
}

// DeleteMessages removes the given message ids for the owner.
func (s *Store) DeleteMessages(ctx context.Context, ownerID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := []any{ownerID}
	for i, id := range ids {
		args = append(args, id)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM messages WHERE owner_id = $1 AND id IN (%s)`, strings.Join(placeholders, ", ")),
		args...,
	)
	if err != nil {
		return store.NewError("delete messages", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (store.Event, error) {
	var event store.Event
	err := row.Scan(&event.ID, &event.OwnerID, &event.Title, &event.Description,
		&event.StartTime, &event.EndTime, &event.AllDay, &event.Location)
	return event, err
}

func scanReminder(row rowScanner) (store.Reminder, error) {
	var reminder store.Reminder
	var completedAt sql.NullTime
	err := row.Scan(&reminder.ID, &reminder.OwnerID, &reminder.Title, &reminder.Text,
		&reminder.RemindAt, &reminder.Completed, &completedAt)
	if completedAt.Valid {
		reminder.CompletedAt = &completedAt.Time
	}
	return reminder, err
}

var _ store.Store = (*Store)(nil)
var _ session.Recorder = (*Store)(nil)

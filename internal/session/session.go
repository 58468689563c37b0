// Package session holds the in-memory conversation state: an ordered message
// log with reply pairing, persisted append-only through a Recorder.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hemchdev/aura/internal/logging"
)

// Role tags who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn. RepliesTo links an assistant reply to
// the user message that triggered it; the link is set at append time so
// cascade deletes never have to guess from position.
type Message struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	VoiceOrigin bool      `json:"voice_origin"`
	RepliesTo   string    `json:"replies_to,omitempty"`
}

// Recorder persists the message log externally. Implementations must be safe
// for concurrent use; appends are atomic and chronological.
type Recorder interface {
	AppendMessage(ctx context.Context, ownerID string, msg Message) error
	// RecentMessages returns the newest limit messages, oldest first.
	RecentMessages(ctx context.Context, ownerID string, limit int) ([]Message, error)
	DeleteMessages(ctx context.Context, ownerID string, ids []string) error
}

const (
	// DefaultLoadWindow is how much history a fresh session pulls in.
	DefaultLoadWindow = 50
	// ContextWindow is how many trailing turns feed the classifier.
	ContextWindow = 10
)

// Log is the mutable conversation state for one user. Appends are serialized;
// each append is atomic with respect to readers.
type Log struct {
	mu       sync.Mutex
	ownerID  string
	messages []Message
	recorder Recorder
	logger   logging.Logger
	now      func() time.Time
}

// NewLog creates an empty conversation log. recorder may be nil, in which
// case the log is memory-only.
func NewLog(ownerID string, recorder Recorder, logger logging.Logger) *Log {
	return &Log{
		ownerID:  ownerID,
		recorder: recorder,
		logger:   logging.OrNop(logger),
		now:      time.Now,
	}
}

// SetClock overrides the timestamp source, for tests.
func (l *Log) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Restore loads the most recent history from the recorder.
func (l *Log) Restore(ctx context.Context) error {
	if l.recorder == nil {
		return nil
	}
	history, err := l.recorder.RecentMessages(ctx, l.ownerID, DefaultLoadWindow)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = history
	return nil
}

// AppendUser appends a user message and returns it.
func (l *Log) AppendUser(ctx context.Context, content string, voice bool) Message {
	l.mu.Lock()
	msg := Message{
		ID:          uuid.NewString(),
		Role:        RoleUser,
		Content:     content,
		Timestamp:   l.now(),
		VoiceOrigin: voice,
	}
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
	l.record(ctx, msg)
	return msg
}

// AppendAssistant appends an assistant reply. When the preceding message is
// a user message, the reply is paired to it.
func (l *Log) AppendAssistant(ctx context.Context, content string) Message {
	l.mu.Lock()
	msg := Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: l.now(),
	}
	if n := len(l.messages); n > 0 && l.messages[n-1].Role == RoleUser {
		msg.RepliesTo = l.messages[n-1].ID
	}
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
	l.record(ctx, msg)
	return msg
}

func (l *Log) record(ctx context.Context, msg Message) {
	if l.recorder == nil {
		return
	}
	if err := l.recorder.AppendMessage(ctx, l.ownerID, msg); err != nil {
		l.logger.Warn("failed to persist message %s: %v", msg.ID, err)
	}
}

// Messages returns a copy of the full in-memory log, oldest first.
func (l *Log) Messages() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Window returns the trailing n messages, oldest first.
func (l *Log) Window(n int) []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n >= len(l.messages) {
		out := make([]Message, len(l.messages))
		copy(out, l.messages)
		return out
	}
	out := make([]Message, n)
	copy(out, l.messages[len(l.messages)-n:])
	return out
}

// Delete removes a message and its paired counterpart: deleting a user
// message also removes the assistant reply linked to it, and deleting an
// assistant reply also removes the user message it answered. The ids of all
// removed messages are returned.
func (l *Log) Delete(ctx context.Context, id string) []string {
	l.mu.Lock()
	doomed := map[string]bool{}
	for _, msg := range l.messages {
		if msg.ID == id {
			doomed[id] = true
			switch msg.Role {
			case RoleUser:
				for _, candidate := range l.messages {
					if candidate.Role == RoleAssistant && candidate.RepliesTo == id {
						doomed[candidate.ID] = true
					}
				}
			case RoleAssistant:
				if msg.RepliesTo != "" {
					doomed[msg.RepliesTo] = true
				}
			}
			break
		}
	}
	if len(doomed) == 0 {
		l.mu.Unlock()
		return nil
	}
	kept := l.messages[:0]
	removed := make([]string, 0, len(doomed))
	for _, msg := range l.messages {
		if doomed[msg.ID] {
			removed = append(removed, msg.ID)
			continue
		}
		kept = append(kept, msg)
	}
	l.messages = kept
	l.mu.Unlock()

	if l.recorder != nil {
		if err := l.recorder.DeleteMessages(ctx, l.ownerID, removed); err != nil {
			l.logger.Warn("failed to delete persisted messages: %v", err)
		}
	}
	return removed
}

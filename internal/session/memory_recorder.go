package session

import (
	"context"
	"sync"
)

// MemoryRecorder is a Recorder for tests and memory-only mode.
type MemoryRecorder struct {
	mu     sync.Mutex
	byUser map[string][]Message
}

// NewMemoryRecorder constructs an empty recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{byUser: make(map[string][]Message)}
}

func (r *MemoryRecorder) AppendMessage(_ context.Context, ownerID string, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[ownerID] = append(r.byUser[ownerID], msg)
	return nil
}

func (r *MemoryRecorder) RecentMessages(_ context.Context, ownerID string, limit int) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.byUser[ownerID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]Message, len(all))
	copy(out, all)
	return out, nil
}

func (r *MemoryRecorder) DeleteMessages(_ context.Context, ownerID string, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}
	kept := r.byUser[ownerID][:0]
	for _, msg := range r.byUser[ownerID] {
		if !doomed[msg.ID] {
			kept = append(kept, msg)
		}
	}
	r.byUser[ownerID] = kept
	return nil
}

var _ Recorder = (*MemoryRecorder)(nil)

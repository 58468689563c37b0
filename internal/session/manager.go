package session

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hemchdev/aura/internal/logging"
)

// Manager hands out per-user conversation logs, keeping the most recently
// active ones warm in an LRU cache. Evicted sessions are rebuilt from the
// recorder on next access.
type Manager struct {
	mu       sync.Mutex
	cache    *lru.Cache[string, *Log]
	recorder Recorder
	logger   logging.Logger
}

// NewManager creates a session manager holding up to capacity live sessions.
func NewManager(capacity int, recorder Recorder, logger logging.Logger) (*Manager, error) {
	if capacity <= 0 {
		capacity = 32
	}
	cache, err := lru.New[string, *Log](capacity)
	if err != nil {
		return nil, err
	}
	return &Manager{
		cache:    cache,
		recorder: recorder,
		logger:   logging.OrNop(logger),
	}, nil
}

// Get returns the live session for a user, restoring history when the
// session is not cached.
func (m *Manager) Get(ctx context.Context, ownerID string) *Log {
	m.mu.Lock()
	defer m.mu.Unlock()
	if log, ok := m.cache.Get(ownerID); ok {
		return log
	}
	log := NewLog(ownerID, m.recorder, m.logger)
	if err := log.Restore(ctx); err != nil {
		m.logger.Warn("failed to restore session for %s: %v", ownerID, err)
	}
	m.cache.Add(ownerID, log)
	return log
}

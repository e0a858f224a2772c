package cart

import (
	"context"
	"sync"
	"time"
)

// Manager hands out one Store per session id. A session's first access loads
// its persisted items from storage; later accesses return the same instance
// and refresh its idle clock. Sessions untouched for longer than the eviction
// window are dropped by EvictIdle, so the in-process map tracks the lifetime
// of the persisted keys instead of growing for the life of the process.
type Manager struct {
	mu      sync.Mutex
	stores  map[string]*session
	storage Storage
	now     func() time.Time
}

type session struct {
	store    *Store
	lastSeen time.Time
}

// NewManager creates a manager over the given storage adapter
func NewManager(storage Storage) *Manager {
	return &Manager{
		stores:  make(map[string]*session),
		storage: storage,
		now:     time.Now,
	}
}

// Get returns the store for the session, creating and loading it on first use.
func (m *Manager) Get(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.stores[sessionID]; ok {
		sess.lastSeen = m.now()
		return sess.store
	}
	s := NewStore(ctx, sessionID, m.storage)
	m.stores[sessionID] = &session{store: s, lastSeen: m.now()}
	return s
}

// EvictIdle drops every session untouched for longer than maxIdle and
// returns the number evicted. Persisted items are untouched; an evicted
// session that returns before its storage key expires reloads them.
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-maxIdle)
	evicted := 0
	for id, sess := range m.stores {
		if sess.lastSeen.Before(cutoff) {
			delete(m.stores, id)
			evicted++
		}
	}
	return evicted
}

// ActiveSessions returns the number of sessions with a live store
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

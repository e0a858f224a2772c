package wishlist

import (
	"context"
	"sync"
	"time"
)

// Entry is one saved product+variant selection. VariantID is empty for
// products without variants. Unlike cart lines there is no quantity.
type Entry struct {
	ProductID     string   `json:"product_id"`
	VariantID     string   `json:"variant_id,omitempty"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Image         string   `json:"image,omitempty"`
}

// Storage persists a session's wishlist entries
type Storage interface {
	Load(ctx context.Context, key string) ([]Entry, error)
	Save(ctx context.Context, key string, entries []Entry) error
}

// Store holds the wishlist for one session: an ordered set of entries keyed
// by (product, variant). Mutations persist through the injected storage, and
// all operations are silent about unknown entries.
type Store struct {
	mu      sync.Mutex
	key     string
	entries []Entry
	storage Storage
}

// NewStore creates a store for the session key, loading persisted entries.
func NewStore(ctx context.Context, key string, storage Storage) *Store {
	s := &Store{key: key, storage: storage}
	if entries, err := storage.Load(ctx, key); err == nil && entries != nil {
		s.entries = entries
	}
	return s
}

// Toggle adds the entry when absent and removes it when present, returning
// true when the entry is in the wishlist afterwards.
func (s *Store) Toggle(ctx context.Context, e Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.find(e.ProductID, e.VariantID); idx >= 0 {
		s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
		s.persistLocked(ctx)
		return false
	}
	s.entries = append(s.entries, e)
	s.persistLocked(ctx)
	return true
}

// Add inserts the entry unless the same pair is already present
func (s *Store) Add(ctx context.Context, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(e.ProductID, e.VariantID) >= 0 {
		return
	}
	s.entries = append(s.entries, e)
	s.persistLocked(ctx)
}

// Remove deletes the pair; unknown pairs are a no-op
func (s *Store) Remove(ctx context.Context, productID, variantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.find(productID, variantID); idx >= 0 {
		s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
		s.persistLocked(ctx)
	}
}

// Has reports whether the exact pair is saved
func (s *Store) Has(productID, variantID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(productID, variantID) >= 0
}

// Clear empties the wishlist
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.persistLocked(ctx)
}

// Count returns the number of saved entries
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a snapshot copy
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) find(productID, variantID string) int {
	for i, e := range s.entries {
		if e.ProductID == productID && e.VariantID == variantID {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked(ctx context.Context) {
	snapshot := make([]Entry, len(s.entries))
	copy(snapshot, s.entries)
	_ = s.storage.Save(ctx, s.key, snapshot)
}

// Manager hands out one wishlist store per session id. Idle sessions are
// dropped by EvictIdle so the map does not outlive the persisted keys.
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

// Get returns the store for the session, creating it on first use and
// refreshing its idle clock on every access.
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

// EvictIdle drops sessions untouched for longer than maxIdle and returns the
// number evicted. Persisted entries survive eviction.
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

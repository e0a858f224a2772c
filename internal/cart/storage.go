package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage persists a session's line items. Only the item list is stored;
// drawer visibility is session-local and never written.
type Storage interface {
	Load(ctx context.Context, key string) ([]LineItem, error)
	Save(ctx context.Context, key string, items []LineItem) error
}

// MemoryStorage keeps serialized carts in process memory. Used in tests and
// as a fallback when Redis is not configured.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(ctx context.Context, key string) ([]LineItem, error) {
	m.mu.RLock()
	blob, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var items []LineItem
	if err := json.Unmarshal(blob, &items); err != nil {
		return nil, fmt.Errorf("failed to decode stored cart: %w", err)
	}
	return items, nil
}

func (m *MemoryStorage) Save(ctx context.Context, key string, items []LineItem) error {
	blob, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	m.mu.Lock()
	m.blobs[key] = blob
	m.mu.Unlock()
	return nil
}

// RedisStorage persists carts as one JSON blob per session key with a TTL,
// so abandoned carts eventually expire.
type RedisStorage struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStorage creates a Redis-backed storage. A zero ttl means keys
// never expire.
func NewRedisStorage(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (r *RedisStorage) Load(ctx context.Context, key string) ([]LineItem, error) {
	blob, err := r.client.Get(ctx, r.keyPrefix+":"+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart from redis: %w", err)
	}
	var items []LineItem
	if err := json.Unmarshal(blob, &items); err != nil {
		return nil, fmt.Errorf("failed to decode stored cart: %w", err)
	}
	return items, nil
}

func (r *RedisStorage) Save(ctx context.Context, key string, items []LineItem) error {
	blob, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := r.client.Set(ctx, r.keyPrefix+":"+key, blob, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart to redis: %w", err)
	}
	return nil
}

package wishlist

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryStorage keeps serialized wishlists in process memory
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(ctx context.Context, key string) ([]Entry, error) {
	m.mu.RLock()
	blob, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(blob, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode stored wishlist: %w", err)
	}
	return entries, nil
}

func (m *MemoryStorage) Save(ctx context.Context, key string, entries []Entry) error {
	blob, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode wishlist: %w", err)
	}
	m.mu.Lock()
	m.blobs[key] = blob
	m.mu.Unlock()
	return nil
}

// RedisStorage persists wishlists as one JSON blob per session key
type RedisStorage struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStorage creates a Redis-backed storage; zero ttl means no expiry.
func NewRedisStorage(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (r *RedisStorage) Load(ctx context.Context, key string) ([]Entry, error) {
	blob, err := r.client.Get(ctx, r.keyPrefix+":"+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist from redis: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(blob, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode stored wishlist: %w", err)
	}
	return entries, nil
}

func (r *RedisStorage) Save(ctx context.Context, key string, entries []Entry) error {
	blob, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode wishlist: %w", err)
	}
	if err := r.client.Set(ctx, r.keyPrefix+":"+key, blob, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save wishlist to redis: %w", err)
	}
	return nil
}

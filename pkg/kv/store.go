package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

// Store is the small local key-value contract used for cached identities and
// the estimate counter. Get reports whether the key was present.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// TTLStore extends Store with expiring writes.
type TTLStore interface {
	Store
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
}

type redisBackend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	ValueKey(key string) string
}

// RedisStore persists values in Redis under the rk:kv namespace.
type RedisStore struct {
	backend redisBackend
}

// NewRedisStore wraps a redis client. The client is usually *redis.Client from pkg/redis.
func NewRedisStore(backend redisBackend) (*RedisStore, error) {
	if backend == nil {
		return nil, errors.New("redis backend is required")
	}
	return &RedisStore{backend: backend}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	value, err := s.backend.Get(ctx, s.backend.ValueKey(key))
	if errors.Is(err, redislib.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

func (s *RedisStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.backend.Set(ctx, s.backend.ValueKey(key), value, ttl); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.backend.Del(ctx, s.backend.ValueKey(key)); err != nil {
		return fmt.Errorf("kv remove %s: %w", key, err)
	}
	return nil
}

// MemoryStore is an in-process Store for tests and single-node development.
type MemoryStore struct {
	mu      sync.Mutex
	values  map[string]memoryEntry
	nowFunc func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]memoryEntry{}, nowFunc: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.values[key]
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && !s.nowFunc().Before(entry.expiresAt) {
		delete(s.values, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

func (s *MemoryStore) SetWithTTL(_ context.Context, key, value string, ttl time.Duration) error {
	if err := checkKey(key); err != nil {
		return err
	}
	entry := memoryEntry{value: value}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ttl > 0 {
		entry.expiresAt = s.nowFunc().Add(ttl)
	}
	s.values[key] = entry
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("kv key is required")
	}
	return nil
}

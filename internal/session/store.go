// Package session keeps each anonymous visitor's schedule between
// requests.  A visitor is identified by a signed token carrying a
// session id; the schedule itself is stored as its serialized form.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists one serialized schedule per session id.  Loading an
// unknown session returns "" and no error.
type Store interface {
	Load(ctx context.Context, sid string) (string, error)
	Save(ctx context.Context, sid, schedule string) error
	Delete(ctx context.Context, sid string) error
}

// NewStore returns a Redis-backed store, or an in-process one when no
// Redis client is available.
func NewStore(rdb *redis.Client, prefix string, ttl time.Duration) Store {
	if rdb == nil {
		return NewMemoryStore()
	}
	return NewRedisStore(rdb, prefix, ttl)
}

// MemoryStore keeps schedules in a map.  Entries never expire.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]string{}}
}

func (m *MemoryStore) Load(_ context.Context, sid string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[sid], nil
}

func (m *MemoryStore) Save(_ context.Context, sid, schedule string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if schedule == "" {
		delete(m.data, sid)
		return nil
	}
	m.data[sid] = schedule
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sid)
	return nil
}

// RedisStore keeps schedules under prefix:sid with a sliding TTL: every
// save pushes the expiry out again.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "schedule"
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(sid string) string { return r.prefix + ":" + sid }

func (r *RedisStore) Load(ctx context.Context, sid string) (string, error) {
	v, err := r.rdb.Get(ctx, r.key(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: load %s: %w", sid, err)
	}
	return v, nil
}

// Save stores the schedule; an empty schedule deletes the key.
func (r *RedisStore) Save(ctx context.Context, sid, schedule string) error {
	if schedule == "" {
		return r.Delete(ctx, sid)
	}
	if err := r.rdb.Set(ctx, r.key(sid), schedule, r.ttl).Err(); err != nil {
		return fmt.Errorf("session: save %s: %w", sid, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, sid string) error {
	if err := r.rdb.Del(ctx, r.key(sid)).Err(); err != nil {
		return fmt.Errorf("session: delete %s: %w", sid, err)
	}
	return nil
}

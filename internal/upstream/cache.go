package upstream

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/schedule-builder/internal/provider"
)

// Cached is a read-through Redis cache in front of another Fetcher.
// Only successful responses are stored.  Redis failures are logged and
// the request goes straight to the wrapped fetcher.
type Cached struct {
	next   Fetcher
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCached wraps next.  With a nil client the wrapped fetcher is
// returned unchanged so callers need not special-case a missing Redis.
func NewCached(next Fetcher, rdb *redis.Client, prefix string, ttl time.Duration) Fetcher {
	if rdb == nil {
		return next
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if prefix == "" {
		prefix = "upstream"
	}
	return &Cached{next: next, rdb: rdb, prefix: prefix, ttl: ttl}
}

// FetchOne implements Fetcher.
func (c *Cached) FetchOne(ctx context.Context, path string, query url.Values) (provider.Record, error) {
	key := c.key("one", path, query)
	var rec provider.Record
	if c.load(ctx, key, &rec) {
		return rec, nil
	}
	rec, err := c.next.FetchOne(ctx, path, query)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, rec)
	return rec, nil
}

// FetchMany implements Fetcher.
func (c *Cached) FetchMany(ctx context.Context, path string, query url.Values) ([]provider.Record, error) {
	key := c.key("many", path, query)
	var recs []provider.Record
	if c.load(ctx, key, &recs) {
		return recs, nil
	}
	recs, err := c.next.FetchMany(ctx, path, query)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, recs)
	return recs, nil
}

// key hashes the request so long query strings stay short in Redis.
func (c *Cached) key(kind, path string, query url.Values) string {
	sum := sha1.Sum([]byte(kind + ":" + RequestKey(path, query)))
	return fmt.Sprintf("%s:%x", c.prefix, sum[:])
}

func (c *Cached) load(ctx context.Context, key string, dst any) bool {
	bs, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("upstream-cache: get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(bs, dst); err != nil {
		log.Printf("upstream-cache: corrupt entry %s: %v", key, err)
		return false
	}
	return true
}

func (c *Cached) store(ctx context.Context, key string, v any) {
	bs, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, bs, c.ttl).Err(); err != nil {
		log.Printf("upstream-cache: set %s: %v", key, err)
	}
}

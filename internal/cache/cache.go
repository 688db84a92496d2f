// Package cache provides a small byte cache for FDSN service responses, so
// repeated planning runs against the same catalog do not hammer the station
// and routing services. Backed by Redis when configured, disabled otherwise.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores raw response bodies keyed by request URL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Noop is a Cache that stores nothing.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (Noop) Set(context.Context, string, []byte, time.Duration) {}

// Redis is a Cache backed by a Redis instance. A nil Redis (or one built
// from an empty address) behaves like Noop, so callers never need to branch.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis opens a Redis-backed cache. An empty addr returns nil, which is
// a valid no-op cache receiver.
func NewRedis(addr, password string, db int) *Redis {
	if addr == "" {
		return nil
	}
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		prefix: "seisfetch:fdsn:",
	}
}

// Get returns the cached body for key. Transport errors are treated as
// cache misses; the caller falls through to the origin service.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	if r == nil || r.client == nil {
		return nil, false
	}
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores the body under key for ttl. Errors are ignored: losing a cache
// write only costs a future network round trip.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if r == nil || r.client == nil {
		return
	}
	r.client.Set(ctx, r.prefix+key, value, ttl)
}

// Close releases the underlying Redis connection.
func (r *Redis) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

// Package aicache is the persisted TTL cache for generated analytics.
// Narrative generation is slow and costs money; results are reused for
// 12 hours and survive restarts.
package aicache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cancheito/backoffice/internal/logging"
)

// KeyDashboardAnalytics is the cache key for the combined dashboard
// analytics payload.
const KeyDashboardAnalytics = "aiDashboardAnalytics"

// DefaultTTL is how long a cached payload stays fresh.
const DefaultTTL = 12 * time.Hour

// Cache wraps a Repository with freshness and corruption handling. An
// expired or undecodable entry is treated as a miss and removed.
type Cache struct {
	repo Repository
	log  logging.Logger
	ttl  time.Duration
	now  func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(repo Repository, log logging.Logger, opts ...Option) *Cache {
	c := &Cache{repo: repo, log: log, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup decodes a fresh entry into out and reports whether it hit.
// Storage errors are returned; a stale or corrupt entry is deleted and
// reported as a miss.
func (c *Cache) Lookup(ctx context.Context, key string, out any) (bool, error) {
	entry, err := c.repo.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if entry == nil {
		return false, nil
	}

	if c.now().Sub(entry.UpdatedAt) > c.ttl {
		if err := c.repo.Delete(ctx, key); err != nil {
			c.log.Error(ctx, "deleting expired cache entry", "key", key, "error", err)
		}
		return false, nil
	}

	if err := json.Unmarshal(entry.Value, out); err != nil {
		c.log.Error(ctx, "discarding corrupt cache entry", "key", key, "error", err)
		if err := c.repo.Delete(ctx, key); err != nil {
			c.log.Error(ctx, "deleting corrupt cache entry", "key", key, "error", err)
		}
		return false, nil
	}
	return true, nil
}

// Store encodes v and persists it under key with the current time.
func (c *Cache) Store(ctx context.Context, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	return c.repo.Set(ctx, key, value, c.now())
}

// Package cache provides a small time-to-live cache for endpoint payloads.
package cache

import (
	"sync"
	"time"
)

// Observer is told about cache hits and misses.
type Observer interface {
	CacheHit(key string)
	CacheMiss(key string)
}

type entry struct {
	value   any
	expires time.Time
}

// Cache maps keys to values that expire after a per-call TTL.
// The mutex guards the map only: loads run unlocked, so concurrent misses on
// the same key may each call their loader and the last store wins.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
	obs     Observer
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithObserver reports hits and misses to obs.
func WithObserver(obs Observer) Option {
	return func(c *Cache) {
		c.obs = obs
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value stored under key if it has not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expires) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expires: c.now().Add(ttl)}
}

// Fetch returns the cached value for key, or calls load and caches its
// result for ttl. Errors from load are returned and not cached.
func (c *Cache) Fetch(key string, ttl time.Duration, load func() (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		if c.obs != nil {
			c.obs.CacheHit(key)
		}
		return v, nil
	}
	if c.obs != nil {
		c.obs.CacheMiss(key)
	}

	v, err := load()
	if err != nil {
		return nil, err
	}
	c.Set(key, v, ttl)
	return v, nil
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

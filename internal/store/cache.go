// Package store provides short-TTL memoization of report queries.
//
// The cache is a correctness-neutral performance shim: entries expire
// purely by elapsed time, an expired read is identical to a miss, and
// there is no size bound or explicit invalidation. Callers recompute on
// miss and re-Set, so a stale value can never outlive its TTL plus one
// recompute.
package store

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     any
	createdAt time.Time
	ttl       time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// Cache is a TTL-expiring key/value map safe for concurrent use.
type Cache struct {
	defaultTTL time.Duration

	mu      sync.RWMutex
	entries map[string]entry
}

// New returns a Cache whose Set default TTL is defaultTTL.
func New(defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	return &Cache{
		defaultTTL: defaultTTL,
		entries:    make(map[string]entry),
	}
}

// Get returns the value for key, or false if absent or expired.
// Expired entries are deleted on read.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if e.expired(time.Now()) {
		c.mu.Lock()
		// Re-check under the write lock; a Set may have raced in.
		if cur, ok := c.entries[key]; ok && cur.expired(time.Now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key. A non-positive ttl uses the default.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, createdAt: time.Now(), ttl: ttl}
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Sweep deletes all expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Run sweeps expired entries on a fixed interval until ctx is canceled.
// The caller owns the goroutine: start it at process startup, cancel it
// at shutdown.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// Package cache provides a small thread-safe TTL cache. The session uses it
// to suppress repeated warnings (for example malformed filter ranges) to one
// occurrence per expiry window.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// TTLCache is a thread-safe map whose entries expire after a fixed TTL.
// Expired entries are swept by a background goroutine until Stop is called.
type TTLCache struct {
	mu      sync.RWMutex
	items   map[string]entry
	ttl     time.Duration
	ticker  *time.Ticker
	stop    chan struct{}
	stopped sync.Once
}

// NewTTLCache creates a cache with the given entry TTL and sweep interval.
func NewTTLCache(ttl, cleanupInterval time.Duration) *TTLCache {
	c := &TTLCache{
		items:  make(map[string]entry),
		ttl:    ttl,
		ticker: time.NewTicker(cleanupInterval),
		stop:   make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Set stores a value under key for the cache TTL.
func (c *TTLCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// Get returns the live value stored under key, if any.
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.items[key]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// SetOnce stores the value only when no live entry exists for key and
// reports whether it stored. It lets callers run once-per-window actions:
//
//	if cache.SetOnce(key, true) { slog.Warn(...) }
func (c *TTLCache) SetOnce(key string, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, exists := c.items[key]; exists && time.Now().Before(e.expiresAt) {
		return false
	}
	c.items[key] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
	return true
}

// Delete removes the entry under key.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Len returns the number of entries, including any not yet swept.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Stop terminates the background sweeper. The cache stays usable, but
// expired entries are then only dropped lazily on access.
func (c *TTLCache) Stop() {
	c.stopped.Do(func() {
		c.ticker.Stop()
		close(c.stop)
	})
}

func (c *TTLCache) sweep() {
	for {
		select {
		case <-c.ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, e := range c.items {
				if now.After(e.expiresAt) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

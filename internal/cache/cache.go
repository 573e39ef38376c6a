// ABOUTME: In-memory cache with TTL-based expiration
// ABOUTME: Thread-safe typed cache used to remember probe and health results briefly

package cache

import (
	"log/slog"
	"sync"
	"time"
)

type entry[V any] struct {
	data      V
	expiresAt time.Time
}

// Cache maps string keys to values of type V until their TTL lapses.
type Cache[V any] struct {
	store sync.Map
	ttl   time.Duration
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New returns a cache whose entries live for ttl. A background sweep removes
// lapsed entries every sweep interval until Close is called; a zero sweep
// disables it.
func New[V any](ttl, sweep time.Duration) *Cache[V] {
	c := &Cache[V]{
		ttl:  ttl,
		now:  time.Now,
		stop: make(chan struct{}),
	}
	if sweep > 0 {
		go c.startCleanup(sweep)
	}
	return c
}

// WithClock replaces the time source. Intended for tests.
func (c *Cache[V]) WithClock(now func() time.Time) *Cache[V] {
	c.now = now
	return c
}

func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	val, ok := c.store.Load(key)
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return zero, false
	}

	e := val.(entry[V])
	if !c.now().Before(e.expiresAt) {
		c.store.Delete(key)
		slog.Debug("Cache expired", "key", key)
		return zero, false
	}

	slog.Debug("Cache hit", "key", key)
	return e.data, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.store.Store(key, entry[V]{
		data:      value,
		expiresAt: c.now().Add(ttl),
	})
	slog.Debug("Cache set", "key", key, "ttl", ttl)
}

func (c *Cache[V]) Clear(key string) {
	c.store.Delete(key)
}

// Close stops the background sweep. Safe to call more than once.
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache[V]) sweep() {
	now := c.now()
	c.store.Range(func(key, val any) bool {
		if !now.Before(val.(entry[V]).expiresAt) {
			c.store.Delete(key)
		}
		return true
	})
}

func (c *Cache[V]) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

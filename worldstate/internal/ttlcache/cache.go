// Package ttlcache is a small keyed cache whose entries expire a fixed time
// after insertion. There is no eviction API: expired entries are dropped the
// next time they are looked up.
package ttlcache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Stats counts lookups for one key.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

type entry[V any] struct {
	value      V
	insertedAt time.Time
	ttl        time.Duration
}

// Cache is safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	entries map[K]entry[V]
	stats   map[K]*Stats
	observe func(K, bool)
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithClock injects the time source.
func WithClock[K comparable, V any](c clockwork.Clock) Option[K, V] {
	return func(cache *Cache[K, V]) { cache.clock = c }
}

// WithObserver registers fn to be called after every lookup with the key and
// whether it hit. fn runs outside the cache lock.
func WithObserver[K comparable, V any](fn func(key K, hit bool)) Option[K, V] {
	return func(cache *Cache[K, V]) { cache.observe = fn }
}

// New creates an empty cache on the real clock.
func New[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		clock:   clockwork.NewRealClock(),
		entries: make(map[K]entry[V]),
		stats:   make(map[K]*Stats),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Set stores v under k for ttl, replacing any previous entry.
func (c *Cache[K, V]) Set(k K, v V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[k] = entry[V]{value: v, insertedAt: c.clock.Now(), ttl: ttl}
	c.mu.Unlock()
}

// Get returns the value for k if it was inserted less than its ttl ago.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	return c.lookup(k, -1)
}

// Fresh is Get with an extra bound: the entry must also be no older than
// maxAge.
func (c *Cache[K, V]) Fresh(k K, maxAge time.Duration) (V, bool) {
	return c.lookup(k, maxAge)
}

func (c *Cache[K, V]) lookup(k K, maxAge time.Duration) (V, bool) {
	c.mu.Lock()
	v, hit := c.getLocked(k, maxAge)
	st := c.stats[k]
	if st == nil {
		st = &Stats{}
		c.stats[k] = st
	}
	if hit {
		st.Hits++
	} else {
		st.Misses++
	}
	c.mu.Unlock()

	if c.observe != nil {
		c.observe(k, hit)
	}
	return v, hit
}

func (c *Cache[K, V]) getLocked(k K, maxAge time.Duration) (V, bool) {
	var zero V
	e, ok := c.entries[k]
	if !ok {
		return zero, false
	}
	age := c.clock.Since(e.insertedAt)
	if age >= e.ttl {
		delete(c.entries, k)
		return zero, false
	}
	if maxAge >= 0 && age > maxAge {
		return zero, false
	}
	return e.value, true
}

// Len returns the number of stored entries, expired ones included until
// they are next looked up.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a copy of the per-key lookup counters.
func (c *Cache[K, V]) Stats() map[K]Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[K]Stats, len(c.stats))
	for k, s := range c.stats {
		out[k] = *s
	}
	return out
}

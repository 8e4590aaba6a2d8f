package cache

import (
	"sync"
	"time"
)

// Cache is the read-through cache used on billing hot paths, mainly for
// membership plan lookups.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(key K)
}

type item[V any] struct {
	value    V
	deadline time.Time
}

func (i item[V]) expired(now time.Time) bool {
	return !i.deadline.IsZero() && now.After(i.deadline)
}

// TTLCache is an in-memory Cache with a per-entry time to live. Expired
// entries are dropped lazily on the next Get.
type TTLCache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]item[V]
}

func NewTTLCache[K comparable, V any]() *TTLCache[K, V] {
	return &TTLCache[K, V]{items: make(map[K]item[V])}
}

func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if entry.expired(time.Now()) {
		c.Delete(key)
		return zero, false
	}
	return entry.value, true
}

// Set stores value under key. A ttl of zero or less means the entry
// never expires.
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	if c == nil {
		return
	}
	var deadline time.Time
	if ttl > 0 {
		deadline = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = item[V]{value: value, deadline: deadline}
	c.mu.Unlock()
}

func (c *TTLCache[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// NoopCache misses on every Get and discards writes. Useful where a
// cache dependency is wanted without caching semantics.
type NoopCache[K comparable, V any] struct{}

func (NoopCache[K, V]) Get(key K) (V, bool) {
	var zero V
	return zero, false
}

func (NoopCache[K, V]) Set(key K, value V, ttl time.Duration) {}

func (NoopCache[K, V]) Delete(key K) {}

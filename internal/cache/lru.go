// Package cache provides the bounded, session-scoped memo caches used by the
// intent resolver and the result aggregator.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultCapacity is used when a non-positive capacity is configured.
const DefaultCapacity = 128

// LRU is a thread-safe, fixed-capacity cache that evicts the least recently used entry.
type LRU[K comparable, V any] struct {
	inner *lru.Cache[K, V]
	name  string
	total *prometheus.CounterVec
}

// New creates a cache. total is a counter vec with labels "cache" and "result"
// ("hit"/"miss"); nil disables counting.
func New[K comparable, V any](name string, capacity int, total *prometheus.CounterVec) (*LRU[K, V], error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	inner, err := lru.New[K, V](capacity)
	if err != nil {
		return nil, fmt.Errorf("create %s cache: %w", name, err)
	}
	return &LRU[K, V]{inner: inner, name: name, total: total}, nil
}

// Get returns the cached value and marks it recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	v, ok := c.inner.Get(key)
	if ok {
		c.inc("hit")
	} else {
		c.inc("miss")
	}
	return v, ok
}

// Add stores value, evicting the oldest entry when full.
func (c *LRU[K, V]) Add(key K, value V) {
	c.inner.Add(key, value)
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int { return c.inner.Len() }

func (c *LRU[K, V]) inc(result string) {
	if c.total != nil {
		c.total.WithLabelValues(c.name, result).Inc()
	}
}

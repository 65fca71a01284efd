// Package cache provides a bounded, expiring in-process map shared by the session, permission and captcha caches.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Recorder receives hit and miss notifications.
type Recorder interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

type noopRecorder struct{}

func (noopRecorder) CacheHit(string)  {}
func (noopRecorder) CacheMiss(string) {}

// Option configures an Expiring cache.
type Option func(*options)

type options struct {
	name     string
	recorder Recorder
}

// WithRecorder reports hits and misses under name.
func WithRecorder(name string, recorder Recorder) Option {
	return func(o *options) {
		o.name = name
		if recorder != nil {
			o.recorder = recorder
		}
	}
}

// Expiring is a goroutine-safe LRU whose entries expire ttl after insertion.
// Expired entries are never returned and are evicted in the background.
type Expiring[K comparable, V any] struct {
	lru      *lru.LRU[K, V]
	name     string
	recorder Recorder
}

// NewExpiring creates a cache holding at most size entries for ttl each.
func NewExpiring[K comparable, V any](size int, ttl time.Duration, opts ...Option) *Expiring[K, V] {
	o := options{recorder: noopRecorder{}}
	for _, opt := range opts {
		opt(&o)
	}

	return &Expiring[K, V]{
		lru:      lru.NewLRU[K, V](size, nil, ttl),
		name:     o.name,
		recorder: o.recorder,
	}
}

// Get returns the live value for key.
func (c *Expiring[K, V]) Get(key K) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.recorder.CacheHit(c.name)
	} else {
		c.recorder.CacheMiss(c.name)
	}

	return v, ok
}

// Set inserts or replaces key. The ttl restarts.
func (c *Expiring[K, V]) Set(key K, value V) {
	c.lru.Add(key, value)
}

// Take removes key and returns its value. Among concurrent callers for the same key at most one gets ok == true.
func (c *Expiring[K, V]) Take(key K) (V, bool) {
	var zero V

	v, ok := c.lru.Peek(key)
	if !ok {
		// Drop an expired leftover, if any.
		c.lru.Remove(key)
		c.recorder.CacheMiss(c.name)

		return zero, false
	}

	if !c.lru.Remove(key) {
		c.recorder.CacheMiss(c.name)

		return zero, false
	}
	c.recorder.CacheHit(c.name)

	return v, true
}

// Delete removes key and reports whether it was present.
func (c *Expiring[K, V]) Delete(key K) bool {
	return c.lru.Remove(key)
}

// Purge drops every entry.
func (c *Expiring[K, V]) Purge() {
	c.lru.Purge()
}

// Len returns the number of entries, including ones that expired but were not evicted yet.
func (c *Expiring[K, V]) Len() int {
	return c.lru.Len()
}

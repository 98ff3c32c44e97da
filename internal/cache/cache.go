// Package cache provides a single-value TTL cache used for the hazard-zone
// catalog and snowpack station metadata. A failed refresh serves the last
// good value instead of failing outward.
package cache

import (
	"context"
	"sync"
	"time"
)

// Refresher fetches a fresh value on cache miss or expiry.
type Refresher[T any] func(ctx context.Context) (T, error)

// TTL caches one value with a time-to-live. The clock is injectable so
// tests control freshness deterministically.
type TTL[T any] struct {
	mu        sync.Mutex
	value     T
	has       bool
	fetchedAt time.Time

	ttl     time.Duration
	now     func() time.Time
	refresh Refresher[T]
}

// Option configures a TTL cache.
type Option[T any] func(*TTL[T])

// WithClock overrides the cache's clock.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *TTL[T]) {
		c.now = now
	}
}

// New creates a TTL cache around the given refresher.
func New[T any](ttl time.Duration, refresh Refresher[T], opts ...Option[T]) *TTL[T] {
	c := &TTL[T]{
		ttl:     ttl,
		now:     time.Now,
		refresh: refresh,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value, refreshing it when expired. On refresh
// failure the last successfully fetched value is returned with stale=true;
// an error is only returned when there has never been a good value.
// The lock is held across the refresh so concurrent misses do not stampede
// the upstream.
func (c *TTL[T]) Get(ctx context.Context) (value T, stale bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.has && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.value, false, nil
	}

	fresh, err := c.refresh(ctx)
	if err != nil {
		if c.has {
			return c.value, true, nil
		}
		var zero T
		return zero, false, err
	}

	c.value = fresh
	c.has = true
	c.fetchedAt = c.now()
	return c.value, false, nil
}

// FetchedAt returns when the current value was stored, zero if empty.
func (c *TTL[T]) FetchedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchedAt
}

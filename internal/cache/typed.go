// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package cache

import "time"

// TypedGet retrieves a value by key with a type assertion. A stored
// value of the wrong type counts as a miss rather than panicking.
func TypedGet[T any](c *Cache, key string) (T, bool) {
	var zero T
	raw, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// WithCache is the read-through helper: it returns the cached value on a
// hit, otherwise calls fetch, stores the result for ttl, and returns it.
//
// Staleness is bounded by ttl, but there is NO single-flight guarantee:
// concurrent misses on the same key each invoke fetch (a cache
// stampede). That is a known, accepted limitation of this cache - the
// fetch paths behind it are idempotent, so the only cost is duplicate
// work, and the store converges to the same state either way.
func WithCache[T any](c *Cache, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	if v, ok := TypedGet[T](c, key); ok {
		return v, nil
	}

	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}

	c.Set(key, v, ttl)
	return v, nil
}

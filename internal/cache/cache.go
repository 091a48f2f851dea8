// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package cache

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/venuepulse/venuepulse/internal/metrics"
)

// Entry represents a cached item with an absolute expiration instant.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Config holds cache construction parameters.
type Config struct {
	// MaxEntries bounds the cache size. When full and a new key arrives,
	// one existing entry is evicted by insertion order. Zero means the
	// default of 1024.
	MaxEntries int

	// SweepInterval is how often the background sweep removes expired
	// entries. Zero means the default of 1 minute.
	SweepInterval time.Duration

	// Now is the injectable clock; defaults to time.Now. Tests construct
	// isolated instances with a fake clock instead of sharing process
	// state or sleeping.
	Now func() time.Time
}

// Cache is a thread-safe in-memory TTL cache with bounded capacity.
//
// Eviction under capacity pressure is by insertion order - an
// approximation of FIFO, explicitly NOT recency-based LRU: no access
// times are tracked and Get never reorders entries. That exact semantic
// is part of the contract; substituting a stricter LRU changes the
// observable eviction order.
//
// The background sweep runs only between Start and Stop, so instances
// can be constructed in tests without leaking goroutines.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string // insertion order of live keys
	cfg     Config
	stats   Stats

	sweepStop chan struct{}
	sweepDone chan struct{}
}

// Stats tracks cache performance counters.
type Stats struct {
	mu        sync.Mutex
	Hits      int64
	Misses    int64
	Evictions int64
	TotalKeys int64
	LastSweep time.Time
}

// New creates a cache. The sweep goroutine is not started; call Start.
func New(cfg Config) *Cache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1024
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Cache{
		entries: make(map[string]Entry, cfg.MaxEntries),
		cfg:     cfg,
	}
}

// Get retrieves a value by key. Expired entries are evicted on read and
// reported as misses; expiry never depends on the sweep having run.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if c.cfg.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		// Recheck under the write lock; a concurrent Set may have
		// refreshed the entry.
		if cur, ok := c.entries[key]; ok && c.cfg.Now().After(cur.ExpiresAt) {
			c.removeLocked(key)
			c.recordEviction()
		}
		c.mu.Unlock()
		c.recordMiss()
		return nil, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores a value with expiresAt = now + ttl. If the cache is at
// capacity and the key is new, the oldest-inserted entry is evicted.
// Overwriting an existing key keeps its original insertion position.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.entries) >= c.cfg.MaxEntries {
			c.evictOldestLocked()
		}
		c.order = append(c.order, key)
	}

	c.entries[key] = Entry{
		Data:      value,
		ExpiresAt: c.cfg.Now().Add(ttl),
	}
	c.setTotalKeys(int64(len(c.entries)))
}

// Delete removes a specific entry. No-op for absent keys.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	if _, ok := c.entries[key]; ok {
		c.removeLocked(key)
		c.recordEviction()
	}
	c.mu.Unlock()
	c.updateTotalKeys()
}

// DeletePattern removes every key matching the regular expression. Used
// for bulk invalidation of one resource's entries.
func (c *Cache) DeletePattern(pattern string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, fmt.Errorf("invalid cache key pattern %q: %w", pattern, err)
	}

	c.mu.Lock()
	removed := 0
	for key := range c.entries {
		if re.MatchString(key) {
			c.removeLocked(key)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.stats.mu.Lock()
		c.stats.Evictions += int64(removed)
		c.stats.mu.Unlock()
	}
	c.updateTotalKeys()
	return removed, nil
}

// Clear removes all entries in one atomic operation.
func (c *Cache) Clear() {
	c.mu.Lock()
	evicted := int64(len(c.entries))
	c.entries = make(map[string]Entry, c.cfg.MaxEntries)
	c.order = nil
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += evicted
	c.stats.TotalKeys = 0
	c.stats.mu.Unlock()
}

// Len returns the current number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Start launches the background sweep goroutine. Safe to call once per
// instance; the goroutine never blocks shutdown because Stop tears it
// down explicitly.
func (c *Cache) Start() {
	c.mu.Lock()
	if c.sweepStop != nil {
		c.mu.Unlock()
		return
	}
	c.sweepStop = make(chan struct{})
	c.sweepDone = make(chan struct{})
	stop, done := c.sweepStop, c.sweepDone
	c.mu.Unlock()

	go c.sweepLoop(stop, done)
}

// Stop terminates the sweep goroutine and waits for it to exit.
func (c *Cache) Stop() {
	c.mu.Lock()
	stop, done := c.sweepStop, c.sweepDone
	c.sweepStop, c.sweepDone = nil, nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// sweepLoop periodically removes expired entries in bulk.
func (c *Cache) sweepLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-stop:
			return
		}
	}
}

// Sweep removes all expired entries. Exported so tests and the periodic
// service can trigger it deterministically.
func (c *Cache) Sweep() int {
	now := c.cfg.Now()

	c.mu.Lock()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			c.removeLocked(key)
			removed++
		}
	}
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += int64(removed)
	c.stats.LastSweep = now
	c.stats.mu.Unlock()
	c.updateTotalKeys()
	return removed
}

// GetStats returns a snapshot of the cache counters.
func (c *Cache) GetStats() Stats {
	c.stats.mu.Lock()
	defer c.stats.mu.Unlock()
	return Stats{
		Hits:      c.stats.Hits,
		Misses:    c.stats.Misses,
		Evictions: c.stats.Evictions,
		TotalKeys: c.stats.TotalKeys,
		LastSweep: c.stats.LastSweep,
	}
}

// HitRate returns the hit percentage over the cache lifetime.
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// evictOldestLocked drops the oldest-inserted live entry. Caller holds
// the write lock.
func (c *Cache) evictOldestLocked() {
	for len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		if _, ok := c.entries[oldest]; ok {
			delete(c.entries, oldest)
			c.recordEviction()
			return
		}
	}
}

// removeLocked deletes an entry and its insertion-order slot. Caller
// holds the write lock.
func (c *Cache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// updateTotalKeys refreshes the key count stat. The caller must NOT hold
// c.mu; Set uses setTotalKeys under its already-held write lock instead.
func (c *Cache) updateTotalKeys() {
	c.mu.RLock()
	n := int64(len(c.entries))
	c.mu.RUnlock()
	c.setTotalKeys(n)
}

func (c *Cache) setTotalKeys(n int64) {
	c.stats.mu.Lock()
	c.stats.TotalKeys = n
	c.stats.mu.Unlock()
}

func (c *Cache) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	metrics.CacheHits.Inc()
}

func (c *Cache) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
	metrics.CacheMisses.Inc()
}

func (c *Cache) recordEviction() {
	c.stats.mu.Lock()
	c.stats.Evictions++
	c.stats.mu.Unlock()
}

// GenerateKey creates a cache key from a method name and parameters by
// hashing the JSON-serialized params into a compact hex suffix.
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Fallback to a simple string key
		return fmt.Sprintf("%s:%v", method, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}

// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for deterministic TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(maxEntries int) (*Cache, *fakeClock) {
	clk := newFakeClock()
	return New(Config{MaxEntries: maxEntries, Now: clk.Now}), clk
}

func TestCache_TTL(t *testing.T) {
	c, clk := newTestCache(10)

	c.Set("k", "v", time.Second)

	if got, ok := c.Get("k"); !ok || got != "v" {
		t.Fatalf("immediate get = (%v, %v), want (v, true)", got, ok)
	}

	clk.Advance(1100 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after TTL elapsed")
	}
}

func TestCache_PassiveExpiryEvicts(t *testing.T) {
	c, clk := newTestCache(10)
	c.Set("k", "v", time.Second)
	clk.Advance(2 * time.Second)

	// Expired entry removed on read, not left for the sweeper.
	c.Get("k")
	if c.Len() != 0 {
		t.Errorf("expired entry should be evicted on read, len = %d", c.Len())
	}
}

func TestCache_InsertionOrderEviction(t *testing.T) {
	c, _ := newTestCache(3)

	c.Set("a", 1, time.Hour)
	c.Set("b", 2, time.Hour)
	c.Set("c", 3, time.Hour)

	// Access "a" repeatedly: insertion-order eviction must ignore reads.
	// (This is the FIFO approximation, deliberately not LRU.)
	c.Get("a")
	c.Get("a")

	c.Set("d", 4, time.Hour)

	if _, ok := c.Get("a"); ok {
		t.Error("oldest-inserted entry 'a' should be evicted despite recent reads")
	}
	for _, k := range []string{"b", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("entry %q should have survived", k)
		}
	}
	if c.Len() != 3 {
		t.Errorf("exactly one entry should have been evicted, len = %d", c.Len())
	}
}

func TestCache_OverwriteKeepsPosition(t *testing.T) {
	c, _ := newTestCache(2)

	c.Set("a", 1, time.Hour)
	c.Set("b", 2, time.Hour)
	c.Set("a", 10, time.Hour) // overwrite, still oldest
	c.Set("c", 3, time.Hour)  // evicts "a"

	if _, ok := c.Get("a"); ok {
		t.Error("overwrite must not refresh insertion position")
	}
	if got, _ := c.Get("b"); got != 2 {
		t.Error("'b' should survive")
	}
}

func TestCache_DeletePattern(t *testing.T) {
	c, _ := newTestCache(10)

	c.Set("events:user:1:list", 1, time.Hour)
	c.Set("events:user:1:search", 2, time.Hour)
	c.Set("events:user:2:list", 3, time.Hour)

	removed, err := c.DeletePattern(`^events:user:1:`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if _, ok := c.Get("events:user:2:list"); !ok {
		t.Error("non-matching key should survive")
	}
}

func TestCache_DeletePattern_BadRegex(t *testing.T) {
	c, _ := newTestCache(10)
	if _, err := c.DeletePattern("("); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestCache_Sweep(t *testing.T) {
	c, clk := newTestCache(10)

	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)
	clk.Advance(2 * time.Second)

	if removed := c.Sweep(); removed != 1 {
		t.Errorf("sweep removed %d, want 1", removed)
	}
	if c.Len() != 1 {
		t.Errorf("len after sweep = %d, want 1", c.Len())
	}
}

func TestCache_StartStop(t *testing.T) {
	c, _ := newTestCache(10)
	c.Start()
	c.Start() // idempotent
	c.Stop()
	c.Stop() // idempotent after stop
}

func TestWithCache(t *testing.T) {
	c, _ := newTestCache(10)

	calls := 0
	fetch := func() (string, error) {
		calls++
		return "fetched", nil
	}

	v, err := WithCache(c, "k", time.Minute, fetch)
	if err != nil || v != "fetched" {
		t.Fatalf("first call = (%q, %v)", v, err)
	}

	v, err = WithCache(c, "k", time.Minute, fetch)
	if err != nil || v != "fetched" {
		t.Fatalf("second call = (%q, %v)", v, err)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1 (second call should hit cache)", calls)
	}
}

func TestWithCache_FetchError(t *testing.T) {
	c, _ := newTestCache(10)

	wantErr := errors.New("upstream down")
	_, err := WithCache(c, "k", time.Minute, func() (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected fetch error to propagate, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("failed fetches must not be cached")
	}
}

func TestTypedGet_WrongType(t *testing.T) {
	c, _ := newTestCache(10)
	c.Set("k", "a string", time.Hour)

	if _, ok := TypedGet[int](c, "k"); ok {
		t.Error("wrong-type read should report a miss")
	}
}

func TestCache_Stats(t *testing.T) {
	c, _ := newTestCache(10)

	c.Set("k", 1, time.Hour)
	c.Get("k")
	c.Get("absent")

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %d hits %d misses, want 1/1", stats.Hits, stats.Misses)
	}
	if c.HitRate() != 50.0 {
		t.Errorf("hit rate = %v, want 50", c.HitRate())
	}
}

func TestSet_ReturnsAndTracksKeyCount(t *testing.T) {
	c, _ := newTestCache(10)

	// Set must never block on its own lock while refreshing stats.
	done := make(chan struct{})
	go func() {
		c.Set("a", 1, time.Hour)
		c.Set("b", 2, time.Hour)
		c.Set("a", 3, time.Hour)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Set blocked instead of returning")
	}

	if got := c.GetStats().TotalKeys; got != 2 {
		t.Errorf("TotalKeys = %d, want 2", got)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(64)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%20)
				c.Set(key, n, time.Minute)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
}

func TestGenerateKey_Deterministic(t *testing.T) {
	type params struct {
		Query string
		Limit int
	}
	a := GenerateKey("search", params{"jazz", 10})
	b := GenerateKey("search", params{"jazz", 10})
	cKey := GenerateKey("search", params{"jazz", 20})

	if a != b {
		t.Error("identical params must generate identical keys")
	}
	if a == cKey {
		t.Error("different params must generate different keys")
	}
}

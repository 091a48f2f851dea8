// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package aggregator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/venuepulse/venuepulse/internal/cache"
	"github.com/venuepulse/venuepulse/internal/config"
	"github.com/venuepulse/venuepulse/internal/database"
	"github.com/venuepulse/venuepulse/internal/dedup"
	"github.com/venuepulse/venuepulse/internal/logging"
	"github.com/venuepulse/venuepulse/internal/metrics"
	"github.com/venuepulse/venuepulse/internal/models"
	"github.com/venuepulse/venuepulse/internal/provider"
	"github.com/venuepulse/venuepulse/internal/timewindow"
	"github.com/venuepulse/venuepulse/internal/validation"
)

// Store is the persistence surface the orchestrator needs. *database.DB
// satisfies it; tests substitute fakes.
type Store interface {
	SearchEvents(ctx context.Context, filter database.EventFilter) (*models.SearchResult, error)
	Merge(ctx context.Context, events []models.CanonicalEvent, sourceTag string) (*models.MergeResult, error)
	Cleanup(ctx context.Context) (int64, error)
	Categories(ctx context.Context) ([]string, error)
}

// Query is one aggregation request: the search filter plus a refresh
// directive. ForceRefresh bypasses the cache and fans out to providers
// regardless of how many stored events already match.
type Query struct {
	Filter       database.EventFilter `json:"filter"`
	ForceRefresh bool                 `json:"force_refresh"`
}

// Aggregator orchestrates one request through the pipeline: expire, check
// cache, read the store, fan out to providers when stored coverage is
// thin, merge, and answer with provenance.
type Aggregator struct {
	store     Store
	providers []provider.Provider
	cache     *cache.Cache
	cacheTTL  time.Duration
	cfg       config.AggregatorConfig
	dedupOpts dedup.Options

	// now is the injectable clock used for time-bucket filtering on the
	// provider-only path. Defaults to time.Now.
	now func() time.Time
}

// Option configures optional orchestrator behavior.
type Option func(*Aggregator)

// WithClock overrides the clock, letting tests pin bucket boundaries.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New builds an orchestrator. qc may be nil to disable response caching
// (tests mostly run without it).
func New(store Store, providers []provider.Provider, qc *cache.Cache, cacheTTL time.Duration, cfg config.AggregatorConfig, dedupOpts dedup.Options, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:     store,
		providers: providers,
		cache:     qc,
		cacheTTL:  cacheTTL,
		cfg:       cfg,
		dedupOpts: dedupOpts,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate runs one search round. The flow:
//
//  1. Validate the query; malformed filters are rejected before any work.
//  2. Opportunistically deactivate expired events.
//  3. Serve from the query cache when possible (never on ForceRefresh).
//  4. Read the store. When it matches fewer than MinStoredResults, or a
//     refresh was forced, fan out to all providers concurrently, merge
//     the canonicalized results, and re-read.
//  5. Answer with provenance: stored, merged, or scraped_only.
//
// A hard error is returned only for invalid input or when the store is
// down AND every provider failed; anything less degrades gracefully.
func (a *Aggregator) Aggregate(ctx context.Context, q Query) (*models.AggregateResult, error) {
	if err := a.validate(q); err != nil {
		return nil, err
	}

	// Lazy expiry keeps reads honest even if the periodic cleanup service
	// is behind schedule. Failure here is not fatal; read paths filter on
	// the retention cutoff anyway.
	if _, err := a.store.Cleanup(ctx); err != nil {
		logging.Warn().Err(err).Msg("Pre-read cleanup failed")
	}

	if a.cache == nil || q.ForceRefresh {
		result, err := a.aggregate(ctx, q)
		if err != nil {
			return nil, err
		}
		if q.ForceRefresh && a.cache != nil {
			// Cached pages are stale the moment a forced refresh merges
			// new data; drop them all rather than track which filters
			// the merge touched.
			a.cache.Clear()
		}
		return result, nil
	}

	key := cache.GenerateKey("aggregate", q)
	return cache.WithCache(a.cache, key, a.cacheTTL, func() (*models.AggregateResult, error) {
		return a.aggregate(ctx, q)
	})
}

// Categories lists the distinct categories of active stored events.
func (a *Aggregator) Categories(ctx context.Context) ([]string, error) {
	return a.store.Categories(ctx)
}

func (a *Aggregator) validate(q Query) error {
	if err := validation.ValidateStruct(q.Filter); err != nil {
		return err
	}
	if q.Filter.TimeBucket != "" && !timewindow.Valid(q.Filter.TimeBucket) {
		return &models.ValidationError{Field: "time_bucket", Message: "unknown bucket " + string(q.Filter.TimeBucket)}
	}
	return nil
}

func (a *Aggregator) aggregate(ctx context.Context, q Query) (*models.AggregateResult, error) {
	stored, storeErr := a.store.SearchEvents(ctx, q.Filter)
	if storeErr != nil {
		logging.Error().Err(storeErr).Msg("Store read failed, attempting provider-only aggregation")
	}

	needFetch := q.ForceRefresh || storeErr != nil ||
		stored.TotalCount < a.cfg.MinStoredResults

	if !needFetch {
		metrics.SearchRequests.WithLabelValues(string(models.ProvenanceStored)).Inc()
		return &models.AggregateResult{
			Events:     stored.Events,
			TotalCount: stored.TotalCount,
			Provenance: models.ProvenanceStored,
		}, nil
	}

	fetched, queried, failed := a.fetchAll(ctx, q.Filter.Query)

	// Store down: serve fresh provider data without persistence, or fail
	// hard when there is nothing to serve at all.
	if storeErr != nil {
		if len(queried) == len(failed) {
			return nil, models.ErrStoreUnavailable
		}
		result, err := a.scrapedOnly(fetched, q.Filter, queried, failed)
		if err != nil {
			return nil, err
		}
		metrics.SearchRequests.WithLabelValues(string(models.ProvenanceScrapedOnly)).Inc()
		return result, nil
	}

	provenance := models.ProvenanceStored
	newCount := 0
	if len(fetched) > 0 {
		merged, err := a.store.Merge(ctx, fetched, "aggregate")
		if err != nil {
			logging.Error().Err(err).Msg("Merge failed, serving stored results")
		} else {
			provenance = models.ProvenanceMerged
			newCount = merged.NewCount
		}
	}

	final, err := a.store.SearchEvents(ctx, q.Filter)
	if err != nil {
		// The pre-merge read succeeded, so serve that page rather than
		// escalate a transient re-read failure.
		logging.Warn().Err(err).Msg("Post-merge re-read failed, serving pre-merge page")
		final = stored
	}

	metrics.SearchRequests.WithLabelValues(string(provenance)).Inc()
	return &models.AggregateResult{
		Events:           final.Events,
		TotalCount:       final.TotalCount,
		NewCount:         newCount,
		Provenance:       provenance,
		ProvidersQueried: queried,
		ProvidersFailed:  failed,
	}, nil
}

// fetchAll fans out to every provider concurrently and canonicalizes the
// raw records. Provider failures are isolated: they are logged, counted,
// and the round continues with whatever the healthy sources returned.
func (a *Aggregator) fetchAll(ctx context.Context, query string) (events []models.CanonicalEvent, queried, failed []string) {
	type fetchOutcome struct {
		name   string
		events []models.ProviderEvent
		err    error
	}

	results := make([]fetchOutcome, len(a.providers))
	var wg sync.WaitGroup
	for i, p := range a.providers {
		wg.Add(1)
		go func(i int, p provider.Provider) {
			defer wg.Done()
			evs, err := p.Fetch(ctx, query)
			results[i] = fetchOutcome{name: p.Name(), events: evs, err: err}
		}(i, p)
	}
	wg.Wait()

	for _, r := range results {
		queried = append(queried, r.name)
		if r.err != nil {
			failed = append(failed, r.name)
			logging.Warn().Err(r.err).Str("provider", r.name).Msg("Provider fetch failed")
			continue
		}

		canonical, dropped := dedup.Canonicalize(r.events)
		for _, dropErr := range dropped {
			metrics.ProviderRecordsDropped.WithLabelValues(r.name).Inc()
			logging.Debug().Err(dropErr).Str("provider", r.name).Msg("Dropped malformed record")
		}
		for j := range canonical {
			canonical[j].SourceProvider = r.name
		}
		events = append(events, canonical...)
	}

	return events, queried, failed
}

// scrapedOnly assembles a response purely from fresh provider data when
// the store is unavailable. The batch is deduplicated in memory and
// filtered/paginated the same way a stored read would be.
func (a *Aggregator) scrapedOnly(fetched []models.CanonicalEvent, filter database.EventFilter, queried, failed []string) (*models.AggregateResult, error) {
	deduped, err := dedup.Dedupe(fetched, a.dedupOpts)
	if err != nil {
		return nil, err
	}

	now := a.now()
	var matched []models.CanonicalEvent
	for _, ev := range deduped {
		if matchesFilter(ev, filter, now) {
			matched = append(matched, ev)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].StartDate.Equal(matched[j].StartDate) {
			return matched[i].StartDate.Before(matched[j].StartDate)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	page := paginate(matched, filter)

	return &models.AggregateResult{
		Events:           page,
		TotalCount:       total,
		NewCount:         total,
		Provenance:       models.ProvenanceScrapedOnly,
		ProvidersQueried: queried,
		ProvidersFailed:  failed,
	}, nil
}

// matchesFilter mirrors the store's WHERE semantics for in-memory results.
func matchesFilter(ev models.CanonicalEvent, f database.EventFilter, now time.Time) bool {
	if f.Category != "" && ev.Category != f.Category {
		return false
	}
	switch f.PriceBucket {
	case database.PriceBucketFree:
		if !ev.IsFree {
			return false
		}
	case database.PriceBucketPaid:
		if ev.IsFree {
			return false
		}
	}
	if f.Query != "" && !ev.MatchesQuery(f.Query) {
		return false
	}
	if f.TimeBucket != "" && !timewindow.Matches(f.TimeBucket, ev.StartInstant(), now) {
		return false
	}
	return true
}

func paginate(events []models.CanonicalEvent, f database.EventFilter) []models.CanonicalEvent {
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(events) {
		return nil
	}
	end := offset + limit
	if end > len(events) {
		end = len(events)
	}
	return events[offset:end]
}

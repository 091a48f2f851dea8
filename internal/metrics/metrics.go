// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

// Package metrics exposes Prometheus instrumentation for the ingestion
// pipeline: provider fetches, dedup outcomes, merge batches, store
// queries, and cache efficiency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Provider metrics
	ProviderFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuepulse_provider_fetches_total",
			Help: "Total provider fetch attempts by provider and outcome",
		},
		[]string{"provider", "outcome"}, // outcome: success, failure, rejected
	)

	ProviderEventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuepulse_provider_events_ingested_total",
			Help: "Raw events received from each provider",
		},
		[]string{"provider"},
	)

	ProviderRecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuepulse_provider_records_dropped_total",
			Help: "Malformed provider records dropped at the boundary",
		},
		[]string{"provider"},
	)

	// Dedup metrics
	EventsDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "venuepulse_events_deduplicated_total",
			Help: "Candidate events discarded as cluster non-survivors",
		},
	)

	// Merge metrics
	MergeBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuepulse_merge_batches_total",
			Help: "Merge batches processed by source tag",
		},
		[]string{"source"},
	)

	MergeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "venuepulse_merge_record_failures_total",
			Help: "Per-record upsert failures after the retry attempt",
		},
	)

	EventsCleaned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "venuepulse_events_cleaned_total",
			Help: "Events deactivated by retention cleanup",
		},
	)

	// Store metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "venuepulse_db_query_duration_seconds",
			Help:    "Duration of event store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "venuepulse_cache_hits_total",
			Help: "Query cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "venuepulse_cache_misses_total",
			Help: "Query cache misses",
		},
	)

	// Request metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuepulse_search_requests_total",
			Help: "Aggregated search requests by provenance",
		},
		[]string{"provenance"},
	)
)

// ObserveQuery records a store query duration.
func ObserveQuery(operation string, start time.Time) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

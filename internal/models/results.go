// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package models

// Provenance indicates where a response's events came from. It is part
// of the API contract so callers can tell a cheap stored read from a
// fresh provider fan-out.
type Provenance string

const (
	// ProvenanceStored means the response was served entirely from the
	// persistent store (possibly via the query cache).
	ProvenanceStored Provenance = "stored"

	// ProvenanceScrapedOnly means the store held nothing useful and the
	// response consists solely of freshly fetched provider data.
	ProvenanceScrapedOnly Provenance = "scraped_only"

	// ProvenanceMerged means fresh provider data was merged into existing
	// stored events before the response was assembled.
	ProvenanceMerged Provenance = "merged"
)

// MergeResult reports the aggregate outcome of merging a provider batch
// into the store. Partial failures never abort the batch; they surface
// here as counts instead of errors.
type MergeResult struct {
	Success      bool   `json:"success"`
	SourceTag    string `json:"source_tag"`
	NewCount     int    `json:"new_count"`
	UpdatedCount int    `json:"updated_count"`
	SkippedCount int    `json:"skipped_count"`
	FailedCount  int    `json:"failed_count"`
	TotalCount   int    `json:"total_count"`
}

// SearchResult holds one page of matched events plus the total match
// count usable for pagination.
type SearchResult struct {
	Events     []CanonicalEvent `json:"events"`
	TotalCount int              `json:"total_count"`
}

// AggregateResult is the orchestrator's response envelope: a page of
// events plus provenance metadata and new-vs-total counts.
type AggregateResult struct {
	Events     []CanonicalEvent `json:"events"`
	TotalCount int              `json:"total_count"`
	NewCount   int              `json:"new_count"`
	Provenance Provenance       `json:"provenance"`

	// ProvidersQueried and ProvidersFailed report partial provenance when
	// some upstream sources errored or timed out.
	ProvidersQueried []string `json:"providers_queried,omitempty"`
	ProvidersFailed  []string `json:"providers_failed,omitempty"`
}

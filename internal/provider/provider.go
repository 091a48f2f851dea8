// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package provider

import (
	"context"

	"github.com/venuepulse/venuepulse/internal/models"
)

// Provider is a single upstream event source. Implementations fetch raw
// provider records for a free-text query; the orchestrator canonicalizes
// and merges what comes back.
//
// Fetch must honor ctx cancellation and return an error rather than
// blocking indefinitely. Errors from one provider never abort the
// aggregation round; the orchestrator isolates them per source.
//
// Thread Safety: all implementations must be safe for concurrent use,
// since the orchestrator fans out to all providers in parallel.
type Provider interface {
	// Name identifies the source (e.g. "eventbrite"). It tags every
	// record's SourceProvider field and all per-provider metrics.
	Name() string

	// Fetch retrieves upstream records matching the query. An empty
	// query means "everything upcoming". A nil slice with a nil error
	// is a valid empty result.
	Fetch(ctx context.Context, query string) ([]models.ProviderEvent, error)
}

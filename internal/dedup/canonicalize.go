// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package dedup

import (
	"github.com/venuepulse/venuepulse/internal/models"
)

// Canonicalize converts raw provider records into canonical events with
// slug and deterministic ID populated. Malformed records (missing title,
// unparseable date) are dropped and reported back; the pipeline logs the
// reason instead of crashing.
func Canonicalize(raw []models.ProviderEvent) (events []models.CanonicalEvent, dropped []error) {
	if len(raw) == 0 {
		return nil, nil
	}

	events = make([]models.CanonicalEvent, 0, len(raw))
	for i := range raw {
		ev, err := raw[i].Canonicalize()
		if err != nil {
			dropped = append(dropped, &models.ProviderError{
				Provider: raw[i].SourceProvider,
				Err:      err,
			})
			continue
		}
		Finalize(ev)
		events = append(events, *ev)
	}
	return events, dropped
}

// Finalize fills the derived fields of a canonical event: the normalized
// slug, the deterministic composite ID, and the completeness score.
// Idempotent; safe to call on already-finalized events.
func Finalize(ev *models.CanonicalEvent) {
	ev.NormalizedSlug = NormalizeSlug(ev.Title)
	ev.ID = models.CompositeID(ev.NormalizedSlug, ev.StartDate, ev.VenueName)
	ev.CompletenessScore = ev.Completeness()
}

// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package dedup

import (
	"time"

	"github.com/venuepulse/venuepulse/internal/models"
)

// Options controls duplicate judgment and survivor selection.
type Options struct {
	// TimeWindowMinutes is the maximum absolute start-time delta, in
	// minutes, under which two events may still be the same occurrence.
	TimeWindowMinutes int `koanf:"time_window_minutes" validate:"gte=0"`

	// TitleSimilarityThreshold is the minimum title similarity ratio
	// (range [0,1]) for two events to be judged duplicates.
	TitleSimilarityThreshold float64 `koanf:"title_similarity_threshold" validate:"gte=0,lte=1"`

	// VenueMatchRequired makes an exact normalized venue match a hard
	// gate in addition to the title/time heuristics.
	VenueMatchRequired bool `koanf:"venue_match_required"`

	// PreserveProvider, when set, makes any cluster member sourced from
	// this provider win survivor selection regardless of completeness.
	PreserveProvider string `koanf:"preserve_provider"`
}

// DefaultOptions returns the standard comparison policy.
func DefaultOptions() Options {
	return Options{
		TimeWindowMinutes:        90,
		TitleSimilarityThreshold: 0.6,
		VenueMatchRequired:       false,
	}
}

// AreSimilar judges whether two events describe the same real-world
// occurrence under the given comparison policy.
//
// The judgment is deliberately conservative: events lacking both title
// and date are never similar, and when neither event has a resolvable
// date the only accepted evidence is exact slug equality.
func AreSimilar(a, b *models.CanonicalEvent, opts Options) bool {
	aInstant := a.StartInstant()
	bInstant := b.StartInstant()

	// Nothing to compare at all: conservative, avoid false merges.
	if a.Title == "" && aInstant.IsZero() {
		return false
	}
	if b.Title == "" && bInstant.IsZero() {
		return false
	}

	if opts.VenueMatchRequired && NormalizeSlug(a.VenueName) != NormalizeSlug(b.VenueName) {
		return false
	}

	slugA := eventSlug(a)
	slugB := eventSlug(b)

	// No resolvable date on either side: exact slug equality only.
	if aInstant.IsZero() && bInstant.IsZero() {
		return slugA != "" && slugA == slugB
	}

	// Both dates resolve: the time window is a hard gate regardless of
	// how similar the titles are.
	if !aInstant.IsZero() && !bInstant.IsZero() {
		delta := aInstant.Sub(bInstant)
		if delta < 0 {
			delta = -delta
		}
		if delta > time.Duration(opts.TimeWindowMinutes)*time.Minute {
			return false
		}
	}

	return titleSimilarity(slugA, slugB) >= opts.TitleSimilarityThreshold
}

// eventSlug returns the event's comparison slug, deriving it from the
// title when the normalizer hasn't run yet.
func eventSlug(e *models.CanonicalEvent) string {
	if e.NormalizedSlug != "" {
		return e.NormalizedSlug
	}
	return NormalizeSlug(e.Title)
}

// titleSimilarity computes a token-overlap ratio (Sørensen–Dice
// coefficient) between two normalized slugs. Identical slugs score 1.0,
// disjoint token sets score 0.0.
func titleSimilarity(slugA, slugB string) float64 {
	if slugA == "" || slugB == "" {
		return 0
	}
	if slugA == slugB {
		return 1
	}

	tokensA := slugTokens(slugA)
	tokensB := slugTokens(slugB)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	set := make(map[string]int, len(tokensA))
	for _, tok := range tokensA {
		set[tok]++
	}

	overlap := 0
	for _, tok := range tokensB {
		if set[tok] > 0 {
			set[tok]--
			overlap++
		}
	}

	return 2 * float64(overlap) / float64(len(tokensA)+len(tokensB))
}

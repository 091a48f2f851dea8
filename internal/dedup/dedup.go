// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package dedup

import (
	"github.com/venuepulse/venuepulse/internal/models"
)

// cluster is an ephemeral set of candidate records judged mutually
// similar under one comparison policy. Clustering is single-linkage: new
// candidates are tested against the cluster's representative (its first
// member), not against every member.
type cluster struct {
	representative *models.CanonicalEvent
	members        []models.CanonicalEvent
	order          int // input position of the first member
}

// Dedupe collapses near-duplicate events into one survivor per cluster.
//
// The pass is greedy single-linkage in original input order: each event
// is tested against each open cluster's representative with AreSimilar
// and joins the first match, otherwise it opens a new cluster. This is a
// deliberate heuristic, not globally optimal clustering; its cost is
// bounded by len(events) x open-cluster count rather than full pairwise
// comparison. Do not "upgrade" it to exhaustive linkage - that changes
// both performance and observable merge behavior.
//
// Empty input is returned unchanged (nil in, nil out). Events without a
// title carry nothing to compare and are always retained as-is.
//
// Survivor selection per cluster, in strict priority order:
//  1. Options.PreserveProvider match (ties broken by completeness, then
//     input order).
//  2. Highest completeness score.
//  3. Original input order (first seen wins).
func Dedupe(events []models.CanonicalEvent, opts Options) ([]models.CanonicalEvent, error) {
	if len(events) == 0 {
		return events, nil
	}

	// out holds pass-through (titleless) entries and placeholder slots
	// for cluster survivors, keyed by the cluster's first-seen position
	// so output order mirrors input order.
	type slot struct {
		event   models.CanonicalEvent
		cluster *cluster
	}
	slots := make([]slot, 0, len(events))
	var open []*cluster

	for i := range events {
		ev := events[i]
		if ev.Title == "" {
			// No duplicate judgment possible; retain verbatim.
			slots = append(slots, slot{event: ev})
			continue
		}

		joined := false
		for _, c := range open {
			if AreSimilar(c.representative, &ev, opts) {
				c.members = append(c.members, ev)
				joined = true
				break
			}
		}
		if !joined {
			c := &cluster{
				representative: &events[i],
				members:        []models.CanonicalEvent{ev},
				order:          i,
			}
			open = append(open, c)
			slots = append(slots, slot{cluster: c})
		}
	}

	result := make([]models.CanonicalEvent, 0, len(slots))
	for _, s := range slots {
		if s.cluster == nil {
			result = append(result, s.event)
			continue
		}
		survivor, err := selectSurvivor(s.cluster.members, opts)
		if err != nil {
			return nil, err
		}
		result = append(result, survivor)
	}

	return result, nil
}

// selectSurvivor resolves a cluster to exactly one record. A cluster
// with zero members is an engine invariant violation and fails fast.
func selectSurvivor(members []models.CanonicalEvent, opts Options) (models.CanonicalEvent, error) {
	if len(members) == 0 {
		return models.CanonicalEvent{}, &models.InvariantError{
			Message: "dedup cluster resolved to zero survivors",
		}
	}

	best := 0
	for i := 1; i < len(members); i++ {
		if survivorLess(&members[best], &members[i], opts) {
			best = i
		}
	}
	return members[best], nil
}

// survivorLess reports whether candidate beats the current best. Members
// are visited in input order, so strict inequality preserves first-seen
// wins on ties.
func survivorLess(best, candidate *models.CanonicalEvent, opts Options) bool {
	if opts.PreserveProvider != "" {
		bestPreferred := best.SourceProvider == opts.PreserveProvider
		candPreferred := candidate.SourceProvider == opts.PreserveProvider
		if bestPreferred != candPreferred {
			return candPreferred
		}
		// Both preferred or both not: fall through to completeness.
	}
	return candidate.Completeness() > best.Completeness()
}

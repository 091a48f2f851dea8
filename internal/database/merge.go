// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package database

import (
	"context"

	"github.com/venuepulse/venuepulse/internal/dedup"
	"github.com/venuepulse/venuepulse/internal/logging"
	"github.com/venuepulse/venuepulse/internal/metrics"
	"github.com/venuepulse/venuepulse/internal/models"
)

// Merge deduplicates a batch of incoming events against the currently
// active stored set and upserts the survivors.
//
// The dedup pass runs over the union of stored events and the new batch,
// stored events first, so a record already represented by an earlier
// provider pass wins first-seen ties and re-ingestion never reintroduces
// a duplicate.
//
// Per-record storage failures are isolated: a failed upsert is retried
// once, then counted and logged without aborting the remaining batch.
// Merge only returns an error when the store itself is unreachable or a
// dedup invariant is violated.
func (db *DB) Merge(ctx context.Context, newEvents []models.CanonicalEvent, sourceTag string) (*models.MergeResult, error) {
	result := &models.MergeResult{SourceTag: sourceTag}
	metrics.MergeBatches.WithLabelValues(sourceTag).Inc()

	if len(newEvents) == 0 {
		result.Success = true
		total, err := db.countActive(ctx)
		if err != nil {
			return nil, err
		}
		result.TotalCount = total
		return result, nil
	}

	stored, err := db.ListActiveEvents(ctx)
	if err != nil {
		return nil, err
	}

	storedIDs := make(map[string]bool, len(stored))
	union := make([]models.CanonicalEvent, 0, len(stored)+len(newEvents))
	for i := range stored {
		storedIDs[stored[i].ID] = true
		union = append(union, stored[i])
	}
	for i := range newEvents {
		ev := newEvents[i]
		dedup.Finalize(&ev)
		union = append(union, ev)
	}

	survivors, err := dedup.Dedupe(union, db.dedupOpts)
	if err != nil {
		return nil, err
	}
	if discarded := len(union) - len(survivors); discarded > 0 {
		metrics.EventsDeduplicated.Add(float64(discarded))
		result.SkippedCount = discarded
	}

	// A stored event losing its cluster to a richer incoming record is
	// deactivated so exactly one record per cluster stays on read paths.
	survivorIDs := make(map[string]bool, len(survivors))
	for i := range survivors {
		survivorIDs[survivors[i].ID] = true
	}
	for i := range stored {
		if survivorIDs[stored[i].ID] {
			continue
		}
		if err := db.DeactivateEvent(ctx, stored[i].ID); err != nil {
			result.FailedCount++
			metrics.MergeFailures.Inc()
			logging.Err(err).Str("event_id", stored[i].ID).Msg("Failed to deactivate displaced event")
		}
	}

	for i := range survivors {
		ev := &survivors[i]

		existed := storedIDs[ev.ID]
		if err := db.upsertWithRetry(ctx, ev); err != nil {
			result.FailedCount++
			metrics.MergeFailures.Inc()
			logging.Err(err).
				Str("event_id", ev.ID).
				Str("title", ev.Title).
				Str("source", sourceTag).
				Msg("Event upsert failed after retry")
			continue
		}

		if existed {
			result.UpdatedCount++
		} else {
			result.NewCount++
		}
	}

	total, err := db.countActive(ctx)
	if err != nil {
		return nil, err
	}
	result.TotalCount = total
	result.Success = true

	logging.Info().
		Str("source", sourceTag).
		Int("new", result.NewCount).
		Int("updated", result.UpdatedCount).
		Int("skipped", result.SkippedCount).
		Int("failed", result.FailedCount).
		Int("total", result.TotalCount).
		Msg("Merge complete")

	return result, nil
}

// upsertWithRetry retries a failed upsert exactly once before giving up.
func (db *DB) upsertWithRetry(ctx context.Context, ev *models.CanonicalEvent) error {
	if err := db.UpsertEvent(ctx, ev); err == nil {
		return nil
	}
	if err := db.UpsertEvent(ctx, ev); err != nil {
		return &models.StorageError{EventID: ev.ID, Op: "upsert", Err: err}
	}
	return nil
}

// countActive returns the number of active events in the retention
// window.
func (db *DB) countActive(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events
		 WHERE is_active = TRUE AND (start_date IS NULL OR start_date >= ?)`,
		db.retentionCutoff()).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package database

import (
	"context"
	"fmt"

	"github.com/venuepulse/venuepulse/internal/logging"
	"github.com/venuepulse/venuepulse/internal/metrics"
)

// Cleanup deactivates every event whose start date precedes the
// retention window. The orchestrator runs it before every read path, so
// expired events never surface even if the periodic service is behind;
// read queries additionally apply the cutoff as a belt-and-braces
// predicate. Returns the number of events deactivated.
func (db *DB) Cleanup(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE events SET is_active = FALSE, updated_at = ?
		 WHERE is_active = TRUE AND start_date IS NOT NULL AND start_date < ?`,
		db.now(), db.retentionCutoff())
	if err != nil {
		return 0, fmt.Errorf("cleanup failed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get cleanup row count: %w", err)
	}

	if affected > 0 {
		metrics.EventsCleaned.Add(float64(affected))
		logging.Info().
			Int64("deactivated", affected).
			Int("retention_days", db.cfg.RetentionDays).
			Msg("Retention cleanup deactivated expired events")
	}

	return affected, nil
}

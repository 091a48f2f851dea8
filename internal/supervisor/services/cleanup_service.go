// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package services

import (
	"context"
	"time"

	"github.com/venuepulse/venuepulse/internal/logging"
)

// Cleaner is the retention cleanup surface; *database.DB satisfies it.
type Cleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// CleanupService runs retention cleanup on a fixed interval so expired
// events get deactivated even when no aggregation request comes in. The
// orchestrator still runs a lazy cleanup per request; this service keeps
// the store tidy during quiet periods.
type CleanupService struct {
	cleaner  Cleaner
	interval time.Duration
	name     string
}

// NewCleanupService creates the periodic cleanup wrapper. Intervals <= 0
// default to one hour.
func NewCleanupService(cleaner Cleaner, interval time.Duration) *CleanupService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CleanupService{
		cleaner:  cleaner,
		interval: interval,
		name:     "retention-cleanup",
	}
}

// Serve implements suture.Service. One failed round is logged and the
// ticker continues; a persistently failing store will surface through
// the per-round error logs and the aggregation path's own handling.
func (s *CleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run once at startup so a long interval doesn't leave a freshly
	// restarted instance serving stale rows.
	s.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *CleanupService) runOnce(ctx context.Context) {
	deactivated, err := s.cleaner.Cleanup(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Scheduled retention cleanup failed")
		return
	}
	if deactivated > 0 {
		logging.Info().Int64("deactivated", deactivated).Msg("Scheduled retention cleanup completed")
	}
}

// String implements fmt.Stringer for suture log messages.
func (s *CleanupService) String() string {
	return s.name
}

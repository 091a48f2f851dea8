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

// Sweeper is the cache sweep surface; *cache.Cache satisfies it.
type Sweeper interface {
	Sweep() int
}

// SweepService evicts expired cache entries on a fixed interval. Cache
// reads already expire entries passively; the sweep reclaims memory for
// keys nobody asks for again.
type SweepService struct {
	sweeper  Sweeper
	interval time.Duration
	name     string
}

// NewSweepService creates the periodic sweep wrapper. Intervals <= 0
// default to one minute.
func NewSweepService(sweeper Sweeper, interval time.Duration) *SweepService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SweepService{
		sweeper:  sweeper,
		interval: interval,
		name:     "cache-sweep",
	}
}

// Serve implements suture.Service.
func (s *SweepService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if evicted := s.sweeper.Sweep(); evicted > 0 {
				logging.Debug().Int("evicted", evicted).Msg("Cache sweep evicted expired entries")
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// String implements fmt.Stringer for suture log messages.
func (s *SweepService) String() string {
	return s.name
}

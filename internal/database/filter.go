// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package database

import (
	"strings"
	"time"

	"github.com/venuepulse/venuepulse/internal/timewindow"
)

// Price bucket names accepted by EventFilter.PriceBucket.
const (
	PriceBucketFree = "free"
	PriceBucketPaid = "paid"
)

// EventFilter contains filter parameters for event search and list
// queries. All fields are optional and combine with AND logic.
//
//   - Query: case-insensitive substring match across title, description,
//     and venue name
//   - Category: exact category equality
//   - TimeBucket: relative-time bucket name (see timewindow package);
//     evaluated against the injected clock, not in SQL
//   - PriceBucket: "free" or "paid"
//   - Limit/Offset: pagination; Limit 0 applies the default page size
type EventFilter struct {
	Query       string            `json:"query" validate:"max=200"`
	Category    string            `json:"category" validate:"max=100"`
	TimeBucket  timewindow.Bucket `json:"time_bucket"`
	PriceBucket string            `json:"price_bucket" validate:"omitempty,oneof=free paid"`
	Limit       int               `json:"limit" validate:"gte=0,lte=1000"`
	Offset      int               `json:"offset" validate:"gte=0"`
}

// buildWhereClause builds the WHERE clause and args for event queries.
// The retention cutoff and active flag are always applied so expired
// events never surface even when cleanup hasn't run on schedule.
func (f EventFilter) buildWhereClause(retentionCutoff time.Time) (string, []interface{}) {
	conditions := []string{"is_active = TRUE", "(start_date IS NULL OR start_date >= ?)"}
	args := []interface{}{retentionCutoff}

	if f.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, f.Category)
	}
	switch f.PriceBucket {
	case PriceBucketFree:
		conditions = append(conditions, "is_free = TRUE")
	case PriceBucketPaid:
		conditions = append(conditions, "is_free = FALSE")
	}
	if f.Query != "" {
		conditions = append(conditions,
			"(lower(title) LIKE ? OR lower(description) LIKE ? OR lower(venue_name) LIKE ?)")
		needle := "%" + strings.ToLower(f.Query) + "%"
		args = append(args, needle, needle, needle)
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// getPaginationDefaults returns normalized limit and offset values.
func (f EventFilter) getPaginationDefaults() (int, int) {
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

// Package database implements the merge & persistence store over DuckDB.
//
// It exclusively owns canonical event records once committed. Writes go
// through idempotent upsert keyed by the deterministic composite ID, and
// every merge deduplicates the incoming batch against the active stored
// set first, so concurrent merges of overlapping data converge to the
// same final state without locking.
package database

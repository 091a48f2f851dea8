// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

// Package aggregator orchestrates the event pipeline for one request:
// validate the query, expire stale rows, serve from cache when possible,
// read the store, fan out to providers when stored coverage is thin,
// merge what comes back, and answer with provenance metadata.
//
// Failure handling is deliberately asymmetric: a single failing provider
// is isolated and logged, the store failing alone degrades to fresh
// provider data, and only the combination of a down store with every
// provider failing produces a hard error.
package aggregator

// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

// Package api provides the thin HTTP surface over the aggregation
// pipeline using the chi router.
//
// Endpoints:
//
//	GET  /api/v1/events          - aggregated event search
//	POST /api/v1/events/refresh  - force a provider fan-out and merge
//	GET  /api/v1/categories      - distinct active categories
//	GET  /api/v1/health          - liveness plus store connectivity
//	GET  /metrics                - Prometheus scrape endpoint
//
// Handlers translate HTTP to aggregator calls and map the error taxonomy
// to status codes: validation errors answer 400, a fully unavailable
// backend answers 503, everything else 500.
package api

// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

// Package provider defines the upstream source contract and its
// implementations. A Provider fetches raw event records for a query;
// ResilientProvider adds circuit breaker protection and a bounded
// per-call timeout so one flapping upstream cannot degrade every
// aggregation round.
package provider

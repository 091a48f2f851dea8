// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

// Package cache provides the short-TTL read-through cache in front of
// the event store. Instances carry an injectable clock and an explicit
// Start/Stop sweep lifecycle so tests construct isolated caches instead
// of sharing process-wide state.
package cache

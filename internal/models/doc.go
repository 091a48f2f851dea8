// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

// Package models defines the canonical event schema shared by every
// pipeline component, the tolerant provider boundary type, result
// envelopes, and the pipeline's error taxonomy.
package models

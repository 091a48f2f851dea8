// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

// Package dedup implements the fuzzy deduplication core: slug
// normalization, pairwise similarity judgment, and greedy single-linkage
// clustering with deterministic survivor selection.
//
// Dedupe is idempotent (Dedupe(Dedupe(x)) == Dedupe(x)) and leaves no
// residual duplicates: no two survivors in its output are similar under
// the same options.
package dedup

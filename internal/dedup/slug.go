// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package dedup

import "strings"

// NormalizeSlug converts a title (and optionally a venue) into the
// deterministic comparison key used throughout the pipeline.
//
// The transformation lower-cases the input, strips everything outside
// [a-z0-9 -], collapses runs of whitespace and punctuation into single
// hyphens, and trims leading/trailing hyphens. When a venue is supplied a
// normalized venue segment is appended with a double-hyphen delimiter.
//
// NormalizeSlug is pure: inputs that differ only in case or punctuation
// normalize to the identical slug. An empty title yields an empty slug.
func NormalizeSlug(title string, venue ...string) string {
	slug := normalizeSegment(title)
	if len(venue) > 0 && venue[0] != "" {
		if vs := normalizeSegment(venue[0]); vs != "" {
			slug += "--" + vs
		}
	}
	return slug
}

// normalizeSegment normalizes a single slug segment.
func normalizeSegment(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // suppress leading hyphens
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			// Whitespace, punctuation, and anything non-ASCII collapse to
			// a single separating hyphen.
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// slugTokens splits a slug into its hyphen-delimited tokens, skipping
// empty segments (a venue delimiter produces one).
func slugTokens(slug string) []string {
	if slug == "" {
		return nil
	}
	parts := strings.Split(slug, "-")
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

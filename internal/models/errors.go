// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package models

import (
	"errors"
	"fmt"
)

// Error taxonomy for the aggregation pipeline.
//
// Per-item provider and storage errors are absorbed into aggregate
// counters (skipped, failed) and never bubble out of batch operations.
// Validation errors reject a call early. Invariant violations (e.g. a
// dedup cluster resolving to zero survivors) fail fast instead of
// silently dropping data.
var (
	// ErrMissingTitle marks a provider record without the one mandatory
	// field. Such records are dropped at the boundary with a logged reason.
	ErrMissingTitle = errors.New("provider record has no title")

	// ErrMalformedRecord marks a provider record that could not be
	// converted to the canonical model.
	ErrMalformedRecord = errors.New("malformed provider record")

	// ErrStoreUnavailable indicates the persistent store itself is down.
	// Combined with total provider failure this is the only condition
	// that produces a hard error response.
	ErrStoreUnavailable = errors.New("event store unavailable")
)

// ValidationError describes a malformed filter or option set. Callers
// receive it before any work is performed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// ProviderError wraps a single upstream source's fetch or normalize
// failure. The orchestrator isolates it: the provider is skipped and the
// request proceeds with the remaining sources.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StorageError wraps a single record's upsert or delete failure after the
// retry attempt was exhausted. Batch operations count it and continue.
type StorageError struct {
	EventID string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.EventID, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// InvariantError signals an engine-invariant violation that must fail
// fast rather than degrade into silent data loss.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Message
}

// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package provider

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/venuepulse/venuepulse/internal/logging"
	"github.com/venuepulse/venuepulse/internal/metrics"
	"github.com/venuepulse/venuepulse/internal/models"
)

// ResilientProvider wraps a Provider with circuit breaker protection and a
// bounded per-call timeout. A flapping or slow upstream trips the breaker
// and subsequent rounds skip it immediately instead of waiting out the
// timeout every time.
//
// DETERMINISM NOTE: the breaker uses real time (via sony/gobreaker) for
// its interval and timeout windows. The timing decides when to retry a
// failing upstream, not data integrity, so tests exercise the wrapped
// provider directly or drive the breaker through its failure thresholds.
type ResilientProvider struct {
	inner   Provider
	cb      *gobreaker.CircuitBreaker[[]models.ProviderEvent]
	timeout time.Duration
}

// Breaker trip threshold: open after 60% failures over at least 5 calls
// in the measurement window.
const (
	breakerMinRequests  = 5
	breakerFailureRatio = 0.6
	breakerInterval     = time.Minute
	breakerOpenPeriod   = 2 * time.Minute
)

// NewResilientProvider wraps inner with a named circuit breaker. timeout
// bounds every Fetch call; zero means no per-call bound beyond the
// caller's context.
func NewResilientProvider(inner Provider, timeout time.Duration) *ResilientProvider {
	name := inner.Name()

	cb := gobreaker.NewCircuitBreaker[[]models.ProviderEvent](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3, // half-open probe budget
		Interval:    breakerInterval,
		Timeout:     breakerOpenPeriod,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= breakerFailureRatio
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("provider", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("Provider circuit breaker state transition")
		},
	})

	return &ResilientProvider{inner: inner, cb: cb, timeout: timeout}
}

// Name returns the wrapped provider's name.
func (rp *ResilientProvider) Name() string { return rp.inner.Name() }

// Fetch calls the wrapped provider through the breaker. When the circuit
// is open the call is rejected without touching the upstream; the
// returned error still carries the provider name so the orchestrator can
// count it like any other source failure.
func (rp *ResilientProvider) Fetch(ctx context.Context, query string) ([]models.ProviderEvent, error) {
	events, err := rp.cb.Execute(func() ([]models.ProviderEvent, error) {
		callCtx := ctx
		if rp.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, rp.timeout)
			defer cancel()
		}
		return rp.inner.Fetch(callCtx, query)
	})

	if err != nil {
		outcome := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		metrics.ProviderFetches.WithLabelValues(rp.Name(), outcome).Inc()
		return nil, &models.ProviderError{Provider: rp.Name(), Err: err}
	}

	metrics.ProviderFetches.WithLabelValues(rp.Name(), "success").Inc()
	metrics.ProviderEventsIngested.WithLabelValues(rp.Name()).Add(float64(len(events)))
	return events, nil
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

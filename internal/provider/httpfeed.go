// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/venuepulse/venuepulse/internal/config"
	"github.com/venuepulse/venuepulse/internal/models"
)

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics, preventing unbounded allocation on large upstream errors.
const maxErrorBodySize = 64 * 1024 // 64KB

// HTTPFeedProvider fetches events from a JSON feed endpoint. The feed is
// expected to answer GET <url>?q=<query> with an envelope:
//
//	{"events": [ {provider record}, ... ]}
//
// Rate-limited responses (HTTP 429) are retried with exponential backoff
// (1s, 2s, 4s), honoring Retry-After when the upstream sends one.
//
// Thread Safety: safe for concurrent use; each call builds its own request.
type HTTPFeedProvider struct {
	name           string
	feedURL        string
	client         *http.Client
	maxRetries     int
	retryBaseDelay time.Duration
}

// feedEnvelope is the wire shape of a feed response.
type feedEnvelope struct {
	Events []models.ProviderEvent `json:"events"`
}

// NewHTTPFeedProvider builds a feed provider from its config entry. The
// HTTP client timeout comes from cfg.Timeout (default 10s when unset).
func NewHTTPFeedProvider(cfg config.ProviderConfig) *HTTPFeedProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFeedProvider{
		name:           cfg.Name,
		feedURL:        cfg.URL,
		client:         &http.Client{Timeout: timeout},
		maxRetries:     3,
		retryBaseDelay: time.Second,
	}
}

// Name implements Provider.
func (p *HTTPFeedProvider) Name() string { return p.name }

// Fetch implements Provider. The raw records are returned as-is; dropping
// malformed entries is the canonicalization layer's job so every source
// gets the same boundary treatment.
func (p *HTTPFeedProvider) Fetch(ctx context.Context, query string) ([]models.ProviderEvent, error) {
	reqURL, err := p.buildURL(query)
	if err != nil {
		return nil, err
	}

	resp, err := p.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("feed returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var envelope feedEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}

	return envelope.Events, nil
}

func (p *HTTPFeedProvider) buildURL(query string) (string, error) {
	u, err := url.Parse(p.feedURL)
	if err != nil {
		return "", fmt.Errorf("invalid feed URL %q: %w", p.feedURL, err)
	}
	if query != "" {
		q := u.Query()
		q.Set("q", query)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// doRequestWithRateLimit performs the GET with automatic HTTP 429 handling.
// The context is used for cancellation during backoff waits.
func (p *HTTPFeedProvider) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close() // retrying anyway

		if attempt == p.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", p.maxRetries)
			break
		}

		delay := p.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// readBodyForError reads at most maxErrorBodySize of a response body for
// error reporting, flagging truncation when the limit is hit.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

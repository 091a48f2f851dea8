// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

// Package services adapts the long-running components to suture.Service.
// Each wrapper owns the loop-and-select plumbing (tickers, graceful HTTP
// shutdown) so the wrapped component stays a plain synchronous API.
package services

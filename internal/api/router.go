// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/venuepulse/venuepulse/internal/config"
)

// NewRouter assembles the chi router: global middleware, the versioned
// API surface, and the Prometheus scrape endpoint.
func NewRouter(cfg *config.ServerConfig, handler *Handler) http.Handler {
	mw := NewMiddleware(&MiddlewareConfig{
		CORSAllowedOrigins: cfg.CORSOrigins,
		RateLimitRequests:  cfg.RateLimitReqs,
		RateLimitWindow:    cfg.RateLimitWindow,
	})

	r := chi.NewRouter()

	// Global stack, applied to all routes in order.
	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(RequestLogger())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())

		r.Get("/health", handler.Health)
		r.Get("/events", handler.Events)
		r.Post("/events/refresh", handler.Refresh)
		r.Get("/categories", handler.Categories)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

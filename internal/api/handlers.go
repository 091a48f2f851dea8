// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/venuepulse/venuepulse/internal/aggregator"
	"github.com/venuepulse/venuepulse/internal/database"
	"github.com/venuepulse/venuepulse/internal/logging"
	"github.com/venuepulse/venuepulse/internal/models"
	"github.com/venuepulse/venuepulse/internal/timewindow"
)

// EventAggregator is the orchestration surface the handlers need.
// *aggregator.Aggregator satisfies it; tests substitute fakes.
type EventAggregator interface {
	Aggregate(ctx context.Context, q aggregator.Query) (*models.AggregateResult, error)
	Categories(ctx context.Context) ([]string, error)
}

// Pinger reports store connectivity for the health endpoint.
// *database.DB satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the HTTP handlers for the API surface.
type Handler struct {
	agg    EventAggregator
	pinger Pinger
}

// NewHandler creates the handler set. pinger may be nil; the health
// endpoint then reports only process liveness.
func NewHandler(agg EventAggregator, pinger Pinger) *Handler {
	return &Handler{agg: agg, pinger: pinger}
}

// Events handles GET /api/v1/events: parse the filter from query params,
// aggregate, and answer with the page plus provenance.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.agg.Aggregate(r.Context(), q)
	if err != nil {
		h.respondAggregateError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Refresh handles POST /api/v1/events/refresh: force a provider fan-out
// and merge regardless of stored coverage.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	q.ForceRefresh = true

	result, err := h.agg.Aggregate(r.Context(), q)
	if err != nil {
		h.respondAggregateError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Categories handles GET /api/v1/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.agg.Categories(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Categories query failed")
		respondError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"categories": categories})
}

// Health handles GET /api/v1/health. The store being down degrades the
// response body but still answers 200; aggregation can survive on
// providers alone, so a down store is "degraded", not "dead".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	storeStatus := "ok"
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			status = "degraded"
			storeStatus = "unavailable"
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": status,
		"store":  storeStatus,
	})
}

func (h *Handler) respondAggregateError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, models.ErrStoreUnavailable):
		logging.Ctx(r.Context()).Error().Err(err).Msg("Aggregation failed: store and all providers down")
		respondError(w, http.StatusServiceUnavailable, "event sources unavailable")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Aggregation failed")
		respondError(w, http.StatusInternalServerError, "aggregation failed")
	}
}

// parseQuery builds an aggregation query from URL parameters. Unknown
// time buckets are rejected here with a descriptive message rather than
// deeper in the pipeline.
func parseQuery(r *http.Request) (aggregator.Query, error) {
	params := r.URL.Query()

	filter := database.EventFilter{
		Query:       params.Get("q"),
		Category:    params.Get("category"),
		PriceBucket: params.Get("price_bucket"),
	}

	if bucket := params.Get("time_bucket"); bucket != "" {
		b := timewindow.Bucket(bucket)
		if !timewindow.Valid(b) {
			return aggregator.Query{}, &models.ValidationError{Field: "time_bucket", Message: "unknown bucket " + bucket}
		}
		filter.TimeBucket = b
	}

	var err error
	if filter.Limit, err = parseIntParam(params.Get("limit")); err != nil {
		return aggregator.Query{}, &models.ValidationError{Field: "limit", Message: "must be an integer"}
	}
	if filter.Offset, err = parseIntParam(params.Get("offset")); err != nil {
		return aggregator.Query{}, &models.ValidationError{Field: "offset", Message: "must be an integer"}
	}

	return aggregator.Query{Filter: filter}, nil
}

func parseIntParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

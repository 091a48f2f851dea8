// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/venuepulse/venuepulse/internal/aggregator"
	"github.com/venuepulse/venuepulse/internal/config"
	"github.com/venuepulse/venuepulse/internal/models"
)

// fakeAggregator records the last query and returns canned responses.
type fakeAggregator struct {
	lastQuery  aggregator.Query
	result     *models.AggregateResult
	err        error
	categories []string
}

func (f *fakeAggregator) Aggregate(ctx context.Context, q aggregator.Query) (*models.AggregateResult, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeAggregator) Categories(ctx context.Context) ([]string, error) {
	return f.categories, nil
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func newTestRouter(agg EventAggregator, pinger Pinger) http.Handler {
	cfg := &config.ServerConfig{
		CORSOrigins:     []string{"*"},
		RateLimitReqs:   1000,
		RateLimitWindow: time.Minute,
	}
	return NewRouter(cfg, NewHandler(agg, pinger))
}

func TestEvents_ParsesFilterParams(t *testing.T) {
	agg := &fakeAggregator{result: &models.AggregateResult{Provenance: models.ProvenanceStored}}
	router := newTestRouter(agg, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events?q=jazz&category=music&time_bucket=tonight&price_bucket=free&limit=10&offset=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	f := agg.lastQuery.Filter
	if f.Query != "jazz" || f.Category != "music" || string(f.TimeBucket) != "tonight" ||
		f.PriceBucket != "free" || f.Limit != 10 || f.Offset != 5 {
		t.Errorf("parsed filter = %+v", f)
	}
	if agg.lastQuery.ForceRefresh {
		t.Error("plain search must not force a refresh")
	}
}

func TestEvents_RejectsBadParams(t *testing.T) {
	agg := &fakeAggregator{result: &models.AggregateResult{}}
	router := newTestRouter(agg, nil)

	tests := []struct {
		name string
		url  string
	}{
		{"unknown time bucket", "/api/v1/events?time_bucket=someday"},
		{"non-integer limit", "/api/v1/events?limit=ten"},
		{"non-integer offset", "/api/v1/events?offset=-x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Errorf("expected JSON error body, got %q", rec.Body.String())
			}
		})
	}
}

func TestEvents_MapsErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation error", &models.ValidationError{Field: "limit", Message: "too large"}, http.StatusBadRequest},
		{"everything down", models.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"unexpected failure", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeAggregator{err: tt.err}, nil)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRefresh_ForcesFanOut(t *testing.T) {
	agg := &fakeAggregator{result: &models.AggregateResult{Provenance: models.ProvenanceMerged, NewCount: 4}}
	router := newTestRouter(agg, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/refresh?q=jazz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !agg.lastQuery.ForceRefresh {
		t.Error("refresh endpoint did not set ForceRefresh")
	}

	var result models.AggregateResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if result.NewCount != 4 || result.Provenance != models.ProvenanceMerged {
		t.Errorf("response = %+v", result)
	}
}

func TestCategories(t *testing.T) {
	agg := &fakeAggregator{categories: []string{"art", "music"}}
	router := newTestRouter(agg, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if got := body["categories"]; len(got) != 2 || got[0] != "art" {
		t.Errorf("categories = %v", got)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name      string
		pinger    Pinger
		wantStore string
	}{
		{"store up", &fakePinger{}, "ok"},
		{"store down", &fakePinger{err: errors.New("locked")}, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeAggregator{result: &models.AggregateResult{}}, tt.pinger)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["store"] != tt.wantStore {
				t.Errorf("store = %q, want %q", body["store"], tt.wantStore)
			}
		})
	}
}

func TestRouter_SetsRequestID(t *testing.T) {
	router := newTestRouter(&fakeAggregator{result: &models.AggregateResult{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}
}

func TestRouter_HonorsInboundRequestID(t *testing.T) {
	router := newTestRouter(&fakeAggregator{result: &models.AggregateResult{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.Header.Set("X-Request-ID", "req-abc123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-abc123" {
		t.Errorf("X-Request-ID = %q, want req-abc123", got)
	}
}

func TestRouter_ServesMetrics(t *testing.T) {
	router := newTestRouter(&fakeAggregator{result: &models.AggregateResult{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", rec.Code)
	}
}

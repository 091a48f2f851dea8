// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package models

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// DefaultEventTime is the fixed time-of-day assumed for events whose
// upstream listing carries a date but no start time. Most listings in this
// domain are evening events, so comparisons and time-window classification
// anchor on 20:00 rather than midnight.
const DefaultEventTime = "20:00"

// CanonicalEvent is the normalized internal representation of an event,
// independent of upstream provider shape. All components of the pipeline
// read and write this type.
//
// The ID is a deterministic composite key derived from the normalized
// title, start date, and venue, so re-ingesting the same real-world
// occurrence from any provider always maps to the same stored row.
type CanonicalEvent struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	NormalizedSlug string    `json:"normalized_slug"`
	Description    string    `json:"description,omitempty"`
	StartDate      time.Time `json:"start_date"`
	StartTime      string    `json:"start_time,omitempty"` // "HH:MM", empty if unknown upstream
	VenueName      string    `json:"venue_name,omitempty"`
	Address        string    `json:"address,omitempty"`
	Latitude       float64   `json:"latitude,omitempty"`
	Longitude      float64   `json:"longitude,omitempty"`
	PriceMin       float64   `json:"price_min,omitempty"`
	PriceMax       float64   `json:"price_max,omitempty"`
	Currency       string    `json:"currency,omitempty"`
	IsFree         bool      `json:"is_free"`
	Category       string    `json:"category,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	ExternalURL    string    `json:"external_url,omitempty"`
	ExternalID     string    `json:"external_id,omitempty"`
	SourceProvider string    `json:"source_provider"`

	// CompletenessScore is derived via Completeness(), never stored input.
	CompletenessScore int `json:"completeness_score,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// HasStartDate reports whether the event carries a resolvable start date.
func (e *CanonicalEvent) HasStartDate() bool {
	return !e.StartDate.IsZero()
}

// StartInstant resolves the event's comparable start instant from its
// date and time fields. Events without an explicit time default to
// DefaultEventTime rather than being excluded from comparison.
// Returns the zero time when no date is resolvable.
func (e *CanonicalEvent) StartInstant() time.Time {
	if !e.HasStartDate() {
		return time.Time{}
	}
	hour, minute := parseClock(e.StartTime)
	d := e.StartDate
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, d.Location())
}

// parseClock parses an "HH:MM" clock string, falling back to
// DefaultEventTime for empty or malformed input.
func parseClock(s string) (hour, minute int) {
	if s == "" {
		s = DefaultEventTime
	}
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return parseClock(DefaultEventTime)
	}
	return hour, minute
}

// MatchesQuery reports whether the event matches a free-text query the
// same way a store read would: case-insensitive substring match across
// title, description, and venue name.
func (e *CanonicalEvent) MatchesQuery(query string) bool {
	needle := strings.ToLower(query)
	return strings.Contains(strings.ToLower(e.Title), needle) ||
		strings.Contains(strings.ToLower(e.Description), needle) ||
		strings.Contains(strings.ToLower(e.VenueName), needle)
}

// Completeness returns the number of populated optional descriptive
// fields. It is used as a dedup survivor tie-breaker: the richer record
// wins the cluster.
func (e *CanonicalEvent) Completeness() int {
	score := 0
	for _, populated := range []bool{
		e.Description != "",
		e.VenueName != "",
		e.Address != "",
		e.Latitude != 0 || e.Longitude != 0,
		e.PriceMin != 0 || e.PriceMax != 0 || e.IsFree,
		e.Currency != "",
		e.Category != "",
		e.ImageURL != "",
		e.ExternalURL != "",
		e.StartTime != "",
	} {
		if populated {
			score++
		}
	}
	return score
}

// CompositeID derives the deterministic event ID from a normalized slug,
// start date, and venue. The same (title, date, venue) triple always
// yields the same ID, which is what makes concurrent merges idempotent.
func CompositeID(slug string, startDate time.Time, venue string) string {
	date := ""
	if !startDate.IsZero() {
		date = startDate.Format("2006-01-02")
	}
	raw := strings.Join([]string{slug, date, strings.ToLower(strings.TrimSpace(venue))}, "|")
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("evt_%x", sum[:16])
}

// ProviderEvent is the tolerant boundary type for raw provider payloads.
// Every field is optional except SourceProvider; conversion to the strict
// CanonicalEvent happens immediately at the boundary and records missing
// the one mandatory field (title) are rejected rather than propagated
// deeper into the pipeline.
type ProviderEvent struct {
	Title          string  `json:"title,omitempty"`
	Description    string  `json:"description,omitempty"`
	StartDate      string  `json:"start_date,omitempty"` // "2006-01-02"
	StartTime      string  `json:"start_time,omitempty"` // "HH:MM"
	VenueName      string  `json:"venue_name,omitempty"`
	Address        string  `json:"address,omitempty"`
	Latitude       float64 `json:"latitude,omitempty"`
	Longitude      float64 `json:"longitude,omitempty"`
	PriceMin       float64 `json:"price_min,omitempty"`
	PriceMax       float64 `json:"price_max,omitempty"`
	Currency       string  `json:"currency,omitempty"`
	IsFree         bool    `json:"is_free,omitempty"`
	Category       string  `json:"category,omitempty"`
	ImageURL       string  `json:"image_url,omitempty"`
	ExternalURL    string  `json:"external_url,omitempty"`
	ExternalID     string  `json:"external_id,omitempty"`
	SourceProvider string  `json:"source_provider"`
}

// Canonicalize converts a raw provider record into a CanonicalEvent.
// Returns ErrMissingTitle when the record has no title; callers drop such
// records with a logged reason instead of crashing the pipeline.
// The slug and deterministic ID are filled in by the dedup package's
// Canonicalizer to avoid an import cycle; this method only performs the
// field-level conversion and date parsing.
func (p *ProviderEvent) Canonicalize() (*CanonicalEvent, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, ErrMissingTitle
	}

	ev := &CanonicalEvent{
		Title:          title,
		Description:    p.Description,
		StartTime:      p.StartTime,
		VenueName:      strings.TrimSpace(p.VenueName),
		Address:        p.Address,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		PriceMin:       p.PriceMin,
		PriceMax:       p.PriceMax,
		Currency:       p.Currency,
		IsFree:         p.IsFree || (p.PriceMin == 0 && p.PriceMax == 0 && p.Currency == ""),
		Category:       p.Category,
		ImageURL:       p.ImageURL,
		ExternalURL:    p.ExternalURL,
		ExternalID:     p.ExternalID,
		SourceProvider: p.SourceProvider,
		IsActive:       true,
	}

	if p.StartDate != "" {
		d, err := time.Parse("2006-01-02", p.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: start_date %q", ErrMalformedRecord, p.StartDate)
		}
		ev.StartDate = d
	}

	return ev, nil
}

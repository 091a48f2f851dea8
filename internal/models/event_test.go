// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package models

import (
	"errors"
	"testing"
	"time"
)

func TestCompositeID_Deterministic(t *testing.T) {
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	a := CompositeID("dj-set", date, "Club Vertigo")
	b := CompositeID("dj-set", date, "club vertigo")

	if a != b {
		t.Errorf("expected identical IDs for same triple, got %q vs %q", a, b)
	}

	c := CompositeID("dj-set", date.AddDate(0, 0, 7), "Club Vertigo")
	if a == c {
		t.Error("expected different IDs for different dates")
	}
}

func TestCompositeID_EmptyDate(t *testing.T) {
	a := CompositeID("dj-set", time.Time{}, "")
	b := CompositeID("dj-set", time.Time{}, "")
	if a != b {
		t.Errorf("expected identical IDs for zero dates, got %q vs %q", a, b)
	}
}

func TestStartInstant_DefaultsTime(t *testing.T) {
	ev := CanonicalEvent{StartDate: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)}

	got := ev.StartInstant()
	if got.Hour() != 20 || got.Minute() != 0 {
		t.Errorf("expected default 20:00, got %02d:%02d", got.Hour(), got.Minute())
	}

	ev.StartTime = "22:30"
	got = ev.StartInstant()
	if got.Hour() != 22 || got.Minute() != 30 {
		t.Errorf("expected 22:30, got %02d:%02d", got.Hour(), got.Minute())
	}
}

func TestStartInstant_MalformedClock(t *testing.T) {
	ev := CanonicalEvent{
		StartDate: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		StartTime: "not-a-time",
	}
	got := ev.StartInstant()
	if got.Hour() != 20 {
		t.Errorf("malformed clock should fall back to default, got hour %d", got.Hour())
	}
}

func TestStartInstant_NoDate(t *testing.T) {
	ev := CanonicalEvent{StartTime: "22:00"}
	if !ev.StartInstant().IsZero() {
		t.Error("expected zero instant when no date is resolvable")
	}
}

func TestCompleteness(t *testing.T) {
	empty := CanonicalEvent{Title: "Show"}
	if got := empty.Completeness(); got != 0 {
		t.Errorf("bare event completeness = %d, want 0", got)
	}

	rich := CanonicalEvent{
		Title:       "Show",
		Description: "A show",
		VenueName:   "Club",
		Address:     "1 Main St",
		Latitude:    51.5,
		ImageURL:    "https://img",
		ExternalURL: "https://evt",
		Category:    "music",
		StartTime:   "21:00",
	}
	if got := rich.Completeness(); got <= empty.Completeness() {
		t.Errorf("richer event should score higher, got %d", got)
	}
}

func TestCanonicalize_MissingTitle(t *testing.T) {
	p := ProviderEvent{SourceProvider: "eventbrite", VenueName: "Club"}
	_, err := p.Canonicalize()
	if !errors.Is(err, ErrMissingTitle) {
		t.Errorf("expected ErrMissingTitle, got %v", err)
	}
}

func TestCanonicalize_MalformedDate(t *testing.T) {
	p := ProviderEvent{Title: "Show", StartDate: "28/08/2026", SourceProvider: "scraper"}
	_, err := p.Canonicalize()
	if !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestCanonicalize_Valid(t *testing.T) {
	p := ProviderEvent{
		Title:          "  DJ Set  ",
		StartDate:      "2026-08-28",
		StartTime:      "22:00",
		VenueName:      "Club Vertigo",
		SourceProvider: "ticketmaster",
	}
	ev, err := p.Canonicalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Title != "DJ Set" {
		t.Errorf("title not trimmed: %q", ev.Title)
	}
	if !ev.IsActive {
		t.Error("canonicalized events should start active")
	}
	if ev.StartDate.Day() != 28 {
		t.Errorf("date not parsed: %v", ev.StartDate)
	}
}

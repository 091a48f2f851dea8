// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package dedup

import (
	"testing"
	"time"

	"github.com/venuepulse/venuepulse/internal/models"
)

func mkEvent(title, venue, date, clock, provider string) models.CanonicalEvent {
	ev := models.CanonicalEvent{
		Title:          title,
		VenueName:      venue,
		StartTime:      clock,
		SourceProvider: provider,
		IsActive:       true,
	}
	if date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			panic(err)
		}
		ev.StartDate = d
	}
	Finalize(&ev)
	return ev
}

func TestAreSimilar_TimeWindowGate(t *testing.T) {
	// Two same-titled events 3 hours apart are not merged under a
	// 90-minute window, but are under a 240-minute window.
	a := mkEvent("Warehouse Rave", "Depot", "2026-08-28", "20:00", "eventbrite")
	b := mkEvent("Warehouse Rave", "Depot", "2026-08-28", "23:00", "scraper")

	opts := DefaultOptions()
	if AreSimilar(&a, &b, opts) {
		t.Error("3h apart should not be similar with a 90-minute window")
	}

	opts.TimeWindowMinutes = 240
	if !AreSimilar(&a, &b, opts) {
		t.Error("3h apart should be similar with a 240-minute window")
	}
}

func TestAreSimilar_TitleThreshold(t *testing.T) {
	a := mkEvent("DJ Set", "Club", "2026-08-28", "22:00", "eventbrite")
	b := mkEvent("DJ SET!", "Club", "2026-08-28", "22:30", "ticketmaster")
	c := mkEvent("Poetry Reading", "Club", "2026-08-28", "22:15", "scraper")

	opts := DefaultOptions()
	if !AreSimilar(&a, &b, opts) {
		t.Error("punctuation/case variants within the window should be similar")
	}
	if AreSimilar(&a, &c, opts) {
		t.Error("disjoint titles should not be similar")
	}
}

func TestAreSimilar_VenueMatchRequired(t *testing.T) {
	a := mkEvent("DJ Set", "Club Vertigo", "2026-08-28", "22:00", "eventbrite")
	b := mkEvent("DJ Set", "Warehouse 23", "2026-08-28", "22:00", "scraper")

	opts := DefaultOptions()
	if !AreSimilar(&a, &b, opts) {
		t.Error("venue should not gate by default")
	}

	opts.VenueMatchRequired = true
	if AreSimilar(&a, &b, opts) {
		t.Error("differing venues must not match when VenueMatchRequired")
	}

	b.VenueName = "Club: Vertigo!" // normalizes equal
	if !AreSimilar(&a, &b, opts) {
		t.Error("venues that normalize identically should satisfy the gate")
	}
}

func TestAreSimilar_NoDates(t *testing.T) {
	a := mkEvent("DJ Set", "", "", "", "scraper")
	b := mkEvent("dj   set!!", "", "", "", "scraper")
	c := mkEvent("DJ Set Extended", "", "", "", "scraper")

	opts := DefaultOptions()
	// Without any resolvable date, only exact slug equality counts.
	if !AreSimilar(&a, &b, opts) {
		t.Error("identical slugs with no dates should match")
	}
	if AreSimilar(&a, &c, opts) {
		t.Error("fuzzy title match must not apply without dates")
	}
}

func TestAreSimilar_NothingToCompare(t *testing.T) {
	a := models.CanonicalEvent{}
	b := models.CanonicalEvent{}
	if AreSimilar(&a, &b, DefaultOptions()) {
		t.Error("events lacking both title and date are never similar")
	}
}

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"dj-set", "dj-set", 1.0},
		{"dj-set", "poetry-night", 0.0},
		{"", "dj-set", 0.0},
		{"dj-set-extended", "dj-set", 0.8}, // 2*2/(3+2)
	}
	for _, tt := range tests {
		if got := titleSimilarity(tt.a, tt.b); got != tt.want {
			t.Errorf("titleSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

// Package timewindow buckets event start instants into relative-time
// categories. Classify and Matches are pure functions of two instants so
// filter predicates and "starting soon" feeds stay deterministic under an
// injected clock.
package timewindow

import "time"

// Bucket is a relative-time category.
type Bucket string

const (
	Past       Bucket = "past"
	Now        Bucket = "now"          // within +/- 30 minutes
	NextHour   Bucket = "next-hour"    // within the coming hour
	Next3Hours Bucket = "next-3-hours" // within the coming three hours
	Tonight    Bucket = "tonight"      // today between 17:00 and 01:00 next day
	Weekend    Bucket = "weekend"      // Saturday/Sunday within the next 3 days
	Future     Bucket = "future"
)

// nowSlack is the half-width of the "now" bucket.
const nowSlack = 30 * time.Minute

// Valid reports whether the bucket name is one of the known categories.
func Valid(b Bucket) bool {
	switch b {
	case Past, Now, NextHour, Next3Hours, Tonight, Weekend, Future:
		return true
	}
	return false
}

// Classify returns the highest-priority bucket for a start instant
// relative to now. Buckets overlap (an event in two hours may be both
// next-3-hours and tonight); precedence runs past, now, next-hour,
// next-3-hours, tonight, weekend, future.
func Classify(start, now time.Time) Bucket {
	switch {
	case start.Before(now.Add(-nowSlack)):
		return Past
	case Matches(Now, start, now):
		return Now
	case Matches(NextHour, start, now):
		return NextHour
	case Matches(Next3Hours, start, now):
		return Next3Hours
	case Matches(Tonight, start, now):
		return Tonight
	case Matches(Weekend, start, now):
		return Weekend
	default:
		return Future
	}
}

// Matches reports whether a start instant falls inside the named bucket
// relative to now. Unlike Classify it tests membership, so overlapping
// buckets (tonight, weekend) match independently of precedence - this is
// what filter predicates want.
func Matches(bucket Bucket, start, now time.Time) bool {
	delta := start.Sub(now)

	switch bucket {
	case Past:
		return delta < -nowSlack
	case Now:
		return delta >= -nowSlack && delta <= nowSlack
	case NextHour:
		return delta >= -nowSlack && delta <= time.Hour
	case Next3Hours:
		return delta >= -nowSlack && delta <= 3*time.Hour
	case Tonight:
		return matchesTonight(start, now)
	case Weekend:
		return matchesWeekend(start, now)
	case Future:
		return delta > -nowSlack
	default:
		return false
	}
}

// matchesTonight checks the window from 17:00 today to 01:00 tomorrow,
// evaluated in now's location.
func matchesTonight(start, now time.Time) bool {
	loc := now.Location()
	y, m, d := now.Date()
	from := time.Date(y, m, d, 17, 0, 0, 0, loc)
	until := time.Date(y, m, d, 1, 0, 0, 0, loc).AddDate(0, 0, 1)

	s := start.In(loc)
	return !s.Before(from) && !s.After(until)
}

// matchesWeekend checks for a Saturday or Sunday start within the next
// three days (inclusive of today when today is a weekend day).
func matchesWeekend(start, now time.Time) bool {
	loc := now.Location()
	s := start.In(loc)

	if wd := s.Weekday(); wd != time.Saturday && wd != time.Sunday {
		return false
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	horizon := today.AddDate(0, 0, 4) // today plus the next three days

	return !s.Before(today) && s.Before(horizon)
}

// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/venuepulse/venuepulse/internal/metrics"
	"github.com/venuepulse/venuepulse/internal/models"
	"github.com/venuepulse/venuepulse/internal/timewindow"
)

// eventColumns is the canonical column list shared by every event query.
const eventColumns = `id, title, normalized_slug, description, start_date, start_time,
	venue_name, address, latitude, longitude, price_min, price_max, currency,
	is_free, category, image_url, external_url, external_id, source_provider,
	completeness_score, is_active, created_at, updated_at`

// ErrEventNotFound is returned by GetEvent for unknown IDs.
var ErrEventNotFound = errors.New("event not found")

// UpsertEvent inserts a new event or updates the mutable fields of an
// existing one by its deterministic ID. CreatedAt is set only on insert;
// UpdatedAt always advances to the injected clock's now.
func (db *DB) UpsertEvent(ctx context.Context, ev *models.CanonicalEvent) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer metrics.ObserveQuery("upsert_event", time.Now())

	now := db.now()

	query := `INSERT INTO events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			normalized_slug = EXCLUDED.normalized_slug,
			description = EXCLUDED.description,
			start_date = EXCLUDED.start_date,
			start_time = EXCLUDED.start_time,
			venue_name = EXCLUDED.venue_name,
			address = EXCLUDED.address,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			price_min = EXCLUDED.price_min,
			price_max = EXCLUDED.price_max,
			currency = EXCLUDED.currency,
			is_free = EXCLUDED.is_free,
			category = EXCLUDED.category,
			image_url = EXCLUDED.image_url,
			external_url = EXCLUDED.external_url,
			external_id = EXCLUDED.external_id,
			source_provider = EXCLUDED.source_provider,
			completeness_score = EXCLUDED.completeness_score,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`

	var startDate interface{}
	if ev.HasStartDate() {
		startDate = ev.StartDate
	}

	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err := db.conn.ExecContext(ctx, query,
		ev.ID, ev.Title, ev.NormalizedSlug, ev.Description, startDate, ev.StartTime,
		ev.VenueName, ev.Address, ev.Latitude, ev.Longitude, ev.PriceMin, ev.PriceMax,
		ev.Currency, ev.IsFree, ev.Category, ev.ImageURL, ev.ExternalURL, ev.ExternalID,
		ev.SourceProvider, ev.CompletenessScore, ev.IsActive, createdAt, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert event %s: %w", ev.ID, err)
	}
	return nil
}

// GetEvent retrieves one event by ID.
func (db *DB) GetEvent(ctx context.Context, id string) (*models.CanonicalEvent, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, id)
		}
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return ev, nil
}

// HasEvent reports whether an event with the given ID exists.
func (db *DB) HasEvent(ctx context.Context, id string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check event %s: %w", id, err)
	}
	return n > 0, nil
}

// ListActiveEvents returns every active event inside the retention
// window, ordered by start date. The merge pass deduplicates incoming
// batches against this set so re-ingestion never reintroduces a
// duplicate already represented by an earlier provider pass.
func (db *DB) ListActiveEvents(ctx context.Context) ([]models.CanonicalEvent, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer metrics.ObserveQuery("list_active", time.Now())

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE is_active = TRUE AND (start_date IS NULL OR start_date >= ?)
		 ORDER BY created_at, id`, db.retentionCutoff())
	if err != nil {
		return nil, fmt.Errorf("failed to list active events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// SearchEvents returns one page of events matching the filter plus the
// total match count for pagination.
//
// SQL handles the category, price, free-text, and retention predicates;
// the relative-time bucket is evaluated in Go against the injected clock
// because its windows (tonight, weekend) are calendar-local and
// clock-relative.
func (db *DB) SearchEvents(ctx context.Context, filter EventFilter) (*models.SearchResult, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer metrics.ObserveQuery("search_events", time.Now())

	whereClause, args := filter.buildWhereClause(db.retentionCutoff())
	limit, offset := filter.getPaginationDefaults()

	if filter.TimeBucket == "" {
		var total int
		countQuery := "SELECT COUNT(*) FROM events" + whereClause
		if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
			return nil, fmt.Errorf("failed to count events: %w", err)
		}

		query := `SELECT ` + eventColumns + ` FROM events` + whereClause +
			` ORDER BY start_date, start_time, id LIMIT ? OFFSET ?`
		rows, err := db.conn.QueryContext(ctx, query, append(args, limit, offset)...)
		if err != nil {
			return nil, fmt.Errorf("failed to search events: %w", err)
		}
		defer rows.Close()

		events, err := collectEvents(rows)
		if err != nil {
			return nil, err
		}
		return &models.SearchResult{Events: events, TotalCount: total}, nil
	}

	// Time-bucket filtering: fetch SQL matches, apply the bucket
	// predicate, then paginate the filtered set.
	query := `SELECT ` + eventColumns + ` FROM events` + whereClause +
		` ORDER BY start_date, start_time, id`
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	defer rows.Close()

	all, err := collectEvents(rows)
	if err != nil {
		return nil, err
	}

	now := db.now()
	matched := all[:0]
	for i := range all {
		if !all[i].HasStartDate() {
			continue // no instant to classify
		}
		if timewindow.Matches(filter.TimeBucket, all[i].StartInstant(), now) {
			matched = append(matched, all[i])
		}
	}

	total := len(matched)
	if offset >= total {
		return &models.SearchResult{Events: []models.CanonicalEvent{}, TotalCount: total}, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return &models.SearchResult{Events: matched[offset:end], TotalCount: total}, nil
}

// DeactivateEvent marks one event inactive without deleting its row.
func (db *DB) DeactivateEvent(ctx context.Context, id string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx,
		`UPDATE events SET is_active = FALSE, updated_at = ? WHERE id = ?`, db.now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate event %s: %w", id, err)
	}
	return nil
}

// Categories returns the distinct categories of active events.
func (db *DB) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT category FROM events
		 WHERE is_active = TRUE AND category IS NOT NULL AND category != ''
		 ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for scanEvent.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEvent scans one event row in eventColumns order.
func scanEvent(s scanner) (*models.CanonicalEvent, error) {
	ev := &models.CanonicalEvent{}
	var description, startTime, venueName, address, currency sql.NullString
	var category, imageURL, externalURL, externalID sql.NullString
	var startDate sql.NullTime

	err := s.Scan(
		&ev.ID, &ev.Title, &ev.NormalizedSlug, &description, &startDate, &startTime,
		&venueName, &address, &ev.Latitude, &ev.Longitude, &ev.PriceMin, &ev.PriceMax,
		&currency, &ev.IsFree, &category, &imageURL, &externalURL, &externalID,
		&ev.SourceProvider, &ev.CompletenessScore, &ev.IsActive, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	ev.Description = description.String
	ev.StartTime = startTime.String
	ev.VenueName = venueName.String
	ev.Address = address.String
	ev.Currency = currency.String
	ev.Category = category.String
	ev.ImageURL = imageURL.String
	ev.ExternalURL = externalURL.String
	ev.ExternalID = externalID.String
	if startDate.Valid {
		ev.StartDate = startDate.Time
	}
	return ev, nil
}

// collectEvents drains a result set into a slice.
func collectEvents(rows *sql.Rows) ([]models.CanonicalEvent, error) {
	var events []models.CanonicalEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

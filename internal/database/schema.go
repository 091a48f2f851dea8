// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package database

import "fmt"

// schemaStatements defines the event catalog schema. The deterministic
// composite ID is the primary key; ON CONFLICT upserts rely on it.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id                 VARCHAR PRIMARY KEY,
		title              VARCHAR NOT NULL,
		normalized_slug    VARCHAR NOT NULL,
		description        VARCHAR,
		start_date         DATE,
		start_time         VARCHAR,
		venue_name         VARCHAR,
		address            VARCHAR,
		latitude           DOUBLE DEFAULT 0,
		longitude          DOUBLE DEFAULT 0,
		price_min          DOUBLE DEFAULT 0,
		price_max          DOUBLE DEFAULT 0,
		currency           VARCHAR,
		is_free            BOOLEAN DEFAULT FALSE,
		category           VARCHAR,
		image_url          VARCHAR,
		external_url       VARCHAR,
		external_id        VARCHAR,
		source_provider    VARCHAR NOT NULL,
		completeness_score INTEGER DEFAULT 0,
		is_active          BOOLEAN DEFAULT TRUE,
		created_at         TIMESTAMP NOT NULL,
		updated_at         TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_start_date ON events (start_date)`,
	`CREATE INDEX IF NOT EXISTS idx_events_category ON events (category)`,
	`CREATE INDEX IF NOT EXISTS idx_events_slug ON events (normalized_slug)`,
}

// initSchema creates tables and indexes if they do not exist.
func (db *DB) initSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/venuepulse/venuepulse/internal/config"
	"github.com/venuepulse/venuepulse/internal/dedup"
)

// DB wraps the DuckDB connection and owns the canonical event records
// once committed. All mutation goes through idempotent upsert keyed by
// the deterministic composite ID, which is what makes concurrent merges
// of overlapping data converge without locking.
type DB struct {
	conn      *sql.DB
	cfg       *config.DatabaseConfig
	dedupOpts dedup.Options

	// now is the injectable clock used for retention cutoffs and
	// created/updated timestamps.
	now func() time.Time
}

// Option customizes DB construction.
type Option func(*DB)

// WithClock injects a deterministic clock for tests.
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

// New opens (or creates) the database and initializes the schema. An
// empty cfg.Path opens an in-memory database, which tests use for
// isolation.
func New(cfg *config.DatabaseConfig, dedupOpts dedup.Options, opts ...Option) (*DB, error) {
	connStr, err := buildConnString(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:      conn,
		cfg:       cfg,
		dedupOpts: dedupOpts,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(db)
	}

	if err := db.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// buildConnString assembles the DuckDB connection string with tuning
// options, creating the parent directory for file-backed databases.
func buildConnString(cfg *config.DatabaseConfig) (string, error) {
	if cfg.Path == "" {
		return "", nil // in-memory
	}

	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return "", fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	params := url.Values{}
	if cfg.MaxMemory != "" {
		params.Set("max_memory", cfg.MaxMemory)
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	params.Set("threads", fmt.Sprintf("%d", threads))

	return cfg.Path + "?" + params.Encode(), nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Ping verifies the store is reachable.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// ensureContext creates a context with a 30-second timeout if none was
// provided or the caller's carries no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}
	return ctx, func() {}
}

// retentionCutoff returns the instant before which events fall outside
// the retention window.
func (db *DB) retentionCutoff() time.Time {
	days := db.cfg.RetentionDays
	if days <= 0 {
		days = 7
	}
	return db.now().AddDate(0, 0, -days)
}

// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

// Package config loads layered configuration with koanf v2:
// struct defaults, then an optional YAML file, then environment
// variables (highest priority, prefix VENUEPULSE_).
package config

import (
	"fmt"
	"time"

	"github.com/venuepulse/venuepulse/internal/dedup"
	"github.com/venuepulse/venuepulse/internal/logging"
)

// Config is the root configuration for the aggregation service.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Cache      CacheConfig      `koanf:"cache"`
	Dedup      dedup.Options    `koanf:"dedup"`
	Aggregator AggregatorConfig `koanf:"aggregator"`
	Providers  []ProviderConfig `koanf:"providers"`
	Logging    logging.Config   `koanf:"logging"`
}

// ServerConfig configures the thin HTTP surface.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	DefaultPageSize int           `koanf:"default_page_size"`
	MaxPageSize     int           `koanf:"max_page_size"`
}

// DatabaseConfig configures the DuckDB-backed event store.
type DatabaseConfig struct {
	// Path is the DuckDB database file; empty means in-memory.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()

	// RetentionDays is the event retention window; events whose start
	// date precedes now minus this window are deactivated by cleanup.
	RetentionDays int `koanf:"retention_days"`

	// CleanupInterval is how often the background cleanup service runs.
	// Cleanup additionally runs before every read path regardless.
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// CacheConfig configures the query cache.
type CacheConfig struct {
	MaxEntries    int           `koanf:"max_entries"`
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// AggregatorConfig configures the per-request orchestration.
type AggregatorConfig struct {
	// MinStoredResults is the match-count threshold below which the
	// orchestrator fans out to providers even without a forced refresh.
	MinStoredResults int `koanf:"min_stored_results"`

	// ProviderTimeout caps each provider call, bounding total request
	// latency under upstream hangs.
	ProviderTimeout time.Duration `koanf:"provider_timeout"`
}

// ProviderConfig describes one upstream source feed.
type ProviderConfig struct {
	Name    string        `koanf:"name"`
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Enabled bool          `koanf:"enabled"`
}

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8380,
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Database: DatabaseConfig{
			Path:            "/data/venuepulse.duckdb",
			MaxMemory:       "1GB",
			Threads:         0,
			RetentionDays:   7,
			CleanupInterval: time.Hour,
		},
		Cache: CacheConfig{
			MaxEntries:    1024,
			TTL:           5 * time.Minute,
			SweepInterval: time.Minute,
		},
		Dedup:      dedup.DefaultOptions(),
		Aggregator: AggregatorConfig{MinStoredResults: 10, ProviderTimeout: 10 * time.Second},
		Logging:    logging.DefaultConfig(),
	}
}

// Validate checks the loaded configuration for values the pipeline
// cannot operate with. Called after every load.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.RetentionDays <= 0 {
		return fmt.Errorf("database.retention_days must be positive, got %d", c.Database.RetentionDays)
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
	}
	if c.Dedup.TimeWindowMinutes < 0 {
		return fmt.Errorf("dedup.time_window_minutes must not be negative, got %d", c.Dedup.TimeWindowMinutes)
	}
	if c.Dedup.TitleSimilarityThreshold < 0 || c.Dedup.TitleSimilarityThreshold > 1 {
		return fmt.Errorf("dedup.title_similarity_threshold %v outside [0,1]", c.Dedup.TitleSimilarityThreshold)
	}
	if c.Aggregator.MinStoredResults < 0 {
		return fmt.Errorf("aggregator.min_stored_results must not be negative, got %d", c.Aggregator.MinStoredResults)
	}
	for i, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("providers[%d]: name is required", i)
		}
		if p.Enabled && p.URL == "" {
			return fmt.Errorf("provider %s: url is required when enabled", p.Name)
		}
	}
	return nil
}

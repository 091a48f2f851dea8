// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.RetentionDays != 7 {
		t.Errorf("retention_days = %d, want 7", cfg.Database.RetentionDays)
	}
	if cfg.Dedup.TimeWindowMinutes != 90 {
		t.Errorf("time_window_minutes = %d, want 90", cfg.Dedup.TimeWindowMinutes)
	}
	if cfg.Dedup.TitleSimilarityThreshold != 0.6 {
		t.Errorf("title_similarity_threshold = %v, want 0.6", cfg.Dedup.TitleSimilarityThreshold)
	}
	if cfg.Aggregator.MinStoredResults != 10 {
		t.Errorf("min_stored_results = %d, want 10", cfg.Aggregator.MinStoredResults)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("VENUEPULSE_DATABASE_RETENTION_DAYS", "14")
	t.Setenv("VENUEPULSE_SERVER_PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.RetentionDays != 14 {
		t.Errorf("retention_days = %d, want 14 from env", cfg.Database.RetentionDays)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000 from env", cfg.Server.Port)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("dedup:\n  time_window_minutes: 240\ncache:\n  max_entries: 64\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dedup.TimeWindowMinutes != 240 {
		t.Errorf("time_window_minutes = %d, want 240 from file", cfg.Dedup.TimeWindowMinutes)
	}
	if cfg.Cache.MaxEntries != 64 {
		t.Errorf("cache.max_entries = %d, want 64 from file", cfg.Cache.MaxEntries)
	}
	// Untouched sections keep defaults.
	if cfg.Database.RetentionDays != 7 {
		t.Errorf("retention_days = %d, want default 7", cfg.Database.RetentionDays)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero retention", func(c *Config) { c.Database.RetentionDays = 0 }},
		{"bad port", func(c *Config) { c.Server.Port = -1 }},
		{"threshold above 1", func(c *Config) { c.Dedup.TitleSimilarityThreshold = 1.5 }},
		{"negative window", func(c *Config) { c.Dedup.TimeWindowMinutes = -1 }},
		{"unnamed provider", func(c *Config) {
			c.Providers = []ProviderConfig{{URL: "http://x", Enabled: true}}
		}},
		{"enabled provider without url", func(c *Config) {
			c.Providers = []ProviderConfig{{Name: "x", Enabled: true}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"VENUEPULSE_DATABASE_RETENTION_DAYS", "database.retention_days"},
		{"VENUEPULSE_SERVER_PORT", "server.port"},
		{"VENUEPULSE_CACHE_TTL", "cache.ttl"},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

// Package main is the entry point for the VenuePulse server.
//
// VenuePulse aggregates local event listings from multiple upstream
// providers into a deduplicated, queryable store. The server initializes
// components in the following order:
//
//  1. Configuration: koanf v2 layered load (defaults, config file, env)
//  2. Database: DuckDB-backed event store with retention cleanup
//  3. Query cache: short-TTL in-memory response cache
//  4. Providers: one HTTP feed client per configured source, each behind
//     a circuit breaker
//  5. Aggregator: the per-request orchestration pipeline
//  6. Supervisor tree: cache sweep, scheduled cleanup, HTTP server
//
// Configuration is loaded via koanf with layered sources (highest
// priority wins): environment variables (VENUEPULSE_ prefix), config
// file (VENUEPULSE_CONFIG or config.yaml), built-in defaults.
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests (10s timeout), then
// closes the store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/venuepulse/venuepulse/internal/aggregator"
	"github.com/venuepulse/venuepulse/internal/api"
	"github.com/venuepulse/venuepulse/internal/cache"
	"github.com/venuepulse/venuepulse/internal/config"
	"github.com/venuepulse/venuepulse/internal/database"
	"github.com/venuepulse/venuepulse/internal/logging"
	"github.com/venuepulse/venuepulse/internal/provider"
	"github.com/venuepulse/venuepulse/internal/supervisor"
	"github.com/venuepulse/venuepulse/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config not yet available; the default logger reports the failure.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Int("providers", len(cfg.Providers)).
		Int("retention_days", cfg.Database.RetentionDays).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database, cfg.Dedup)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	queryCache := cache.New(cache.Config{
		MaxEntries:    cfg.Cache.MaxEntries,
		SweepInterval: cfg.Cache.SweepInterval,
	})

	var providers []provider.Provider
	for _, pc := range cfg.Providers {
		if !pc.Enabled {
			logging.Info().Str("provider", pc.Name).Msg("Provider disabled, skipping")
			continue
		}
		feed := provider.NewHTTPFeedProvider(pc)
		providers = append(providers, provider.NewResilientProvider(feed, cfg.Aggregator.ProviderTimeout))
		logging.Info().Str("provider", pc.Name).Str("url", pc.URL).Msg("Provider configured")
	}
	if len(providers) == 0 {
		logging.Warn().Msg("No providers configured; serving stored events only")
	}

	agg := aggregator.New(db, providers, queryCache, cfg.Cache.TTL, cfg.Aggregator, cfg.Dedup)

	handler := api.NewHandler(agg, db)
	router := api.NewRouter(&cfg.Server, handler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The slog adapter bridges zerolog to sutureslog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	tree.AddPipelineService(services.NewSweepService(queryCache, cfg.Cache.SweepInterval))
	tree.AddPipelineService(services.NewCleanupService(db, cfg.Database.CleanupInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
}

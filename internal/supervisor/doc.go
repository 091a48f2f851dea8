// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

// Package supervisor builds the suture supervision tree for the process.
// Background pipeline services (cache sweep, retention cleanup) and the
// HTTP server live under separate child supervisors so a crash loop in
// one layer never starves the other.
//
//	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
//	tree.AddPipelineService(services.NewCleanupService(db, time.Hour))
//	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
//	err := tree.Serve(ctx)
package supervisor

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the chat HTTP API.
//
// # Endpoints
//
//   - POST /api/chat - streamed chat answer (text/event-stream)
//   - GET  /health   - liveness and configuration summary
//   - GET  /stats    - request, rejection, token and tool counters
//
// # Middleware
//
//   - Panic recovery with stack trace logging
//   - Security headers
//   - Request logging with timing information
//   - CORS for the configured origins, including preflight
//   - Per-client burst throttle on /api/chat (golang.org/x/time/rate)
//
// # Usage
//
//	srv := server.New(cfg, orchestrator, limiter, executor)
//	go srv.Start()
//	defer srv.Shutdown(ctx)
package server

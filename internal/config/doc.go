// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for portfolio-chat.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: listener, body cap, CORS, proxy trust, burst throttle
//   - ModelConfig: Gemini model, credential, step and duration ceilings
//   - LimitsConfig: daily per-client and global budgets and their store
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (GOOGLE_GENERATIVE_AI_API_KEY, PORTFOLIO_CHAT_*)
//   - ~/.portfolio-chat/config.toml
//   - ~/.portfolio-chat/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	limiter := ratelimit.New(store, cfg.Limits.PerClientDaily, cfg.Limits.GlobalDaily)
package config

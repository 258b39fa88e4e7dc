// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the portfolio-chat command line.
//
// # Commands
//
//   - serve: run the chat HTTP server (POST /api/chat, GET /health, GET /stats)
//   - chat: interactive REPL against a running server
//   - ask: one question, from arguments or stdin
//   - mcp: expose the portfolio tools over MCP stdio
//   - prompt: print the system prompt
//   - config show|init: inspect or create ~/.portfolio-chat/config.toml
//   - version: print build information
//
// Every command accepts --config/-c to load a specific TOML or JSON file.
//
// # Usage
//
//	os.Exit(cli.Execute())
package cli

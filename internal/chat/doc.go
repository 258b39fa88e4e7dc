// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat validates chat requests and orchestrates streamed answers.
//
// A request body carries UI messages (the wire shape browsers send). Validate
// decodes and checks it; Orchestrator.Run converts the conversation for the
// model, streams the answer as UI stream events into a Sink, and dispatches
// tool calls through the tools executor between model steps.
//
// # Key Types
//
//   - UIMessage, UIPart: wire conversation
//   - Event: one UI stream event, serialized as one SSE frame
//   - Orchestrator: the step loop
//   - ErrorResponse: JSON error body with status and code
//
// # Streaming contract
//
// Nothing is written to the sink until the model produces output. A failure
// before that point is returned from Run so the caller can answer with a
// plain JSON error. After it, failures become an "error" event and the
// stream still ends normally.
package chat

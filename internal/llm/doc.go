// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm is the upstream language model boundary.
//
// It defines a provider-neutral conversation model (Message, Part, ToolSpec),
// a streaming Model interface, and the Gemini implementation on top of
// google.golang.org/genai. Upstream failures are classified once, where the
// call is made, into a Kind; everything above this package switches on Kind
// instead of inspecting error text.
//
// # Key Types
//
//   - Model: Stream(ctx, Request) iter.Seq2[Chunk, error]
//   - Gemini: Model backed by the Gemini API
//   - Error, Kind: typed upstream failure
//
// # Usage
//
//	model, err := llm.NewGemini(ctx, apiKey, "gemini-2.5-flash")
//	for chunk, err := range model.Stream(ctx, req) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(chunk.Text)
//	}
package llm

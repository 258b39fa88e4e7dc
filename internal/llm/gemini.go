// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("gemini API key not configured")

// GeminiOption configures a Gemini model.
type GeminiOption func(*Gemini)

// WithTemperature sets the sampling temperature. Negative values keep the
// provider default.
func WithTemperature(t float64) GeminiOption {
	return func(g *Gemini) {
		if t >= 0 {
			v := float32(t)
			g.temperature = &v
		}
	}
}

// Gemini is a Model backed by the Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature *float32
}

// NewGemini creates a Gemini model client.
func NewGemini(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g := &Gemini{client: client, model: model}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Name returns the model identifier.
func (g *Gemini) Name() string { return g.model }

// Unconfigured is a Model for a server started without a credential. It
// reports its name and fails every stream with ErrNotConfigured.
type Unconfigured struct {
	Model string
}

// Name returns the configured model identifier.
func (u Unconfigured) Name() string { return u.Model }

// Stream yields a single auth error.
func (u Unconfigured) Stream(context.Context, Request) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		yield(Chunk{}, &Error{Kind: KindAuth, Op: "gemini.stream", Err: ErrNotConfigured})
	}
}

// Stream runs one generation and yields chunks as they arrive. Errors are
// classified before they are yielded, and the stream stops after an error.
func (g *Gemini) Stream(ctx context.Context, req Request) iter.Seq2[Chunk, error] {
	cfg := &genai.GenerateContentConfig{
		Temperature: g.temperature,
		Tools:       toTools(req.Tools),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	contents := toContents(req.Messages)

	return func(yield func(Chunk, error) bool) {
		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, cfg) {
			if err != nil {
				lerr := Classify("gemini.stream", err)
				log.Printf("UPSTREAM_ERROR | kind=%s error=%v", lerr.Kind, err)
				yield(Chunk{}, lerr)
				return
			}
			if !yield(fromResponse(resp), nil) {
				return
			}
		}
	}
}

// fromResponse extracts text, function calls and accounting from the first
// candidate. Thought parts are never forwarded.
func fromResponse(resp *genai.GenerateContentResponse) Chunk {
	var chunk Chunk
	if resp == nil {
		return chunk
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		cand := resp.Candidates[0]
		chunk.FinishReason = string(cand.FinishReason)
		if cand.Content != nil {
			for _, p := range cand.Content.Parts {
				if p == nil || p.Thought {
					continue
				}
				if p.FunctionCall != nil {
					id := p.FunctionCall.ID
					if id == "" {
						id = "call_" + uuid.NewString()
					}
					chunk.ToolCalls = append(chunk.ToolCalls, ToolCall{
						ID:   id,
						Name: p.FunctionCall.Name,
						Args: p.FunctionCall.Args,
					})
					continue
				}
				chunk.Text += p.Text
			}
		}
	}
	if u := resp.UsageMetadata; u != nil {
		chunk.Usage = &Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
		}
	}
	return chunk
}

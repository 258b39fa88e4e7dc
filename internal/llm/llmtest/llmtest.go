// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llmtest provides a scripted llm.Model for tests.
package llmtest

import (
	"context"
	"iter"
	"sync"

	"github.com/jeranaias/portfolio-chat/internal/llm"
)

// Step is the scripted output of one model invocation.
type Step struct {
	Chunks []llm.Chunk
	// Err is yielded after Chunks, ending the invocation.
	Err error
}

// Model replays Steps in order, one per Stream call. Calls beyond the script
// yield a single "done." text chunk.
type Model struct {
	mu       sync.Mutex
	steps    []Step
	requests []llm.Request
}

// New returns a Model that replays steps.
func New(steps ...Step) *Model {
	return &Model{steps: steps}
}

// Text is a shorthand for a step that streams the given deltas and stops.
func Text(deltas ...string) Step {
	s := Step{}
	for _, d := range deltas {
		s.Chunks = append(s.Chunks, llm.Chunk{Text: d})
	}
	s.Chunks = append(s.Chunks, llm.Chunk{FinishReason: "STOP", Usage: &llm.Usage{PromptTokens: 10, CompletionTokens: len(deltas)}})
	return s
}

// Call is a shorthand for a step that requests one tool call.
func Call(id, name string, args map[string]any) Step {
	return Step{Chunks: []llm.Chunk{{
		ToolCalls:    []llm.ToolCall{{ID: id, Name: name, Args: args}},
		FinishReason: "STOP",
	}}}
}

func (m *Model) Name() string { return "scripted" }

// Requests returns every request received so far.
func (m *Model) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *Model) Stream(ctx context.Context, req llm.Request) iter.Seq2[llm.Chunk, error] {
	m.mu.Lock()
	idx := len(m.requests)
	m.requests = append(m.requests, req)
	step := Text("done.")
	if idx < len(m.steps) {
		step = m.steps[idx]
	}
	m.mu.Unlock()

	return func(yield func(llm.Chunk, error) bool) {
		for _, c := range step.Chunks {
			if err := ctx.Err(); err != nil {
				yield(llm.Chunk{}, llm.Classify("scripted", err))
				return
			}
			if !yield(c, nil) {
				return
			}
		}
		if step.Err != nil {
			yield(llm.Chunk{}, llm.Classify("scripted", step.Err))
		}
	}
}

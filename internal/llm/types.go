// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"iter"
)

// Role is the author of a message in model terms.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role  Role
	Parts []Part
}

// Part is one element of a message. Exactly one field is set.
type Part struct {
	Text       string
	ToolCall   *ToolCall
	ToolResult *ToolResult
}

// ToolCall is a function call requested by the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult answers a ToolCall. Output must be JSON-serialisable.
type ToolResult struct {
	CallID string
	Name   string
	Output any
}

// TextMessage builds a single-part text message.
func TextMessage(role Role, text string) Message {
	return Message{Role: role, Parts: []Part{{Text: text}}}
}

// ParamSpec declares one tool parameter.
type ParamSpec struct {
	Name        string
	Type        string // "string", "number", "integer", "boolean"
	Description string
	Required    bool
	Enum        []string
}

// ToolSpec declares a tool to the model.
type ToolSpec struct {
	Name        string
	Description string
	Params      []ParamSpec
}

// Request is one model invocation.
type Request struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}

// Usage is token accounting reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Add accumulates u2 into u.
func (u *Usage) Add(u2 Usage) {
	u.PromptTokens += u2.PromptTokens
	u.CompletionTokens += u2.CompletionTokens
}

// Chunk is one increment of a streamed response. A chunk may carry text,
// tool calls, or only metadata. Usage is cumulative for the invocation, so the
// last non-nil value wins.
type Chunk struct {
	Text         string
	ToolCalls    []ToolCall
	FinishReason string
	Usage        *Usage
}

// Model streams responses. Errors yielded by Stream are *Error values.
type Model interface {
	Name() string
	Stream(ctx context.Context, req Request) iter.Seq2[Chunk, error]
}

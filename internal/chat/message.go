// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/jeranaias/portfolio-chat/internal/llm"
)

// Part types understood on the wire.
const (
	PartText       = "text"
	PartToolCall   = "tool-call"
	PartToolResult = "tool-result"
	PartStepStart  = "step-start"
)

// Tool part states sent by UI clients that store tool parts as "tool-<name>".
const (
	StateOutputAvailable = "output-available"
	StateOutputError     = "output-error"
)

// UIMessage is one conversation turn as exchanged with clients.
type UIMessage struct {
	ID    string   `json:"id,omitempty"`
	Role  string   `json:"role"`
	Parts []UIPart `json:"parts,omitempty"`

	// Content is the legacy single-string form; used only when Parts is empty.
	Content string `json:"content,omitempty"`
}

// UIPart is one element of a UIMessage. Which fields are set depends on Type.
type UIPart struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	ToolCallID string `json:"toolCallId,omitempty"`
	ToolName   string `json:"toolName,omitempty"`
	Input      any    `json:"input,omitempty"`
	Output     any    `json:"output,omitempty"`
	ErrorText  string `json:"errorText,omitempty"`
	State      string `json:"state,omitempty"`
}

// TextOf concatenates the text parts of m.
func (m UIMessage) TextOf() string {
	if len(m.Parts) == 0 {
		return m.Content
	}
	var sb strings.Builder
	for _, p := range m.Parts {
		if p.Type == PartText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// NewUserMessage builds a single-text user message.
func NewUserMessage(id, text string) UIMessage {
	return UIMessage{ID: id, Role: string(llm.RoleUser), Parts: []UIPart{{Type: PartText, Text: text}}}
}

// ToLLM converts wire messages for the model. Messages with a role other than
// user or assistant are dropped, unknown part types are ignored, and messages
// left without parts are skipped. An assistant message that spans several
// model steps becomes one llm.Message per step, in order.
func ToLLM(msgs []UIMessage) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		var role llm.Role
		switch m.Role {
		case string(llm.RoleUser):
			role = llm.RoleUser
		case string(llm.RoleAssistant):
			role = llm.RoleAssistant
		default:
			continue
		}

		for _, parts := range convertSteps(m) {
			out = append(out, llm.Message{Role: role, Parts: parts})
		}
	}
	return out
}

// convertSteps returns the parts of m grouped by model step. A step ends at a
// "step-start" part, or where text or a new call follows a tool result.
func convertSteps(m UIMessage) [][]llm.Part {
	if len(m.Parts) == 0 {
		if m.Content == "" {
			return nil
		}
		return [][]llm.Part{{{Text: m.Content}}}
	}

	var (
		steps     [][]llm.Part
		cur       []llm.Part
		hasResult bool
	)
	split := func() {
		if len(cur) > 0 {
			steps = append(steps, cur)
		}
		cur, hasResult = nil, false
	}

	for _, p := range m.Parts {
		switch {
		case p.Type == PartStepStart:
			split()
		case p.Type == PartText:
			if p.Text == "" {
				continue
			}
			if hasResult {
				split()
			}
			cur = append(cur, llm.Part{Text: p.Text})
		case p.Type == PartToolCall:
			if hasResult {
				split()
			}
			cur = append(cur, llm.Part{ToolCall: &llm.ToolCall{
				ID: p.ToolCallID, Name: p.ToolName, Args: argsOf(p.Input),
			}})
		case p.Type == PartToolResult:
			cur = append(cur, llm.Part{ToolResult: &llm.ToolResult{
				CallID: p.ToolCallID, Name: p.ToolName, Output: resultOf(p),
			}})
			hasResult = true
		case strings.HasPrefix(p.Type, "tool-"):
			// Stored tool invocations carry call and outcome in one part, and
			// calls of one step sit side by side, so only step-start splits them.
			// Incomplete ones (still streaming input) are skipped.
			name := strings.TrimPrefix(p.Type, "tool-")
			if p.State != StateOutputAvailable && p.State != StateOutputError {
				continue
			}
			cur = append(cur,
				llm.Part{ToolCall: &llm.ToolCall{ID: p.ToolCallID, Name: name, Args: argsOf(p.Input)}},
				llm.Part{ToolResult: &llm.ToolResult{CallID: p.ToolCallID, Name: name, Output: resultOf(p)}},
			)
			hasResult = true
		}
	}
	split()
	return steps
}

func argsOf(input any) map[string]any {
	if m, ok := input.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func resultOf(p UIPart) any {
	if p.ErrorText != "" || p.State == StateOutputError {
		return map[string]any{"error": p.ErrorText}
	}
	if p.Output == nil {
		return map[string]any{}
	}
	return p.Output
}

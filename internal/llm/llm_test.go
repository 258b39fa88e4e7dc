// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"api error 401", genai.APIError{Code: 401, Message: "bad key"}, KindAuth},
		{"api error 403", genai.APIError{Code: 403}, KindAuth},
		{"api error 429", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, KindQuota},
		{"api error 503", genai.APIError{Code: 503}, KindNetwork},
		{"api error pointer", &genai.APIError{Code: 429}, KindQuota},
		{"wrapped api error", fmt.Errorf("stream: %w", genai.APIError{Code: 401}), KindAuth},
		{"api error 400 with key text", genai.APIError{Code: 400, Message: "API key not valid"}, KindAuth},
		{"canceled", context.Canceled, KindCanceled},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), KindTimeout},
		{"net timeout", &net.OpError{Op: "dial", Err: timeoutErr{}}, KindTimeout},
		{"net refused", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, KindNetwork},
		{"keyword api key", errors.New("missing API key"), KindAuth},
		{"keyword quota", errors.New("quota exhausted"), KindQuota},
		{"keyword network", errors.New("network unreachable"), KindNetwork},
		{"keyword timeout", errors.New("request timed out"), KindTimeout},
		{"unknown", errors.New("something odd"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("op", tt.err)
			require.NotNil(t, got)
			require.Equal(t, tt.want, got.Kind)
			require.Equal(t, tt.err, got.Unwrap())
		})
	}
}

func TestClassifyIdempotent(t *testing.T) {
	require.Nil(t, Classify("op", nil))

	first := Classify("op", genai.APIError{Code: 429})
	second := Classify("other", fmt.Errorf("again: %w", first))
	require.Same(t, first, second)
	require.ErrorIs(t, second, &Error{Kind: KindQuota})
	require.NotErrorIs(t, second, &Error{Kind: KindAuth})
	require.Equal(t, KindQuota, KindOf(second))
	require.Equal(t, Kind(""), KindOf(nil))
}

func TestKindMapping(t *testing.T) {
	tests := []struct {
		kind   Kind
		status int
		code   string
		msg    string
	}{
		{KindAuth, http.StatusUnauthorized, "upstream_auth", "Invalid or missing API key. Please check your Google Gemini API configuration."},
		{KindQuota, http.StatusTooManyRequests, "upstream_quota", "API quota exceeded. Please try again later."},
		{KindNetwork, http.StatusServiceUnavailable, "upstream_network", "Network error. Please check your connection and try again."},
		{KindTimeout, http.StatusServiceUnavailable, "upstream_network", "Network error. Please check your connection and try again."},
		{KindCanceled, http.StatusInternalServerError, "internal_error", "An unexpected error occurred. Please try again."},
		{KindUnknown, http.StatusInternalServerError, "internal_error", "An unexpected error occurred. Please try again."},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			require.Equal(t, tt.status, tt.kind.Status())
			require.Equal(t, tt.code, tt.kind.Code())
			require.Equal(t, tt.msg, tt.kind.Message())
		})
	}
}

func TestToContents(t *testing.T) {
	msgs := []Message{
		TextMessage(RoleUser, "show me react projects"),
		{Role: RoleAssistant, Parts: []Part{
			{Text: "Let me look."},
			{ToolCall: &ToolCall{ID: "c1", Name: "searchProjects", Args: map[string]any{"query": "react"}}},
			{ToolResult: &ToolResult{CallID: "c1", Name: "searchProjects", Output: []string{"a"}}},
			{Text: "Here they are."},
		}},
		TextMessage(RoleUser, "thanks"),
	}

	got := toContents(msgs)
	require.Len(t, got, 5)

	require.Equal(t, genai.RoleUser, got[0].Role)
	require.Equal(t, "show me react projects", got[0].Parts[0].Text)

	// The call is shown before its result, and the answer after both.
	require.Equal(t, genai.RoleModel, got[1].Role)
	require.Len(t, got[1].Parts, 2)
	require.Equal(t, "Let me look.", got[1].Parts[0].Text)
	require.Equal(t, "searchProjects", got[1].Parts[1].FunctionCall.Name)

	require.Equal(t, genai.RoleUser, got[2].Role)
	require.Len(t, got[2].Parts, 1)
	resp := got[2].Parts[0].FunctionResponse
	require.NotNil(t, resp)
	require.Equal(t, "c1", resp.ID)
	require.Equal(t, map[string]any{"result": []any{"a"}}, resp.Response)

	require.Equal(t, genai.RoleModel, got[3].Role)
	require.Len(t, got[3].Parts, 1)
	require.Equal(t, "Here they are.", got[3].Parts[0].Text)

	require.Equal(t, genai.RoleUser, got[4].Role)
	require.Equal(t, "thanks", got[4].Parts[0].Text)
}

func TestToContents_ConsecutiveCalls(t *testing.T) {
	msgs := []Message{{Role: RoleAssistant, Parts: []Part{
		{ToolCall: &ToolCall{ID: "c1", Name: "getTechStack"}},
		{ToolCall: &ToolCall{ID: "c2", Name: "getExperience"}},
		{ToolResult: &ToolResult{CallID: "c1", Name: "getTechStack", Output: map[string]any{}}},
		{ToolResult: &ToolResult{CallID: "c2", Name: "getExperience", Output: map[string]any{}}},
	}}}

	got := toContents(msgs)
	require.Len(t, got, 2)
	require.Equal(t, genai.RoleModel, got[0].Role)
	require.Len(t, got[0].Parts, 2)
	require.Equal(t, genai.RoleUser, got[1].Role)
	require.Len(t, got[1].Parts, 2)
	require.Equal(t, "c2", got[1].Parts[1].FunctionResponse.ID)
}

func TestToResponseMap(t *testing.T) {
	type payload struct {
		Projects []string `json:"projects"`
	}
	require.Equal(t, map[string]any{"projects": []any{}}, toResponseMap(payload{Projects: []string{}}))
	require.Equal(t, map[string]any{"error": "x"}, toResponseMap(map[string]any{"error": "x"}))
	require.Equal(t, map[string]any{"result": "plain"}, toResponseMap("plain"))
	require.Equal(t, map[string]any{"error": "tool output is not serializable"}, toResponseMap(make(chan int)))
}

func TestToTools(t *testing.T) {
	require.Nil(t, toTools(nil))

	tools := toTools([]ToolSpec{{
		Name:        "generateCodeSnippet",
		Description: "snippets",
		Params: []ParamSpec{
			{Name: "topic", Type: "string", Required: true},
			{Name: "complexity", Type: "string", Enum: []string{"beginner", "advanced"}},
			{Name: "limit", Type: "integer"},
		},
	}})
	require.Len(t, tools, 1)
	decl := tools[0].FunctionDeclarations[0]
	require.Equal(t, "generateCodeSnippet", decl.Name)
	require.Equal(t, genai.TypeObject, decl.Parameters.Type)
	require.Equal(t, []string{"topic"}, decl.Parameters.Required)
	require.Equal(t, genai.TypeInteger, decl.Parameters.Properties["limit"].Type)
	require.Equal(t, []string{"beginner", "advanced"}, decl.Parameters.Properties["complexity"].Enum)
}

func TestFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "Hello "},
				{Text: "there"},
				{FunctionCall: &genai.FunctionCall{Name: "getTechStack", Args: map[string]any{}}},
			}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 12, CandidatesTokenCount: 3},
	}

	chunk := fromResponse(resp)
	require.Equal(t, "Hello there", chunk.Text)
	require.Equal(t, "STOP", chunk.FinishReason)
	require.Len(t, chunk.ToolCalls, 1)
	require.Equal(t, "getTechStack", chunk.ToolCalls[0].Name)
	require.NotEmpty(t, chunk.ToolCalls[0].ID)
	require.Equal(t, &Usage{PromptTokens: 12, CompletionTokens: 3}, chunk.Usage)

	require.Equal(t, Chunk{}, fromResponse(nil))
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "gemini-2.5-flash")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestUnconfigured(t *testing.T) {
	m := Unconfigured{Model: "gemini-2.5-flash"}
	require.Equal(t, "gemini-2.5-flash", m.Name())

	n := 0
	for _, err := range m.Stream(context.Background(), Request{}) {
		n++
		require.ErrorIs(t, err, ErrNotConfigured)
		require.Equal(t, KindAuth, KindOf(err))
	}
	require.Equal(t, 1, n)
}

func TestUsageAdd(t *testing.T) {
	u := Usage{PromptTokens: 1, CompletionTokens: 2}
	u.Add(Usage{PromptTokens: 3, CompletionTokens: 4})
	require.Equal(t, Usage{PromptTokens: 4, CompletionTokens: 6}, u)
}

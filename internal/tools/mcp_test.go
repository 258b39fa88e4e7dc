// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func callMCP(t *testing.T, exec *Executor, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := NewMCPServer(exec, "portfolio-chat", "test")

	st := s.GetTool(name)
	require.NotNil(t, st, "tool %s not registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := st.Handler(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestMCPServer_ListsAllTools(t *testing.T) {
	exec := NewExecutor(NewPortfolioRegistry(catalog(t)))
	s := NewMCPServer(exec, "portfolio-chat", "test")

	listed := s.ListTools()
	require.Len(t, listed, 5)

	snippet := listed[GenerateCodeSnippetName].Tool
	require.Equal(t, []string{"topic"}, snippet.InputSchema.Required)
	require.Contains(t, snippet.InputSchema.Properties, "complexity")
}

func TestMCPServer_CallTool(t *testing.T) {
	exec := NewExecutor(NewPortfolioRegistry(catalog(t)))

	res := callMCP(t, exec, GetExperienceName, map[string]any{"company": "sparks"})
	require.False(t, res.IsError)

	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	var out ExperienceResult
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	require.Len(t, out.Experiences, 1)

	require.Equal(t, 1, exec.Stats().ByTool[GetExperienceName])
}

func TestMCPServer_InvalidArguments(t *testing.T) {
	exec := NewExecutor(NewPortfolioRegistry(catalog(t)))

	res := callMCP(t, exec, SearchProjectsName, map[string]any{})
	require.True(t, res.IsError)
}

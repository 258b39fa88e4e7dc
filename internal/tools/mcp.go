// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer exposes every registered tool over the Model Context Protocol.
// Calls go through exec, so validation, timeouts, and stats are the same as
// for the chat endpoint.
func NewMCPServer(exec *Executor, name, version string) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(false))

	for _, tool := range exec.Registry().All() {
		s.AddTool(mcpTool(tool), mcpHandler(exec, tool.Name))
	}
	return s
}

// mcpTool converts a tool definition to its MCP declaration.
func mcpTool(tool *Tool) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(tool.Description),
		mcp.WithReadOnlyHintAnnotation(true),
	}

	for _, p := range tool.Schema.Parameters {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}

		switch p.Type {
		case "number", "integer":
			if d, ok := p.Default.(float64); ok {
				props = append(props, mcp.DefaultNumber(d))
			}
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case "boolean":
			if d, ok := p.Default.(bool); ok {
				props = append(props, mcp.DefaultBool(d))
			}
			opts = append(opts, mcp.WithBoolean(p.Name, props...))
		default:
			if len(p.Enum) > 0 {
				props = append(props, mcp.Enum(p.Enum...))
			}
			if d, ok := p.Default.(string); ok {
				props = append(props, mcp.DefaultString(d))
			}
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}

	return mcp.NewTool(tool.Name, opts...)
}

func mcpHandler(exec *Executor, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := exec.Execute(ctx, ToolCall{Name: name, Params: request.GetArguments()})
		if !result.Success {
			return mcp.NewToolResultError(result.Error), nil
		}

		data, err := json.Marshal(result.Value)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultStructured(result.Value, string(data)), nil
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"time"

	"github.com/jeranaias/portfolio-chat/internal/llm"
)

// =============================================================================
// TOOL DEFINITION
// =============================================================================

// Tool represents an executable tool.
type Tool struct {
	// Name is the identifier the model calls the tool by (e.g., "searchProjects")
	Name string

	// Description explains what the tool does
	Description string

	// Schema defines the tool's parameters
	Schema Schema

	// Executor handles the actual execution
	Executor ToolExecutor
}

// Schema defines a tool's parameters.
type Schema struct {
	Parameters []Parameter
}

// Parameter defines a single tool parameter.
type Parameter struct {
	// Name of the parameter
	Name string

	// Type is the parameter type ("string", "number", "integer", "boolean")
	Type string

	// Required indicates if the parameter must be provided
	Required bool

	// Description explains the parameter
	Description string

	// Default is applied when the parameter is absent
	Default any

	// Enum contains allowed values for string parameters
	Enum []string
}

// =============================================================================
// TOOL EXECUTOR INTERFACE
// =============================================================================

// ToolExecutor is the interface for individual tool execution.
// Params have already been validated against the tool's schema and have
// defaults applied.
type ToolExecutor interface {
	Execute(ctx context.Context, params map[string]any) (Result, error)
}

// ExecutorFunc adapts a function to ToolExecutor.
type ExecutorFunc func(ctx context.Context, params map[string]any) (Result, error)

// Execute implements ToolExecutor.
func (f ExecutorFunc) Execute(ctx context.Context, params map[string]any) (Result, error) {
	return f(ctx, params)
}

// Result holds the outcome of a tool execution.
type Result struct {
	// Success indicates if the tool executed successfully
	Success bool

	// Value is the tool's output; it must be JSON-serialisable
	Value any

	// Error is the error message (for failed execution)
	Error string

	// Duration is how long execution took
	Duration time.Duration
}

// Output returns what is fed back to the model: Value on success, or an
// {"error": msg} object on failure.
func (r Result) Output() any {
	if !r.Success {
		return map[string]string{"error": r.Error}
	}
	return r.Value
}

// =============================================================================
// TOOL CALL
// =============================================================================

// ToolCall is a request to run a named tool.
type ToolCall struct {
	// ID correlates the call with its result in the stream
	ID string

	Name   string
	Params map[string]any
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds the available tools in registration order.
type Registry struct {
	tools map[string]*Tool
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool, replacing any tool with the same name.
func (r *Registry) Register(tool *Tool) {
	if _, exists := r.tools[tool.Name]; !exists {
		r.order = append(r.order, tool.Name)
	}
	r.tools[tool.Name] = tool
}

// Get returns a tool by name, or nil.
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// All returns all tools in registration order.
func (r *Registry) All() []*Tool {
	result := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name])
	}
	return result
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Specs returns the model-facing declarations of every tool.
func (r *Registry) Specs() []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(r.order))
	for _, tool := range r.All() {
		spec := llm.ToolSpec{
			Name:        tool.Name,
			Description: tool.Description,
			Params:      make([]llm.ParamSpec, 0, len(tool.Schema.Parameters)),
		}
		for _, p := range tool.Schema.Parameters {
			spec.Params = append(spec.Params, llm.ParamSpec{
				Name:        p.Name,
				Type:        p.Type,
				Description: p.Description,
				Required:    p.Required,
				Enum:        p.Enum,
			})
		}
		specs = append(specs, spec)
	}
	return specs
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"
)

// DefaultToolTimeout bounds a single tool execution.
const DefaultToolTimeout = 5 * time.Second

// maxHistorySize caps the execution history kept for stats.
const maxHistorySize = 1000

// =============================================================================
// EXECUTION HISTORY
// =============================================================================

// ExecutionRecord records a tool execution.
type ExecutionRecord struct {
	ToolName  string
	Params    map[string]any
	Result    Result
	Timestamp time.Time
	Duration  time.Duration
}

// =============================================================================
// EXECUTOR
// =============================================================================

// Executor dispatches tool calls through the registry. Safe for concurrent use.
type Executor struct {
	registry *Registry
	timeout  time.Duration
	history  []ExecutionRecord
	mu       sync.Mutex
}

// NewExecutor creates an executor over registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{
		registry: registry,
		timeout:  DefaultToolTimeout,
		history:  make([]ExecutionRecord, 0),
	}
}

// SetTimeout changes the per-call timeout.
func (e *Executor) SetTimeout(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d > 0 {
		e.timeout = d
	}
}

// Registry returns the tool registry.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// History returns a copy of the execution history.
func (e *Executor) History() []ExecutionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]ExecutionRecord, len(e.history))
	copy(result, e.history)
	return result
}

// Execute runs a tool call. It never panics and never returns an error:
// unknown tools, invalid arguments, executor errors, and timeouts all come
// back as a failed Result.
func (e *Executor) Execute(ctx context.Context, call ToolCall) Result {
	start := time.Now()

	tool := e.registry.Get(call.Name)
	if tool == nil {
		return e.finish(call, start, Result{Error: "unknown tool: " + call.Name})
	}

	params, err := ValidateToolArgs(&tool.Schema, call.Params)
	if err != nil {
		return e.finish(call, start, Result{Error: "parameter validation failed: " + err.Error()})
	}

	e.mu.Lock()
	timeout := e.timeout
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resultCh := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- Result{Error: fmt.Sprintf("tool panicked: %v", r)}
			}
		}()
		result, err := tool.Executor.Execute(ctx, params)
		if err != nil {
			result = Result{Error: err.Error()}
		}
		resultCh <- result
	}()

	var result Result
	select {
	case result = <-resultCh:
	case <-ctx.Done():
		result = Result{Error: "tool execution timed out: " + ctx.Err().Error()}
	}

	return e.finish(call, start, result)
}

func (e *Executor) finish(call ToolCall, start time.Time, result Result) Result {
	result.Duration = time.Since(start)
	if !result.Success && result.Error == "" {
		result.Error = "tool failed without a message"
	}

	log.Printf("TOOL_CALL | name=%s success=%t duration=%s", call.Name, result.Success, result.Duration.Round(time.Microsecond))

	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.history) >= maxHistorySize {
		e.history = e.history[len(e.history)-maxHistorySize+1:]
	}
	e.history = append(e.history, ExecutionRecord{
		ToolName:  call.Name,
		Params:    call.Params,
		Result:    result,
		Timestamp: start,
		Duration:  result.Duration,
	})
	return result
}

// =============================================================================
// ARGUMENT VALIDATION
// =============================================================================

// ValidationError describes one invalid argument.
type ValidationError struct {
	Param   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Param + ": " + e.Message
}

// ValidateToolArgs checks args against schema and returns a copy with
// defaults applied. Arguments the schema does not declare are dropped.
func ValidateToolArgs(schema *Schema, args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(schema.Parameters))

	for _, param := range schema.Parameters {
		val, exists := args[param.Name]

		if !exists || val == nil {
			if param.Required {
				return nil, &ValidationError{Param: param.Name, Message: "missing required argument"}
			}
			if param.Default != nil {
				out[param.Name] = param.Default
			}
			continue
		}

		if err := validateArgType(param, val); err != nil {
			return nil, err
		}
		if s, ok := val.(string); ok && len(param.Enum) > 0 {
			if err := validateEnum(param, s); err != nil {
				return nil, err
			}
		}
		out[param.Name] = val
	}

	return out, nil
}

func validateArgType(param Parameter, val any) error {
	switch param.Type {
	case "string":
		if _, ok := val.(string); !ok {
			return &ValidationError{Param: param.Name, Message: "expected string type"}
		}
	case "number":
		switch val.(type) {
		case int, int64, int32, float64, float32:
		default:
			return &ValidationError{Param: param.Name, Message: "expected number type"}
		}
	case "integer":
		switch v := val.(type) {
		case int, int64, int32:
		case float64:
			// JSON numbers decode as float64.
			if v != math.Trunc(v) {
				return &ValidationError{Param: param.Name, Message: "expected integer type"}
			}
		default:
			return &ValidationError{Param: param.Name, Message: "expected integer type"}
		}
	case "boolean":
		if _, ok := val.(bool); !ok {
			return &ValidationError{Param: param.Name, Message: "expected boolean type"}
		}
	}
	return nil
}

func validateEnum(param Parameter, val string) error {
	for _, allowed := range param.Enum {
		if val == allowed {
			return nil
		}
	}
	return &ValidationError{
		Param:   param.Name,
		Message: fmt.Sprintf("must be one of %v", param.Enum),
	}
}

// =============================================================================
// EXECUTION STATISTICS
// =============================================================================

// ExecutionStats summarizes tool executions.
type ExecutionStats struct {
	TotalExecutions int            `json:"total_executions"`
	Successful      int            `json:"successful"`
	Failed          int            `json:"failed"`
	ByTool          map[string]int `json:"by_tool"`
	TotalDuration   time.Duration  `json:"-"`
	AvgDuration     time.Duration  `json:"-"`
	AvgDurationMs   float64        `json:"avg_duration_ms"`
}

// Stats returns execution statistics over the retained history.
func (e *Executor) Stats() ExecutionStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := ExecutionStats{
		TotalExecutions: len(e.history),
		ByTool:          make(map[string]int),
	}

	for _, record := range e.history {
		if record.Result.Success {
			stats.Successful++
		} else {
			stats.Failed++
		}
		stats.ByTool[record.ToolName]++
		stats.TotalDuration += record.Duration
	}

	if stats.TotalExecutions > 0 {
		stats.AvgDuration = stats.TotalDuration / time.Duration(stats.TotalExecutions)
		stats.AvgDurationMs = float64(stats.AvgDuration.Microseconds()) / 1000
	}

	return stats
}

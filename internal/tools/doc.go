// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the tool system the chat model calls into.
//
// Tools are registered by name with a parameter schema. The Executor
// validates model-supplied arguments against that schema at the boundary,
// applies defaults, and runs the tool under a timeout. Failures never
// propagate as errors; they come back as a failed Result that the caller
// feeds to the model as {"error": msg}.
//
// # Key Types
//
//   - Tool: Tool definition with name, description, and parameters
//   - Registry: ordered set of tools, exported as llm.ToolSpec or over MCP
//   - Executor: validation, timeout, history, and stats around execution
//   - Result: Tool execution result with value and status
//
// # Available Tools
//
// All tools are read-only queries over the content catalog:
//   - searchProjects: projects by title, description, or skill
//   - searchBlogPosts: posts by title, description, or body
//   - getTechStack: tech stack, optionally by category
//   - getExperience: work history, optionally by company
//   - generateCodeSnippet: snippet guidance for in-scope topics
package tools

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"encoding/json"

	"google.golang.org/genai"
)

// toContents converts the conversation into Gemini contents, keeping part
// order. Assistant text and calls become "model" contents; tool results travel
// back as function responses in a "user" content placed right after the calls
// they answer. Text that follows a result opens a new "model" content.
func toContents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}

		var cur *genai.Content
		emit := func(r string, part *genai.Part) {
			if cur == nil || cur.Role != r {
				cur = &genai.Content{Role: r}
				out = append(out, cur)
			}
			cur.Parts = append(cur.Parts, part)
		}

		for _, p := range m.Parts {
			switch {
			case p.ToolCall != nil:
				emit(role, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   p.ToolCall.ID,
					Name: p.ToolCall.Name,
					Args: p.ToolCall.Args,
				}})
			case p.ToolResult != nil:
				emit(genai.RoleUser, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					ID:       p.ToolResult.CallID,
					Name:     p.ToolResult.Name,
					Response: toResponseMap(p.ToolResult.Output),
				}})
			case p.Text != "":
				emit(role, genai.NewPartFromText(p.Text))
			}
		}
	}
	return out
}

// toResponseMap shapes a tool output as the JSON object Gemini requires.
// Non-object outputs are wrapped under "result".
func toResponseMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"error": "tool output is not serializable"}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err == nil && m != nil {
		return m
	}
	var raw any
	_ = json.Unmarshal(data, &raw)
	return map[string]any{"result": raw}
}

// toTools converts tool specs into a single Gemini tool of function declarations.
func toTools(specs []ToolSpec) []*genai.Tool {
	if len(specs) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, s := range specs {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  toSchema(s.Params),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func toSchema(params []ParamSpec) *genai.Schema {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(params)),
	}
	for _, p := range params {
		schema.Properties[p.Name] = &genai.Schema{
			Type:        schemaType(p.Type),
			Description: p.Description,
			Enum:        p.Enum,
		}
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema
}

func schemaType(t string) genai.Type {
	switch t {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

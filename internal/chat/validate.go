// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	IsValid  bool
	Messages []UIMessage
	Err      *ErrorResponse
}

// Validate decodes a chat request body. The body must be a JSON object whose
// "messages" field is an array; an empty array is valid.
func Validate(raw []byte) ValidationResult {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return ValidationResult{Err: InvalidRequest()}
	}

	field, ok := body["messages"]
	trimmed := bytes.TrimSpace(field)
	if !ok || len(trimmed) == 0 || trimmed[0] != '[' {
		return ValidationResult{Err: InvalidRequest()}
	}

	var msgs []UIMessage
	if err := json.Unmarshal(trimmed, &msgs); err != nil {
		return ValidationResult{Err: InvalidRequest()}
	}
	if msgs == nil {
		msgs = []UIMessage{}
	}
	return ValidationResult{IsValid: true, Messages: msgs}
}

// CheckAPIKey reports a configuration error when key is empty.
func CheckAPIKey(key string) *ErrorResponse {
	if key != "" {
		return nil
	}
	return &ErrorResponse{Status: http.StatusInternalServerError, Message: MsgMissingAPIKey, Code: CodeConfigError}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"errors"
	"strings"

	"github.com/jeranaias/portfolio-chat/internal/chat"
)

// ErrorType classifies a failed exchange for display and analytics.
type ErrorType string

const (
	ErrorDailyLimit  ErrorType = "daily_limit_reached"
	ErrorGlobalLimit ErrorType = "global_limit_reached"
	ErrorRateLimit   ErrorType = "rate_limit"
	ErrorConfig      ErrorType = "config_error"
	ErrorUpstream    ErrorType = "upstream_error"
	ErrorUnknown     ErrorType = "unknown_error"
)

// Message returns the user-facing text for t.
func (t ErrorType) Message() string {
	switch t {
	case ErrorDailyLimit:
		return "Daily message limit reached. Please try again tomorrow."
	case ErrorGlobalLimit:
		return "Daily global message limit reached. Please try again tomorrow."
	case ErrorRateLimit:
		return "Too many requests. Please wait a moment and try again."
	case ErrorConfig:
		return "The assistant is not configured yet. Please try again later."
	case ErrorUpstream:
		return "The assistant is having trouble answering right now. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}

// codeTypes maps server error codes to client error types.
var codeTypes = map[string]ErrorType{
	chat.CodeDailyLimit:  ErrorDailyLimit,
	chat.CodeGlobalLimit: ErrorGlobalLimit,
	chat.CodeRateLimit:   ErrorRateLimit,
	chat.CodeConfigError: ErrorConfig,
	"upstream_auth":      ErrorUpstream,
	"upstream_quota":     ErrorUpstream,
	"upstream_network":   ErrorUpstream,
	"internal_error":     ErrorUpstream,
}

// messagePatterns is the fallback for errors without a code. Order matters:
// the global message also contains "message limit reached".
var messagePatterns = []struct {
	substr string
	typ    ErrorType
}{
	{"Daily global message limit", ErrorGlobalLimit},
	{"Daily message limit", ErrorDailyLimit},
	{"Rate limit", ErrorRateLimit},
	{"Too many requests", ErrorRateLimit},
}

// Classify returns the ErrorType of err: by server code when one is present,
// by message text otherwise. A nil error is ErrorUnknown.
func Classify(err error) ErrorType {
	if err == nil {
		return ErrorUnknown
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if t, ok := codeTypes[apiErr.Code]; ok {
			return t
		}
		return classifyMessage(apiErr.Message)
	}

	var streamErr *StreamError
	if errors.As(err, &streamErr) {
		return ErrorUpstream
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrStreamTruncated) {
		return ErrorUpstream
	}

	return classifyMessage(err.Error())
}

func classifyMessage(msg string) ErrorType {
	for _, p := range messagePatterns {
		if strings.Contains(msg, p.substr) {
			return p.typ
		}
	}
	return ErrorUnknown
}

// UserMessage returns the text to show for err. Limit rejections keep the
// server's wording, which carries the configured ceiling.
func UserMessage(err error) string {
	t := Classify(err)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		switch t {
		case ErrorDailyLimit, ErrorGlobalLimit:
			return apiErr.Message
		}
	}
	return t.Message()
}

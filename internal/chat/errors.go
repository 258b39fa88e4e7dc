// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"net/http"

	"github.com/jeranaias/portfolio-chat/internal/llm"
	"github.com/jeranaias/portfolio-chat/internal/ratelimit"
)

// Error codes sent in the "code" field of error bodies.
const (
	CodeInvalidRequest = "invalid_request"
	CodeConfigError    = "config_error"
	CodeDailyLimit     = "daily_limit"
	CodeGlobalLimit    = "global_limit"
	CodeRateLimit      = "rate_limit"
)

// Fixed user-facing messages.
const (
	MsgInvalidRequest = "Invalid request format"
	MsgBodyTooLarge   = "Request body too large"
	MsgMissingAPIKey  = "Google Gemini API key is not configured. Please add GOOGLE_GENERATIVE_AI_API_KEY to your environment variables."
	MsgThrottled      = "Too many requests. Please slow down and try again."
)

// ErrorResponse is the JSON error body returned instead of a stream.
type ErrorResponse struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Code    string `json:"code"`
}

func (e *ErrorResponse) Error() string { return e.Message }

// InvalidRequest is the 400 answer for malformed bodies.
func InvalidRequest() *ErrorResponse {
	return &ErrorResponse{Status: http.StatusBadRequest, Message: MsgInvalidRequest, Code: CodeInvalidRequest}
}

// BodyTooLarge is the 413 answer for oversized bodies.
func BodyTooLarge() *ErrorResponse {
	return &ErrorResponse{Status: http.StatusRequestEntityTooLarge, Message: MsgBodyTooLarge, Code: CodeInvalidRequest}
}

// Throttled is the 429 answer of the burst throttle.
func Throttled() *ErrorResponse {
	return &ErrorResponse{Status: http.StatusTooManyRequests, Message: MsgThrottled, Code: CodeRateLimit}
}

// LimitExceeded is the 429 answer for a rejected daily limiter decision.
func LimitExceeded(d ratelimit.Decision) *ErrorResponse {
	code := CodeDailyLimit
	if d.Reason == ratelimit.ReasonGlobalLimit {
		code = CodeGlobalLimit
	}
	return &ErrorResponse{Status: http.StatusTooManyRequests, Message: d.Message, Code: code}
}

// FromUpstream maps a model failure to its error body. The upstream text is
// never included.
func FromUpstream(err error) *ErrorResponse {
	kind := llm.KindOf(err)
	if kind == "" {
		kind = llm.KindUnknown
	}
	return &ErrorResponse{Status: kind.Status(), Message: kind.Message(), Code: kind.Code()}
}

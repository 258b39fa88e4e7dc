// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// Kind is the class of an upstream failure.
type Kind string

const (
	KindAuth     Kind = "auth"
	KindQuota    Kind = "quota"
	KindNetwork  Kind = "network"
	KindTimeout  Kind = "timeout"
	KindCanceled Kind = "canceled"
	KindUnknown  Kind = "unknown"
)

// Status returns the HTTP status answered for this kind.
func (k Kind) Status() int {
	switch k {
	case KindAuth:
		return http.StatusUnauthorized
	case KindQuota:
		return http.StatusTooManyRequests
	case KindNetwork, KindTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable error code sent to clients.
func (k Kind) Code() string {
	switch k {
	case KindAuth:
		return "upstream_auth"
	case KindQuota:
		return "upstream_quota"
	case KindNetwork, KindTimeout:
		return "upstream_network"
	default:
		return "internal_error"
	}
}

// Message returns the sanitized user-facing text for this kind.
func (k Kind) Message() string {
	switch k {
	case KindAuth:
		return "Invalid or missing API key. Please check your Google Gemini API configuration."
	case KindQuota:
		return "API quota exceeded. Please try again later."
	case KindNetwork, KindTimeout:
		return "Network error. Please check your connection and try again."
	default:
		return "An unexpected error occurred. Please try again."
	}
}

// =============================================================================
// ERROR TYPE
// =============================================================================

// Error is a classified upstream failure. Err keeps the raw cause for logs.
type Error struct {
	Kind   Kind
	Op     string
	Status int // upstream HTTP status, 0 if none
	Err    error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind, so errors.Is(err, &Error{Kind: KindQuota}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// keywordPattern maps error text to a kind when nothing typed is available.
// Patterns are ordered most specific first; the first match wins.
type keywordPattern struct {
	keywords []string
	kind     Kind
}

var keywordPatterns = []keywordPattern{
	{keywords: []string{"api key", "api_key", "unauthenticated", "permission denied"}, kind: KindAuth},
	{keywords: []string{"quota", "resource_exhausted", "rate limit", "limit"}, kind: KindQuota},
	{keywords: []string{"deadline exceeded", "timeout", "timed out"}, kind: KindTimeout},
	{keywords: []string{"network", "connection refused", "connection reset", "no such host", "unavailable", "eof"}, kind: KindNetwork},
}

// Classify wraps err as an *Error. An err that is already an *Error is
// returned unchanged; nil yields nil.
func Classify(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var le *Error
	if errors.As(err, &le) {
		return le
	}

	out := &Error{Op: op, Err: err, Kind: KindUnknown}

	if status, ok := apiStatus(err); ok {
		out.Status = status
		out.Kind = kindForStatus(status)
		if out.Kind != KindUnknown {
			return out
		}
	}

	switch {
	case errors.Is(err, context.Canceled):
		out.Kind = KindCanceled
		return out
	case errors.Is(err, context.DeadlineExceeded):
		out.Kind = KindTimeout
		return out
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			out.Kind = KindTimeout
		} else {
			out.Kind = KindNetwork
		}
		return out
	}

	out.Kind = kindFromText(err.Error())
	return out
}

// KindOf returns the Kind of err, classifying it if necessary.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return Classify("", err).Kind
}

func apiStatus(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindQuota
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 500:
		return KindNetwork
	default:
		return KindUnknown
	}
}

func kindFromText(msg string) Kind {
	lower := strings.ToLower(msg)
	for _, p := range keywordPatterns {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				return p.kind
			}
		}
	}
	return KindUnknown
}

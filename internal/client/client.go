// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/portfolio-chat/internal/chat"
)

const (
	// DefaultServerURL is the local development server.
	DefaultServerURL = "http://127.0.0.1:8787"

	// ChatPath is the streaming chat endpoint.
	ChatPath = "/api/chat"

	// maxErrorBodySize caps how much of an error response is read.
	maxErrorBodySize = 64 * 1024
)

// ErrStreamTruncated indicates the connection closed before [DONE].
var ErrStreamTruncated = errors.New("stream ended before completion")

// =============================================================================
// ERRORS
// =============================================================================

// APIError is a JSON error answer from the chat API.
type APIError struct {
	Status     int
	Code       string
	Message    string
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("chat api error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("chat api error (HTTP %d): %s", e.Status, e.Message)
}

// StreamError is an error event received after the stream started,
// preserving any text received before it.
type StreamError struct {
	Partial string // Text received before the error
	Message string
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %s", len(e.Partial), e.Message)
	}
	return fmt.Sprintf("stream error: %s", e.Message)
}

// =============================================================================
// CLIENT
// =============================================================================

// EventHandler receives decoded stream events in order. Returning an error
// stops the stream.
type EventHandler func(ev chat.Event) error

// Client talks to a chat server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No overall timeout; streams are bounded by the request context.
		httpClient: &http.Client{},
	}
}

// WithHTTPClient sets a custom HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string { return c.baseURL }

type chatRequest struct {
	Messages []chat.UIMessage `json:"messages"`
}

// Stream posts messages and passes each event to handler until [DONE].
//
// A non-200 answer is returned as *APIError. An in-stream error event is
// passed to handler and then returned as *StreamError.
func (c *Client) Stream(ctx context.Context, messages []chat.UIMessage, handler EventHandler) error {
	if messages == nil {
		messages = []chat.UIMessage{}
	}
	bodyBytes, err := json.Marshal(chatRequest{Messages: messages})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ChatPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return handleErrorResponse(resp)
	}

	return processStream(ctx, resp.Body, handler)
}

// processStream reads and dispatches the SSE stream.
func processStream(ctx context.Context, body io.Reader, handler EventHandler) error {
	reader := NewSSEReader(body)
	var text strings.Builder
	var streamErr *StreamError

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				if streamErr != nil {
					return streamErr
				}
				return ErrStreamTruncated
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("read stream: %w", err)
		}

		if isDone(data) {
			if streamErr != nil {
				return streamErr
			}
			return nil
		}

		var ev chat.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			// Skip malformed events
			continue
		}

		switch ev.Type {
		case chat.EventTextDelta:
			text.WriteString(ev.Delta)
		case chat.EventError:
			streamErr = &StreamError{Partial: text.String(), Message: ev.ErrorText}
		}

		if handler != nil {
			if err := handler(ev); err != nil {
				return err
			}
		}
	}
}

// handleErrorResponse converts a JSON error answer to *APIError.
func handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	apiErr := &APIError{Status: resp.StatusCode}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		apiErr.RetryAfter = time.Duration(secs) * time.Second
	}

	var parsed struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		apiErr.Message = parsed.Error
		apiErr.Code = parsed.Code
		return apiErr
	}

	// Fallback for unparseable error responses
	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

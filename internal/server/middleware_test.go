// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/portfolio-chat/internal/chat"
	"github.com/jeranaias/portfolio-chat/internal/ratelimit"
)

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trust      bool
		want       string
	}{
		{
			name:       "forwarded chain uses first entry",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.2"},
			trust:      true,
			want:       "203.0.113.5",
		},
		{
			name:       "real ip",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.6"},
			trust:      true,
			want:       "203.0.113.6",
		},
		{
			name:       "cloudflare",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"CF-Connecting-IP": "2001:db8::1"},
			trust:      true,
			want:       "2001:db8::1",
		},
		{
			name:       "invalid header falls through",
			remoteAddr: "10.0.0.1:1234",
			headers: map[string]string{
				"X-Forwarded-For": "not-an-ip",
				"X-Real-IP":       "203.0.113.7",
			},
			trust: true,
			want:  "203.0.113.7",
		},
		{
			name:       "headers ignored without trust",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5"},
			trust:      false,
			want:       "10.0.0.1",
		},
		{
			name:       "ipv6 remote",
			remoteAddr: "[2001:db8::2]:443",
			trust:      true,
			want:       "2001:db8::2",
		},
		{
			name:       "remote without port",
			remoteAddr: "192.0.2.1",
			want:       "192.0.2.1",
		},
		{
			name: "unknown",
			want: ratelimit.UnknownClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, ClientKey(req, tt.trust))
		})
	}
}

func TestBurstLimiter(t *testing.T) {
	b := NewBurstLimiter(0.001, 2)

	require.True(t, b.Allow("a"))
	require.True(t, b.Allow("a"))
	require.False(t, b.Allow("a"))
	require.True(t, b.Allow("b"), "clients have separate buckets")
	require.Equal(t, 2, b.Len())

	require.Equal(t, 0, b.Cleanup(time.Hour))
	time.Sleep(5 * time.Millisecond)
	require.Equal(t, 2, b.Cleanup(time.Millisecond))
	require.Equal(t, 0, b.Len())
}

func TestThrottleMiddleware_NilPassesThrough(t *testing.T) {
	called := false
	h := ThrottleMiddleware(nil, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	require.True(t, called)
}

func TestThrottleMiddleware_Rejects(t *testing.T) {
	h := ThrottleMiddleware(NewBurstLimiter(0.001, 1), false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))

	var resp chat.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, chat.CodeRateLimit, resp.Code)
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := CORSMiddleware(DefaultCORSConfig([]string{"https://example.com", "*.example.org"}))(next)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", "https://example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-RateLimit-Remaining")
	})

	t.Run("wildcard subdomain", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.Header.Set("Origin", "https://www.example.org")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusTeapot, rec.Code)
		require.Equal(t, "https://www.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.Header.Set("Origin", "https://evil.test")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "boom")

	var resp chat.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "internal_error", resp.Code)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	h := SecurityHeadersMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestSSEWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w := newSSEWriter(rec)

	require.NoError(t, w.Close(), "closing an unstarted stream writes nothing")
	require.Empty(t, rec.Body.String())

	require.NoError(t, w.Send(chat.Event{Type: chat.EventTextDelta, ID: "t1", Delta: "hi"}))
	require.True(t, w.Started())
	require.NoError(t, w.Close())

	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	require.Equal(t, "v1", rec.Header().Get("X-Vercel-AI-UI-Message-Stream"))

	frames := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n\n"), "\n\n")
	require.Equal(t, []string{
		`data: {"type":"text-delta","id":"t1","delta":"hi"}`,
		`data: [DONE]`,
	}, frames)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/portfolio-chat/internal/chat"
	"github.com/jeranaias/portfolio-chat/internal/ratelimit"
)

// ============================================================================
// CORS Configuration and Middleware
// ============================================================================

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Use "*" to allow all origins.
	AllowedOrigins []string

	// AllowedMethods is a list of allowed HTTP methods.
	AllowedMethods []string

	// AllowedHeaders is a list of allowed request headers.
	AllowedHeaders []string

	// ExposedHeaders are readable by browser scripts.
	ExposedHeaders []string

	// MaxAge is the max age (in seconds) for preflight cache.
	MaxAge int
}

// DefaultCORSConfig returns a CORS configuration for the given origins.
func DefaultCORSConfig(origins []string) *CORSConfig {
	return &CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         86400, // 24 hours
	}
}

// isOriginAllowed checks if the origin is in the allowlist.
func (c *CORSConfig) isOriginAllowed(origin string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		// Wildcard subdomains, e.g. "*.example.com"
		if strings.HasPrefix(allowed, "*.") {
			domain := strings.TrimPrefix(allowed, "*")
			if strings.HasSuffix(origin, domain) {
				return true
			}
		}
	}
	return false
}

// CORSMiddleware returns HTTP middleware that handles CORS headers and
// answers preflight OPTIONS requests.
func CORSMiddleware(config *CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if config.isOriginAllowed(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(config.AllowedHeaders, ", "))
				w.Header().Set("Access-Control-Expose-Headers", strings.Join(config.ExposedHeaders, ", "))
				w.Header().Set("Access-Control-Max-Age", fmt.Sprintf("%d", config.MaxAge))
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================================
// Burst Throttle
// ============================================================================

// BurstLimiter is a per-client token bucket applied in front of the daily
// limiter. It smooths request bursts; it does not count toward the daily budget.
type BurstLimiter struct {
	limiters map[string]*burstEntry
	rps      rate.Limit
	burst    int
	mu       sync.RWMutex
}

type burstEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// NewBurstLimiter creates a limiter allowing rps sustained requests per second
// with the given burst per client.
func NewBurstLimiter(rps float64, burst int) *BurstLimiter {
	if burst < 1 {
		burst = 1
	}
	return &BurstLimiter{
		limiters: make(map[string]*burstEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether a request from key may proceed now.
func (b *BurstLimiter) Allow(key string) bool {
	return b.getLimiter(key).Allow()
}

func (b *BurstLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now().UnixNano()

	b.mu.RLock()
	entry, ok := b.limiters[key]
	b.mu.RUnlock()
	if ok {
		entry.lastSeen.Store(now)
		return entry.limiter
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Double-check after acquiring write lock
	if entry, ok = b.limiters[key]; ok {
		entry.lastSeen.Store(now)
		return entry.limiter
	}

	entry = &burstEntry{limiter: rate.NewLimiter(b.rps, b.burst)}
	entry.lastSeen.Store(now)
	b.limiters[key] = entry
	return entry.limiter
}

// Cleanup drops clients idle for longer than maxIdle and returns how many
// were removed.
func (b *BurstLimiter) Cleanup(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle).UnixNano()

	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for key, entry := range b.limiters {
		if entry.lastSeen.Load() < cutoff {
			delete(b.limiters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (b *BurstLimiter) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.limiters)
}

// RunCleanup prunes idle clients every interval until ctx is done.
func (b *BurstLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Cleanup(interval)
		}
	}
}

// ThrottleMiddleware rejects clients exceeding the burst limiter with 429.
// A nil limiter disables throttling.
func ThrottleMiddleware(limiter *BurstLimiter, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientKey(r, trustProxy)
			if !limiter.Allow(key) {
				log.Printf("RATE_LIMITED | client=%s reason=burst", shortKey(key))
				w.Header().Set("Retry-After", "1")
				writeError(w, chat.Throttled())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================================
// Request Logging Middleware
// ============================================================================

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

// newResponseWriter creates a wrapped response writer.
func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader captures the status code before writing it.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach Flush on the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// LoggingMiddleware returns HTTP middleware that logs all requests.
//
// Log format: "2024-01-15 14:30:45 | POST /api/chat | 200 | 1.234s"
func LoggingMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			logger.Printf("%s | %s %s | %d | %.3fs",
				start.Format("2006-01-02 15:04:05"),
				r.Method,
				r.URL.Path,
				wrapped.statusCode,
				time.Since(start).Seconds(),
			)
		})
	}
}

// ============================================================================
// Security Headers Middleware
// ============================================================================

// SecurityHeadersMiddleware returns HTTP middleware that adds security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Content-Security-Policy", "default-src 'none'")
			w.Header().Set("Cache-Control", "no-store")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================================
// Recovery Middleware
// ============================================================================

// RecoveryMiddleware returns HTTP middleware that recovers from panics, logs
// the stack trace, and answers 500 when nothing was written yet.
func RecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := newResponseWriter(w)
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.Printf("PANIC_RECOVERED | method=%s path=%s error=%v\n%s",
						r.Method,
						r.URL.Path,
						err,
						string(debug.Stack()),
					)
					if !wrapped.wroteHeader {
						writeError(wrapped, chat.FromUpstream(nil))
					}
				}
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}

// ============================================================================
// Middleware Chain Helper
// ============================================================================

// Chain composes multiple middleware functions into a single middleware.
// Middlewares are applied in the order provided.
//
// Example:
//
//	chain := Chain(
//	    RecoveryMiddleware(),
//	    LoggingMiddleware(logger),
//	    CORSMiddleware(cors),
//	)
//	http.Handle("/api", chain(handler))
func Chain(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		// Apply middlewares in reverse order so they execute in order
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// ============================================================================
// Client Key Extraction
// ============================================================================

// clientHeaders are consulted in order when proxy headers are trusted.
var clientHeaders = []string{"X-Forwarded-For", "X-Real-IP", "CF-Connecting-IP"}

// getRemoteIP extracts the IP address from r.RemoteAddr.
// RemoteAddr is in the format "IP:port" or "[IPv6]:port".
func getRemoteIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return remoteAddr
	}
	return host
}

// ClientKey derives the rate-limit key of a request.
//
// With trustProxy, the first entry of X-Forwarded-For, then X-Real-IP, then
// CF-Connecting-IP are used when they hold a valid IP. Otherwise, or when none
// does, the connection address is used. An empty result becomes
// ratelimit.UnknownClient.
func ClientKey(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, name := range clientHeaders {
			value := r.Header.Get(name)
			if value == "" {
				continue
			}
			// X-Forwarded-For may contain a chain; the first IP is the client
			candidate := strings.TrimSpace(strings.Split(value, ",")[0])
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
	}

	if ip := getRemoteIP(r.RemoteAddr); ip != "" {
		return ip
	}
	return ratelimit.UnknownClient
}

// shortKey keeps client keys out of logs in full.
func shortKey(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8] + "..."
}

// ============================================================================
// JSON Helpers
// ============================================================================

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("RESPONSE_ENCODE_ERROR | error=%v", err)
	}
}

// writeError writes a {"error","code"} body with the response's status.
func writeError(w http.ResponseWriter, resp *chat.ErrorResponse) {
	writeJSON(w, resp.Status, resp)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jeranaias/portfolio-chat/internal/chat"
	"github.com/jeranaias/portfolio-chat/internal/config"
	"github.com/jeranaias/portfolio-chat/internal/ratelimit"
	"github.com/jeranaias/portfolio-chat/internal/tools"
	"github.com/jeranaias/portfolio-chat/internal/transcript"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// Version is the server version reported by /health.
	Version = "1.0.0"

	// burstCleanupInterval is how often idle burst buckets are pruned.
	burstCleanupInterval = 10 * time.Minute

	// transcriptTimeout bounds one archive write.
	transcriptTimeout = 2 * time.Second
)

// TranscriptRecorder archives request summaries.
type TranscriptRecorder interface {
	Record(ctx context.Context, e transcript.Entry) error
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the chat HTTP API.
type Server struct {
	cfg     *config.Config
	orch    *chat.Orchestrator
	limiter *ratelimit.Limiter
	exec    *tools.Executor
	burst   *BurstLimiter
	stats   *Stats
	router  *http.ServeMux

	transcripts TranscriptRecorder
	version     string

	server   *http.Server
	cancel   context.CancelFunc
	shutdown bool
	mu       sync.RWMutex
}

// New creates a Server. exec may be nil when the orchestrator runs without tools.
func New(cfg *config.Config, orch *chat.Orchestrator, limiter *ratelimit.Limiter, exec *tools.Executor) *Server {
	s := &Server{
		cfg:     cfg,
		orch:    orch,
		limiter: limiter,
		exec:    exec,
		stats:   NewStats(),
		router:  http.NewServeMux(),
		version: Version,
	}
	if cfg.Server.BurstRPS > 0 {
		s.burst = NewBurstLimiter(cfg.Server.BurstRPS, cfg.Server.Burst)
	}

	s.setupRoutes()
	return s
}

// WithTranscripts enables the request archive.
func (s *Server) WithTranscripts(r TranscriptRecorder) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts = r
	return s
}

// WithVersion overrides the reported version.
func (s *Server) WithVersion(v string) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v != "" {
		s.version = v
	}
	return s
}

// Stats returns the server counters.
func (s *Server) Stats() *Stats { return s.stats }

func (s *Server) setupRoutes() {
	trust := s.cfg.Server.TrustProxyHeaders
	s.router.Handle("POST /api/chat", ThrottleMiddleware(s.burst, trust)(http.HandlerFunc(s.handleChat)))
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /stats", s.handleStats)
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(log.Default()),
		CORSMiddleware(DefaultCORSConfig(s.cfg.Server.AllowedOrigins)),
	)(s.router)
}

// ============================================================================
// CHAT HANDLER
// ============================================================================

// handleChat handles POST /api/chat.
//
// Admission order: daily limiter, credential, body. Each rejection is a JSON
// error; an admitted request is answered as an SSE stream unless the model
// fails before producing anything.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()
	clientKey := ClientKey(r, s.cfg.Server.TrustProxyHeaders)

	decision := s.limiter.CheckAndUpdate(r.Context(), clientKey)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	if !decision.Allowed {
		log.Printf("RATE_LIMITED | client=%s reason=%s", shortKey(clientKey), decision.Reason)
		w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter(time.Now())))
		s.reject(w, chat.LimitExceeded(decision))
		return
	}

	if resp := chat.CheckAPIKey(s.cfg.Model.APIKey); resp != nil {
		log.Printf("CONFIG_ERROR | missing model credential")
		s.reject(w, resp)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.reject(w, chat.BodyTooLarge())
			return
		}
		s.reject(w, chat.InvalidRequest())
		return
	}

	validation := chat.Validate(body)
	if !validation.IsValid {
		s.reject(w, validation.Err)
		return
	}

	sink := newSSEWriter(w)
	outcome, err := s.orch.Run(r.Context(), validation.Messages, sink)
	s.stats.RecordOutcome(outcome)
	s.archive(clientKey, outcome)

	if err != nil {
		s.reject(w, chat.FromUpstream(err))
		return
	}
	if err := sink.Close(); err != nil {
		log.Printf("STREAM_CLOSE_ERROR | client=%s error=%v", shortKey(clientKey), err)
	}
}

func (s *Server) reject(w http.ResponseWriter, resp *chat.ErrorResponse) {
	s.stats.RecordRejection(resp.Code)
	writeError(w, resp)
}

// archive records the outcome when transcripts are enabled.
func (s *Server) archive(clientKey string, out *chat.Outcome) {
	s.mu.RLock()
	rec := s.transcripts
	s.mu.RUnlock()
	if rec == nil || out == nil {
		return
	}

	entry := transcript.Entry{
		ID:               out.MessageID,
		ClientHash:       transcript.HashClient(clientKey),
		Model:            s.orch.ModelName(),
		StartedAt:        out.StartedAt,
		FinishedAt:       out.FinishedAt,
		State:            string(out.State),
		MessageCount:     out.Messages,
		Steps:            out.Steps,
		ToolCalls:        out.ToolCalls,
		ResponseChars:    len([]rune(out.Text)),
		PromptTokens:     out.Usage.PromptTokens,
		CompletionTokens: out.Usage.CompletionTokens,
	}
	if out.Err != nil {
		entry.ErrorKind = string(out.Err.Kind)
	}

	ctx, cancel := context.WithTimeout(context.Background(), transcriptTimeout)
	defer cancel()
	if err := rec.Record(ctx, entry); err != nil {
		log.Printf("TRANSCRIPT_ERROR | id=%s error=%v", entry.ID, err)
	}
}

// ============================================================================
// HEALTH HANDLER
// ============================================================================

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status               string `json:"status"`
	Version              string `json:"version"`
	Model                string `json:"model"`
	CredentialConfigured bool   `json:"credential_configured"`
	LimiterStore         string `json:"limiter_store"`
	Transcripts          bool   `json:"transcripts"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	health := HealthResponse{
		Status:               "ok",
		Version:              s.version,
		Model:                s.orch.ModelName(),
		CredentialConfigured: s.cfg.Model.APIKey != "",
		LimiterStore:         s.cfg.Limits.Store,
		Transcripts:          s.transcripts != nil,
	}
	s.mu.RUnlock()

	if !health.CredentialConfigured {
		health.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, health)
}

// ============================================================================
// STATS HANDLER
// ============================================================================

// StatsResponse represents the usage statistics response.
type StatsResponse struct {
	StatsSnapshot
	Usage         *ratelimit.Usage      `json:"usage,omitempty"`
	Tools         *tools.ExecutionStats `json:"tools,omitempty"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
}

// handleStats handles GET /stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		StatsSnapshot: s.stats.Snapshot(),
		UptimeSeconds: int64(s.stats.Uptime().Seconds()),
	}

	if usage, err := s.limiter.Usage(r.Context()); err == nil {
		resp.Usage = &usage
	} else {
		log.Printf("RATE_LIMIT_STORE_ERROR | op=usage error=%v", err)
	}
	if s.exec != nil {
		ts := s.exec.Stats()
		resp.Tools = &ts
	}

	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start listens on the configured address and serves until Shutdown.
// It returns http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown. Serve after Shutdown closes ln and
// returns http.ErrServerClosed.
func (s *Server) Serve(ln net.Listener) error {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		cancel()
		ln.Close()
		return http.ErrServerClosed
	}
	s.cancel = cancel
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(s.cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	if s.burst != nil {
		go s.burst.RunCleanup(ctx, burstCleanupInterval)
	}

	log.Printf("SERVER_START | addr=%s version=%s model=%s", ln.Addr(), s.version, s.orch.ModelName())
	return srv.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	srv, cancel := s.server, s.cancel
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if cancel != nil {
		cancel()
	}

	log.Printf("SERVER_SHUTDOWN | starting graceful shutdown")
	return srv.Shutdown(ctx)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"sync"
	"time"

	"github.com/jeranaias/portfolio-chat/internal/chat"
)

// Stats tracks server usage statistics. Safe for concurrent use.
type Stats struct {
	mu sync.Mutex

	totalRequests    int64
	admitted         int64
	finished         int64
	errored          int64
	rejected         map[string]int64
	upstreamErrors   map[string]int64
	promptTokens     int64
	completionTokens int64
	toolCalls        int64

	startTime time.Time
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	TotalRequests    int64            `json:"total_requests"`
	Admitted         int64            `json:"admitted"`
	Finished         int64            `json:"finished"`
	Errored          int64            `json:"errored"`
	Rejected         map[string]int64 `json:"rejected"`
	UpstreamErrors   map[string]int64 `json:"upstream_errors"`
	PromptTokens     int64            `json:"prompt_tokens"`
	CompletionTokens int64            `json:"completion_tokens"`
	ToolCalls        int64            `json:"tool_calls"`
	StartTime        time.Time        `json:"start_time"`
}

// NewStats creates a new Stats instance.
func NewStats() *Stats {
	return &Stats{
		rejected:       make(map[string]int64),
		upstreamErrors: make(map[string]int64),
		startTime:      time.Now(),
	}
}

// RecordRequest counts an incoming chat request.
func (s *Stats) RecordRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalRequests++
}

// RecordRejection counts a request answered with an error code before streaming.
func (s *Stats) RecordRejection(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected[code]++
}

// RecordOutcome counts an orchestrated request.
func (s *Stats) RecordOutcome(out *chat.Outcome) {
	if out == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.admitted++
	s.promptTokens += int64(out.Usage.PromptTokens)
	s.completionTokens += int64(out.Usage.CompletionTokens)
	s.toolCalls += int64(out.ToolCalls)

	switch out.State {
	case chat.StateFinished:
		s.finished++
	default:
		s.errored++
		if out.Err != nil {
			s.upstreamErrors[string(out.Err.Kind)]++
		}
	}
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		TotalRequests:    s.totalRequests,
		Admitted:         s.admitted,
		Finished:         s.finished,
		Errored:          s.errored,
		Rejected:         make(map[string]int64, len(s.rejected)),
		UpstreamErrors:   make(map[string]int64, len(s.upstreamErrors)),
		PromptTokens:     s.promptTokens,
		CompletionTokens: s.completionTokens,
		ToolCalls:        s.toolCalls,
		StartTime:        s.startTime,
	}
	for k, v := range s.rejected {
		snap.Rejected[k] = v
	}
	for k, v := range s.upstreamErrors {
		snap.UpstreamErrors[k] = v
	}
	return snap
}

// Uptime returns the server uptime duration.
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ratelimit

import (
	"context"
	"errors"
	"sync"
)

// ErrStoreClosed is returned by a store after Close.
var ErrStoreClosed = errors.New("rate limit store closed")

// Record is one counter: the global one or a single client's.
type Record struct {
	Key        string `json:"key"`
	Count      int    `json:"count"`
	WindowDate string `json:"window_date"`
}

// Store persists records. Implementations must be safe for concurrent use;
// the Limiter adds its own serialization on top.
type Store interface {
	// Load returns the record for key; ok is false when none exists.
	Load(ctx context.Context, key string) (rec Record, ok bool, err error)
	// Save writes all records, atomically when the backend supports it.
	Save(ctx context.Context, recs ...Record) error
	Close() error
}

// MemoryStore keeps records in process memory. Counters are lost on restart
// and are not shared between instances.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	closed  bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, key string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Record{}, false, ErrStoreClosed
	}
	rec, ok := s.records[key]
	return rec, ok, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, recs ...Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	for _, rec := range recs {
		s.records[rec.Key] = rec
	}
	return nil
}

// Len returns the number of stored records, the global one included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.records = nil
	return nil
}

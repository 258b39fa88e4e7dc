// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ratelimit implements the daily admission budget for the chat endpoint.
//
// Every client key gets a fixed number of messages per calendar day, and all
// clients together share a global ceiling. Counters live in a Record that
// carries the date it was last counted against; a record whose date is not
// today is treated as zero. The global record is always checked first, so a
// saturated global budget never touches per-client state.
//
// # Key Types
//
//   - Limiter: check-and-update entry point, safe for concurrent use
//   - Store: persistence for records (MemoryStore, BadgerStore)
//   - Clock: time source, swapped for a fixed clock in tests
//   - Decision: the admission result with remaining budget and reset time
//
// # Usage
//
//	limiter := ratelimit.New(ratelimit.NewMemoryStore(), 100, 10000)
//	d := limiter.CheckAndUpdate(ctx, clientKey)
//	if !d.Allowed {
//	    http.Error(w, d.Message, http.StatusTooManyRequests)
//	}
package ratelimit

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ratelimit

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

const (
	// DefaultPerClientDaily is the per-client message budget per day.
	DefaultPerClientDaily = 100

	// DefaultGlobalDaily is the message budget shared by all clients per day.
	DefaultGlobalDaily = 10000

	// UnknownClient replaces an empty client key.
	UnknownClient = "unknown-ip"

	// globalKey is the reserved store key of the global record. The
	// "client:" prefix on per-client keys keeps the two namespaces apart.
	globalKey = "global"

	dateLayout = "2006-01-02"
)

// GlobalLimitMessage is returned once the global budget is exhausted.
const GlobalLimitMessage = "Daily global message limit reached. Please try again tomorrow."

// ClientLimitMessage formats the per-client rejection message.
func ClientLimitMessage(limit int) string {
	return fmt.Sprintf("Daily message limit reached (%d messages per day). Please try again tomorrow.", limit)
}

// =============================================================================
// CLOCK
// =============================================================================

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// =============================================================================
// DECISION
// =============================================================================

// Reason identifies why a request was rejected.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonGlobalLimit
	ReasonClientLimit
)

// String returns the reason as used in logs and error codes.
func (r Reason) String() string {
	switch r {
	case ReasonGlobalLimit:
		return "global_limit"
	case ReasonClientLimit:
		return "client_limit"
	default:
		return "none"
	}
}

// Decision is the outcome of one CheckAndUpdate call.
type Decision struct {
	Allowed bool
	Reason  Reason
	// Message is set when Allowed is false.
	Message string

	// Limit and Remaining describe the budget that applied: the per-client
	// budget on admission and client rejection, the global one on a global
	// rejection.
	Limit     int
	Remaining int

	// ResetAt is the next local midnight, when all counters roll over.
	ResetAt time.Time

	// Degraded is set when the store failed and the request was admitted
	// without being counted.
	Degraded bool
}

// RetryAfter returns the whole seconds until ResetAt, at least one.
func (d Decision) RetryAfter(now time.Time) int {
	secs := int(d.ResetAt.Sub(now).Seconds())
	if secs < 1 {
		return 1
	}
	return secs
}

// Usage is a read-only snapshot of today's global consumption.
type Usage struct {
	Date           string `json:"date"`
	GlobalCount    int    `json:"global_count"`
	GlobalLimit    int    `json:"global_limit"`
	PerClientLimit int    `json:"per_client_limit"`
}

// =============================================================================
// LIMITER
// =============================================================================

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(l *Limiter) { l.clock = c }
}

// WithLocation sets the time zone whose calendar day defines the window.
func WithLocation(loc *time.Location) Option {
	return func(l *Limiter) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// Limiter enforces the per-client and global daily budgets.
type Limiter struct {
	store     Store
	clock     Clock
	loc       *time.Location
	perClient int
	global    int

	// mu serializes the load, compare, save sequence so two concurrent
	// requests cannot both take the last unit of budget.
	mu sync.Mutex
}

// New creates a Limiter. Non-positive ceilings fall back to the defaults.
func New(store Store, perClient, global int, opts ...Option) *Limiter {
	if perClient <= 0 {
		perClient = DefaultPerClientDaily
	}
	if global <= 0 {
		global = DefaultGlobalDaily
	}
	l := &Limiter{
		store:     store,
		clock:     SystemClock,
		loc:       time.Local,
		perClient: perClient,
		global:    global,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// PerClientLimit returns the per-client ceiling.
func (l *Limiter) PerClientLimit() int { return l.perClient }

// GlobalLimit returns the global ceiling.
func (l *Limiter) GlobalLimit() int { return l.global }

// CheckAndUpdate decides whether clientKey may send one more message today
// and, if so, counts it against both budgets. It never fails: a store error
// admits the request with Decision.Degraded set.
func (l *Limiter) CheckAndUpdate(ctx context.Context, clientKey string) Decision {
	if clientKey == "" {
		clientKey = UnknownClient
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now().In(l.loc)
	today := now.Format(dateLayout)
	resetAt := nextMidnight(now)

	degraded := func(op string, err error) Decision {
		log.Printf("RATE_LIMIT_STORE_ERROR | op=%s client=%s error=%v", op, shortKey(clientKey), err)
		return Decision{
			Allowed:   true,
			Limit:     l.perClient,
			Remaining: l.perClient,
			ResetAt:   resetAt,
			Degraded:  true,
		}
	}

	global, err := l.current(ctx, globalKey, today)
	if err != nil {
		return degraded("load_global", err)
	}
	if global.Count >= l.global {
		return Decision{
			Reason:  ReasonGlobalLimit,
			Message: GlobalLimitMessage,
			Limit:   l.global,
			ResetAt: resetAt,
		}
	}

	client, err := l.current(ctx, clientStoreKey(clientKey), today)
	if err != nil {
		return degraded("load_client", err)
	}
	if client.Count >= l.perClient {
		return Decision{
			Reason:  ReasonClientLimit,
			Message: ClientLimitMessage(l.perClient),
			Limit:   l.perClient,
			ResetAt: resetAt,
		}
	}

	global.Count++
	client.Count++
	if err := l.store.Save(ctx, global, client); err != nil {
		return degraded("save", err)
	}

	return Decision{
		Allowed:   true,
		Limit:     l.perClient,
		Remaining: l.perClient - client.Count,
		ResetAt:   resetAt,
	}
}

// Usage reports today's global count.
func (l *Limiter) Usage(ctx context.Context) (Usage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := l.clock.Now().In(l.loc).Format(dateLayout)
	global, err := l.current(ctx, globalKey, today)
	if err != nil {
		return Usage{}, fmt.Errorf("load global usage: %w", err)
	}
	return Usage{
		Date:           today,
		GlobalCount:    global.Count,
		GlobalLimit:    l.global,
		PerClientLimit: l.perClient,
	}, nil
}

// current loads key and rolls it over to today when its window is stale.
// Missing records are created lazily.
func (l *Limiter) current(ctx context.Context, key, today string) (Record, error) {
	rec, ok, err := l.store.Load(ctx, key)
	if err != nil {
		return Record{}, err
	}
	if !ok || rec.WindowDate != today {
		return Record{Key: key, WindowDate: today}, nil
	}
	return rec, nil
}

func clientStoreKey(clientKey string) string {
	return "client:" + clientKey
}

func nextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

// shortKey keeps client keys recognisable in logs without writing them out in full.
func shortKey(key string) string {
	if len(key) <= 12 {
		return key
	}
	return key[:12] + "..."
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is a settable Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// failingStore fails every call.
type failingStore struct{}

func (failingStore) Load(context.Context, string) (Record, bool, error) {
	return Record{}, false, errors.New("disk on fire")
}
func (failingStore) Save(context.Context, ...Record) error { return errors.New("disk on fire") }
func (failingStore) Close() error                          { return nil }

var noon = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestLimiter(store Store, perClient, global int, clock Clock) *Limiter {
	return New(store, perClient, global, WithClock(clock), WithLocation(time.UTC))
}

// =============================================================================
// PER-CLIENT BUDGET
// =============================================================================

func TestLimiter_ClientCeiling(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(noon)
	l := newTestLimiter(NewMemoryStore(), 3, 100, clock)

	for i := 1; i <= 3; i++ {
		d := l.CheckAndUpdate(ctx, "203.0.113.7")
		require.True(t, d.Allowed, "request %d", i)
		require.Equal(t, 3-i, d.Remaining)
		require.Equal(t, 3, d.Limit)
	}

	d := l.CheckAndUpdate(ctx, "203.0.113.7")
	require.False(t, d.Allowed)
	require.Equal(t, ReasonClientLimit, d.Reason)
	require.Equal(t, "Daily message limit reached (3 messages per day). Please try again tomorrow.", d.Message)
	require.Equal(t, 0, d.Remaining)

	// Another client is unaffected.
	require.True(t, l.CheckAndUpdate(ctx, "198.51.100.1").Allowed)
}

func TestLimiter_DefaultCeilingMessage(t *testing.T) {
	require.Equal(t,
		"Daily message limit reached (100 messages per day). Please try again tomorrow.",
		ClientLimitMessage(DefaultPerClientDaily))
}

func TestLimiter_Rollover(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(noon)
	l := newTestLimiter(NewMemoryStore(), 2, 100, clock)

	require.True(t, l.CheckAndUpdate(ctx, "c").Allowed)
	require.True(t, l.CheckAndUpdate(ctx, "c").Allowed)
	require.False(t, l.CheckAndUpdate(ctx, "c").Allowed)

	clock.Advance(11*time.Hour + 59*time.Minute)
	require.False(t, l.CheckAndUpdate(ctx, "c").Allowed, "still the same day")

	clock.Advance(2 * time.Minute)
	d := l.CheckAndUpdate(ctx, "c")
	require.True(t, d.Allowed, "new day resets the counter")
	require.Equal(t, 1, d.Remaining)
}

func TestLimiter_WindowFollowsLocation(t *testing.T) {
	ctx := context.Background()
	tokyo := time.FixedZone("JST", 9*60*60)
	// 23:30 UTC is 08:30 the next day in Tokyo.
	clock := newFakeClock(time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC))
	l := New(NewMemoryStore(), 5, 100, WithClock(clock), WithLocation(tokyo))

	d := l.CheckAndUpdate(ctx, "c")
	require.True(t, d.Allowed)
	require.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, tokyo), d.ResetAt)

	usage, err := l.Usage(ctx)
	require.NoError(t, err)
	require.Equal(t, "2025-03-15", usage.Date)
}

func TestLimiter_EmptyKeyUsesSentinel(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	l := newTestLimiter(store, 1, 100, newFakeClock(noon))

	require.True(t, l.CheckAndUpdate(ctx, "").Allowed)
	require.False(t, l.CheckAndUpdate(ctx, UnknownClient).Allowed)

	_, ok, err := store.Load(ctx, clientStoreKey(UnknownClient))
	require.NoError(t, err)
	require.True(t, ok)
}

// =============================================================================
// GLOBAL BUDGET
// =============================================================================

func TestLimiter_GlobalShortCircuit(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(noon)
	store := NewMemoryStore()
	l := newTestLimiter(store, 10, 3, clock)

	for i := 0; i < 3; i++ {
		require.True(t, l.CheckAndUpdate(ctx, fmt.Sprintf("client-%d", i)).Allowed)
	}
	records := store.Len()

	d := l.CheckAndUpdate(ctx, "fresh-client")
	require.False(t, d.Allowed)
	require.Equal(t, ReasonGlobalLimit, d.Reason)
	require.Equal(t, GlobalLimitMessage, d.Message)
	require.Equal(t, 3, d.Limit)
	require.Equal(t, records, store.Len(), "per-client state must not be touched")

	_, ok, err := store.Load(ctx, clientStoreKey("fresh-client"))
	require.NoError(t, err)
	require.False(t, ok)

	clock.Advance(24 * time.Hour)
	require.True(t, l.CheckAndUpdate(ctx, "fresh-client").Allowed)
}

func TestLimiter_RejectionDoesNotCount(t *testing.T) {
	ctx := context.Background()
	l := newTestLimiter(NewMemoryStore(), 1, 100, newFakeClock(noon))

	require.True(t, l.CheckAndUpdate(ctx, "a").Allowed)
	for i := 0; i < 5; i++ {
		require.False(t, l.CheckAndUpdate(ctx, "a").Allowed)
	}

	usage, err := l.Usage(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, usage.GlobalCount)
	require.Equal(t, 100, usage.GlobalLimit)
	require.Equal(t, 1, usage.PerClientLimit)
}

// =============================================================================
// FAILURE AND CONCURRENCY
// =============================================================================

func TestLimiter_StoreFailureFailsOpen(t *testing.T) {
	l := newTestLimiter(failingStore{}, 1, 1, newFakeClock(noon))

	for i := 0; i < 3; i++ {
		d := l.CheckAndUpdate(context.Background(), "a")
		require.True(t, d.Allowed)
		require.True(t, d.Degraded)
	}

	_, err := l.Usage(context.Background())
	require.Error(t, err)
}

func TestLimiter_ConcurrentExactBudget(t *testing.T) {
	ctx := context.Background()
	l := newTestLimiter(NewMemoryStore(), 50, 1000, newFakeClock(noon))

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.CheckAndUpdate(ctx, "shared").Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(50), allowed.Load())
}

func TestLimiter_DefaultsForNonPositiveCeilings(t *testing.T) {
	l := New(NewMemoryStore(), 0, -1)
	require.Equal(t, DefaultPerClientDaily, l.PerClientLimit())
	require.Equal(t, DefaultGlobalDaily, l.GlobalLimit())
}

func TestDecision_RetryAfter(t *testing.T) {
	d := Decision{ResetAt: noon.Add(90 * time.Second)}
	require.Equal(t, 90, d.RetryAfter(noon))
	require.Equal(t, 1, d.RetryAfter(noon.Add(time.Hour)))
}

func TestReason_String(t *testing.T) {
	require.Equal(t, "none", ReasonNone.String())
	require.Equal(t, "global_limit", ReasonGlobalLimit.String())
	require.Equal(t, "client_limit", ReasonClientLimit.String())
}

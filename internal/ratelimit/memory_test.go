package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestMemory(requests int, window time.Duration) (*Memory, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemory(requests, window)
	m.now = clock.Now
	return m, clock
}

func TestMemoryAllowsBurstThenThrottles(t *testing.T) {
	m, clock := newTestMemory(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := m.Limit(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, d.Success, "request %d", i)
	}

	d, err := m.Limit(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, d.Success)

	clock.Advance(20 * time.Second)
	d, _ = m.Limit(ctx, "203.0.113.7")
	assert.True(t, d.Success, "one token refills every window/requests")
}

func TestMemoryKeysAreIndependent(t *testing.T) {
	m, _ := newTestMemory(1, time.Minute)
	ctx := context.Background()

	d, _ := m.Limit(ctx, "a")
	assert.True(t, d.Success)
	d, _ = m.Limit(ctx, "a")
	assert.False(t, d.Success)

	d, _ = m.Limit(ctx, UnknownKey)
	assert.True(t, d.Success)
}

func TestMemoryEvictsIdleBuckets(t *testing.T) {
	m, clock := newTestMemory(1, time.Minute)
	ctx := context.Background()

	_, _ = m.Limit(ctx, "a")
	_, _ = m.Limit(ctx, "b")
	require.Equal(t, 2, m.size())

	clock.Advance(3 * time.Minute)
	m.mu.Lock()
	m.evictLocked(clock.Now())
	m.mu.Unlock()

	assert.Equal(t, 0, m.size())
}

func TestMemoryConcurrentUse(t *testing.T) {
	m, _ := newTestMemory(50, time.Hour)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := m.Limit(ctx, "same")
			if err == nil && d.Success {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestAllowAll(t *testing.T) {
	d, err := AllowAll.Limit(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, d.Success)
}

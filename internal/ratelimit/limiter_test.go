package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter() (*Limiter, *fakeClock) {
	clk := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	return New().WithClock(clk.Now), clk
}

func TestCheck_FixedWindow(t *testing.T) {
	l, clk := newTestLimiter()

	assert.True(t, l.Check("api:1.2.3.4", 3, time.Minute))
	assert.True(t, l.Check("api:1.2.3.4", 3, time.Minute))
	assert.True(t, l.Check("api:1.2.3.4", 3, time.Minute))
	assert.False(t, l.Check("api:1.2.3.4", 3, time.Minute))

	clk.Advance(time.Minute)
	assert.True(t, l.Check("api:1.2.3.4", 3, time.Minute), "first call of a new window")
}

func TestCheck_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter()
	assert.True(t, l.Check("login:a", 1, time.Minute))
	assert.False(t, l.Check("login:a", 1, time.Minute))
	assert.True(t, l.Check("login:b", 1, time.Minute))
	assert.True(t, l.Check("upload:a", 1, time.Minute))
}

func TestRemainingAndResetAt(t *testing.T) {
	l, clk := newTestLimiter()
	key := "download:x"

	assert.Equal(t, 5, l.Remaining(key, 5))
	assert.True(t, l.ResetAt(key).IsZero())

	l.Check(key, 5, time.Hour)
	l.Check(key, 5, time.Hour)
	assert.Equal(t, 3, l.Remaining(key, 5))
	assert.Equal(t, clk.Now().Add(time.Hour), l.ResetAt(key))

	clk.Advance(time.Hour)
	assert.Equal(t, 5, l.Remaining(key, 5))
	assert.True(t, l.ResetAt(key).IsZero())
}

func TestSweep_RemovesExpiredWindows(t *testing.T) {
	l, clk := newTestLimiter()
	l.Check("a", 1, time.Minute)
	l.Check("b", 1, time.Hour)
	require.Equal(t, 2, l.Len())

	clk.Advance(2 * time.Minute)
	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())

	// a swept key starts a fresh window
	assert.True(t, l.Check("a", 1, time.Minute))
}

func TestCheck_ConcurrentCallsNeverExceedMax(t *testing.T) {
	l, _ := newTestLimiter()
	const max = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check("k", max, time.Minute) {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, max, allowed)
}

func TestAdmit_ReportsState(t *testing.T) {
	l, _ := newTestLimiter()
	for i := 0; i < Login.Max; i++ {
		d := l.Admit(Login, "9.9.9.9")
		require.True(t, d.Allowed)
		assert.Equal(t, Login.Max-i-1, d.Remaining)
	}
	d := l.Admit(Login, "9.9.9.9")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.False(t, d.ResetAt.IsZero())
	assert.Equal(t, "login:9.9.9.9", Login.Key("9.9.9.9"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func BenchmarkCheck(b *testing.B) {
	l := New()
	for i := 0; i < b.N; i++ {
		l.Check(fmt.Sprintf("api:%d", i%64), 1_000_000, time.Minute)
	}
}

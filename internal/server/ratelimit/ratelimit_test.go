package ratelimit

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

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

func newTestLimiter(t *testing.T, config *Config) (*Limiter, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	l := NewLimiter(config)
	l.now = clock.Now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestTokenBucket_Take(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(10, 1.0, now)

	for i := 0; i < 10; i++ {
		allowed, remaining, _, _ := bucket.take(now)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 9-i, remaining)
	}

	allowed, remaining, resetTime, retryAfter := bucket.take(now)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, now.Add(10*time.Second), resetTime)
	assert.Equal(t, time.Second, retryAfter)
}

func TestTokenBucket_Refill(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(10, 1.0, now)
	for i := 0; i < 10; i++ {
		bucket.take(now)
	}

	later := now.Add(1100 * time.Millisecond)
	allowed, _, _, _ := bucket.take(later)
	assert.True(t, allowed)

	allowed, _, _, _ = bucket.take(later)
	assert.False(t, allowed)
}

func TestTokenBucket_RefillCapped(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(3, 1.0, now)
	bucket.take(now)

	remaining, resetTime := bucket.getStatus(now.Add(time.Hour))
	assert.Equal(t, 3, remaining)
	assert.Equal(t, now.Add(time.Hour), resetTime)
}

func TestTokenBucket_GetStatus(t *testing.T) {
	now := time.Now()
	bucket := newTokenBucket(10, 1.0, now)
	for i := 0; i < 5; i++ {
		bucket.take(now)
	}

	remaining, resetTime := bucket.getStatus(now)
	assert.Equal(t, 5, remaining)
	assert.Equal(t, now.Add(5*time.Second), resetTime)
}

func TestLimiter_Allow(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/test", http.MethodGet)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/test", http.MethodGet)
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, 6.0, info.RetryAfter.Seconds(), 0.001)
}

func TestLimiter_Whitelist(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
	})

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/test", http.MethodGet)
		require.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"10.0.0.1": true},
	})

	allowed, info := limiter.Allow("10.0.0.1", "/health", http.MethodGet)
	assert.False(t, allowed)
	assert.False(t, info.Allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{Enabled: false, DefaultLimit: 1})

	for i := 0; i < 50; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/test", http.MethodGet)
		require.True(t, allowed)
	}
	assert.Nil(t, limiter.cleanupTicker)
}

func TestLimiter_UnlimitedEndpoints(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
	})

	for i := 0; i < 20; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/health", http.MethodGet)
		require.True(t, allowed)
		allowed, _ = limiter.Allow("127.0.0.1", "/metrics", http.MethodGet)
		require.True(t, allowed)
	}
}

func TestLimiter_RecommendationsSharedAcrossBrands(t *testing.T) {
	limiter, _ := newTestLimiter(t, FromSettings(Settings{
		Enabled:              true,
		RecommendationsLimit: 10,
		Window:               time.Hour,
	}))

	// Burst is limit/5.
	for i := 0; i < 2; i++ {
		allowed, info := limiter.Allow("127.0.0.1", fmt.Sprintf("/brands/b%d/recommendations", i), http.MethodPost)
		require.True(t, allowed)
		assert.Equal(t, 10, info.Limit)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/brands/other/recommendations", http.MethodPost)
	assert.False(t, allowed)
	assert.InDelta(t, 360.0, info.RetryAfter.Seconds(), 0.001)

	// Other endpoints and other clients are unaffected.
	allowed, _ = limiter.Allow("127.0.0.1", "/brands/b0/opportunities", http.MethodPost)
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("127.0.0.2", "/brands/b0/recommendations", http.MethodPost)
	assert.True(t, allowed)
}

func TestLimiter_RefillOverTime(t *testing.T) {
	limiter, clock := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Minute,
	})

	limiter.Allow("c", "/x", http.MethodGet)
	limiter.Allow("c", "/x", http.MethodGet)
	allowed, _ := limiter.Allow("c", "/x", http.MethodGet)
	require.False(t, allowed)

	clock.Advance(31 * time.Second)
	allowed, _ = limiter.Allow("c", "/x", http.MethodGet)
	assert.True(t, allowed)
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
	})

	var allowedCount atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow("127.0.0.1", "/test", http.MethodGet); ok {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), allowedCount.Load())
}

func TestLimiter_Cleanup(t *testing.T) {
	limiter, clock := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})

	limiter.Allow("old", "/test", http.MethodGet)
	clock.Advance(2 * time.Hour)
	limiter.Allow("fresh", "/test", http.MethodGet)

	limiter.cleanupBuckets()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.buckets, 1)
	assert.Contains(t, limiter.buckets, "fresh:GET:/test")
	assert.NotContains(t, limiter.lastAccess, "old:GET:/test")
}

func TestLimiter_StopIdempotent(t *testing.T) {
	limiter := NewLimiter(nil)
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	require.NotNil(t, limiter.config)
	assert.True(t, limiter.config.Enabled)
	assert.Equal(t, 1000, limiter.config.DefaultLimit)
	assert.Equal(t, time.Minute, limiter.config.DefaultWindow)
}

package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(start time.Time) (*Limiter, *time.Time) {
	limiter := NewLimiter()
	now := start
	limiter.now = func() time.Time { return now }
	return limiter, &now
}

func TestAllowWithinLimit(t *testing.T) {
	limiter, _ := newTestLimiter(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("user:1", 3, time.Minute), "attempt %d", i+1)
	}
	assert.False(t, limiter.Allow("user:1", 3, time.Minute), "fourth attempt inside the window")
}

func TestWindowSlides(t *testing.T) {
	limiter, now := newTestLimiter(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("user:1", 3, time.Minute))
		*now = now.Add(10 * time.Second)
	}
	// 30s in: three timestamps inside the window.
	assert.False(t, limiter.Allow("user:1", 3, time.Minute))

	// 61s after the first attempt it has slid out.
	*now = now.Add(31 * time.Second)
	assert.True(t, limiter.Allow("user:1", 3, time.Minute))
}

func TestDeniedAttemptsDoNotExtendLockout(t *testing.T) {
	limiter, now := newTestLimiter(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	assert.True(t, limiter.Allow("user:1", 1, time.Minute))
	for i := 0; i < 10; i++ {
		*now = now.Add(5 * time.Second)
		assert.False(t, limiter.Allow("user:1", 1, time.Minute))
	}

	// 50s of denials later, one minute after the single admitted attempt the
	// key is open again.
	*now = now.Add(11 * time.Second)
	assert.True(t, limiter.Allow("user:1", 1, time.Minute))
}

func TestKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	assert.True(t, limiter.Allow("interview:alice", 1, time.Minute))
	assert.False(t, limiter.Allow("interview:alice", 1, time.Minute))
	assert.True(t, limiter.Allow("interview:bob", 1, time.Minute))
	assert.True(t, limiter.Allow("analyze:alice", 1, time.Minute))
}

func TestReset(t *testing.T) {
	limiter, _ := newTestLimiter(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	assert.True(t, limiter.Allow("user:1", 1, time.Minute))
	assert.False(t, limiter.Allow("user:1", 1, time.Minute))

	limiter.Reset("user:1")
	assert.True(t, limiter.Allow("user:1", 1, time.Minute))
}

func TestZeroLimitDeniesEverything(t *testing.T) {
	limiter, _ := newTestLimiter(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	assert.False(t, limiter.Allow("user:1", 0, time.Minute))
}

func TestConcurrentAllowAdmitsExactlyLimit(t *testing.T) {
	limiter := NewLimiter()

	const workers = 50
	const limit = 10
	var admitted int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if limiter.Allow("shared", limit, time.Minute) {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
			// Other keys must not be affected by contention on "shared".
			assert.True(t, limiter.Allow(fmt.Sprintf("own:%d", i), 1, time.Minute))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, limit, admitted)
}

package headhunter

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	t.Run("parameter order does not matter", func(t *testing.T) {
		a := url.Values{}
		a.Set("text", "go")
		a.Set("area", "40")

		b := url.Values{}
		b.Set("area", "40")
		b.Set("text", "go")

		assert.Equal(t, CacheKey("/vacancies", a), CacheKey("/vacancies", b))
	})

	t.Run("different endpoints differ", func(t *testing.T) {
		assert.NotEqual(t, CacheKey("/vacancies", nil), CacheKey("/vacancies/1", nil))
	})

	t.Run("different values differ", func(t *testing.T) {
		a := url.Values{"text": {"go"}}
		b := url.Values{"text": {"rust"}}
		assert.NotEqual(t, CacheKey("/vacancies", a), CacheKey("/vacancies", b))
	})
}

func TestCacheGet(t *testing.T) {
	t.Run("fresh hit skips the loader", func(t *testing.T) {
		cache := NewCache(10 * time.Minute)
		calls := 0
		loader := func() (any, error) {
			calls++
			return "value", nil
		}

		for i := 0; i < 3; i++ {
			got, err := cache.Get("k", loader)
			require.NoError(t, err)
			assert.Equal(t, "value", got)
		}
		assert.Equal(t, 1, calls)
	})

	t.Run("expiry refreshes synchronously", func(t *testing.T) {
		cache := NewCache(10 * time.Minute)
		now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		cache.now = func() time.Time { return now }

		calls := 0
		loader := func() (any, error) {
			calls++
			return calls, nil
		}

		got, err := cache.Get("k", loader)
		require.NoError(t, err)
		assert.Equal(t, 1, got)

		now = now.Add(9 * time.Minute)
		got, err = cache.Get("k", loader)
		require.NoError(t, err)
		assert.Equal(t, 1, got, "still inside the TTL")

		now = now.Add(2 * time.Minute)
		got, err = cache.Get("k", loader)
		require.NoError(t, err)
		assert.Equal(t, 2, got, "past the TTL the loader runs again")
		assert.Equal(t, 2, calls)
	})

	t.Run("loader errors propagate uncached", func(t *testing.T) {
		cache := NewCache(10 * time.Minute)
		boom := errors.New("upstream down")
		calls := 0

		_, err := cache.Get("k", func() (any, error) {
			calls++
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, cache.Len())

		got, err := cache.Get("k", func() (any, error) {
			calls++
			return "recovered", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "recovered", got)
		assert.Equal(t, 2, calls)
	})

	t.Run("failed refresh does not overwrite the old entry", func(t *testing.T) {
		cache := NewCache(time.Minute)
		now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		cache.now = func() time.Time { return now }

		_, err := cache.Get("k", func() (any, error) { return "good", nil })
		require.NoError(t, err)

		now = now.Add(2 * time.Minute)
		_, err = cache.Get("k", func() (any, error) { return nil, errors.New("flaky") })
		assert.Error(t, err)
		assert.Equal(t, 1, cache.Len())
	})
}

package cache

import (
	"errors"
	"testing"
	"time"

	"farmacia-catalogo/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	c.Set("taxonomy:response", 3, time.Minute)
	c.Set("short", 1, time.Millisecond)

	v, ok := c.Get("taxonomy:response")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Eventually(t, func() bool {
		_, ok := c.Get("short")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestRemember(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}

	v, hit, err := cache.Remember(c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 42, v)

	v, hit, err = cache.Remember(c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	t.Run("errors are not cached", func(t *testing.T) {
		boom := errors.New("boom")
		_, _, err := cache.Remember(c, "bad", time.Minute, func() (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)
		_, ok := c.Get("bad")
		assert.False(t, ok)
	})

	t.Run("zero ttl is never stored", func(t *testing.T) {
		_, hit, err := cache.Remember(c, "uncached", 0, load)
		require.NoError(t, err)
		assert.False(t, hit)
		_, ok := c.Get("uncached")
		assert.False(t, ok)
	})

	t.Run("nil cache always loads", func(t *testing.T) {
		v, hit, err := cache.Remember[int](nil, "k", time.Minute, load)
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, 42, v)
	})
}

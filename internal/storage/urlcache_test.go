package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingSigner() (*int, SignFunc) {
	calls := new(int)
	sign := func(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
		*calls++
		return fmt.Sprintf("https://store.example/%s/%s?sig=%d", bucket, key, *calls), nil
	}
	return calls, sign
}

func TestSignedURLCacheHitWithinTTL(t *testing.T) {
	calls, sign := countingSigner()
	cache := NewSignedURLCache(sign, time.Minute)

	first, err := cache.Get(context.Background(), "camera-7", "a.png")
	require.NoError(t, err)
	second, err := cache.Get(context.Background(), "camera-7", "a.png")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, *calls)
}

func TestSignedURLCacheExpiry(t *testing.T) {
	calls, sign := countingSigner()
	cache := NewSignedURLCache(sign, time.Minute)

	now := time.Now()
	cache.now = func() time.Time { return now }

	first, err := cache.Get(context.Background(), "camera-7", "a.png")
	require.NoError(t, err)

	now = now.Add(time.Minute) // exactly at expiry: entry must not be returned
	second, err := cache.Get(context.Background(), "camera-7", "a.png")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, *calls)
}

func TestSignedURLCacheDistinctKeys(t *testing.T) {
	calls, sign := countingSigner()
	cache := NewSignedURLCache(sign, time.Minute)

	urlA, err := cache.Get(context.Background(), "camera-7", "a.png")
	require.NoError(t, err)
	urlB, err := cache.Get(context.Background(), "camera-7", "b.mp4")
	require.NoError(t, err)

	assert.NotEqual(t, urlA, urlB)
	assert.Equal(t, 2, *calls)
	assert.Equal(t, 2, cache.Len())
}

func TestSignedURLCacheSignerError(t *testing.T) {
	cache := NewSignedURLCache(func(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
		return "", errors.New("store unreachable")
	}, time.Minute)

	_, err := cache.Get(context.Background(), "camera-7", "a.png")
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestSignedURLCacheSweep(t *testing.T) {
	_, sign := countingSigner()
	cache := NewSignedURLCache(sign, time.Minute)

	now := time.Now()
	cache.now = func() time.Time { return now }

	_, err := cache.Get(context.Background(), "camera-7", "a.png")
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), "camera-7", "b.mp4")
	require.NoError(t, err)

	assert.Equal(t, 0, cache.Sweep())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, cache.Sweep())
	assert.Equal(t, 0, cache.Len())
}

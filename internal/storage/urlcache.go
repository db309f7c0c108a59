package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SignFunc produces a signed URL for an object, valid for the given ttl.
type SignFunc func(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)

type cacheEntry struct {
	url    string
	expiry time.Time
}

// SignedURLCache memoizes signed URLs per (bucket, key). Entries past their
// expiry are never returned; the check happens lazily on lookup, with Sweep
// available for periodic pruning since the hosting process is long-lived.
//
// The recorded expiry uses the same ttl handed to the signer, so a cached URL
// is never served beyond the window the store actually signed it for.
type SignedURLCache struct {
	mu      sync.Mutex
	sign    SignFunc
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewSignedURLCache(sign SignFunc, ttl time.Duration) *SignedURLCache {
	return &SignedURLCache{
		sign:    sign,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached URL for bucket/key while it is still valid, signing
// and recording a fresh one otherwise.
func (c *SignedURLCache) Get(ctx context.Context, bucket, key string) (string, error) {
	cacheKey := bucket + "/" + key

	c.mu.Lock()
	entry, ok := c.entries[cacheKey]
	c.mu.Unlock()

	now := c.now()
	if ok && now.Before(entry.expiry) {
		return entry.url, nil
	}

	url, err := c.sign(ctx, bucket, key, c.ttl)
	if err != nil {
		return "", fmt.Errorf("sign url %s: %w", cacheKey, err)
	}

	c.mu.Lock()
	c.entries[cacheKey] = cacheEntry{url: url, expiry: now.Add(c.ttl)}
	c.mu.Unlock()

	return url, nil
}

// Sweep drops expired entries and reports how many were removed.
func (c *SignedURLCache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expiry) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *SignedURLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

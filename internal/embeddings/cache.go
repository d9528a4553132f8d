package embeddings

import (
	"context"
	"sync"
	"time"

	"github.com/forthing17-ops/signalcast-sub000/internal/logger"
	"github.com/forthing17-ops/signalcast-sub000/internal/textutil"
)

// CacheEntry is one cached embedding keyed by the hash of its normalized
// source text.
type CacheEntry struct {
	Vector    []float64
	CreatedAt time.Time
}

// IsCacheValid reports whether a cached entry is fresh enough to reuse.
// A non-positive maxAgeHours means entries never expire.
func IsCacheValid(entry CacheEntry, maxAgeHours int) bool {
	if len(entry.Vector) == 0 {
		return false
	}
	if maxAgeHours <= 0 {
		return true
	}
	return time.Since(entry.CreatedAt) < time.Duration(maxAgeHours)*time.Hour
}

// CachedProvider wraps a Provider with an in-memory cache keyed by
// normalized-text hash, plus a bounded retry with exponential backoff and a
// per-attempt timeout. Concurrent callers computing the same text are
// idempotent: the value is deterministic for equal text, so last-write-wins
// is fine.
type CachedProvider struct {
	provider    Provider
	maxAgeHours int
	maxAttempts int
	timeout     time.Duration
	baseBackoff time.Duration

	mu      sync.RWMutex
	entries map[string]CacheEntry
}

// NewCachedProvider wraps a provider with caching, retries, and a timeout
// per attempt. maxAttempts counts total tries (minimum 1); entries older
// than maxAgeHours are recomputed; a non-positive timeout disables the
// per-attempt deadline.
func NewCachedProvider(provider Provider, maxAgeHours, maxAttempts int, timeout time.Duration) *CachedProvider {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &CachedProvider{
		provider:    provider,
		maxAgeHours: maxAgeHours,
		maxAttempts: maxAttempts,
		timeout:     timeout,
		baseBackoff: 500 * time.Millisecond,
		entries:     make(map[string]CacheEntry),
	}
}

// Embed returns the cached vector for the text when fresh, otherwise calls
// through with retries. On final failure the error propagates so the caller
// can degrade; a similarity score is never fabricated.
func (c *CachedProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, ErrNoEmbedding
	}

	key := textutil.Hash(text)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && IsCacheValid(entry, c.maxAgeHours) {
		return entry.Vector, nil
	}

	vector, err := c.embedWithRetry(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = CacheEntry{Vector: vector, CreatedAt: time.Now().UTC()}
	c.mu.Unlock()

	return vector, nil
}

// embedWithRetry calls the underlying provider with exponential backoff
// between attempts. Each attempt runs under its own deadline so a hung
// provider call costs at most one timeout, not the whole batch.
func (c *CachedProvider) embedWithRetry(ctx context.Context, text string) ([]float64, error) {
	var lastErr error
	backoff := c.baseBackoff

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		vector, err := c.embedOnce(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err

		if attempt == c.maxAttempts {
			break
		}
		logger.Warn("embedding attempt failed, retrying",
			"attempt", attempt, "backoff", backoff.String(), "error", err.Error())

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, lastErr
}

// embedOnce runs a single provider call under the per-attempt timeout.
func (c *CachedProvider) embedOnce(ctx context.Context, text string) ([]float64, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.provider.Embed(ctx, text)
}

// Size returns the number of cached entries.
func (c *CachedProvider) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

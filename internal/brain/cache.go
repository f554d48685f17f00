package brain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/pkg/logger"
	"github.com/wonny/aegis-b3/pkg/redis"
)

// RunCache stores run results keyed by ticker set and time bucket.
// Redis is used when enabled, an in-process go-cache otherwise.
// ⭐ SSOT: 실행 결과 캐시 (프로세스 전역 memoization 대신 명시적 캐시)
type RunCache struct {
	redis  *redis.Cache
	local  *gocache.Cache
	ttl    time.Duration
	bucket time.Duration
	now    func() time.Time
	logger *logger.Logger
}

// NewRunCache creates a run cache; rc may be nil or disabled
func NewRunCache(rc *redis.Cache, ttl, bucket time.Duration, log *logger.Logger) *RunCache {
	if ttl <= 0 {
		ttl = redis.TTLLong
	}
	if bucket <= 0 {
		bucket = time.Hour
	}

	c := &RunCache{
		redis:  rc,
		ttl:    ttl,
		bucket: bucket,
		now:    time.Now,
		logger: log,
	}
	if rc == nil || !rc.Enabled() {
		c.local = gocache.New(ttl, 2*ttl)
	}
	return c
}

// Backend names the active storage
func (c *RunCache) Backend() string {
	if c.local != nil {
		return "memory"
	}
	return "redis"
}

// TickerSetHash is the SHA-256 of the sorted unique ticker set
func TickerSetHash(tickers []string) string {
	uniq := make(map[string]struct{}, len(tickers))
	set := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if _, ok := uniq[t]; ok {
			continue
		}
		uniq[t] = struct{}{}
		set = append(set, t)
	}
	sort.Strings(set)

	sum := sha256.Sum256([]byte(strings.Join(set, "\n")))
	return hex.EncodeToString(sum[:])
}

// Key returns the cache key for tickers in the current time bucket
func (c *RunCache) Key(tickers []string) string {
	return redis.RunKey(TickerSetHash(tickers), c.now().Truncate(c.bucket))
}

// Get returns the cached result for tickers, if any
func (c *RunCache) Get(ctx context.Context, tickers []string) (*contracts.RunResult, bool) {
	key := c.Key(tickers)

	if c.local != nil {
		v, ok := c.local.Get(key)
		if !ok {
			return nil, false
		}
		res, ok := v.(*contracts.RunResult)
		return res, ok
	}

	var res contracts.RunResult
	found, err := c.redis.Get(ctx, key, &res)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Run cache read failed")
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &res, true
}

// Set stores result for tickers in the current time bucket
func (c *RunCache) Set(ctx context.Context, tickers []string, result *contracts.RunResult) {
	key := c.Key(tickers)

	if c.local != nil {
		c.local.Set(key, result, c.ttl)
		return
	}

	if err := c.redis.Set(ctx, key, result, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Run cache write failed")
	}
}

// Invalidate drops every bucket cached for this ticker set
func (c *RunCache) Invalidate(ctx context.Context, tickers []string) (int, error) {
	return c.deletePattern(ctx, redis.RunKeyPattern(TickerSetHash(tickers)))
}

// InvalidateAll drops every cached run
func (c *RunCache) InvalidateAll(ctx context.Context) (int, error) {
	return c.deletePattern(ctx, "run:*")
}

func (c *RunCache) deletePattern(ctx context.Context, pattern string) (int, error) {
	if c.local == nil {
		n, err := c.redis.DeleteMatching(ctx, pattern)
		if err != nil {
			return n, fmt.Errorf("invalidate %s: %w", pattern, err)
		}
		return n, nil
	}

	prefix := strings.TrimSuffix(pattern, "*")
	deleted := 0
	for key := range c.local.Items() {
		if strings.HasPrefix(key, prefix) {
			c.local.Delete(key)
			deleted++
		}
	}
	return deleted, nil
}

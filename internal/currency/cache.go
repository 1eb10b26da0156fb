package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates the key was not found in cache.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores rate snapshots by base currency.
type Cache interface {
	Get(ctx context.Context, base string) (*Rates, error)
	Set(ctx context.Context, rates Rates, ttl time.Duration) error
}

func cacheKey(base string) string {
	return "currency:rates:" + base
}

// RedisCache keeps snapshots in Redis as JSON.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, base string) (*Rates, error) {
	val, err := c.client.Get(ctx, cacheKey(base)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get rates: %w", err)
	}

	var rates Rates
	if err := json.Unmarshal([]byte(val), &rates); err != nil {
		return nil, fmt.Errorf("decode cached rates: %w", err)
	}
	return &rates, nil
}

func (c *RedisCache) Set(ctx context.Context, rates Rates, ttl time.Duration) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("encode rates: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(rates.Base), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set rates: %w", err)
	}
	return nil
}

type memoryEntry struct {
	rates   Rates
	expires time.Time
}

// MemoryCache is a process-local Cache used when no Redis address is set.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, base string) (*Rates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[cacheKey(base)]
	if !ok {
		return nil, ErrCacheMiss
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, cacheKey(base))
		return nil, ErrCacheMiss
	}
	rates := e.rates
	return &rates, nil
}

func (c *MemoryCache) Set(_ context.Context, rates Rates, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(rates.Base)] = memoryEntry{rates: rates, expires: c.now().Add(ttl)}
	return nil
}

package rate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter stores fixed-window attempt counters.
type Counter interface {
	// Incr adds one to key and returns the new value. The window starts
	// on the first hit and lasts ttl.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Get returns the current value and zero for missing or expired keys.
	Get(ctx context.Context, key string) (int64, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisCounter keeps counters in Redis under INCR/EXPIRE.
type RedisCounter struct {
	client redis.UniversalClient
}

func NewRedisCounter(client redis.UniversalClient) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if count == 1 {
		if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
	}
	return count, nil
}

func (c *RedisCounter) Get(ctx context.Context, key string) (int64, error) {
	count, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return count, nil
}

func (c *RedisCounter) Del(ctx context.Context, keys ...string) error {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

type window struct {
	count   int64
	expires time.Time
}

// MemoryCounter is a process-local Counter.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]window
	now     func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{windows: make(map[string]window), now: time.Now}
}

func (c *MemoryCounter) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	w, ok := c.windows[key]
	if !ok || !now.Before(w.expires) {
		w = window{expires: now.Add(ttl)}
	}
	w.count++
	c.windows[key] = w
	return w.count, nil
}

func (c *MemoryCounter) Get(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.windows[key]
	if !ok {
		return 0, nil
	}
	if !c.now().Before(w.expires) {
		delete(c.windows, key)
		return 0, nil
	}
	return w.count, nil
}

func (c *MemoryCounter) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.windows, k)
	}
	return nil
}

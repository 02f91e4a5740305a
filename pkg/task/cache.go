package task

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	listCacheKey = "tasks:all"
	versionTTL   = time.Hour
)

// fillScript stores a value only if the key's version is still the one read
// before the backing store was queried. KEYS: value key, version key.
// ARGV: expected version, value, ttl in milliseconds.
var fillScript = redis.NewScript(`
local v = redis.call("GET", KEYS[2]) or "0"
if v ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// Cache wraps a Store with Redis-backed caching for reads. Writes go to the
// backing store first and then evict the keys they touch. Every eviction
// bumps the key's version, and a read only fills the cache if the version is
// unchanged since it started, so a fill racing a write is dropped. Redis
// failures never fail a request; the backing store answers instead.
type Cache struct {
	Store
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching Store using the provided Redis client and TTL.
func NewCache(base Store, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("task.NewCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{Store: base, redis: client, ttl: ttl}
}

func (c *Cache) List(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if c.load(ctx, listCacheKey, &tasks) {
		return tasks, nil
	}
	version, ok := c.version(ctx, listCacheKey)
	tasks, err := c.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		c.save(ctx, listCacheKey, version, tasks)
	}
	return tasks, nil
}

func (c *Cache) Get(ctx context.Context, id string) (*Task, error) {
	var t Task
	key := taskCacheKey(id)
	if c.load(ctx, key, &t) {
		return &t, nil
	}
	version, ok := c.version(ctx, key)
	got, err := c.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		c.save(ctx, key, version, got)
	}
	return got, nil
}

func (c *Cache) Create(ctx context.Context, data map[string]any) (*Task, error) {
	t, err := c.Store.Create(ctx, data)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, listCacheKey)
	return t, nil
}

func (c *Cache) Update(ctx context.Context, id string, data map[string]any) (*Task, error) {
	t, err := c.Store.Update(ctx, id, data)
	c.evict(ctx, listCacheKey, taskCacheKey(id))
	return t, err
}

func (c *Cache) Delete(ctx context.Context, id string) (*Task, error) {
	t, err := c.Store.Delete(ctx, id)
	c.evict(ctx, listCacheKey, taskCacheKey(id))
	return t, err
}

func (c *Cache) load(ctx context.Context, key string, v any) bool {
	if c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			_ = c.redis.Del(ctx, key).Err()
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

// version reads the key's current version. ok is false when the cache must
// not be filled, either because caching is off or Redis is unreachable.
func (c *Cache) version(ctx context.Context, key string) (string, bool) {
	if c.redis == nil || c.ttl == 0 {
		return "", false
	}
	v, err := c.redis.Get(ctx, versionKey(key)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "0", true
	case err != nil:
		return "", false
	}
	return v, true
}

func (c *Cache) save(ctx context.Context, key, version string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	ttl := c.ttl.Milliseconds()
	if ttl < 1 {
		ttl = 1
	}
	_ = fillScript.Run(ctx, c.redis, []string{key, versionKey(key)}, version, data, ttl).Err()
}

func (c *Cache) evict(ctx context.Context, keys ...string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Del(ctx, key)
			pipe.Incr(ctx, versionKey(key))
			pipe.Expire(ctx, versionKey(key), versionTTL)
		}
		return nil
	})
}

func taskCacheKey(id string) string {
	return "task:" + id
}

func versionKey(key string) string {
	return "version:" + key
}

package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache is a JSON read-through cache. Concurrent misses on one key share a
// single loader call.
type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{rdb: client}
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return c.rdb.Del(ctx, keys...).Err()
}

func getJSON[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var out T

	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}

	if err := json.Unmarshal(b, &out); err != nil {
		// A payload we cannot decode is treated as a miss and overwritten.
		return out, false, nil
	}

	return out, true, nil
}

func setJSON(ctx context.Context, c *Cache, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// GetOrSetJSON returns the cached value for key or stores the loader result
// for ttl. Redis read errors fall through to the loader so an unavailable
// cache degrades to direct reads.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	const op = "redisrepo.GetOrSetJSON"

	if v, ok, err := getJSON[T](ctx, c, key); err == nil && ok {
		return v, nil
	}

	res, err, _ := c.sf.Do(key, func() (any, error) {
		if v, ok, err := getJSON[T](ctx, c, key); err == nil && ok {
			return v, nil
		}
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		_ = setJSON(ctx, c, key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	v, ok := res.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s: unexpected type %T", op, res)
	}

	return v, nil
}

func (c *Cache) InvalidateMenu(ctx context.Context, venueID uuid.UUID) error {
	return c.Del(ctx, KeyMenu(venueID))
}

package redisrepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockValue    = "LOCK"
	resultPrefix = "RES:"
)

// ErrInFlight is returned when another request holds the key and has not
// stored a result yet.
var ErrInFlight = errors.New("idempotent request in flight")

// IdempotencyStore records the response of a request under a client key.
// A key moves from LOCK to RES:<payload>; Release drops a lock after a
// failed attempt so the client can retry.
type IdempotencyStore struct {
	rdb     *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl, lockTTL time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl, lockTTL: lockTTL}
}

// Begin claims key. When an earlier request already completed, its stored
// payload is returned with replay set to true.
//
// Returns:
//   - payload, true, nil: a stored result to replay.
//   - nil, false, nil: the key is claimed, run the request.
//   - ErrInFlight: another request owns the key.
func (s *IdempotencyStore) Begin(ctx context.Context, key string) (payload []byte, replay bool, err error) {
	ok, err := s.rdb.SetNX(ctx, key, lockValue, s.lockTTL).Result()
	if err != nil {
		return nil, false, err
	}
	if ok {
		return nil, false, nil
	}

	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// Lock expired between SETNX and GET.
		return s.Begin(ctx, key)
	}
	if err != nil {
		return nil, false, err
	}

	if strings.HasPrefix(v, resultPrefix) {
		return []byte(strings.TrimPrefix(v, resultPrefix)), true, nil
	}

	return nil, false, ErrInFlight
}

func (s *IdempotencyStore) Complete(ctx context.Context, key string, payload []byte) error {
	return s.rdb.Set(ctx, key, resultPrefix+string(payload), s.ttl).Err()
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

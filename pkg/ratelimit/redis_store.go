package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements a sliding window store on Redis sorted sets,
// letting multiple instances share one rate limit. Each event is a set
// member scored by its timestamp in nanoseconds; expired members are
// trimmed on every hit and the whole key expires with the window.
type RedisStore struct {
	client    redis.Cmdable
	keyPrefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the prefix for rate limit keys. Defaults to "ratelimit:".
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// NewRedisStore creates a store backed by the given Redis client.
func NewRedisStore(client redis.Cmdable, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, ErrStoreNil
	}

	s := &RedisStore{
		client:    client,
		keyPrefix: "ratelimit:",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Hit implements Store.
func (s *RedisStore) Hit(ctx context.Context, key string, config Config) (int, time.Time, error) {
	redisKey := s.keyPrefix + key
	now := time.Now()
	cutoff := now.Add(-config.Window).UnixNano()

	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + strconv.FormatInt(int64(now.Nanosecond()), 10)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(cutoff, 10))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	card := pipe.ZCard(ctx, redisKey)
	oldest := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	pipe.Expire(ctx, redisKey, config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}

	count, err := card.Result()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}

	resetAt := now.Add(config.Window)
	if entries, err := oldest.Result(); err == nil && len(entries) > 0 {
		resetAt = time.Unix(0, int64(entries[0].Score)).Add(config.Window)
	}

	return config.Limit - int(count), resetAt, nil
}

// Reset implements Store.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

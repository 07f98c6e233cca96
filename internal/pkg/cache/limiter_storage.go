package cache

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const limiterPrefix = "ratelimit:"

// LimiterStorage backs fiber's limiter with Redis so every instance counts
// against the same window.
type LimiterStorage struct {
	rdb     redis.UniversalClient
	timeout time.Duration
}

var _ fiber.Storage = (*LimiterStorage)(nil)

// NewLimiterStorage returns nil without a Redis client; the limiter then
// keeps its counters in process.
func NewLimiterStorage(rdb redis.UniversalClient) fiber.Storage {
	if rdb == nil {
		return nil
	}
	return &LimiterStorage{rdb: rdb, timeout: 2 * time.Second}
}

func (s *LimiterStorage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *LimiterStorage) Get(key string) ([]byte, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	val, err := s.rdb.Get(ctx, limiterPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

func (s *LimiterStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.rdb.Set(ctx, limiterPrefix+key, val, exp).Err()
}

func (s *LimiterStorage) Delete(key string) error {
	ctx, cancel := s.ctx()
	defer cancel()
	return s.rdb.Del(ctx, limiterPrefix+key).Err()
}

func (s *LimiterStorage) Reset() error {
	ctx, cancel := s.ctx()
	defer cancel()
	_, err := NewRedisStore(s.rdb).DeleteByPrefix(ctx, limiterPrefix)
	return err
}

// Close is a no-op; the client is shared with the cache store.
func (s *LimiterStorage) Close() error {
	return nil
}

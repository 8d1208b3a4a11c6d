package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStorage shares the session record across devices. Keys never expire,
// logout deletes them explicitly.
type RedisStorage struct {
	redis *redis.Client
}

func NewRedisStorage(redisClient *redis.Client) *RedisStorage {
	return &RedisStorage{redis: redisClient}
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	res, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return res, nil
}

func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	return s.redis.Set(ctx, key, value, 0).Err()
}

func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	return s.redis.Del(ctx, key).Err()
}

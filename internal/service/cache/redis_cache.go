package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBytesCache is a BytesCache backed by Redis so cached responses are
// shared across instances. Keys are namespaced under "http".
type RedisBytesCache struct {
	cli     *redis.Client
	timeout time.Duration
}

func NewRedisBytesCache(cli *redis.Client) *RedisBytesCache {
	return &RedisBytesCache{cli: cli, timeout: 2 * time.Second}
}

func (r *RedisBytesCache) GetBytes(key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	b, err := r.cli.Get(ctx, r.wrap(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisBytesCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.cli.Set(ctx, r.wrap(key), value, ttl).Err()
}

func (r *RedisBytesCache) wrap(key string) string {
	return "http:" + key
}

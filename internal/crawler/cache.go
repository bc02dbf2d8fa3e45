package crawler

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// PageCache stores raw listing page bodies keyed by URL.
type PageCache interface {
	Get(ctx context.Context, url string) ([]byte, bool, error)
	Set(ctx context.Context, url string, body []byte) error
}

type RedisPageCache struct {
	Client *redis.Client
	TTL    time.Duration
}

const pageKeyPrefix = "fashionetl:page:"

// NewRedisPageCache accepts either a redis:// URL or a bare host:port address.
func NewRedisPageCache(addr string, ttl time.Duration) *RedisPageCache {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{Addr: addr}
	}
	return &RedisPageCache{Client: redis.NewClient(opts), TTL: ttl}
}

func (c *RedisPageCache) Get(ctx context.Context, url string) ([]byte, bool, error) {
	body, err := c.Client.Get(ctx, pageKeyPrefix+url).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

func (c *RedisPageCache) Set(ctx context.Context, url string, body []byte) error {
	return c.Client.Set(ctx, pageKeyPrefix+url, body, c.TTL).Err()
}

func (c *RedisPageCache) Close() error {
	return c.Client.Close()
}

package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "jobfetch:desc:"

// Redis is the shared-cache implementation for multi-replica
// deployments. Expiry rides on Redis TTLs, so Sweep has nothing to do.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis builds a Redis cache from a redis:// URL.
func NewRedis(url string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{rdb: redis.NewClient(opt), ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, url string) (string, bool) {
	val, err := r.rdb.Get(ctx, redisKeyPrefix+key(url)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, url, text string) {
	_ = r.rdb.Set(ctx, redisKeyPrefix+key(url), text, r.ttl).Err()
}

func (r *Redis) Sweep(context.Context) int { return 0 }

// Ping verifies connectivity for deep health checks.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Client exposes the underlying connection for health checks.
func (r *Redis) Client() *redis.Client {
	return r.rdb
}

// Package redis wraps the universal client behind the small counter surface
// the rate limiter needs. Adapters are cached per connection name so repeated
// bootstrap calls share one pool.
package redis

import (
	"context"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type Options = goredis.UniversalOptions

// RedisAdapter is the key surface the send limiter uses.
type RedisAdapter interface {
	Incr(key string) (int64, error)
	Expire(key string, ttl time.Duration) (bool, error)
}

type redisAdapter struct {
	prefix string
	conn   goredis.UniversalClient
}

var (
	mu       sync.Mutex
	adapters = make(map[string]RedisAdapter)
)

// NewRedisAdapter connects (or returns the cached adapter for connName) and
// pings once so a bad address fails at bootstrap, not mid-job.
func NewRedisAdapter(connName string, keysPrefix string, opts *goredis.UniversalOptions) (RedisAdapter, error) {
	mu.Lock()
	defer mu.Unlock()

	if adapter, ok := adapters[connName]; ok {
		return adapter, nil
	}

	c := goredis.NewUniversalClient(opts)
	if cmd := c.Ping(context.Background()); cmd.Err() != nil {
		return nil, cmd.Err()
	}

	adapter := &redisAdapter{conn: c, prefix: keysPrefix}
	adapters[connName] = adapter
	return adapter, nil
}

func (r *redisAdapter) Incr(key string) (int64, error) {
	cmd := r.conn.Incr(context.Background(), r.prefix+key)
	if err := cmd.Err(); err != nil {
		return 0, err
	}
	return cmd.Val(), nil
}

func (r *redisAdapter) Expire(key string, ttl time.Duration) (bool, error) {
	cmd := r.conn.Expire(context.Background(), r.prefix+key, ttl)
	if err := cmd.Err(); err != nil {
		return false, err
	}
	return cmd.Val(), nil
}

// Package ratelimit caps outbound gateway sends. The window lives in redis so
// the cap holds across every process sending through the same account.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/cshealth/reminder-gateway/pkg/logger"
	"github.com/cshealth/reminder-gateway/pkg/redis"
)

// Limiter is a fixed-window per-second limiter on INCR+EXPIRE. A nil Limiter
// or a rate of 0 never blocks.
type Limiter struct {
	redis     redis.RedisAdapter
	keyPrefix string
	rate      int
}

func New(adapter redis.RedisAdapter, keyPrefix string, ratePerSecond int) *Limiter {
	return &Limiter{
		redis:     adapter,
		keyPrefix: keyPrefix,
		rate:      ratePerSecond,
	}
}

// Wait blocks until a send slot is free in the current one-second window or
// ctx is done. Redis trouble fails open: a throttled send beats a dropped one.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.rate <= 0 || l.redis == nil {
		return nil
	}

	for {
		now := time.Now()
		key := fmt.Sprintf("%s:%d", l.keyPrefix, now.Unix())

		count, err := l.redis.Incr(key)
		if err != nil {
			logger.Warn("rate limiter unavailable, sending anyway", "error", err)
			return nil
		}
		if count == 1 {
			// First hit in the window owns setting its expiry.
			if _, err := l.redis.Expire(key, 2*time.Second); err != nil {
				logger.Warn("rate limiter expire failed", "key", key, "error", err)
			}
		}
		if count <= int64(l.rate) {
			return nil
		}

		// Window is full; sleep into the next one.
		wakeup := now.Truncate(time.Second).Add(time.Second)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(wakeup)):
		}
	}
}

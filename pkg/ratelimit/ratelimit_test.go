package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cshealth/reminder-gateway/pkg/redis"
)

func setupRedis(t *testing.T) redis.RedisAdapter {
	t.Helper()

	mr := miniredis.RunT(t)
	adapter, err := redis.NewRedisAdapter(t.Name(), "", &redis.Options{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)
	return adapter
}

func TestLimiter_Wait(t *testing.T) {
	t.Run("nil limiter never blocks", func(t *testing.T) {
		var l *Limiter
		assert.NoError(t, l.Wait(context.Background()))
	})

	t.Run("zero rate never blocks", func(t *testing.T) {
		l := New(setupRedis(t), "test", 0)
		assert.NoError(t, l.Wait(context.Background()))
	})

	t.Run("under the rate is immediate", func(t *testing.T) {
		l := New(setupRedis(t), "test", 100)

		start := time.Now()
		for i := 0; i < 10; i++ {
			require.NoError(t, l.Wait(context.Background()))
		}
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})

	t.Run("full window honors context cancellation", func(t *testing.T) {
		adapter := setupRedis(t)
		l := New(adapter, "test", 1)

		// Fill the current and the next window so Wait has to sleep whichever
		// one it lands in.
		now := time.Now().Unix()
		for _, sec := range []int64{now, now + 1} {
			_, err := adapter.Incr(fmt.Sprintf("test:%d", sec))
			require.NoError(t, err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
	})

	t.Run("blocked send gets through in the next window", func(t *testing.T) {
		l := New(setupRedis(t), "test", 1)

		start := time.Now()
		require.NoError(t, l.Wait(context.Background()))
		require.NoError(t, l.Wait(context.Background()))
		// The second slot opened at the next second boundary.
		assert.Less(t, time.Since(start), 2200*time.Millisecond)
	})

	t.Run("fails open when redis is gone", func(t *testing.T) {
		mr := miniredis.RunT(t)
		adapter, err := redis.NewRedisAdapter(t.Name(), "", &redis.Options{
			Addrs: []string{mr.Addr()},
		})
		require.NoError(t, err)
		mr.Close()

		l := New(adapter, "test", 1)
		start := time.Now()
		for i := 0; i < 5; i++ {
			assert.NoError(t, l.Wait(context.Background()))
		}
		assert.Less(t, time.Since(start), time.Second)
	})
}

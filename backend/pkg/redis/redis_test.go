package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hotel-survey/backend/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewClient(&config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := NewClient(&config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	require.Error(t, err)
}

func TestBlacklist(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.BlacklistToken(ctx, "jti-1", time.Minute))
	require.NoError(t, c.BlacklistToken(ctx, "jti-expired", 0))

	ok, err := c.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.IsBlacklisted(ctx, "jti-expired")
	require.NoError(t, err)
	require.False(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = c.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCheckRateLimit(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
		require.NoError(t, err)
		require.True(t, ok, "第 %d 次应放行", i+1)
	}
	ok, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	mr.FastForward(61 * time.Second)
	ok, err = c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAcquireLock_ExclusiveUntilReleased(t *testing.T) {
	c, _ := newTestClient(t)

	release, err := c.AcquireLock(context.Background(), "store", time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = c.AcquireLock(ctx, "store", time.Second)
	require.True(t, errors.Is(err, ErrLockNotAcquired))

	release()
	release()

	release2, err := c.AcquireLock(context.Background(), "store", time.Second)
	require.NoError(t, err)
	release2()
}

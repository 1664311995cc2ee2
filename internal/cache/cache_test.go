package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewFromRedis(rdb), mr
}

func TestClient_GetSetDelete(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	got, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "post:1", []byte("hello"), time.Minute))
	got, err = c.Get(ctx, "post:1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	mr.FastForward(2 * time.Minute)
	got, _ = c.Get(ctx, "post:1")
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "post:2", []byte("x"), time.Minute))
	require.NoError(t, c.Delete(ctx, "post:2"))
	got, _ = c.Get(ctx, "post:2")
	assert.Nil(t, got)
}

func TestClient_FailsSafeWhenRedisDown(t *testing.T) {
	c, mr := newTestClient(t)
	mr.Close()
	ctx := context.Background()

	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, c.Set(ctx, "k", []byte("v"), time.Minute), ErrUnavailable)
	assert.ErrorIs(t, c.Delete(ctx, "k"), ErrUnavailable)

	_, _, err = c.IncrWindow(ctx, "rl", time.Minute)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_NilIsSafe(t *testing.T) {
	var c *Client
	ctx := context.Background()

	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "k"))
	_, _, err = c.IncrWindow(ctx, "rl", time.Minute)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, c.Close())
}

func TestClient_IncrWindow(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, left, err := c.IncrWindow(ctx, "rl:paystack:ip:1.2.3.4", 15*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
		assert.LessOrEqual(t, left, 15*time.Minute)
		assert.Greater(t, left, time.Duration(0))
	}

	mr.FastForward(16 * time.Minute)
	n, _, err := c.IncrWindow(ctx, "rl:paystack:ip:1.2.3.4", 15*time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

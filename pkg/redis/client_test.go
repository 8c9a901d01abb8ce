package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinebr/loja-api/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	return NewFromClient(raw), mr
}

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	allowed, count, err := client.FixedWindowAllow(ctx, "login:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, time.Minute, mr.TTL(client.RateLimitKey("login:1.2.3.4")))

	allowed, count, err = client.FixedWindowAllow(ctx, "login:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(2), count)

	allowed, _, err = client.FixedWindowAllow(ctx, "login:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(time.Minute + time.Second)
	allowed, count, err = client.FixedWindowAllow(ctx, "login:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(1), count)
}

func TestGetMissingReturnsNil(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Get(context.Background(), client.CartKey("missing"))
	assert.True(t, errors.Is(err, ErrNil))
}

func TestSetNXAndDel(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	key := client.IdempotencyKey("checkout", "abc")

	ok, err := client.SetNX(ctx, key, "pending", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, key, "pending", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.Del(ctx, key))
	_, err = client.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNil)
}

func TestExpireRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	key := client.CartKey("sess-1")

	require.NoError(t, client.Set(ctx, key, "[]", time.Minute))
	require.NoError(t, client.Expire(ctx, key, time.Hour))
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestKeysAreNamespaced(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "loja:cart:abc", client.CartKey("abc"))
	assert.Equal(t, "loja:session:access:jti-1", client.AccessSessionKey("jti-1"))
	assert.Equal(t, "loja:idempotency:checkout:k", client.IdempotencyKey("checkout", " k "))
	assert.Equal(t, "loja:rate_limit:login", client.RateLimitKey("login"))
}

func TestUninitializedClient(t *testing.T) {
	var client *Client
	_, err := client.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.NoError(t, client.Close())
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:pw@localhost:6380/2", PoolSize: 7})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)

	_, err = optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)
}

func TestWatchAbortsOnConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	key := client.CartKey("sess-1")
	require.NoError(t, client.Set(ctx, key, "v1", 0))

	err := client.Watch(ctx, func(tx *redis.Tx) error {
		require.NoError(t, client.Set(ctx, key, "v2", 0))
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, "v3", 0)
			return nil
		})
		return err
	}, key)
	assert.True(t, errors.Is(err, ErrTxFailed))

	got, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
}

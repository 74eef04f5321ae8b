package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/salonbook-backend/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := Wrap(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	return client, srv
}

func TestFixedWindowAllow(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	for want := int64(1); want <= 2; want++ {
		allowed, count, err := client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, want, count)
	}
	assert.Equal(t, time.Minute, srv.TTL("sb:rate_limit:login:ip:1.2.3.4"))

	allowed, count, err := client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, int64(3), count)

	srv.FastForward(time.Minute + time.Second)
	allowed, count, err = client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(1), count)
}

func TestDraftLifecycleAgainstMiniredis(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	key := client.BookingDraftKey("studio-bella", "draft-1")
	require.NoError(t, client.Set(ctx, key, `{"step":1}`, time.Hour))
	got, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"step":1}`, got)
	assert.Equal(t, time.Hour, srv.TTL(key))

	require.NoError(t, client.Del(ctx, key))
	_, err = client.Get(ctx, key)
	assert.True(t, IsNil(err))
}

func TestSetNX(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	ok, err := client.SetNX(ctx, "sb:lock:x", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = client.SetNX(ctx, "sb:lock:x", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "sb:idempotency:scope:id", client.IdempotencyKey("scope", "id"))
	assert.Equal(t, "sb:rate_limit:scope", client.RateLimitKey("scope"))
	assert.Equal(t, "sb:session:access:abc", client.AccessSessionKey("abc"))
	assert.Equal(t, "sb:booking_draft:studio:abc", client.BookingDraftKey("studio", "abc"))
	assert.Equal(t, "sb:collections:studio:appointments", client.CollectionKey("studio", "appointments"))
	assert.Equal(t, "sb:lock", client.LockKey(" "))
}

func TestDeleteIfEquals(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, srv.Set("sb:lock:nightly", "owner-a"))
	deleted, err := client.DeleteIfEquals(ctx, "sb:lock:nightly", "owner-b")
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = client.DeleteIfEquals(ctx, "sb:lock:nightly", "owner-a")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, srv.Exists("sb:lock:nightly"))
}

func TestUnconnectedClient(t *testing.T) {
	var client *Client
	ctx := context.Background()
	assert.ErrorIs(t, client.Ping(ctx), errNotConnected)
	_, err := (&Client{}).DeleteIfEquals(ctx, "k", "v")
	assert.ErrorIs(t, err, errNotConnected)
	assert.NoError(t, client.Close())
}

func TestOptionsPrecedence(t *testing.T) {
	_, err := options(config.RedisConfig{})
	assert.Error(t, err)

	opts, err := options(config.RedisConfig{URL: "redis://localhost:6379/3", DB: 1, PoolSize: 7, DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)

	opts, err = options(config.RedisConfig{Address: "cache:6379", Password: "pw", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
}

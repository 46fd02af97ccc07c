package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "travel_cms/internal/adapters/redis"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestCache_GetSetDel(t *testing.T) {
	ctx := context.Background()
	mr, c := newClient(t)
	cache := redisad.NewCache(c)

	var out []string
	ok, err := cache.Get(ctx, "packages", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "packages", []string{"a", "b"}, 60))
	ok, err = cache.Get(ctx, "packages", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, out)

	mr.FastForward(61 * time.Second)
	ok, _ = cache.Get(ctx, "packages", &out)
	assert.False(t, ok, "entry should expire with its TTL")

	require.NoError(t, cache.Set(ctx, "packages", []string{"c"}, 60))
	require.NoError(t, cache.Del(ctx, "packages"))
	ok, _ = cache.Get(ctx, "packages", &out)
	assert.False(t, ok)
}

func TestTickets_OneShotWithTTL(t *testing.T) {
	ctx := context.Background()
	mr, c := newClient(t)
	tickets := redisad.NewTickets(c)

	require.NoError(t, tickets.Issue(ctx, "tok-1", time.Minute))
	ok, err := tickets.Consume(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = tickets.Consume(ctx, "tok-1")
	assert.False(t, ok, "second consume must fail")

	require.NoError(t, tickets.Issue(ctx, "tok-2", time.Minute))
	mr.FastForward(2 * time.Minute)
	ok, _ = tickets.Consume(ctx, "tok-2")
	assert.False(t, ok, "expired token must fail")
}

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeduper_Defaults(t *testing.T) {
	d := NewDeduper(nil, 0)
	assert.Equal(t, 24*time.Hour, d.ttl)
	assert.Equal(t, "nexcart:event:abc", d.key("abc"))
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), "127.0.0.1:1", "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

// Runs against a real server when REDIS_ADDR is set.
func TestDeduper_FirstDeliveryAndForget(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := Connect(ctx, addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	d := NewDeduper(rdb, time.Minute)
	id := uuid.NewString()
	t.Cleanup(func() { rdb.Del(ctx, d.key(id)) })

	first, err := d.FirstDelivery(ctx, id)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := d.FirstDelivery(ctx, id)
	require.NoError(t, err)
	assert.False(t, again)

	ttl, err := rdb.TTL(ctx, d.key(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, d.Forget(ctx, id))
	_, err = rdb.Get(ctx, d.key(id)).Result()
	assert.ErrorIs(t, err, goredis.Nil)

	first, err = d.FirstDelivery(ctx, id)
	require.NoError(t, err)
	assert.True(t, first)
}

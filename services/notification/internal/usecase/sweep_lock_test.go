package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSweepLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	lock := NewRedisSweepLock(client)
	ctx := context.Background()

	release, ok, err := lock.Acquire(ctx, "reminder:sweep:2025-03-06", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("reminder:sweep:2025-03-06"))

	_, ok, err = lock.Acquire(ctx, "reminder:sweep:2025-03-06", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	assert.False(t, mr.Exists("reminder:sweep:2025-03-06"))

	release2, ok, err := lock.Acquire(ctx, "reminder:sweep:2025-03-06", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	release2()
}

func TestRedisSweepLock_ReleaseKeepsForeignHolder(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	lock := NewRedisSweepLock(client)
	release, ok, err := lock.Acquire(context.Background(), "sweep", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// Our lease expired and another process took the key.
	require.NoError(t, mr.Set("sweep", "someone-else"))
	release()

	value, err := mr.Get("sweep")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", value)
}

func TestLocalSweepLock(t *testing.T) {
	release, ok, err := NewLocalSweepLock().Acquire(context.Background(), "any", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	release()
}

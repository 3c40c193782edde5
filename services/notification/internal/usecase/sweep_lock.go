package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SweepLock keeps two processes from sweeping at the same time.
type SweepLock interface {
	// Acquire returns ok=false when another holder owns the key. release
	// is non-nil only when ok is true.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

type localSweepLock struct{}

// NewLocalSweepLock returns a lock that always succeeds. Single-process
// exclusion is already enforced by the scheduler itself.
func NewLocalSweepLock() SweepLock {
	return localSweepLock{}
}

func (localSweepLock) Acquire(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}

// Deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisSweepLock struct {
	client redis.UniversalClient
}

func NewRedisSweepLock(client redis.UniversalClient) SweepLock {
	return &redisSweepLock{client: client}
}

func (l *redisSweepLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire sweep lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}
	return release, true, nil
}

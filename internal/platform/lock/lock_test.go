package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, opts RedisOptions) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, opts), mr
}

func assertExclusive(t *testing.T, locker Locker) {
	t.Helper()
	var (
		active  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Acquire(context.Background())
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&active, 1)
			for {
				seen := atomic.LoadInt32(&maxSeen)
				if n <= seen || atomic.CompareAndSwapInt32(&maxSeen, seen, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&active, -1)
			assert.NoError(t, unlock(context.Background()))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen)
}

func TestMemoryLockerIsExclusive(t *testing.T) {
	assertExclusive(t, NewMemory())
}

func TestMemoryLockerHonoursContext(t *testing.T) {
	locker := NewMemory()
	unlock, err := locker.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	require.NoError(t, unlock(context.Background()))
	assert.ErrorIs(t, unlock(context.Background()), ErrNotHeld)
}

func TestRedisLockerIsExclusive(t *testing.T) {
	locker, _ := newTestRedis(t, RedisOptions{Key: "test:lock", TTL: time.Second, Retry: time.Millisecond})
	assertExclusive(t, locker)
}

func TestRedisLockerReleaseDeletesKey(t *testing.T) {
	locker, mr := newTestRedis(t, RedisOptions{Key: "test:lock", TTL: time.Second, Retry: time.Millisecond})

	unlock, err := locker.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock"))

	require.NoError(t, unlock(context.Background()))
	assert.False(t, mr.Exists("test:lock"))
}

func TestRedisLockerExpiredHolderCannotRelease(t *testing.T) {
	locker, mr := newTestRedis(t, RedisOptions{Key: "test:lock", TTL: time.Second, Retry: time.Millisecond})

	stale, err := locker.Acquire(context.Background())
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	fresh, err := locker.Acquire(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, stale(context.Background()), ErrNotHeld)
	assert.True(t, mr.Exists("test:lock"))
	require.NoError(t, fresh(context.Background()))
}

func TestRedisLockerGivesUpWhenContextEnds(t *testing.T) {
	locker, _ := newTestRedis(t, RedisOptions{Key: "test:lock", TTL: time.Minute, Retry: time.Millisecond})

	_, err := locker.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

package redlock

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

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestMutex_LockUnlock(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	c := New(client, "test", WithMaxRetries(0))

	m1, err := c.Mutex("room:ABC")
	require.NoError(t, err)
	m2, err := c.Mutex("room:ABC")
	require.NoError(t, err)
	assert.Equal(t, "test:lock:room:ABC", m1.Key())

	require.NoError(t, m1.Lock(ctx))
	assert.True(t, mr.Exists("test:lock:room:ABC"))

	t.Run("second holder fails", func(t *testing.T) {
		assert.ErrorIs(t, m2.Lock(ctx), ErrNotAcquired)
		assert.ErrorIs(t, m2.Unlock(ctx), ErrNotHeld)
	})

	require.NoError(t, m1.Unlock(ctx))
	assert.False(t, mr.Exists("test:lock:room:ABC"))
	assert.ErrorIs(t, m1.Unlock(ctx), ErrNotHeld)

	ok, err := m2.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMutex_Expire(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	c := New(client, "test", WithTTL(time.Second), WithMaxRetries(0))

	m1, _ := c.Mutex("expire")
	m2, _ := c.Mutex("expire")
	require.NoError(t, m1.Lock(ctx))

	require.NoError(t, m1.Extend(ctx, 10*time.Second))
	mr.FastForward(5 * time.Second)
	assert.ErrorIs(t, m2.Lock(ctx), ErrNotAcquired)

	mr.FastForward(6 * time.Second)
	require.NoError(t, m2.Lock(ctx))
	assert.ErrorIs(t, m1.Extend(ctx, time.Second), ErrNotHeld)
}

func TestMutex_EmptyName(t *testing.T) {
	client, _ := setupTestRedis(t)
	_, err := New(client, "test").Mutex("")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestClient_WithLock(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	c := New(client, "test", WithMaxRetries(50), WithRetryDelay(5*time.Millisecond))

	t.Run("returns fn error and releases", func(t *testing.T) {
		boom := errors.New("boom")
		err := c.WithLock(ctx, "once", func(ctx context.Context) error {
			assert.True(t, mr.Exists("test:lock:once"))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.False(t, mr.Exists("test:lock:once"))
	})

	t.Run("serializes callers", func(t *testing.T) {
		var inside atomic.Int32
		var overlapped atomic.Bool
		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := c.WithLock(ctx, "shared", func(ctx context.Context) error {
					if inside.Add(1) > 1 {
						overlapped.Store(true)
					}
					time.Sleep(time.Millisecond)
					inside.Add(-1)
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		assert.False(t, overlapped.Load())
	})

	t.Run("cancelled context", func(t *testing.T) {
		m, _ := c.Mutex("busy")
		require.NoError(t, m.Lock(ctx))
		defer m.Unlock(ctx)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := c.WithLock(cctx, "busy", func(context.Context) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

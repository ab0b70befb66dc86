package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// fakeClock 手动推进的时间
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.UnixMilli(1700000000000)}
}

func TestMemory_Limit(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	rl := NewMemory(3, time.Second, clock.now)

	for i := 0; i < 3; i++ {
		assert.False(t, rl.Limit(ctx), "call %d", i)
	}
	assert.True(t, rl.Limit(ctx))

	// 400ms 补充 1.2 个
	clock.advance(400 * time.Millisecond)
	assert.False(t, rl.Limit(ctx))
	assert.True(t, rl.Limit(ctx))

	// 补满后不超过上限
	clock.advance(time.Minute)
	for i := 0; i < 3; i++ {
		assert.False(t, rl.Limit(ctx))
	}
	assert.True(t, rl.Limit(ctx))

	rl.Undo()
	assert.False(t, rl.Limit(ctx))
}

func TestRedis_Limit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	clock := newFakeClock()
	rl := NewRedis(client, "test:player", 2, time.Second, clock.now)

	assert.False(t, rl.Limit(ctx))
	assert.False(t, rl.Limit(ctx))
	assert.True(t, rl.Limit(ctx))

	clock.advance(500 * time.Millisecond)
	assert.True(t, rl.Limit(ctx))

	// 之前的请求都滑出窗口
	clock.advance(600 * time.Millisecond)
	assert.False(t, rl.Limit(ctx))
	assert.False(t, rl.Limit(ctx))
	assert.True(t, rl.Limit(ctx))

	assert.True(t, mr.Exists("test:player"))
}

func TestRedis_FailOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	rl := NewRedis(client, "test:down", 1, time.Second, nil)
	mr.Close()
	assert.False(t, rl.Limit(context.Background()))
	assert.False(t, rl.Limit(context.Background()))
}

func TestManager_Limit(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		clock := newFakeClock()
		m := NewManager(1, time.Second, WithClock(clock.now))

		assert.False(t, m.Limit(ctx, "alice"))
		assert.True(t, m.Limit(ctx, "alice"))
		assert.False(t, m.Limit(ctx, "bob"))
		assert.False(t, m.Limit(ctx, ""))
		assert.False(t, m.Limit(ctx, ""))

		clock.advance(time.Second)
		assert.False(t, m.Limit(ctx, "alice"))
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		clock := newFakeClock()
		m := NewManager(1, time.Second, WithRedis(client, "rl"), WithClock(clock.now))
		assert.False(t, m.Limit(ctx, "alice"))
		assert.True(t, m.Limit(ctx, "alice"))
		assert.True(t, mr.Exists("rl:alice"))

		// 另一个实例共享计数
		other := NewManager(1, time.Second, WithRedis(client, "rl"), WithClock(clock.now))
		assert.True(t, other.Limit(ctx, "alice"))
	})
}

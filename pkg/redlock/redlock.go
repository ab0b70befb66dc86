package redlock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// 只有值匹配时才删除，防止释放别人的锁
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`

// 只有值匹配时才续期
const extendScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
    return 0
end
`

// Client 创建基于 redis SET NX 的互斥锁
type Client struct {
	rdb    redis.Cmdable
	prefix string
	opts   Options
}

// New 创建锁客户端，opts 作为每把锁的默认参数
func New(rdb redis.Cmdable, prefix string, opts ...Option) *Client {
	if rdb == nil {
		log.Fatal().Msg("redis client cannot be nil")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		rdb:    rdb,
		prefix: prefix,
		opts:   o,
	}
}

// Mutex 一把具体的锁，value 区分持有者
type Mutex struct {
	rdb   redis.Cmdable
	key   string
	value string
	opts  Options
}

// Mutex 返回名为 name 的锁，opts 覆盖默认参数
func (c *Client) Mutex(name string, opts ...Option) (*Mutex, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	o := c.opts
	for _, opt := range opts {
		opt(&o)
	}
	key := name
	if c.prefix != "" {
		key = c.prefix + ":lock:" + name
	}
	return &Mutex{
		rdb:   c.rdb,
		key:   key,
		value: uuid.NewString(),
		opts:  o,
	}, nil
}

// WithLock 持有锁时执行 fn，结束后释放
func (c *Client) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	m, err := c.Mutex(name)
	if err != nil {
		return err
	}
	if err := m.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		// fn 执行超过 TTL 时锁已过期，只记录日志
		if err := m.Unlock(context.WithoutCancel(ctx)); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("key", m.key).Msg("release lock failed")
		}
	}()
	return fn(ctx)
}

// Key redis 中的键名
func (m *Mutex) Key() string {
	return m.key
}

// TryLock 尝试一次，不重试
func (m *Mutex) TryLock(ctx context.Context) (bool, error) {
	acquired, err := m.rdb.SetNX(ctx, m.key, m.value, m.opts.TTL).Result()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("key", m.key).Msg("failed to setnx for lock")
		return false, err
	}
	if acquired {
		log.Ctx(ctx).Trace().Str("key", m.key).Dur("ttl", m.opts.TTL).Msg("lock acquired")
	}
	return acquired, nil
}

// Lock 获取锁，失败时按间隔重试，直到成功、次数用完或 ctx 取消
func (m *Mutex) Lock(ctx context.Context) error {
	for i := 0; i <= m.opts.MaxRetries; i++ {
		acquired, err := m.TryLock(ctx)
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}
		if i == m.opts.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.opts.RetryDelay):
		}
	}

	log.Ctx(ctx).Warn().Str("key", m.key).Int("max_retries", m.opts.MaxRetries).Msg("failed to acquire lock after all retries")
	return ErrNotAcquired
}

// Unlock 释放锁，锁不属于自己时返回 ErrNotHeld
func (m *Mutex) Unlock(ctx context.Context) error {
	return m.eval(ctx, unlockScript)
}

// Extend 把锁的过期时间重置为 ttl
func (m *Mutex) Extend(ctx context.Context, ttl time.Duration) error {
	return m.eval(ctx, extendScript, ttl.Milliseconds())
}

func (m *Mutex) eval(ctx context.Context, script string, args ...any) error {
	n, err := m.rdb.Eval(ctx, script, []string{m.key}, append([]any{m.value}, args...)...).Int64()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("key", m.key).Msg("failed to execute lock script")
		return err
	}
	if n != 1 {
		return ErrNotHeld
	}
	return nil
}

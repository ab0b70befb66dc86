package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxKeys = 100000
	defaultPrefix  = "ratelimit"
)

// Manager 按 key（玩家、IP）分别限流
type Manager struct {
	rate   int
	per    time.Duration
	rdb    redis.Cmdable
	prefix string
	now    Clock

	mu       sync.Mutex
	limiters *expirable.LRU[string, Limiter]
}

type Option func(*Manager)

// WithRedis 使用 redis 滑动窗口，多实例共享计数
func WithRedis(rdb redis.Cmdable, prefix string) Option {
	return func(m *Manager) {
		m.rdb = rdb
		if prefix != "" {
			m.prefix = prefix
		}
	}
}

func WithClock(now Clock) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager 每个 key 每 per 时间最多 rate 次
func NewManager(rate int, per time.Duration, opts ...Option) *Manager {
	m := &Manager{
		rate:   rate,
		per:    per,
		prefix: defaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	// 长时间不活跃的 key 自动淘汰
	m.limiters = expirable.NewLRU[string, Limiter](defaultMaxKeys, nil, max(per, time.Second)*10)
	return m
}

// Limit 超过限流返回 true，空 key 不限流
func (m *Manager) Limit(ctx context.Context, key string) bool {
	if key == "" {
		return false
	}
	if m.limiter(key).Limit(ctx) {
		log.Ctx(ctx).Warn().Str("key", key).Int("rate", m.rate).Dur("per", m.per).Msg("rate limit exceeded")
		return true
	}
	return false
}

func (m *Manager) limiter(key string) Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.limiters.Get(key); ok {
		return l
	}
	var l Limiter
	if m.rdb != nil {
		l = NewRedis(m.rdb, m.prefix+":"+key, m.rate, m.per, m.now)
	} else {
		l = NewMemory(m.rate, m.per, m.now)
	}
	m.limiters.Add(key, l)
	return l
}

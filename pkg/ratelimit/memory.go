package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory 令牌桶限流，线程安全
// 每 per 时间补充 rate 个令牌，桶满时为 rate 个
type Memory struct {
	mu sync.Mutex

	rate      float64
	per       time.Duration
	allowance float64
	last      time.Time
	now       Clock
}

// NewMemory 每 per 时间最多 rate 次
func NewMemory(rate int, per time.Duration, now Clock) *Memory {
	if rate < 1 {
		rate = 1
	}
	if per <= 0 {
		per = time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &Memory{
		rate:      float64(rate),
		per:       per,
		allowance: float64(rate),
		last:      now(),
		now:       now,
	}
}

func (m *Memory) Limit(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if elapsed := now.Sub(m.last); elapsed > 0 {
		m.allowance += float64(elapsed) * m.rate / float64(m.per)
		m.last = now
	}
	if m.allowance > m.rate {
		m.allowance = m.rate
	}
	if m.allowance < 1 {
		return true
	}
	m.allowance--
	return false
}

// Undo 返还上一次 Limit 消耗的令牌
func (m *Memory) Undo() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowance = min(m.allowance+1, m.rate)
}

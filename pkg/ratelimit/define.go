package ratelimit

import (
	"context"
	"time"
)

// Limiter 超过限流时返回 true
type Limiter interface {
	Limit(ctx context.Context) bool
}

// Clock 测试时替换当前时间
type Clock func() time.Time

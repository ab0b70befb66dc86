package redlock

import (
	"time"
)

// Options 获取锁的参数
type Options struct {
	TTL        time.Duration // 锁的过期时间
	MaxRetries int           // 最大重试次数
	RetryDelay time.Duration // 重试间隔
}

type Option func(*Options)

// WithTTL 设置锁的过期时间
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.TTL = ttl
	}
}

// WithMaxRetries 设置最大重试次数
func WithMaxRetries(retries int) Option {
	return func(o *Options) {
		o.MaxRetries = retries
	}
}

// WithRetryDelay 设置重试间隔
func WithRetryDelay(delay time.Duration) Option {
	return func(o *Options) {
		o.RetryDelay = delay
	}
}

func defaultOptions() Options {
	return Options{
		TTL:        3 * time.Second,
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
	}
}

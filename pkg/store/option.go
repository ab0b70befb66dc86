package store

import "time"

type options struct {
	prefix     string
	maxRetries int
	ttl        time.Duration
}

// apply apply options
func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// setDefault default configuration
func (o *options) setDefault() {
	if o.prefix == "" {
		o.prefix = "updown"
	}
	if o.maxRetries <= 0 {
		o.maxRetries = 5
	}
	if o.ttl < 0 {
		o.ttl = 0
	}
}

type Option func(*options)

// WithPrefix sets the redis key prefix
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithMaxRetries sets how many times an optimistic update is retried on conflict
func WithMaxRetries(n int) Option {
	return func(o *options) {
		o.maxRetries = n
	}
}

// WithTTL expires idle games, 0 keeps them forever
func WithTTL(d time.Duration) Option {
	return func(o *options) {
		o.ttl = d
	}
}

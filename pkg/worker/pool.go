package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

var (
	ErrPoolClosed = errors.New("pool is closed")
)

// Pool limits the number of jobs running at the same time
type Pool struct {
	limit    int
	tickets  chan int
	running  atomic.Int32
	closing  sync.Once
	recovery bool
}

type Option func(*Pool)

// WithRecovery recovers panics raised by jobs
func WithRecovery() Option {
	return func(p *Pool) {
		p.recovery = true
	}
}

// New creates a pool with the given limit, 10 if limit <= 0
func New(limit int, opts ...Option) *Pool {
	if limit <= 0 {
		limit = 10
	}

	p := &Pool{
		limit:   limit,
		tickets: make(chan int, limit),
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := 0; i < limit; i++ {
		p.tickets <- i
	}
	return p
}

// Go blocks until a slot is free, then runs job in its own goroutine
func (p *Pool) Go(ctx context.Context, job func(ctx context.Context)) error {
	var ticket int
	select {
	case t, ok := <-p.tickets:
		if !ok {
			return ErrPoolClosed
		}
		ticket = t
	case <-ctx.Done():
		return ctx.Err()
	}

	p.running.Add(1)
	go func() {
		defer func() {
			p.running.Add(-1)
			p.tickets <- ticket
		}()
		if p.recovery {
			defer func() {
				if r := recover(); r != nil {
					log.Ctx(ctx).Error().Interface("panic", r).Int("ticket", ticket).Msg("recovered panic in worker job")
				}
			}()
		}
		if job != nil {
			job(ctx)
		}
	}()
	return nil
}

// Wait waits for running jobs to finish and closes the pool
func (p *Pool) Wait() {
	p.closing.Do(func() {
		for i := 0; i < p.limit; i++ {
			<-p.tickets
		}
		close(p.tickets)
	})
}

// Running returns the number of jobs in progress
func (p *Pool) Running() int {
	return int(p.running.Load())
}

// Limit returns the pool size
func (p *Pool) Limit() int {
	return p.limit
}

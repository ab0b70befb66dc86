package bunlog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/uptrace/bun"
)

// QueryHook logs bun queries through the zerolog logger found in ctx
type QueryHook struct {
	slow   time.Duration
	traced func() bool
}

type Option func(*QueryHook)

// WithSlow logs queries slower than d at warn level
func WithSlow(d time.Duration) Option {
	return func(h *QueryHook) {
		h.slow = d
	}
}

// WithTraced overrides the switch deciding whether successful queries are logged,
// defaults to the log.traced config key
func WithTraced(fn func() bool) Option {
	return func(h *QueryHook) {
		h.traced = fn
	}
}

func NewQueryHook(opts ...Option) *QueryHook {
	h := &QueryHook{
		traced: func() bool { return viper.GetBool("log.traced") },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

// AfterQuery failed and slow queries are always logged
func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	dur := time.Since(event.StartTime)
	logger := log.Ctx(ctx).With().Str("op", event.Operation()).Dur("duration", dur).Str("sql", event.Query).Logger()

	switch {
	case event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows):
		logger.Error().Err(event.Err).Msg("query failed")
	case h.slow > 0 && dur > h.slow:
		logger.Warn().Msg("slow sql")
	case h.traced():
		logger.Debug().Msg("sql")
	}
}

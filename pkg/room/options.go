package room

import (
	"context"
	"time"

	"github.com/play/updown/pkg/eventbus"
	"github.com/play/updown/pkg/updown"
)

const (
	// MaxPlayersLimit 每人至少一张牌且留一张 mesa
	MaxPlayersLimit = 10
	idLength        = 6
	idAttempts      = 5
)

type options struct {
	maxPlayers    int
	defaultRounds int
	clock         updown.Clock
	newID         func() string
	publisher     Publisher
}

type Option func(*options)

// WithMaxPlayers 新房间的默认人数上限
func WithMaxPlayers(n int) Option {
	return func(o *options) {
		o.maxPlayers = n
	}
}

// WithDefaultRounds 创建时未指定局数的默认值
func WithDefaultRounds(n int) Option {
	return func(o *options) {
		o.defaultRounds = n
	}
}

func WithClock(c updown.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithIDGenerator 替换房间号生成，测试用
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// WithPublisher 成功操作后发布事件
func WithPublisher(p Publisher) Option {
	return func(o *options) {
		o.publisher = p
	}
}

func (o *options) setDefault() {
	if o.maxPlayers < updown.MinPlayers || o.maxPlayers > MaxPlayersLimit {
		o.maxPlayers = updown.DefaultMaxPlayers
	}
	if o.defaultRounds <= 0 {
		o.defaultRounds = updown.DefaultRounds
	}
	if o.clock == nil {
		o.clock = updown.ClockFunc(time.Now)
	}
	if o.newID == nil {
		o.newID = NewRoomID
	}
	if o.publisher == nil {
		o.publisher = nopPublisher{}
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(_ context.Context, _ string, _ ...eventbus.GameEvent) error { return nil }

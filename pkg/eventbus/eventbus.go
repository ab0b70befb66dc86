package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/play/updown/pkg/worker"
)

var (
	ErrQueueFull          = errors.New("queue is full")
	ErrNilHandler         = errors.New("handler is nil")
	ErrSubscriptionClosed = errors.New("subscription is closed")
	ErrBusClosed          = errors.New("event bus is closed")
)

const (
	blpopTimeout     = 1 * time.Second
	defaultQueueSize = 1000
	defaultPrefix    = "updown"
)

// publishScript 长度检查和 RPUSH 在同一个脚本里，队列满时返回 -1
// ARGV[1] 为队列上限，0 表示不限制，其余为事件
const publishScript = `
local limit = tonumber(ARGV[1])
if limit > 0 and redis.call('LLEN', KEYS[1]) + #ARGV - 1 > limit then
	return -1
end
return redis.call('RPUSH', KEYS[1], unpack(ARGV, 2))
`

// Handler 处理一个事件，返回的错误只记录日志
type Handler func(ctx context.Context, ev GameEvent) error

// Option 同时用于 Bus 和 Subscription
type Option func(any)

// Bus 基于 redis list 的事件队列，RPUSH 发布，BLPOP 消费
type Bus struct {
	rdb       redis.Cmdable
	prefix    string
	queueSize int
	recovery  bool

	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed chan struct{}
	once   sync.Once
}

// Subscription 一个 topic 的消费者
type Subscription struct {
	bus         *Bus
	topic       string
	key         string
	handler     Handler
	kinds       map[Kind]bool
	concurrency int
	recovery    bool
	pool        *worker.Pool
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
	started     bool
	once        sync.Once
}

// WithQueueSize 队列达到该长度后拒绝发布，0 不限制
func WithQueueSize(n int) Option {
	return func(o any) {
		if b, ok := o.(*Bus); ok && n >= 0 {
			b.queueSize = n
		}
	}
}

// WithPrefix redis 键前缀
func WithPrefix(prefix string) Option {
	return func(o any) {
		if b, ok := o.(*Bus); ok {
			b.prefix = prefix
		}
	}
}

// WithRecovery handler panic 时恢复，对 Bus 设置则所有订阅继承
func WithRecovery() Option {
	return func(o any) {
		switch v := o.(type) {
		case *Subscription:
			v.recovery = true
		case *Bus:
			v.recovery = true
		}
	}
}

// WithConcurrency 消费并发数，<= 0 时为 1
func WithConcurrency(c int) Option {
	return func(o any) {
		if s, ok := o.(*Subscription); ok {
			s.concurrency = max(c, 1)
		}
	}
}

// WithKinds 只处理指定类型的事件，其它的直接丢弃
func WithKinds(kinds ...Kind) Option {
	return func(o any) {
		if s, ok := o.(*Subscription); ok {
			for _, k := range kinds {
				s.kinds[k] = true
			}
		}
	}
}

func New(rdb redis.Cmdable, opts ...Option) *Bus {
	b := &Bus{
		rdb:       rdb,
		prefix:    defaultPrefix,
		queueSize: defaultQueueSize,
		subs:      make(map[*Subscription]struct{}),
		closed:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) topicKey(topic string) string {
	return b.prefix + ":events:" + topic
}

// Publish 发布事件，缺少 ID 和时间时自动补全
func (b *Bus) Publish(ctx context.Context, topic string, events ...GameEvent) error {
	select {
	case <-b.closed:
		return ErrBusClosed
	default:
	}
	if len(events) == 0 {
		return nil
	}

	key := b.topicKey(topic)
	args := make([]any, 0, len(events)+1)
	args = append(args, b.queueSize)
	for _, ev := range events {
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		if ev.At == 0 {
			ev.At = time.Now().UnixMilli()
		}
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", ev.Kind, err)
		}
		args = append(args, data)
	}

	length, err := b.rdb.Eval(ctx, publishScript, []string{key}, args...).Int64()
	if err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	if length < 0 {
		log.Ctx(ctx).Warn().Str("topic", topic).Int("count", len(events)).Int("queue_size", b.queueSize).Msg("event queue is full")
		return ErrQueueFull
	}
	log.Ctx(ctx).Trace().Str("topic", topic).Int("count", len(events)).Msg("events published")
	return nil
}

// Subscribe 创建订阅，调用 Loop 后开始消费
func (b *Bus) Subscribe(ctx context.Context, topic string, handler Handler, opts ...Option) (*Subscription, error) {
	select {
	case <-b.closed:
		return nil, ErrBusClosed
	default:
	}
	if handler == nil {
		return nil, ErrNilHandler
	}

	subCtx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		bus:         b,
		topic:       topic,
		key:         b.topicKey(topic),
		handler:     handler,
		kinds:       make(map[Kind]bool),
		concurrency: 1,
		recovery:    b.recovery,
		ctx:         subCtx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	var poolOpts []worker.Option
	if s.recovery {
		poolOpts = append(poolOpts, worker.WithRecovery())
	}
	s.pool = worker.New(s.concurrency, poolOpts...)

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s, nil
}

// Close 停止所有订阅
func (b *Bus) Close() error {
	b.once.Do(func() {
		close(b.closed)
	})

	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		_ = s.Stop()
	}
	log.Info().Int("subscriptions", len(subs)).Msg("event bus closed")
	return nil
}

// Loop 启动 BLPOP 协程，消息交给 worker pool 处理
func (s *Subscription) Loop() {
	s.started = true
	go s.blpopLoop()
	log.Ctx(s.ctx).Info().Str("topic", s.topic).Int("concurrency", s.concurrency).Msg("subscription started")
}

func (s *Subscription) blpopLoop() {
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.bus.closed:
			return
		default:
		}

		results, err := s.bus.rdb.BLPop(s.ctx, blpopTimeout, s.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || s.ctx.Err() != nil {
				continue
			}
			log.Ctx(s.ctx).Error().Err(err).Str("topic", s.topic).Msg("blpop failed")
			select {
			case <-s.ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		if len(results) != 2 {
			log.Ctx(s.ctx).Warn().Str("topic", s.topic).Int("results_len", len(results)).Msg("blpop returned unexpected result length")
			continue
		}
		s.dispatch([]byte(results[1]))
	}
}

func (s *Subscription) dispatch(payload []byte) {
	var ev GameEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Ctx(s.ctx).Error().Err(err).Str("topic", s.topic).Bytes("payload", payload).Msg("failed to decode event")
		return
	}
	if len(s.kinds) > 0 && !s.kinds[ev.Kind] {
		return
	}

	// 停止订阅时正在处理的事件继续完成
	hctx := context.WithoutCancel(s.ctx)
	err := s.pool.Go(s.ctx, func(context.Context) {
		if err := s.handler(hctx, ev); err != nil {
			log.Ctx(hctx).Error().Err(err).Str("topic", s.topic).Str("kind", string(ev.Kind)).Str("room_id", ev.RoomID).Msg("event handler failed")
		}
	})
	if err != nil {
		log.Ctx(s.ctx).Warn().Err(err).Str("event_id", ev.ID).Str("kind", string(ev.Kind)).Msg("event dropped, subscription stopping")
	}
}

// Stop 停止消费并等待正在处理的事件完成
func (s *Subscription) Stop() error {
	err := ErrSubscriptionClosed
	s.once.Do(func() {
		err = nil
		s.cancel()
		if s.started {
			<-s.done
		}
		s.pool.Wait()

		s.bus.mu.Lock()
		delete(s.bus.subs, s)
		s.bus.mu.Unlock()
		log.Ctx(s.ctx).Info().Str("topic", s.topic).Msg("subscription stopped")
	})
	return err
}

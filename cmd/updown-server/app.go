package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/play/updown/pkg/api"
	"github.com/play/updown/pkg/archive"
	"github.com/play/updown/pkg/config"
	"github.com/play/updown/pkg/eventbus"
	"github.com/play/updown/pkg/extension"
	"github.com/play/updown/pkg/leaderboard"
	"github.com/play/updown/pkg/ratelimit"
	"github.com/play/updown/pkg/redlock"
	"github.com/play/updown/pkg/room"
	"github.com/play/updown/pkg/store"
	"github.com/play/updown/pkg/updown"
)

// app 进程内的所有组件，archive 和 http server 在启动时创建
type app struct {
	cfg   config.Config
	rdb   redis.UniversalClient
	games *store.Store
	bus   *eventbus.Bus
	board *leaderboard.Board
	rooms *room.Service

	archive *archive.Archive
	sub     *eventbus.Subscription
	server  *http.Server
}

func newApp(cfg config.Config) *app {
	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Redis.Addr},
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	games := store.New(rdb,
		store.WithPrefix(cfg.Store.Prefix),
		store.WithMaxRetries(cfg.Store.MaxRetries),
		store.WithTTL(cfg.Store.TTL),
	)
	locks := redlock.New(rdb, cfg.Store.Prefix,
		redlock.WithTTL(cfg.Lock.TTL),
		redlock.WithMaxRetries(cfg.Lock.Retries),
	)
	bus := eventbus.New(rdb,
		eventbus.WithPrefix(cfg.Store.Prefix),
		eventbus.WithQueueSize(cfg.Events.QueueSize),
		eventbus.WithRecovery(),
	)
	rooms := room.New(games, locks, updown.NewEngine(),
		room.WithMaxPlayers(cfg.Game.MaxPlayers),
		room.WithDefaultRounds(cfg.Game.DefaultRounds),
		room.WithPublisher(bus),
	)

	return &app{
		cfg:   cfg,
		rdb:   rdb,
		games: games,
		bus:   bus,
		board: leaderboard.New(rdb, cfg.Store.Prefix),
		rooms: rooms,
	}
}

// extensions 按依赖顺序注册：redis -> archive -> events -> http
func (a *app) extensions() *extension.Manager {
	m := extension.NewManager()
	m.Register(
		extension.Func{ID: "redis", OnLoad: a.loadRedis, OnExit: a.exitRedis},
		extension.Func{ID: "archive", OnLoad: a.loadArchive, OnExit: a.exitArchive},
		extension.Func{ID: "events", OnLoad: a.loadEvents, OnExit: a.exitEvents},
		extension.Func{ID: "http", OnLoad: a.loadHTTP, OnExit: a.exitHTTP},
	)
	return m
}

func (a *app) loadRedis(ctx context.Context) error {
	if err := a.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", a.cfg.Redis.Addr, err)
	}
	return nil
}

func (a *app) exitRedis(context.Context) {
	if err := a.rdb.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close redis client")
	}
}

func (a *app) loadArchive(ctx context.Context) error {
	arch, err := archive.Open(ctx, a.cfg.Archive.DSN, a.games,
		archive.WithCacheSize(a.cfg.Archive.CacheSize),
		archive.WithCacheTTL(a.cfg.Archive.CacheTTL),
	)
	if err != nil {
		return err
	}
	a.archive = arch
	return nil
}

func (a *app) exitArchive(context.Context) {
	if err := a.archive.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close archive")
	}
}

// loadEvents 队列里的事件只会被一个订阅消费，所以用一个订阅分发给所有处理函数
func (a *app) loadEvents(ctx context.Context) error {
	handlers := []eventbus.Handler{a.board.HandleEvent, a.archive.HandleEvent}
	sub, err := a.bus.Subscribe(context.WithoutCancel(ctx), eventbus.TopicGame, fanout(handlers...),
		eventbus.WithConcurrency(a.cfg.Events.Concurrency),
		eventbus.WithKinds(eventbus.KindGameCompleted),
	)
	if err != nil {
		return err
	}
	sub.Loop()
	a.sub = sub
	return nil
}

func (a *app) exitEvents(context.Context) {
	if err := a.bus.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close event bus")
	}
}

func (a *app) loadHTTP(context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	var limiter api.Limiter
	if n := a.cfg.RateLimit.ActionsPerSecond; n > 0 {
		limiter = ratelimit.NewManager(n, time.Second, ratelimit.WithRedis(a.rdb, a.cfg.Store.Prefix+":ratelimit"))
	}
	router := api.NewRouter(api.Deps{
		Rooms:   a.rooms,
		Board:   a.board,
		Archive: a.archive,
		Limiter: limiter,
		Addr:    a.cfg.HTTP.Addr,
	})

	// 先监听，端口被占用时启动失败
	ln, err := net.Listen("tcp", a.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.HTTP.Addr, err)
	}
	a.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped unexpectedly")
		}
	}()
	return nil
}

func (a *app) exitHTTP(ctx context.Context) {
	if err := a.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
}

// fanout 依次调用每个处理函数，返回所有错误
func fanout(handlers ...eventbus.Handler) eventbus.Handler {
	return func(ctx context.Context, ev eventbus.GameEvent) error {
		var errs []error
		for _, h := range handlers {
			if err := h(ctx, ev); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

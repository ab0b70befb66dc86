package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/play/updown/pkg/buncache"
	"github.com/play/updown/pkg/eventbus"
	"github.com/play/updown/pkg/logger/bunlog"
	"github.com/play/updown/pkg/updown"
)

var (
	ErrNotFound      = errors.New("archived game not found")
	ErrNotCompleted  = errors.New("game is not completed")
	ErrAlreadyStored = errors.New("game already archived")
)

// GameLoader 读取房间当前的游戏数据
type GameLoader interface {
	Get(ctx context.Context, id string) (updown.Game, error)
}

type options struct {
	cacheSize int
	cacheTTL  time.Duration
	slowQuery time.Duration
}

type Option func(*options)

func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

func WithCacheTTL(d time.Duration) Option {
	return func(o *options) {
		o.cacheTTL = d
	}
}

func WithSlowQuery(d time.Duration) Option {
	return func(o *options) {
		o.slowQuery = d
	}
}

// Archive 把完成的游戏写入 sqlite
type Archive struct {
	db    *bun.DB
	games GameLoader
	cache *buncache.Cache[string, GameRecord]
}

// Open 打开数据库并建表
func Open(ctx context.Context, dsn string, games GameLoader, opts ...Option) (*Archive, error) {
	o := &options{
		cacheSize: 1000,
		cacheTTL:  10 * time.Minute,
		slowQuery: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(o)
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive %q: %w", dsn, err)
	}
	// sqlite 只允许一个写连接
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.AddQueryHook(bunlog.NewQueryHook(bunlog.WithSlow(o.slowQuery)))

	a := &Archive{db: db, games: games}
	if err := a.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	a.cache = buncache.New[string, GameRecord](db,
		buncache.WithSize[string, GameRecord](o.cacheSize),
		buncache.WithTTL[string, GameRecord](o.cacheTTL),
		buncache.WithLoader[string, GameRecord](loadGame),
	)
	log.Ctx(ctx).Info().Str("dsn", dsn).Msg("archive opened")
	return a, nil
}

func (a *Archive) migrate(ctx context.Context) error {
	models := []any{(*GameRecord)(nil), (*ScoreRecord)(nil)}
	for _, m := range models {
		if _, err := a.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	_, err := a.db.NewCreateIndex().Model((*ScoreRecord)(nil)).
		Index("game_scores_player_id_idx").Column("player_id").IfNotExists().Exec(ctx)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func loadGame(ctx context.Context, db bun.IDB, id string) (*GameRecord, error) {
	rec := new(GameRecord)
	err := db.NewSelect().Model(rec).
		Relation("Scores", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("seat ASC")
		}).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	return rec, err
}

// Close 关闭数据库
func (a *Archive) Close() error {
	return a.db.Close()
}

// Save 保存一局已结束的游戏，重复保存返回 ErrAlreadyStored
func (a *Archive) Save(ctx context.Context, g updown.Game) error {
	if g.Status() != updown.StatusGameComplete {
		return ErrNotCompleted
	}
	rec, err := newRecord(g)
	if err != nil {
		return err
	}

	err = a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewInsert().Model(rec).On("CONFLICT (id) DO NOTHING").Exec(ctx)
		if err != nil {
			return fmt.Errorf("insert game: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrAlreadyStored
		}
		if _, err := tx.NewInsert().Model(&rec.Scores).Exec(ctx); err != nil {
			return fmt.Errorf("insert scores: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 之前查询过的话缓存里是 nil
	a.cache.Delete(g.ID)
	log.Ctx(ctx).Info().Str("game_id", g.ID).Strs("winners", rec.WinnerIDs).Msg("game archived")
	return nil
}

// Get 读取归档，带缓存
func (a *Archive) Get(ctx context.Context, id string) (*GameRecord, error) {
	rec, err := a.cache.Get(ctx, id)
	if errors.Is(err, buncache.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rec, err
}

// PlayerHistory 玩家最近的成绩，按完成时间倒序
func (a *Archive) PlayerHistory(ctx context.Context, playerID string, limit int) ([]ScoreRecord, error) {
	var scores []ScoreRecord
	err := a.db.NewSelect().Model(&scores).
		Join("JOIN games AS g ON g.id = s.game_id").
		Where("s.player_id = ?", playerID).
		OrderExpr("g.completed_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return scores, nil
}

// HandleEvent 消费 game_completed，从 store 读出最终状态后归档
func (a *Archive) HandleEvent(ctx context.Context, ev eventbus.GameEvent) error {
	if ev.Kind != eventbus.KindGameCompleted {
		return nil
	}
	g, err := a.games.Get(ctx, ev.RoomID)
	if err != nil {
		return fmt.Errorf("load game %s: %w", ev.RoomID, err)
	}
	err = a.Save(ctx, g)
	if errors.Is(err, ErrAlreadyStored) {
		log.Ctx(ctx).Debug().Str("game_id", g.ID).Msg("game already archived, skip")
		return nil
	}
	return err
}

package buncache

import (
	"context"
	"database/sql"
	"errors"
	"math/rand/v2"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
)

var ErrNotFound = errors.New("record not found")

// Loader 从数据库读取一条记录，找不到时返回 sql.ErrNoRows
type Loader[K comparable, V any] func(ctx context.Context, db bun.IDB, k K) (*V, error)

type Option[K comparable, V any] func(*Cache[K, V])

// Cache 按主键读取的 LRU 缓存，未命中时查库
// 不存在的记录也会缓存 nil，防止缓存穿透
type Cache[K comparable, V any] struct {
	db        *bun.DB
	size      int
	ttl       time.Duration
	load      Loader[K, V]
	modelName string
	lru       *expirable.LRU[K, *V]
	hits      atomic.Int64
	misses    atomic.Int64
}

// WithSize 设置缓存条数，默认 10000
func WithSize[K comparable, V any](size int) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.size = size
	}
}

// WithTTL 设置过期时间，默认 2~3 分钟随机
func WithTTL[K comparable, V any](d time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.ttl = d
	}
}

// WithLoader 自定义查询，例如需要加载关联表时
func WithLoader[K comparable, V any](fn Loader[K, V]) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.load = fn
	}
}

func New[K comparable, V any](db *bun.DB, opts ...Option[K, V]) *Cache[K, V] {
	table := db.Table(reflect.TypeOf(new(V)).Elem())
	if table == nil {
		panic("buncache: model is not registered")
	}

	c := &Cache[K, V]{
		db:        db,
		size:      10000,
		ttl:       time.Minute*2 + time.Duration(rand.Int64N(60))*time.Second,
		modelName: table.Name,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.load == nil {
		if len(table.PKs) != 1 {
			panic("buncache: model " + table.Name + " needs exactly one primary key or a custom loader")
		}
		pk := table.PKs[0].Name
		c.load = func(ctx context.Context, db bun.IDB, k K) (*V, error) {
			v := new(V)
			err := db.NewSelect().Model(v).Where("?TableAlias.? = ?", bun.Ident(pk), k).Scan(ctx)
			return v, err
		}
	}

	c.lru = expirable.NewLRU[K, *V](c.size, nil, c.ttl)
	return c
}

// Get 读取记录，不存在时返回 ErrNotFound
func (c *Cache[K, V]) Get(ctx context.Context, k K) (*V, error) {
	if v, ok := c.lru.Get(k); ok {
		c.hits.Add(1)
		if v == nil {
			return nil, ErrNotFound
		}
		return v, nil
	}
	c.misses.Add(1)

	v, err := c.load(ctx, c.db, k)
	if errors.Is(err, sql.ErrNoRows) {
		c.lru.Add(k, nil)
		return nil, ErrNotFound
	}
	if err != nil {
		// 数据库错误不缓存
		log.Ctx(ctx).Warn().Str("model", c.modelName).Err(err).Msg("buncache: load failed")
		return nil, err
	}
	c.lru.Add(k, v)
	return v, nil
}

// Delete 删除缓存，下次 Get 重新查库
func (c *Cache[K, V]) Delete(ks ...K) {
	for _, k := range ks {
		c.lru.Remove(k)
	}
}

// Flush 清空缓存
func (c *Cache[K, V]) Flush() {
	c.lru.Purge()
}

// Len 当前缓存条数，包括 nil
func (c *Cache[K, V]) Len() int {
	return c.lru.Len()
}

// Stats 命中和未命中次数
func (c *Cache[K, V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

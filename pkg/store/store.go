package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/play/updown/pkg/updown"
)

var (
	ErrNotFound        = errors.New("game not found")
	ErrExists          = errors.New("game already exists")
	ErrConflict        = errors.New("game was modified concurrently, retry")
	ErrPlayerNotInRoom = errors.New("player is not in a room")
)

// unbindScript 只有索引仍指向该房间时才删除，避免删掉玩家加入的新房间
const unbindScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`

// getter is satisfied by both the client and a WATCH transaction
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// UpdateFunc 在事务内根据当前状态计算新状态，返回错误则放弃写入
type UpdateFunc func(g updown.Game) (updown.Game, error)

// Store 把游戏数据保存在 redis 中
// 写入使用 WATCH/MULTI 乐观事务，冲突时重新读取并重试
type Store struct {
	rdb  redis.UniversalClient
	opts *options
}

func New(rdb redis.UniversalClient, opts ...Option) *Store {
	o := new(options)
	o.apply(opts...).setDefault()
	return &Store{
		rdb:  rdb,
		opts: o,
	}
}

func (s *Store) gameKey(id string) string {
	return s.opts.prefix + ":game:" + id
}

func (s *Store) playerKey(playerID string) string {
	return s.opts.prefix + ":player:" + playerID
}

// Create saves a new game, fails with ErrExists if the id is taken
func (s *Store) Create(ctx context.Context, g updown.Game) error {
	payload, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal game %s: %w", g.ID, err)
	}
	ok, err := s.rdb.SetNX(ctx, s.gameKey(g.ID), payload, s.opts.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis SetNX failed: %w", err)
	}
	if !ok {
		return ErrExists
	}
	log.Ctx(ctx).Debug().Str("game_id", g.ID).Str("admin_id", g.AdminID).Msg("game created")
	return nil
}

// Get loads a game snapshot
func (s *Store) Get(ctx context.Context, id string) (updown.Game, error) {
	return s.load(ctx, s.rdb, id)
}

func (s *Store) load(ctx context.Context, c getter, id string) (g updown.Game, err error) {
	data, err := c.Get(ctx, s.gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return g, ErrNotFound
	}
	if err != nil {
		return g, fmt.Errorf("redis Get failed: %w", err)
	}
	if err = json.Unmarshal(data, &g); err != nil {
		return g, fmt.Errorf("decode game %s: %w", id, err)
	}
	return g, nil
}

// Update 读取、计算、写回在同一个乐观事务中完成
// fn 可能因为冲突被调用多次，不能有副作用
func (s *Store) Update(ctx context.Context, id string, fn UpdateFunc) (updown.Game, error) {
	key := s.gameKey(id)
	var next updown.Game

	txf := func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		next, err = fn(current)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal game %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.opts.ttl)
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= s.opts.maxRetries; attempt++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return updown.Game{}, err
		}
		log.Ctx(ctx).Debug().Str("game_id", id).Int("attempt", attempt).Msg("game update conflict, retrying")
		if err := ctx.Err(); err != nil {
			return updown.Game{}, err
		}
	}

	log.Ctx(ctx).Warn().Str("game_id", id).Int("max_retries", s.opts.maxRetries).Msg("game update failed after all retries")
	return updown.Game{}, ErrConflict
}

// Delete removes the game and the room index of every seated player
func (s *Store) Delete(ctx context.Context, id string) error {
	g, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, s.gameKey(id)).Err(); err != nil {
		return fmt.Errorf("redis Del failed: %w", err)
	}
	for _, p := range g.Players {
		if err := s.UnbindPlayer(ctx, p.ID, id); err != nil {
			return err
		}
	}
	log.Ctx(ctx).Debug().Str("game_id", id).Int("players", len(g.Players)).Msg("game deleted")
	return nil
}

// BindPlayer records which room a player is sitting in
func (s *Store) BindPlayer(ctx context.Context, playerID, roomID string) error {
	if err := s.rdb.Set(ctx, s.playerKey(playerID), roomID, s.opts.ttl).Err(); err != nil {
		return fmt.Errorf("redis Set failed: %w", err)
	}
	return nil
}

// UnbindPlayer removes the index only if it still points at roomID
func (s *Store) UnbindPlayer(ctx context.Context, playerID, roomID string) error {
	err := s.rdb.Eval(ctx, unbindScript, []string{s.playerKey(playerID)}, roomID).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("unbind player %s: %w", playerID, err)
	}
	return nil
}

// RoomOf returns the room the player is sitting in
func (s *Store) RoomOf(ctx context.Context, playerID string) (string, error) {
	roomID, err := s.rdb.Get(ctx, s.playerKey(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrPlayerNotInRoom
	}
	if err != nil {
		return "", fmt.Errorf("redis Get failed: %w", err)
	}
	return roomID, nil
}

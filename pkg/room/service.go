package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/play/updown/pkg/eventbus"
	"github.com/play/updown/pkg/store"
	"github.com/play/updown/pkg/updown"
)

// GameStore 游戏数据和玩家所在房间的索引
type GameStore interface {
	Create(ctx context.Context, g updown.Game) error
	Get(ctx context.Context, id string) (updown.Game, error)
	Update(ctx context.Context, id string, fn store.UpdateFunc) (updown.Game, error)
	Delete(ctx context.Context, id string) error
	BindPlayer(ctx context.Context, playerID, roomID string) error
	UnbindPlayer(ctx context.Context, playerID, roomID string) error
	RoomOf(ctx context.Context, playerID string) (string, error)
}

// Locker 同一房间的成员变更串行执行
type Locker interface {
	WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

// Publisher 发布游戏事件
type Publisher interface {
	Publish(ctx context.Context, topic string, events ...eventbus.GameEvent) error
}

// Service 房间生命周期和玩家操作
type Service struct {
	games  GameStore
	locker Locker
	engine *updown.Engine
	opts   *options
}

func New(games GameStore, locker Locker, engine *updown.Engine, opts ...Option) *Service {
	o := new(options)
	for _, opt := range opts {
		opt(o)
	}
	o.setDefault()
	return &Service{
		games:  games,
		locker: locker,
		engine: engine,
		opts:   o,
	}
}

// Settings 可修改的房间设置，nil 表示不修改
type Settings struct {
	Rounds     *int
	MaxPlayers *int
}

// View 房间概况加上调用者自己的手牌
type View struct {
	Summary    updown.Summary
	AdminID    string
	MaxPlayers int
	RoundCount int
	SeatOrder  []string
	Hand       updown.Cards // 不在房间内时为 nil
}

func lockName(roomID string) string {
	return "room:" + roomID
}

// notFound 把 store 的错误转换成房间错误
func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrRoomNotFound
	}
	return err
}

// Create 创建房间，创建者为管理员
func (s *Service) Create(ctx context.Context, adminID string, rounds int) (updown.Game, error) {
	if rounds == 0 {
		rounds = s.opts.defaultRounds
	}
	if rounds < 1 {
		return updown.Game{}, updown.ErrInvalidRoundCount
	}
	if rounds > updown.MaxRounds(1) {
		return updown.Game{}, ErrTooManyRounds
	}

	now := s.opts.clock.Now().UnixMilli()
	for attempt := 1; attempt <= idAttempts; attempt++ {
		g := updown.NewGame(s.opts.newID(), adminID, now)
		g.MaxPlayers = s.opts.maxPlayers
		g.RoundCount = rounds

		err := s.games.Create(ctx, g)
		if errors.Is(err, store.ErrExists) {
			log.Ctx(ctx).Debug().Str("room_id", g.ID).Int("attempt", attempt).Msg("room id taken, regenerating")
			continue
		}
		if err != nil {
			return updown.Game{}, err
		}
		if err := s.games.BindPlayer(ctx, adminID, g.ID); err != nil {
			return updown.Game{}, err
		}
		log.Ctx(ctx).Info().Str("room_id", g.ID).Str("admin_id", adminID).Int("rounds", rounds).Msg("room created")
		return g, nil
	}
	return updown.Game{}, ErrRoomIDExhausted
}

// Join 加入房间，已经在房间内时直接返回
func (s *Service) Join(ctx context.Context, roomID, playerID string) (g updown.Game, err error) {
	err = s.locker.WithLock(ctx, lockName(roomID), func(ctx context.Context) error {
		g, err = s.games.Update(ctx, roomID, func(g updown.Game) (updown.Game, error) {
			if g.HasPlayer(playerID) {
				return g, nil
			}
			if g.Status() != updown.StatusWaiting {
				return g, ErrRoomNotAccepting
			}
			if len(g.Players) >= g.MaxPlayers {
				return g, ErrRoomFull
			}
			return g.AddPlayer(playerID), nil
		})
		if err != nil {
			return notFound(err)
		}
		return s.games.BindPlayer(ctx, playerID, roomID)
	})
	if err != nil {
		return updown.Game{}, err
	}
	log.Ctx(ctx).Info().Str("room_id", roomID).Str("player_id", playerID).Int("players", len(g.Players)).Msg("player joined")
	return g, nil
}

// UpdateSettings 管理员在开始前修改局数和人数上限
func (s *Service) UpdateSettings(ctx context.Context, roomID, playerID string, set Settings) (updown.Game, error) {
	g, err := s.games.Update(ctx, roomID, func(g updown.Game) (updown.Game, error) {
		if g.AdminID != playerID {
			return g, updown.ErrNotAdmin
		}
		if g.Status() != updown.StatusWaiting {
			return g, updown.ErrGameStarted
		}
		if set.Rounds != nil {
			r := *set.Rounds
			if r < 1 {
				return g, updown.ErrInvalidRoundCount
			}
			if r > updown.MaxRounds(len(g.Players)) {
				return g, fmt.Errorf("%w: at most %d with %d players", ErrTooManyRounds, updown.MaxRounds(len(g.Players)), len(g.Players))
			}
			g.RoundCount = r
		}
		if set.MaxPlayers != nil {
			m := *set.MaxPlayers
			if m < max(updown.MinPlayers, len(g.Players)) || m > MaxPlayersLimit {
				return g, ErrInvalidMaxPlayers
			}
			g.MaxPlayers = m
		}
		return g, nil
	})
	if err != nil {
		return updown.Game{}, notFound(err)
	}
	log.Ctx(ctx).Info().Str("room_id", roomID).Int("rounds", g.RoundCount).Int("max_players", g.MaxPlayers).Msg("room settings updated")
	return g, nil
}

// Leave 开始前离开房间，管理员离开或房间变空时删除房间
func (s *Service) Leave(ctx context.Context, roomID, playerID string) (deleted bool, err error) {
	err = s.locker.WithLock(ctx, lockName(roomID), func(ctx context.Context) error {
		g, err := s.games.Get(ctx, roomID)
		if err != nil {
			return notFound(err)
		}
		if g.Status() != updown.StatusWaiting {
			return updown.ErrGameStarted
		}
		if !g.HasPlayer(playerID) {
			return ErrPlayerNotInRoom
		}

		if g.AdminID == playerID || len(g.Players) == 1 {
			deleted = true
			return notFound(s.games.Delete(ctx, roomID))
		}

		_, err = s.games.Update(ctx, roomID, func(g updown.Game) (updown.Game, error) {
			if g.Status() != updown.StatusWaiting {
				return g, updown.ErrGameStarted
			}
			return g.RemovePlayer(playerID), nil
		})
		if err != nil {
			return notFound(err)
		}
		return s.games.UnbindPlayer(ctx, playerID, roomID)
	})
	if err != nil {
		return false, err
	}
	log.Ctx(ctx).Info().Str("room_id", roomID).Str("player_id", playerID).Bool("room_deleted", deleted).Msg("player left")
	return deleted, nil
}

// Close 管理员关闭房间，任何阶段都可以
func (s *Service) Close(ctx context.Context, roomID, playerID string) error {
	err := s.locker.WithLock(ctx, lockName(roomID), func(ctx context.Context) error {
		g, err := s.games.Get(ctx, roomID)
		if err != nil {
			return notFound(err)
		}
		if g.AdminID != playerID {
			return updown.ErrNotAdmin
		}
		return notFound(s.games.Delete(ctx, roomID))
	})
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("room_id", roomID).Str("player_id", playerID).Msg("room closed")
	return nil
}

// View 读取房间概况，playerID 在房间内时带上手牌
func (s *Service) View(ctx context.Context, roomID, playerID string) (View, error) {
	g, err := s.games.Get(ctx, roomID)
	if err != nil {
		return View{}, notFound(err)
	}
	return View{
		Summary:    updown.Summarize(g),
		AdminID:    g.AdminID,
		MaxPlayers: g.MaxPlayers,
		RoundCount: g.RoundCount,
		SeatOrder:  g.SeatOrder,
		Hand:       g.Hand(playerID),
	}, nil
}

// RoomOf 玩家当前所在的房间
func (s *Service) RoomOf(ctx context.Context, playerID string) (string, error) {
	roomID, err := s.games.RoomOf(ctx, playerID)
	if errors.Is(err, store.ErrPlayerNotInRoom) {
		return "", ErrPlayerNotInRoom
	}
	return roomID, err
}

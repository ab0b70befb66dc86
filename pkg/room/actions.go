package room

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/play/updown/pkg/eventbus"
	"github.com/play/updown/pkg/updown"
)

// StartGame 管理员开始游戏，直接指定房间
func (s *Service) StartGame(ctx context.Context, roomID, playerID string) (updown.Summary, error) {
	var before, after updown.Game
	err := s.locker.WithLock(ctx, lockName(roomID), func(ctx context.Context) (err error) {
		before, after, err = s.apply(ctx, roomID, updown.StartGame{PlayerID: playerID})
		return err
	})
	if err != nil {
		return updown.Summary{}, err
	}
	s.publish(ctx, before, after, updown.StartGame{PlayerID: playerID})
	return updown.Summarize(after), nil
}

// Act 通过玩家索引找到房间并执行操作
func (s *Service) Act(ctx context.Context, a updown.Action) (updown.Summary, error) {
	roomID, err := s.RoomOf(ctx, a.Actor())
	if err != nil {
		return updown.Summary{}, err
	}
	before, after, err := s.apply(ctx, roomID, a)
	if err != nil {
		return updown.Summary{}, err
	}
	s.publish(ctx, before, after, a)
	return updown.Summarize(after), nil
}

// apply 在乐观事务中执行操作并自动流转，返回写入前后的状态
func (s *Service) apply(ctx context.Context, roomID string, a updown.Action) (before, after updown.Game, err error) {
	after, err = s.games.Update(ctx, roomID, func(g updown.Game) (updown.Game, error) {
		before = g
		return s.engine.Apply(g, a)
	})
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("room_id", roomID).Str("action", a.Kind()).Str("player_id", a.Actor()).Msg("action rejected")
		return before, after, notFound(err)
	}
	log.Ctx(ctx).Debug().Str("room_id", roomID).Str("action", a.Kind()).Str("player_id", a.Actor()).
		Str("from", string(before.Status())).Str("to", string(after.Status())).Msg("action applied")
	return before, after, nil
}

// publish 状态已经写入，发布失败只记录日志
func (s *Service) publish(ctx context.Context, before, after updown.Game, a updown.Action) {
	events := gameEvents(before, after, a, s.opts.clock.Now().UnixMilli())
	if err := s.opts.publisher.Publish(ctx, eventbus.TopicGame, events...); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("room_id", after.ID).Int("events", len(events)).Msg("publish game events failed")
	}
}

var actionKinds = map[string]eventbus.Kind{
	updown.StartGame{}.Kind(): eventbus.KindGameStarted,
	updown.PlaceBet{}.Kind():  eventbus.KindBetPlaced,
	updown.PlayCard{}.Kind():  eventbus.KindCardPlayed,
	updown.Continue{}.Kind():  eventbus.KindContinued,
}

// gameEvents 操作本身一个事件，进入 round_complete 和 game_complete 时各追加一个
func gameEvents(before, after updown.Game, a updown.Action, at int64) []eventbus.GameEvent {
	base := eventbus.GameEvent{
		RoomID:     after.ID,
		PlayerID:   a.Actor(),
		Status:     after.Status(),
		RoundIndex: len(after.CompletedRounds),
		At:         at,
	}
	if r, ok := after.Round(); ok {
		base.RoundIndex = r.Index
	}

	ev := base
	ev.Kind = actionKinds[a.Kind()]
	events := []eventbus.GameEvent{ev}

	if after.Status() == updown.StatusRoundComplete && before.Status() != updown.StatusRoundComplete {
		r, _ := after.Round()
		ev := base
		ev.Kind = eventbus.KindRoundCompleted
		ev.PlayerID = ""
		ev.Scores = r.Scores
		events = append(events, ev)
	}
	if after.Status() == updown.StatusGameComplete && before.Status() != updown.StatusGameComplete {
		ev := base
		ev.Kind = eventbus.KindGameCompleted
		ev.PlayerID = ""
		ev.RoundIndex = len(after.CompletedRounds) - 1
		ev.Scores = finalScores(after)
		events = append(events, ev)
	}
	return events
}

// finalScores 每个玩家的总分
func finalScores(g updown.Game) []updown.PlayerScore {
	scores := make([]updown.PlayerScore, 0, len(g.Players))
	for _, p := range g.Players {
		won := 0
		for _, rr := range g.CompletedRounds {
			for _, s := range rr.Scores {
				if s.PlayerID == p.ID {
					won += s.TricksWon
				}
			}
		}
		scores = append(scores, updown.PlayerScore{PlayerID: p.ID, TricksWon: won, Points: p.TotalScore})
	}
	return scores
}

package leaderboard

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/play/updown/pkg/eventbus"
)

// Entry 排行榜中的一名玩家
type Entry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Points   int64  `json:"points"`
	Wins     int64  `json:"wins"`
}

// Board 用两个有序集合分别记录累计得分和获胜次数
type Board struct {
	rdb    redis.Cmdable
	prefix string
}

func New(rdb redis.Cmdable, prefix string) *Board {
	if prefix == "" {
		prefix = "updown"
	}
	return &Board{rdb: rdb, prefix: prefix}
}

func (b *Board) pointsKey() string { return b.prefix + ":leaderboard:points" }
func (b *Board) winsKey() string   { return b.prefix + ":leaderboard:wins" }

// Record 记录一局完整游戏的最终得分，最高分的玩家都算获胜
func (b *Board) Record(ctx context.Context, totals map[string]int) error {
	if len(totals) == 0 {
		return nil
	}
	best := 0
	first := true
	for _, pts := range totals {
		if first || pts > best {
			best, first = pts, false
		}
	}

	_, err := b.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for id, pts := range totals {
			pipe.ZIncrBy(ctx, b.pointsKey(), float64(pts), id)
			// 没赢过的玩家也要出现在 wins 里，Top 才能读到 0
			pipe.ZIncrBy(ctx, b.winsKey(), 0, id)
			if pts == best {
				pipe.ZIncrBy(ctx, b.winsKey(), 1, id)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update leaderboard: %w", err)
	}
	return nil
}

// Top 按累计得分返回前 n 名
func (b *Board) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}
	zs, err := b.rdb.ZRevRangeWithScores(ctx, b.pointsKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis ZRevRange failed: %w", err)
	}

	entries := make([]Entry, 0, len(zs))
	if len(zs) == 0 {
		return entries, nil
	}
	members := make([]string, 0, len(zs))
	for _, z := range zs {
		members = append(members, z.Member.(string))
	}
	wins, err := b.rdb.ZMScore(ctx, b.winsKey(), members...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis ZMScore failed: %w", err)
	}

	for i, z := range zs {
		entries = append(entries, Entry{
			Rank:     i + 1,
			PlayerID: members[i],
			Points:   int64(z.Score),
			Wins:     int64(wins[i]),
		})
	}
	return entries, nil
}

// HandleEvent 消费 game_completed 事件
func (b *Board) HandleEvent(ctx context.Context, ev eventbus.GameEvent) error {
	if ev.Kind != eventbus.KindGameCompleted {
		return nil
	}
	totals := make(map[string]int, len(ev.Scores))
	for _, s := range ev.Scores {
		totals[s.PlayerID] = s.Points
	}
	if err := b.Record(ctx, totals); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("room_id", ev.RoomID).Int("players", len(totals)).Msg("leaderboard updated")
	return nil
}

package updown

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

var testNow = time.UnixMilli(1700000000000)

// newTestEngine 固定种子和时间，方便回放
func newTestEngine(seed uint64) *Engine {
	return NewEngine(
		WithRand(rand.New(rand.NewPCG(seed, seed^0x5eed))),
		WithClock(ClockFunc(func() time.Time { return testNow })),
	)
}

// newTestGame 第一个玩家是管理员
func newTestGame(ids ...string) Game {
	g := NewGame("ROOM01", ids[0], testNow.UnixMilli())
	for _, id := range ids[1:] {
		g = g.AddPlayer(id)
	}
	return g
}

// withHands 设置手牌，返回新的 Game
func withHands(g Game, hands map[string]Cards) Game {
	players := make([]Player, len(g.Players))
	copy(players, g.Players)
	for i := range players {
		if h, ok := hands[players[i].ID]; ok {
			players[i].Hand = h
		}
	}
	g.Players = players
	return g
}

// withBets 设置下注
func withBets(g Game, bets map[string]int) Game {
	players := make([]Player, len(g.Players))
	copy(players, g.Players)
	for i := range players {
		if b, ok := bets[players[i].ID]; ok {
			players[i].Bet = &b
		}
	}
	g.Players = players
	return g
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func intPtr(v int) *int { return &v }

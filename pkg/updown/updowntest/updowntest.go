// Package updowntest drives games through legal moves for tests of packages built on updown.
package updowntest

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/play/updown/pkg/updown"
)

// Now 测试用的固定时间
var Now = time.UnixMilli(1700000000000)

// Engine 固定种子和时间的引擎
func Engine(seed uint64) *updown.Engine {
	return updown.NewEngine(
		updown.WithRand(rand.New(rand.NewPCG(seed, seed^0x5eed))),
		updown.WithClock(updown.ClockFunc(func() time.Time { return Now })),
	)
}

// NextAction 为当前阶段生成一个合法操作，waiting 和 game_complete 返回 nil
func NextAction(g updown.Game) updown.Action {
	switch p := g.Phase.(type) {
	case updown.Betting:
		bet := 0
		if v, ok := g.ForbiddenBet(); ok && v == bet {
			bet = 1
		}
		return updown.PlaceBet{PlayerID: p.Round.CurrentBidder(), Bet: bet}
	case updown.PlayingTrick:
		if p.Trick == nil {
			return nil
		}
		id := p.Trick.NextPlayer()
		return updown.PlayCard{PlayerID: id, Card: LegalCard(g.Hand(id), p.Trick.Pinta)}
	case updown.TrickComplete:
		return updown.Continue{PlayerID: firstNotReady(g.SeatOrder, p.Trick.Ready)}
	case updown.RoundComplete:
		return updown.Continue{PlayerID: firstNotReady(g.SeatOrder, p.Round.Ready)}
	}
	return nil
}

// LegalCard 有 pinta 花色时必须跟
func LegalCard(hand updown.Cards, pinta updown.Suit) updown.Card {
	if pinta != updown.SuitNone {
		for _, c := range hand {
			if c.Suit == pinta {
				return c
			}
		}
	}
	return hand[0]
}

// PlayUntil 一直执行合法操作直到 stop 返回 true 或游戏结束
func PlayUntil(e *updown.Engine, g updown.Game, stop func(updown.Game) bool) (updown.Game, error) {
	for step := 0; ; step++ {
		if stop(g) || g.Status() == updown.StatusGameComplete {
			return g, nil
		}
		if step > 10000 {
			return g, fmt.Errorf("game %s did not finish", g.ID)
		}
		a := NextAction(g)
		if a == nil {
			return g, fmt.Errorf("no legal action in status %s", g.Status())
		}
		next, err := e.Apply(g, a)
		if err != nil {
			return g, fmt.Errorf("step %d %s by %s: %w", step, a.Kind(), a.Actor(), err)
		}
		g = next
	}
}

// Completed 开始并打完一局游戏
func Completed(seed uint64, rounds int, players ...string) (updown.Game, error) {
	e := Engine(seed)
	g := updown.NewGame("ROOM01", players[0], Now.UnixMilli())
	for _, id := range players[1:] {
		g = g.AddPlayer(id)
	}
	g.RoundCount = rounds

	g, err := e.Apply(g, updown.StartGame{PlayerID: players[0]})
	if err != nil {
		return g, err
	}
	return PlayUntil(e, g, func(updown.Game) bool { return false })
}

func firstNotReady(seats, ready []string) string {
	for _, id := range seats {
		if !slices.Contains(ready, id) {
			return id
		}
	}
	return ""
}

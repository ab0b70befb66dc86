package updown

import (
	"fmt"
	"slices"
)

// startTrick 开新的一墩
// 每局第一墩从下注顺序的第二个人开始，之后从上一墩的赢家开始按座位轮转
func (e *Engine) startTrick(g Game, r Round) (Game, error) {
	var order []string
	if last, ok := r.LastTrick(); ok {
		start := slices.Index(g.SeatOrder, last.WinnerID)
		if start < 0 {
			return Game{}, fmt.Errorf("%w: trick winner %s not seated", ErrCorruptState, last.WinnerID)
		}
		order = rotate(g.SeatOrder, start)
	} else {
		order = rotate(r.BiddingOrder, 1)
	}

	g.Phase = PlayingTrick{
		Round: r,
		Trick: &Trick{
			Number:    r.TricksPlayed + 1,
			Plays:     []PlayedCard{},
			PlayOrder: order,
		},
	}
	return g, nil
}

// playCard 出牌
// 有 pinta 花色的牌时必须跟 pinta，没有可以出任意牌
func (e *Engine) playCard(g Game, a PlayCard) (Game, error) {
	phase, ok := g.Phase.(PlayingTrick)
	if !ok || phase.Trick == nil {
		return Game{}, ErrWrongPhase
	}
	t := *phase.Trick

	next := t.NextPlayer()
	if next == "" {
		return Game{}, ErrWrongPhase
	}
	if a.PlayerID != next {
		return Game{}, ErrNotYourTurn
	}

	idx := g.PlayerIndex(a.PlayerID)
	if idx < 0 {
		return Game{}, ErrPlayerNotFound
	}
	hand := g.Players[idx].Hand
	if !hand.Contains(a.Card) {
		return Game{}, ErrCardNotInHand
	}
	if t.Pinta != SuitNone && a.Card.Suit != t.Pinta && hand.HasSuit(t.Pinta) {
		return Game{}, ErrMustFollowTrump
	}

	g.Players = slices.Clone(g.Players)
	g.Players[idx].Hand = hand.Without(a.Card)

	t.Plays = append(slices.Clip(t.Plays), PlayedCard{
		PlayerID: a.PlayerID,
		Card:     a.Card,
		Sequence: len(t.Plays) + 1,
		PlayedAt: e.now(),
	})
	if t.Pinta == SuitNone {
		t.Pinta = a.Card.Suit
	}
	t.TurnIndex++

	if !t.IsFinished() {
		g.Phase = PlayingTrick{Round: phase.Round, Trick: &t}
		return g, nil
	}
	return e.completeTrick(g, phase.Round, t)
}

// completeTrick 计算赢家，记录结果，进入 trick_complete 等待确认
func (e *Engine) completeTrick(g Game, r Round, t Trick) (Game, error) {
	best, ok := TrickWinner(t.Plays, r.Mesa.Suit, t.Pinta)
	if !ok {
		return Game{}, fmt.Errorf("%w: empty trick", ErrCorruptState)
	}
	idx := g.PlayerIndex(best.PlayerID)
	if idx < 0 {
		return Game{}, fmt.Errorf("%w: trick winner %s not found", ErrCorruptState, best.PlayerID)
	}

	g.Players = slices.Clone(g.Players)
	g.Players[idx].TricksWon++

	r.CompletedTricks = append(slices.Clip(r.CompletedTricks), TrickResult{
		Number:      t.Number,
		Plays:       t.Plays,
		Pinta:       t.Pinta,
		WinnerID:    best.PlayerID,
		WinningCard: best.Card,
		At:          e.now(),
	})
	r.TricksPlayed++

	t.Ready = nil
	g.Phase = TrickComplete{Round: r, Trick: t}
	return g, nil
}

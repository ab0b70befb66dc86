package updown

import "slices"

// Points 下注和赢的墩数相同得 10+2*墩数，否则 0 分
func Points(bet, tricksWon int) int {
	if bet != tricksWon {
		return 0
	}
	return exactBetBonus + pointsPerTrick*tricksWon
}

// scoreRound 结算本局并进入 round_complete，只在最后一墩确认后调用一次
func (e *Engine) scoreRound(g Game, r Round) Game {
	g.Players = slices.Clone(g.Players)
	scores := make([]PlayerScore, len(g.Players))
	for i := range g.Players {
		p := &g.Players[i]
		points := 0
		if p.Bet != nil {
			points = Points(*p.Bet, p.TricksWon)
		}
		p.TotalScore += points
		scores[i] = PlayerScore{
			PlayerID:  p.ID,
			TricksWon: p.TricksWon,
			Points:    points,
		}
	}

	r.Scores = scores
	r.Ready = nil
	g.Phase = RoundComplete{Round: r}
	return g
}

// completeRound 记录本局结果，发下一局或结束游戏
// 分数已经在 scoreRound 里加过，这里只使用记录的结果
func (e *Engine) completeRound(g Game, r Round) (Game, error) {
	bets := make([]PlayerBet, 0, len(g.Players))
	for _, p := range g.Players {
		bet := 0
		if p.Bet != nil {
			bet = *p.Bet
		}
		bets = append(bets, PlayerBet{PlayerID: p.ID, Bet: bet})
	}

	now := e.now()
	g.CompletedRounds = append(slices.Clip(g.CompletedRounds), RoundResult{
		Number:           r.Number,
		Index:            r.Index,
		CardsPerPlayer:   r.CardsPerPlayer,
		Mesa:             r.Mesa,
		StartingPlayerID: r.StartingPlayerID,
		Bets:             bets,
		Tricks:           r.CompletedTricks,
		Scores:           r.Scores,
		At:               now,
	})

	next := r.Index + 1
	if next >= len(g.RoundSequence) {
		g.Phase = GameComplete{}
		g.CompletedAt = now
		return g, nil
	}
	return e.deal(g, next, g.SeatOrder[next%len(g.SeatOrder)])
}

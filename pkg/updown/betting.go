package updown

import "slices"

// placeBet 按下注顺序依次下注
// 最后一个人下注后所有人的下注总和不能等于本局发牌数
func (e *Engine) placeBet(g Game, a PlaceBet) (Game, error) {
	phase, ok := g.Phase.(Betting)
	if !ok {
		return Game{}, ErrWrongPhase
	}
	r := phase.Round

	bidder := r.CurrentBidder()
	if bidder == "" {
		return Game{}, ErrWrongPhase
	}
	if a.PlayerID != bidder {
		return Game{}, ErrNotYourTurn
	}
	if a.Bet < 0 || a.Bet > r.CardsPerPlayer {
		return Game{}, ErrInvalidBet
	}
	if r.IsLastBidder() && g.betSum()+a.Bet == r.CardsPerPlayer {
		return Game{}, ErrForbiddenSumBet
	}

	idx := g.PlayerIndex(a.PlayerID)
	if idx < 0 {
		return Game{}, ErrPlayerNotFound
	}

	bet := a.Bet
	g.Players = slices.Clone(g.Players)
	g.Players[idx].Bet = &bet

	r.CurrentBiddingIndex++
	if r.CurrentBiddingIndex >= len(r.BiddingOrder) {
		// 下注结束，等待自动开第一墩
		g.Phase = PlayingTrick{Round: r}
		return g, nil
	}
	g.Phase = Betting{Round: r}
	return g, nil
}

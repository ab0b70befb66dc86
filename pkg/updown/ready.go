package updown

import "slices"

// continueGame 确认当前结果，所有人都确认后才继续
// 重复确认不会改变状态
func (e *Engine) continueGame(g Game, a Continue) (Game, error) {
	switch p := g.Phase.(type) {
	case TrickComplete:
		if !g.HasPlayer(a.PlayerID) {
			return Game{}, ErrPlayerNotFound
		}
		return e.trickReady(g, p, a.PlayerID), nil
	case RoundComplete:
		if !g.HasPlayer(a.PlayerID) {
			return Game{}, ErrPlayerNotFound
		}
		return e.roundReady(g, p, a.PlayerID)
	}
	return Game{}, ErrWrongPhase
}

// trickReady 一墩结束后的确认
// 还有牌就等待开下一墩，没有就结算本局
func (e *Engine) trickReady(g Game, p TrickComplete, playerID string) Game {
	if slices.Contains(p.Trick.Ready, playerID) {
		return g
	}

	t := p.Trick
	t.Ready = appendReady(t.Ready, playerID)
	if len(t.Ready) < len(g.Players) {
		g.Phase = TrickComplete{Round: p.Round, Trick: t}
		return g
	}

	r := p.Round
	if r.TricksPlayed < r.CardsPerPlayer {
		g.Phase = PlayingTrick{Round: r}
		return g
	}
	return e.scoreRound(g, r)
}

// roundReady 一局结束后的确认
func (e *Engine) roundReady(g Game, p RoundComplete, playerID string) (Game, error) {
	if slices.Contains(p.Round.Ready, playerID) {
		return g, nil
	}

	r := p.Round
	r.Ready = appendReady(r.Ready, playerID)
	if len(r.Ready) < len(g.Players) {
		g.Phase = RoundComplete{Round: r}
		return g, nil
	}

	r.Ready = nil
	return e.completeRound(g, r)
}

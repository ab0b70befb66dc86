package updown

// PlayerView 对所有人公开的玩家信息，只有手牌数量
type PlayerView struct {
	ID         string `json:"id"`
	Bet        *int   `json:"bet"`
	TricksWon  int    `json:"tricksWon"`
	TotalScore int    `json:"totalScore"`
	HandSize   int    `json:"handSize"`
}

// TrickView 当前墩的公开信息
type TrickView struct {
	Number     int          `json:"trickNumber"`
	Plays      []PlayedCard `json:"playedCards"`
	Pinta      Suit         `json:"pinta,omitempty"`
	NextPlayer string       `json:"nextPlayerId,omitempty"`
	ReadyCount int          `json:"readyCount"`
}

// RoundView 当前局的公开信息
type RoundView struct {
	Number           int           `json:"roundNumber"`
	Index            int           `json:"roundIndex"`
	CardsPerPlayer   int           `json:"cardsPerPlayer"`
	Mesa             Card          `json:"mesaCard"`
	StartingPlayerID string        `json:"startingPlayerId"`
	BiddingOrder     []string      `json:"biddingOrder"`
	CurrentBidder    string        `json:"currentBidderId,omitempty"`
	ForbiddenBet     *int          `json:"forbiddenBet,omitempty"`
	TricksPlayed     int           `json:"tricksPlayed"`
	CompletedTricks  []TrickResult `json:"completedTricks"`
	CurrentTrick     *TrickView    `json:"currentTrick"`
	Scores           []PlayerScore `json:"scores,omitempty"`
	ReadyCount       int           `json:"readyCount"`
}

// Summary 返回给玩家的游戏概况
type Summary struct {
	ID           string       `json:"id"`
	Status       Status       `json:"status"`
	CurrentRound *RoundView   `json:"currentRound"`
	Players      []PlayerView `json:"players"`
}

// Summarize 生成不含手牌内容的概况
func Summarize(g Game) Summary {
	s := Summary{
		ID:      g.ID,
		Status:  g.Status(),
		Players: make([]PlayerView, 0, len(g.Players)),
	}
	for _, p := range g.Players {
		s.Players = append(s.Players, PlayerView{
			ID:         p.ID,
			Bet:        p.Bet,
			TricksWon:  p.TricksWon,
			TotalScore: p.TotalScore,
			HandSize:   p.HandSize(),
		})
	}

	r, ok := g.Round()
	if !ok {
		return s
	}
	rv := &RoundView{
		Number:           r.Number,
		Index:            r.Index,
		CardsPerPlayer:   r.CardsPerPlayer,
		Mesa:             r.Mesa,
		StartingPlayerID: r.StartingPlayerID,
		BiddingOrder:     r.BiddingOrder,
		TricksPlayed:     r.TricksPlayed,
		CompletedTricks:  r.CompletedTricks,
		Scores:           r.Scores,
		ReadyCount:       len(r.Ready),
	}
	if _, betting := g.Phase.(Betting); betting {
		rv.CurrentBidder = r.CurrentBidder()
	}
	if v, ok := g.ForbiddenBet(); ok {
		rv.ForbiddenBet = &v
	}
	if t, ok := g.Trick(); ok {
		rv.CurrentTrick = &TrickView{
			Number:     t.Number,
			Plays:      t.Plays,
			Pinta:      t.Pinta,
			NextPlayer: t.NextPlayer(),
			ReadyCount: len(t.Ready),
		}
	}
	s.CurrentRound = rv
	return s
}

package updown

// Action 玩家操作
type Action interface {
	Actor() string // 发起操作的玩家
	Kind() string
}

// StartGame 管理员开始游戏
type StartGame struct {
	PlayerID string
}

// PlaceBet 下注
type PlaceBet struct {
	PlayerID string
	Bet      int
}

// PlayCard 出牌
type PlayCard struct {
	PlayerID string
	Card     Card
}

// Continue 确认结果，进入下一墩或下一局
type Continue struct {
	PlayerID string
}

func (a StartGame) Actor() string { return a.PlayerID }
func (a PlaceBet) Actor() string  { return a.PlayerID }
func (a PlayCard) Actor() string  { return a.PlayerID }
func (a Continue) Actor() string  { return a.PlayerID }

func (StartGame) Kind() string { return "start_game" }
func (PlaceBet) Kind() string  { return "place_bet" }
func (PlayCard) Kind() string  { return "play_card" }
func (Continue) Kind() string  { return "continue" }

// Process 根据操作类型分发，不做自动流转
func (e *Engine) Process(g Game, a Action) (Game, error) {
	if g.Status() == StatusGameComplete {
		return Game{}, ErrGameComplete
	}

	switch a := a.(type) {
	case StartGame:
		return e.startGame(g, a)
	case PlaceBet:
		return e.placeBet(g, a)
	case PlayCard:
		return e.playCard(g, a)
	case Continue:
		return e.continueGame(g, a)
	}
	return Game{}, ErrInvalidAction
}

// startGame 生成局数序列，随机选择第一个发牌起始玩家，发第一局的牌
func (e *Engine) startGame(g Game, a StartGame) (Game, error) {
	if a.PlayerID != g.AdminID {
		return Game{}, ErrNotAdmin
	}
	if g.Status() != StatusWaiting {
		return Game{}, ErrGameStarted
	}
	n := len(g.Players)
	if n < MinPlayers {
		return Game{}, ErrTooFewPlayers
	}
	if g.RoundCount < 1 || g.RoundCount > MaxRounds(n) {
		return Game{}, ErrInvalidRoundCount
	}

	players := make([]Player, n)
	seats := make([]string, n)
	for i, p := range g.Players {
		players[i] = NewPlayer(p.ID, i+1)
		seats[i] = p.ID
	}

	g.Players = players
	g.SeatOrder = seats
	g.RoundSequence = RoundSequence(g.RoundCount)
	g.CompletedRounds = nil
	g.StartedAt = e.now()
	g.CompletedAt = 0

	return e.deal(g, 0, seats[e.rand.IntN(n)])
}

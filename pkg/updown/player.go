package updown

// Player 玩家信息
type Player struct {
	ID         string `json:"id"`         // 玩家ID
	Hand       Cards  `json:"hand"`       // 当前手牌
	Bet        *int   `json:"bet"`        // 本局下注，未下注为 nil
	TricksWon  int    `json:"tricksWon"`  // 本局赢的墩数
	TotalScore int    `json:"totalScore"` // 累计积分
	SeatOrder  int    `json:"seatOrder"`  // 座位号，从 1 开始
}

// NewPlayer 创建一个新玩家
func NewPlayer(id string, seat int) Player {
	return Player{
		ID:        id,
		Hand:      Cards{},
		SeatOrder: seat,
	}
}

// HasBet 是否已经下注
func (p Player) HasBet() bool {
	return p.Bet != nil
}

// HandSize 返回手牌数量
func (p Player) HandSize() int {
	return len(p.Hand)
}

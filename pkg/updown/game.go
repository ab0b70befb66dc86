package updown

import (
	"fmt"
	"slices"

	"github.com/goccy/go-json"
)

// Game 一个房间内完整的游戏数据
type Game struct {
	ID              string
	AdminID         string
	MaxPlayers      int
	RoundCount      int           // 配置的最大发牌数 N
	Players         []Player      // 按座位顺序
	SeatOrder       []string      // 玩家ID，按座位顺序
	RoundSequence   []int         // 每局发牌数
	Phase           Phase         // 当前阶段
	CompletedRounds []RoundResult // 历史记录，只追加
	CreatedAt       int64         // Unix 毫秒
	StartedAt       int64
	CompletedAt     int64
}

// NewGame 创建一个等待中的游戏，创建者为管理员并坐 1 号位
func NewGame(id, adminID string, createdAt int64) Game {
	return Game{
		ID:         id,
		AdminID:    adminID,
		MaxPlayers: DefaultMaxPlayers,
		RoundCount: DefaultRounds,
		Players:    []Player{NewPlayer(adminID, 1)},
		SeatOrder:  []string{adminID},
		Phase:      Waiting{},
		CreatedAt:  createdAt,
	}
}

// Status 当前状态
func (g Game) Status() Status {
	if g.Phase == nil {
		return StatusWaiting
	}
	return g.Phase.Status()
}

// Round 当前局，未开始或已结束时返回 false
func (g Game) Round() (Round, bool) {
	return roundOf(g.Phase)
}

// Trick 当前墩
func (g Game) Trick() (Trick, bool) {
	return trickOf(g.Phase)
}

// PlayerIndex 查找玩家下标，找不到返回 -1
func (g Game) PlayerIndex(playerID string) int {
	return slices.IndexFunc(g.Players, func(p Player) bool { return p.ID == playerID })
}

// Player 查找玩家
func (g Game) Player(playerID string) (Player, bool) {
	i := g.PlayerIndex(playerID)
	if i < 0 {
		return Player{}, false
	}
	return g.Players[i], true
}

// Hand 返回玩家手牌的副本
func (g Game) Hand(playerID string) Cards {
	p, ok := g.Player(playerID)
	if !ok {
		return nil
	}
	return slices.Clone(p.Hand)
}

// HasPlayer 玩家是否在座
func (g Game) HasPlayer(playerID string) bool {
	return g.PlayerIndex(playerID) >= 0
}

// AddPlayer 新玩家入座，返回新的 Game
func (g Game) AddPlayer(playerID string) Game {
	g.Players = append(slices.Clip(g.Players), NewPlayer(playerID, len(g.Players)+1))
	g.SeatOrder = append(slices.Clip(g.SeatOrder), playerID)
	return g
}

// RemovePlayer 玩家离座，剩余玩家重新编号
func (g Game) RemovePlayer(playerID string) Game {
	players := make([]Player, 0, len(g.Players))
	seats := make([]string, 0, len(g.SeatOrder))
	for _, p := range g.Players {
		if p.ID == playerID {
			continue
		}
		p.SeatOrder = len(players) + 1
		players = append(players, p)
		seats = append(seats, p.ID)
	}
	g.Players = players
	g.SeatOrder = seats
	return g
}

// betSum 已下注的总数
func (g Game) betSum() int {
	sum := 0
	for _, p := range g.Players {
		if p.Bet != nil {
			sum += *p.Bet
		}
	}
	return sum
}

// ForbiddenBet 最后一个下注的玩家不能下的数，没有限制时返回 false
func (g Game) ForbiddenBet() (int, bool) {
	b, ok := g.Phase.(Betting)
	if !ok || !b.Round.IsLastBidder() {
		return 0, false
	}
	v := b.Round.CardsPerPlayer - g.betSum()
	if v < 0 || v > b.Round.CardsPerPlayer {
		return 0, false
	}
	return v, true
}

// roundDoc 存储时 currentTrick 挂在 currentRound 下
type roundDoc struct {
	Round
	CurrentTrick *Trick `json:"currentTrick"`
}

type gameDoc struct {
	ID              string        `json:"id"`
	AdminID         string        `json:"adminId"`
	Status          Status        `json:"status"`
	MaxPlayers      int           `json:"maxPlayers"`
	RoundCount      int           `json:"numberOfRounds"`
	Players         []Player      `json:"players"`
	SeatOrder       []string      `json:"playerOrder"`
	RoundSequence   []int         `json:"roundSequence"`
	CurrentRound    *roundDoc     `json:"currentRound"`
	CompletedRounds []RoundResult `json:"completedRounds"`
	CreatedAt       int64         `json:"createdAt"`
	StartedAt       int64         `json:"startedAt,omitempty"`
	CompletedAt     int64         `json:"completedAt,omitempty"`
}

func (g Game) MarshalJSON() ([]byte, error) {
	doc := gameDoc{
		ID:              g.ID,
		AdminID:         g.AdminID,
		Status:          g.Status(),
		MaxPlayers:      g.MaxPlayers,
		RoundCount:      g.RoundCount,
		Players:         g.Players,
		SeatOrder:       g.SeatOrder,
		RoundSequence:   g.RoundSequence,
		CompletedRounds: g.CompletedRounds,
		CreatedAt:       g.CreatedAt,
		StartedAt:       g.StartedAt,
		CompletedAt:     g.CompletedAt,
	}
	if r, ok := g.Round(); ok {
		doc.CurrentRound = &roundDoc{Round: r}
		if t, ok := g.Trick(); ok {
			doc.CurrentRound.CurrentTrick = &t
		}
	}
	return json.Marshal(doc)
}

func (g *Game) UnmarshalJSON(data []byte) error {
	var doc gameDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	phase, err := decodePhase(doc.Status, doc.CurrentRound)
	if err != nil {
		return err
	}

	*g = Game{
		ID:              doc.ID,
		AdminID:         doc.AdminID,
		MaxPlayers:      doc.MaxPlayers,
		RoundCount:      doc.RoundCount,
		Players:         doc.Players,
		SeatOrder:       doc.SeatOrder,
		RoundSequence:   doc.RoundSequence,
		Phase:           phase,
		CompletedRounds: doc.CompletedRounds,
		CreatedAt:       doc.CreatedAt,
		StartedAt:       doc.StartedAt,
		CompletedAt:     doc.CompletedAt,
	}
	return nil
}

// decodePhase 根据 status 还原阶段，缺少必要数据时报错
func decodePhase(status Status, rd *roundDoc) (Phase, error) {
	switch status {
	case StatusWaiting, "":
		return Waiting{}, nil
	case StatusGameComplete:
		return GameComplete{}, nil
	}

	if rd == nil {
		return nil, fmt.Errorf("%w: status %s without current round", ErrCorruptState, status)
	}

	switch status {
	case StatusDealing:
		return Dealing{Round: rd.Round}, nil
	case StatusBetting:
		return Betting{Round: rd.Round}, nil
	case StatusPlayingTrick:
		return PlayingTrick{Round: rd.Round, Trick: rd.CurrentTrick}, nil
	case StatusTrickComplete:
		if rd.CurrentTrick == nil {
			return nil, fmt.Errorf("%w: trick_complete without current trick", ErrCorruptState)
		}
		return TrickComplete{Round: rd.Round, Trick: *rd.CurrentTrick}, nil
	case StatusRoundComplete:
		return RoundComplete{Round: rd.Round}, nil
	}
	return nil, fmt.Errorf("%w: unknown status %q", ErrCorruptState, status)
}

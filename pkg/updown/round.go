package updown

import "slices"

// PlayedCard 一墩中打出的一张牌
type PlayedCard struct {
	PlayerID string `json:"playerId"`
	Card     Card   `json:"card"`
	Sequence int    `json:"sequence"`  // 本墩内的出牌顺序，从 1 开始
	PlayedAt int64  `json:"timestamp"` // Unix 毫秒
}

// Trick 当前进行中的一墩
type Trick struct {
	Number    int          `json:"trickNumber"`
	Plays     []PlayedCard `json:"playedCards"`
	Pinta     Suit         `json:"pinta,omitempty"` // 第一张牌的花色，出牌前为空
	TurnIndex int          `json:"turnIndex"`
	PlayOrder []string     `json:"playOrder"`
	Ready     []string     `json:"readySet,omitempty"`
}

// NextPlayer 当前应该出牌的玩家，出完返回空
func (t Trick) NextPlayer() string {
	if t.TurnIndex >= len(t.PlayOrder) {
		return ""
	}
	return t.PlayOrder[t.TurnIndex]
}

// IsFinished 所有人都已出牌
func (t Trick) IsFinished() bool {
	return len(t.PlayOrder) > 0 && t.TurnIndex >= len(t.PlayOrder)
}

// TrickResult 已完成一墩的记录
type TrickResult struct {
	Number      int          `json:"trickNumber"`
	Plays       []PlayedCard `json:"playedCards"`
	Pinta       Suit         `json:"pinta"`
	WinnerID    string       `json:"winnerId"`
	WinningCard Card         `json:"winningCard"`
	At          int64        `json:"timestamp"`
}

// PlayerBet 结算记录中的下注
type PlayerBet struct {
	PlayerID string `json:"playerId"`
	Bet      int    `json:"bet"`
}

// PlayerScore 结算记录中的得分
type PlayerScore struct {
	PlayerID  string `json:"playerId"`
	TricksWon int    `json:"tricksWon"`
	Points    int    `json:"points"`
}

// Round 当前一局
type Round struct {
	Number              int           `json:"roundNumber"`
	Index               int           `json:"roundIndex"`
	CardsPerPlayer      int           `json:"cardsPerPlayer"`
	Mesa                Card          `json:"mesaCard"`
	StartingPlayerID    string        `json:"startingPlayerId"`
	BiddingOrder        []string      `json:"biddingOrder"`
	CurrentBiddingIndex int           `json:"currentBiddingIndex"`
	TricksPlayed        int           `json:"tricksPlayed"`
	CompletedTricks     []TrickResult `json:"completedTricks"`
	Scores              []PlayerScore `json:"scores,omitempty"` // 结算后才有值
	Ready               []string      `json:"readySet,omitempty"`
}

// CurrentBidder 当前应该下注的玩家，下注结束返回空
func (r Round) CurrentBidder() string {
	if r.CurrentBiddingIndex >= len(r.BiddingOrder) {
		return ""
	}
	return r.BiddingOrder[r.CurrentBiddingIndex]
}

// IsLastBidder 当前下注的是否为最后一个人
func (r Round) IsLastBidder() bool {
	return len(r.BiddingOrder) > 0 && r.CurrentBiddingIndex == len(r.BiddingOrder)-1
}

// LastTrick 最近完成的一墩
func (r Round) LastTrick() (TrickResult, bool) {
	if len(r.CompletedTricks) == 0 {
		return TrickResult{}, false
	}
	return r.CompletedTricks[len(r.CompletedTricks)-1], true
}

// RoundResult 已完成一局的记录，只追加不修改
type RoundResult struct {
	Number           int           `json:"roundNumber"`
	Index            int           `json:"roundIndex"`
	CardsPerPlayer   int           `json:"cardsPerPlayer"`
	Mesa             Card          `json:"mesaCard"`
	StartingPlayerID string        `json:"startingPlayerId"`
	Bets             []PlayerBet   `json:"bets"`
	Tricks           []TrickResult `json:"tricks"`
	Scores           []PlayerScore `json:"scores"`
	At               int64         `json:"timestamp"`
}

// rotate 返回从 start 开始的轮转顺序
func rotate(ids []string, start int) []string {
	n := len(ids)
	out := make([]string, 0, n)
	if n == 0 {
		return out
	}
	start = ((start % n) + n) % n
	out = append(out, ids[start:]...)
	return append(out, ids[:start]...)
}

// appendReady 追加一个已确认的玩家，返回新切片
func appendReady(ready []string, playerID string) []string {
	return append(slices.Clip(ready), playerID)
}

package updown

import (
	"errors"
	"fmt"
)

// Status 游戏状态
type Status string

const (
	StatusWaiting       Status = "waiting"        // 等待开始
	StatusDealing       Status = "dealing"        // 发牌中
	StatusBetting       Status = "betting"        // 下注中
	StatusPlayingTrick  Status = "playing_trick"  // 出牌中
	StatusTrickComplete Status = "trick_complete" // 一墩结束，等待确认
	StatusRoundComplete Status = "round_complete" // 一局结束，等待确认
	StatusGameComplete  Status = "game_complete"  // 游戏结束
)

const (
	DeckSize          = 52 // 一副牌，不含大小王
	MinPlayers        = 2
	DefaultMaxPlayers = 6
	DefaultRounds     = 5
	MaxTransitions    = 10 // 自动流转的保护上限

	exactBetBonus  = 10
	pointsPerTrick = 2
)

// ErrRule 玩家操作违反规则，ErrInternal 表示状态机自身出错
var (
	ErrRule     = errors.New("rule violation")
	ErrInternal = errors.New("internal error")
)

// 规则错误，可以直接返回给玩家
var (
	ErrNotYourTurn       = fmt.Errorf("%w: not your turn", ErrRule)
	ErrInvalidBet        = fmt.Errorf("%w: invalid bet", ErrRule)
	ErrForbiddenSumBet   = fmt.Errorf("%w: last bidder cannot make bets sum to round size", ErrRule)
	ErrCardNotInHand     = fmt.Errorf("%w: card not in hand", ErrRule)
	ErrMustFollowTrump   = fmt.Errorf("%w: must follow pinta suit", ErrRule)
	ErrWrongPhase        = fmt.Errorf("%w: action not allowed in current phase", ErrRule)
	ErrInvalidAction     = fmt.Errorf("%w: invalid action", ErrRule)
	ErrNotAdmin          = fmt.Errorf("%w: only admin can do this", ErrRule)
	ErrGameStarted       = fmt.Errorf("%w: game already started", ErrRule)
	ErrGameComplete      = fmt.Errorf("%w: game already complete", ErrRule)
	ErrTooFewPlayers     = fmt.Errorf("%w: need at least 2 players", ErrRule)
	ErrInvalidRoundCount = fmt.Errorf("%w: number of rounds out of range", ErrRule)
	ErrPlayerNotFound    = fmt.Errorf("%w: player not found", ErrRule)
)

// 内部错误
var (
	ErrTransitionLoop = fmt.Errorf("%w: auto transition did not settle", ErrInternal)
	ErrDeckExhausted  = fmt.Errorf("%w: not enough cards to deal", ErrInternal)
	ErrCorruptState   = fmt.Errorf("%w: inconsistent game state", ErrInternal)
)

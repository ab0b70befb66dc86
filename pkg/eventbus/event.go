package eventbus

import "github.com/play/updown/pkg/updown"

// TopicGame 所有游戏事件都发到这个 topic
const TopicGame = "game"

// Kind 事件类型
type Kind string

const (
	KindGameStarted    Kind = "game_started"
	KindBetPlaced      Kind = "bet_placed"
	KindCardPlayed     Kind = "card_played"
	KindContinued      Kind = "continued"
	KindRoundCompleted Kind = "round_completed"
	KindGameCompleted  Kind = "game_completed"
)

// GameEvent 一次成功操作之后发布的事件
type GameEvent struct {
	ID         string               `json:"id"`
	RoomID     string               `json:"roomId"`
	Kind       Kind                 `json:"kind"`
	PlayerID   string               `json:"playerId,omitempty"`
	Status     updown.Status        `json:"status"`
	RoundIndex int                  `json:"roundIndex"`
	Scores     []updown.PlayerScore `json:"scores,omitempty"` // game_completed 时 Points 为总分
	At         int64                `json:"at"` // Unix 毫秒
}

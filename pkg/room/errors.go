package room

import (
	"errors"
	"fmt"

	"github.com/play/updown/pkg/updown"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrPlayerNotInRoom = errors.New("player is not in this room")
	ErrRoomIDExhausted = errors.New("could not allocate a free room id")
)

// 房间规则错误，和游戏规则错误一样返回 400
var (
	ErrRoomFull          = fmt.Errorf("%w: room is full", updown.ErrRule)
	ErrRoomNotAccepting  = fmt.Errorf("%w: room is not accepting new players", updown.ErrRule)
	ErrTooManyRounds     = fmt.Errorf("%w: number of rounds exceeds what the deck allows", updown.ErrRule)
	ErrInvalidMaxPlayers = fmt.Errorf("%w: invalid max players", updown.ErrRule)
)

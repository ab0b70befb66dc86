package api

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/spf13/cast"
	"github.com/tidwall/sjson"

	"github.com/play/updown/pkg/room"
)

var errNotWholeNumber = errors.New("not a whole number")

// wholeInt 接受整数或整数字符串，小数和布尔值返回错误
func wholeInt(v any) (int, error) {
	switch n := v.(type) {
	case bool:
		return 0, errNotWholeNumber
	case float64:
		if n != math.Trunc(n) {
			return 0, errNotWholeNumber
		}
	case float32:
		if float64(n) != math.Trunc(float64(n)) {
			return 0, errNotWholeNumber
		}
	case string:
		f, err := cast.ToFloat64E(n)
		if err != nil {
			return 0, err
		}
		if f != math.Trunc(f) {
			return 0, errNotWholeNumber
		}
	}
	return cast.ToIntE(v)
}

// optionalInt 客户端可能传数字或数字字符串，nil 表示没有传
func optionalInt(v any) (*int, error) {
	if v == nil {
		return nil, nil
	}
	n, err := wholeInt(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func CreateRoomHandler(rooms RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PlayerID       string `json:"playerId"`
			NumberOfRounds any    `json:"numberOfRounds"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.PlayerID == "" {
			badRequest(c, "playerId required")
			return
		}
		rounds, err := optionalInt(req.NumberOfRounds)
		if err != nil {
			badRequest(c, "numberOfRounds must be a number")
			return
		}
		n := 0
		if rounds != nil {
			n = *rounds
		}

		g, err := rooms.Create(c.Request.Context(), req.PlayerID, n)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "roomId": g.ID, "numberOfRounds": g.RoundCount})
	}
}

func JoinRoomHandler(rooms RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req roomRequest
		if !req.bind(c) {
			return
		}
		g, err := rooms.Join(c.Request.Context(), req.RoomID, req.PlayerID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "roomId": g.ID, "playerOrder": g.SeatOrder})
	}
}

func UpdateSettingsHandler(rooms RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RoomID         string `json:"roomId"`
			PlayerID       string `json:"playerId"`
			NumberOfRounds any    `json:"numberOfRounds"`
			MaxPlayers     any    `json:"maxPlayers"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.RoomID == "" || req.PlayerID == "" {
			badRequest(c, "roomId and playerId required")
			return
		}
		var (
			set room.Settings
			err error
		)
		if set.Rounds, err = optionalInt(req.NumberOfRounds); err != nil {
			badRequest(c, "numberOfRounds must be a number")
			return
		}
		if set.MaxPlayers, err = optionalInt(req.MaxPlayers); err != nil {
			badRequest(c, "maxPlayers must be a number")
			return
		}

		g, err := rooms.UpdateSettings(c.Request.Context(), req.RoomID, req.PlayerID, set)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "numberOfRounds": g.RoundCount, "maxPlayers": g.MaxPlayers})
	}
}

func LeaveRoomHandler(rooms RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req roomRequest
		if !req.bind(c) {
			return
		}
		deleted, err := rooms.Leave(c.Request.Context(), req.RoomID, req.PlayerID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "roomDeleted": deleted})
	}
}

func CloseRoomHandler(rooms RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req roomRequest
		if !req.bind(c) {
			return
		}
		if err := rooms.Close(c.Request.Context(), req.RoomID, req.PlayerID); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// RoomViewHandler 房间概况，playerId 在房间内时带上自己的手牌
func RoomViewHandler(rooms RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := rooms.View(c.Request.Context(), c.Param("id"), c.Query("playerId"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		data, err := renderView(v)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
	}
}

// renderView 在概况上补充房间设置和手牌
func renderView(v room.View) ([]byte, error) {
	data, err := json.Marshal(v.Summary)
	if err != nil {
		return nil, err
	}
	fields := []struct {
		path  string
		value any
	}{
		{"adminId", v.AdminID},
		{"maxPlayers", v.MaxPlayers},
		{"numberOfRounds", v.RoundCount},
		{"playerOrder", v.SeatOrder},
		{"hand", v.Hand},
	}
	for _, f := range fields {
		if data, err = sjson.SetBytes(data, f.path, f.value); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// roomRequest 只需要 roomId 和 playerId 的请求
type roomRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

func (r *roomRequest) bind(c *gin.Context) bool {
	if err := c.ShouldBindJSON(r); err != nil || r.RoomID == "" || r.PlayerID == "" {
		badRequest(c, "roomId and playerId required")
		return false
	}
	return true
}

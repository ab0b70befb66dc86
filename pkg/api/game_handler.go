package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/play/updown/pkg/updown"
)

func StartGameHandler(rooms RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req roomRequest
		if !req.bind(c) {
			return
		}
		sum, err := rooms.StartGame(c.Request.Context(), req.RoomID, req.PlayerID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": sum.Status, "state": sum})
	}
}

func PlaceBetHandler(rooms RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PlayerID string `json:"playerId"`
			Bet      any    `json:"bet"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.PlayerID == "" || req.Bet == nil {
			badRequest(c, "playerId and bet required")
			return
		}
		bet, err := wholeInt(req.Bet)
		if err != nil {
			badRequest(c, "bet must be a number")
			return
		}
		act(c, rooms, updown.PlaceBet{PlayerID: req.PlayerID, Bet: bet})
	}
}

func PlayCardHandler(rooms RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PlayerID string       `json:"playerId"`
			Card     *updown.Card `json:"card"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.PlayerID == "" || req.Card == nil || !req.Card.Valid() {
			badRequest(c, "playerId and a valid card required")
			return
		}
		act(c, rooms, updown.PlayCard{PlayerID: req.PlayerID, Card: *req.Card})
	}
}

func ContinueHandler(rooms RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PlayerID string `json:"playerId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.PlayerID == "" {
			badRequest(c, "playerId required")
			return
		}
		act(c, rooms, updown.Continue{PlayerID: req.PlayerID})
	}
}

// act 执行玩家操作并返回最新概况
func act(c *gin.Context, rooms RoomService, a updown.Action) {
	sum, err := rooms.Act(c.Request.Context(), a)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "state": sum})
}

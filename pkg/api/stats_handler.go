package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/play/updown/pkg/compile"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// queryLimit 解析 ?limit=，非法或越界时取默认值或上限
func queryLimit(c *gin.Context) int {
	n := cast.ToInt(c.Query("limit"))
	switch {
	case n <= 0:
		return defaultLimit
	case n > maxLimit:
		return maxLimit
	}
	return n
}

func LeaderboardHandler(board Leaderboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := board.Top(c.Request.Context(), queryLimit(c))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries})
	}
}

func ArchiveHandler(arch Archive) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := arch.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func HistoryHandler(arch Archive) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := c.Param("id")
		scores, err := arch.PlayerHistory(c.Request.Context(), playerID, queryLimit(c))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"playerId": playerID, "games": scores})
	}
}

func HealthHandler(addr string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "build": compile.Current(addr)})
	}
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/play/updown/pkg/archive"
	"github.com/play/updown/pkg/redlock"
	"github.com/play/updown/pkg/room"
	"github.com/play/updown/pkg/store"
	"github.com/play/updown/pkg/updown"
)

// statusOf 错误对应的 HTTP 状态码，按从具体到一般的顺序判断
func statusOf(err error) int {
	switch {
	case errors.Is(err, updown.ErrNotAdmin):
		return http.StatusForbidden
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrPlayerNotInRoom),
		errors.Is(err, updown.ErrPlayerNotFound),
		errors.Is(err, archive.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, redlock.ErrNotAcquired):
		return http.StatusConflict
	case errors.Is(err, updown.ErrRule):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// abortWithError 写错误响应，内部错误不把细节返回给客户端
func abortWithError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	log.Ctx(c.Request.Context()).Debug().Err(err).Int("status", status).Msg("request rejected")
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

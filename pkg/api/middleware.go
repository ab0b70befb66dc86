package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const HeaderRequestID = "X-Request-Id"

// RequestLogger 给每个请求带上 request_id 的 logger，结束时打印访问日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)

		logger := log.Logger.With().Str("request_id", id).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		start := time.Now()
		c.Next()

		lvl := zerolog.DebugLevel
		if c.Writer.Status() >= http.StatusInternalServerError {
			lvl = zerolog.WarnLevel
		}
		logger.WithLevel(lvl).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// RateLimit 按请求体里的 playerId 限流，没有时用客户端 IP
func RateLimit(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if c.Request.Body != nil {
			data, err := io.ReadAll(c.Request.Body)
			if err != nil {
				badRequest(c, "unreadable body")
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(data))
			if id := gjson.GetBytes(data, "playerId").String(); id != "" {
				key = "player:" + id
			}
		}

		if l.Limit(c.Request.Context(), key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

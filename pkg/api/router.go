package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/play/updown/pkg/archive"
	"github.com/play/updown/pkg/leaderboard"
	"github.com/play/updown/pkg/room"
	"github.com/play/updown/pkg/updown"
)

// RoomService 房间和游戏操作
type RoomService interface {
	Create(ctx context.Context, adminID string, rounds int) (updown.Game, error)
	Join(ctx context.Context, roomID, playerID string) (updown.Game, error)
	UpdateSettings(ctx context.Context, roomID, playerID string, set room.Settings) (updown.Game, error)
	Leave(ctx context.Context, roomID, playerID string) (bool, error)
	Close(ctx context.Context, roomID, playerID string) error
	View(ctx context.Context, roomID, playerID string) (room.View, error)
	StartGame(ctx context.Context, roomID, playerID string) (updown.Summary, error)
	Act(ctx context.Context, a updown.Action) (updown.Summary, error)
}

type Leaderboard interface {
	Top(ctx context.Context, n int) ([]leaderboard.Entry, error)
}

type Archive interface {
	Get(ctx context.Context, id string) (*archive.GameRecord, error)
	PlayerHistory(ctx context.Context, playerID string, limit int) ([]archive.ScoreRecord, error)
}

// Limiter 按 key 限流，超限返回 true
type Limiter interface {
	Limit(ctx context.Context, key string) bool
}

// Deps 路由依赖，Limiter 为 nil 时不限流
type Deps struct {
	Rooms   RoomService
	Board   Leaderboard
	Archive Archive
	Limiter Limiter
	Addr    string // 监听地址，用于 /health
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	limited := r.Group("/", RateLimit(d.Limiter))

	// --- ROOM ENDPOINTS ---
	limited.POST("/createRoom", CreateRoomHandler(d.Rooms))
	limited.POST("/joinRoom", JoinRoomHandler(d.Rooms))
	limited.POST("/updateRoomSettings", UpdateSettingsHandler(d.Rooms))
	limited.POST("/leaveRoom", LeaveRoomHandler(d.Rooms))
	limited.POST("/closeRoom", CloseRoomHandler(d.Rooms))
	r.GET("/rooms/:id", RoomViewHandler(d.Rooms))

	// --- GAME ENDPOINTS ---
	limited.POST("/startGame", StartGameHandler(d.Rooms))
	limited.POST("/placeBet", PlaceBetHandler(d.Rooms))
	limited.POST("/playCard", PlayCardHandler(d.Rooms))
	limited.POST("/continueGame", ContinueHandler(d.Rooms))

	// --- STATS ENDPOINTS ---
	r.GET("/leaderboard", LeaderboardHandler(d.Board))
	r.GET("/archive/:id", ArchiveHandler(d.Archive))
	r.GET("/players/:id/history", HistoryHandler(d.Archive))

	r.GET("/health", HealthHandler(d.Addr))
	return r
}

package archive

import "github.com/uptrace/bun"

// GameRecord 一局已完成的游戏
type GameRecord struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID          string         `bun:"id,pk" json:"id"`
	AdminID     string         `bun:"admin_id,notnull" json:"adminId"`
	PlayerCount int            `bun:"player_count,notnull" json:"playerCount"`
	RoundCount  int            `bun:"round_count,notnull" json:"numberOfRounds"`
	Sequence    []int          `bun:"sequence,type:json" json:"roundSequence"`
	WinnerIDs   []string       `bun:"winner_ids,type:json" json:"winnerIds"`
	CreatedAt   int64          `bun:"created_at" json:"createdAt"`
	StartedAt   int64          `bun:"started_at" json:"startedAt"`
	CompletedAt int64          `bun:"completed_at" json:"completedAt"`
	Document    string         `bun:"document" json:"-"` // 完整的游戏 JSON
	Scores      []*ScoreRecord `bun:"rel:has-many,join:id=game_id" json:"scores"`
}

// ScoreRecord 玩家在一局游戏中的最终成绩
type ScoreRecord struct {
	bun.BaseModel `bun:"table:game_scores,alias:s"`

	ID         int64  `bun:"id,pk,autoincrement" json:"-"`
	GameID     string `bun:"game_id,notnull" json:"gameId"`
	PlayerID   string `bun:"player_id,notnull" json:"playerId"`
	Seat       int    `bun:"seat" json:"seatOrder"`
	TotalScore int    `bun:"total_score" json:"totalScore"`
	ExactBets  int    `bun:"exact_bets" json:"exactBets"` // 下注命中的局数
	TricksWon  int    `bun:"tricks_won" json:"tricksWon"` // 所有局赢的墩数
	Winner     bool   `bun:"winner" json:"winner"`
}

package archive

import (
	"github.com/goccy/go-json"

	"github.com/play/updown/pkg/updown"
)

// newRecord 从最终状态生成归档记录，最高分的玩家都算赢家
func newRecord(g updown.Game) (*GameRecord, error) {
	doc, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}

	exact := make(map[string]int)
	won := make(map[string]int)
	for _, rr := range g.CompletedRounds {
		for i, s := range rr.Scores {
			won[s.PlayerID] += s.TricksWon
			if i < len(rr.Bets) && rr.Bets[i].Bet == s.TricksWon {
				exact[s.PlayerID]++
			}
		}
	}

	best := 0
	for i, p := range g.Players {
		if i == 0 || p.TotalScore > best {
			best = p.TotalScore
		}
	}

	rec := &GameRecord{
		ID:          g.ID,
		AdminID:     g.AdminID,
		PlayerCount: len(g.Players),
		RoundCount:  g.RoundCount,
		Sequence:    g.RoundSequence,
		WinnerIDs:   []string{},
		CreatedAt:   g.CreatedAt,
		StartedAt:   g.StartedAt,
		CompletedAt: g.CompletedAt,
		Document:    string(doc),
		Scores:      make([]*ScoreRecord, 0, len(g.Players)),
	}
	for _, p := range g.Players {
		winner := p.TotalScore == best
		if winner {
			rec.WinnerIDs = append(rec.WinnerIDs, p.ID)
		}
		rec.Scores = append(rec.Scores, &ScoreRecord{
			GameID:     g.ID,
			PlayerID:   p.ID,
			Seat:       p.SeatOrder,
			TotalScore: p.TotalScore,
			ExactBets:  exact[p.ID],
			TricksWon:  won[p.ID],
			Winner:     winner,
		})
	}
	return rec, nil
}

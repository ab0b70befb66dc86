package updown

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_StartGame(t *testing.T) {
	e := newTestEngine(7)
	g := newTestGame("a", "b", "c")
	g.RoundCount = 3

	tests := []struct {
		name string
		game Game
		act  Action
		err  error
	}{
		{"not admin", g, StartGame{PlayerID: "b"}, ErrNotAdmin},
		{"too few players", newTestGame("a"), StartGame{PlayerID: "a"}, ErrTooFewPlayers},
		{"already started", func() Game { x := g; x.Phase = Betting{}; return x }(), StartGame{PlayerID: "a"}, ErrGameStarted},
		{"too many rounds", func() Game { x := g; x.RoundCount = 18; return x }(), StartGame{PlayerID: "a"}, ErrInvalidRoundCount},
		{"zero rounds", func() Game { x := g; x.RoundCount = 0; return x }(), StartGame{PlayerID: "a"}, ErrInvalidRoundCount},
		{"unknown action", g, nil, ErrInvalidAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Apply(tt.game, tt.act)
			assert.ErrorIs(t, err, tt.err)
			assert.ErrorIs(t, err, ErrRule)
		})
	}

	next, err := e.Apply(g, StartGame{PlayerID: "a"})
	require.NoError(t, err)

	// dealing 自动进入 betting
	require.Equal(t, StatusBetting, next.Status())
	assert.Equal(t, []int{1, 2, 3, 2, 1}, next.RoundSequence)
	assert.Equal(t, testNow.UnixMilli(), next.StartedAt)

	r, ok := next.Round()
	require.True(t, ok)
	assert.Equal(t, 0, r.Index)
	assert.Equal(t, 1, r.CardsPerPlayer)
	assert.Contains(t, next.SeatOrder, r.StartingPlayerID)
	start := slices.Index(next.SeatOrder, r.StartingPlayerID)
	assert.Equal(t, rotate(next.SeatOrder, start), r.BiddingOrder)
	assert.Equal(t, r.StartingPlayerID, r.CurrentBidder())

	for _, p := range next.Players {
		assert.Len(t, p.Hand, 1)
		assert.False(t, p.Hand.Contains(r.Mesa), "mesa dealt to %s", p.ID)
		assert.Nil(t, p.Bet)
	}
	assertCardsConserved(t, next)

	// 原始状态保持 waiting
	assert.Equal(t, StatusWaiting, g.Status())
	assert.Nil(t, g.RoundSequence)
}

func TestEngine_Deterministic(t *testing.T) {
	g := newTestGame("a", "b", "c", "d")
	g.RoundCount = 4

	run := func() Game {
		e := newTestEngine(42)
		next, err := e.Apply(g, StartGame{PlayerID: "a"})
		require.NoError(t, err)
		return playToEnd(t, e, next)
	}
	assert.Equal(t, mustJSON(t, run()), mustJSON(t, run()))
}

func TestEngine_Advance_Stable(t *testing.T) {
	e := newTestEngine(1)
	g := bettingGame(nil, 0)
	next, err := e.Advance(g)
	require.NoError(t, err)
	assert.Equal(t, mustJSON(t, g), mustJSON(t, next))

	waiting := newTestGame("a", "b")
	next, err = e.Advance(waiting)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, next.Status())
}

func TestEngine_InternalErrors(t *testing.T) {
	e := newTestEngine(1)
	g := newTestGame("a", "b")
	g.RoundSequence = []int{30}

	_, err := e.deal(g, 0, "a")
	assert.ErrorIs(t, err, ErrDeckExhausted)
	assert.ErrorIs(t, err, ErrInternal)
	assert.NotErrorIs(t, err, ErrRule)

	_, err = e.deal(g, 1, "a")
	assert.ErrorIs(t, err, ErrCorruptState)

	assert.ErrorIs(t, ErrTransitionLoop, ErrInternal)
	assert.NotErrorIs(t, ErrTransitionLoop, ErrRule)
}

// Scenario: 三人 3 局，共 5 局，最后一局确认后游戏结束
func TestEngine_FullGame(t *testing.T) {
	tests := []struct {
		name    string
		players []string
		rounds  int
		seed    uint64
	}{
		{"3 players 3 rounds", []string{"a", "b", "c"}, 3, 1},
		{"2 players 5 rounds", []string{"a", "b"}, 5, 2},
		{"6 players 8 rounds", []string{"a", "b", "c", "d", "e", "f"}, 8, 3},
		{"4 players 1 round", []string{"a", "b", "c", "d"}, 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(tt.seed)
			g := newTestGame(tt.players...)
			g.RoundCount = tt.rounds

			g, err := e.Apply(g, StartGame{PlayerID: tt.players[0]})
			require.NoError(t, err)
			g = playToEnd(t, e, g)

			require.Equal(t, StatusGameComplete, g.Status())
			assert.Equal(t, testNow.UnixMilli(), g.CompletedAt)
			require.Len(t, g.CompletedRounds, 2*tt.rounds-1)
			_, hasRound := g.Round()
			assert.False(t, hasRound)

			totals := make(map[string]int)
			for i, rr := range g.CompletedRounds {
				assert.Equal(t, i, rr.Index)
				assert.Equal(t, g.RoundSequence[i], rr.CardsPerPlayer)
				assert.Len(t, rr.Tricks, rr.CardsPerPlayer)
				if i > 0 {
					assert.Equal(t, g.SeatOrder[i%len(g.SeatOrder)], rr.StartingPlayerID)
				}

				betSum, wonSum := 0, 0
				for j, s := range rr.Scores {
					bet := rr.Bets[j]
					require.Equal(t, bet.PlayerID, s.PlayerID)
					assert.Equal(t, Points(bet.Bet, s.TricksWon), s.Points)
					betSum += bet.Bet
					wonSum += s.TricksWon
					totals[s.PlayerID] += s.Points
				}
				assert.NotEqual(t, rr.CardsPerPlayer, betSum, "round %d bets sum to round size", i)
				assert.Equal(t, rr.CardsPerPlayer, wonSum)
			}
			for _, p := range g.Players {
				assert.Equal(t, totals[p.ID], p.TotalScore, "player %s", p.ID)
			}

			// 结束后不再接受任何操作
			_, err = e.Apply(g, Continue{PlayerID: tt.players[0]})
			assert.ErrorIs(t, err, ErrGameComplete)
			_, err = e.Apply(g, StartGame{PlayerID: tt.players[0]})
			assert.ErrorIs(t, err, ErrGameComplete)
		})
	}
}

// playToEnd 每一步都用合法操作推进，并检查输入没有被修改、牌没有丢失
func playToEnd(t *testing.T, e *Engine, g Game) Game {
	t.Helper()
	for step := 0; g.Status() != StatusGameComplete; step++ {
		require.Less(t, step, 100000, "game did not finish")
		g = playStep(t, e, g, step)
	}
	return g
}

// playStep 执行一个合法操作
func playStep(t *testing.T, e *Engine, g Game, step int) Game {
	t.Helper()
	a := nextAction(t, g, step)

	before := mustJSON(t, g)
	next, err := e.Apply(g, a)
	require.NoError(t, err, "step %d action %#v", step, a)
	require.Equal(t, string(before), string(mustJSON(t, g)), "input state was modified")

	assertCardsConserved(t, next)
	return next
}

// nextAction 根据当前阶段生成一个合法操作
func nextAction(t *testing.T, g Game, step int) Action {
	t.Helper()
	switch p := g.Phase.(type) {
	case Betting:
		cards := p.Round.CardsPerPlayer
		bet := (step + p.Round.CurrentBiddingIndex) % (cards + 1)
		if v, ok := g.ForbiddenBet(); ok && v == bet {
			bet = (bet + 1) % (cards + 1)
		}
		return PlaceBet{PlayerID: p.Round.CurrentBidder(), Bet: bet}
	case PlayingTrick:
		require.NotNil(t, p.Trick, "trick should be started automatically")
		id := p.Trick.NextPlayer()
		return PlayCard{PlayerID: id, Card: legalCard(g.Hand(id), p.Trick.Pinta)}
	case TrickComplete:
		return Continue{PlayerID: firstNotReady(g.SeatOrder, p.Trick.Ready)}
	case RoundComplete:
		return Continue{PlayerID: firstNotReady(g.SeatOrder, p.Round.Ready)}
	}
	t.Fatalf("unexpected stable status %s", g.Status())
	return nil
}

func legalCard(hand Cards, pinta Suit) Card {
	if pinta != SuitNone {
		for _, c := range hand {
			if c.Suit == pinta {
				return c
			}
		}
	}
	return hand[0]
}

func firstNotReady(seats, ready []string) string {
	for _, id := range seats {
		if !slices.Contains(ready, id) {
			return id
		}
	}
	return ""
}

// assertCardsConserved 每张牌只在手牌、mesa 或出过的牌中出现一次
func assertCardsConserved(t *testing.T, g Game) {
	t.Helper()
	r, ok := g.Round()
	if !ok {
		return
	}

	seen := make(map[Card]int)
	for _, p := range g.Players {
		for _, c := range p.Hand {
			seen[c]++
		}
	}
	seen[r.Mesa]++
	for _, tr := range r.CompletedTricks {
		for _, pc := range tr.Plays {
			seen[pc.Card]++
		}
	}
	// trick_complete 时当前墩的牌已经记在 CompletedTricks 里
	if p, ok := g.Phase.(PlayingTrick); ok && p.Trick != nil {
		for _, pc := range p.Trick.Plays {
			seen[pc.Card]++
		}
	}

	total := 0
	for c, n := range seen {
		require.Equal(t, 1, n, "card %v appears %d times", c, n)
		total += n
	}
	require.Equal(t, len(g.Players)*r.CardsPerPlayer+1, total)
}

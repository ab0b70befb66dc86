package updown

import (
	"fmt"
	"slices"
)

// deal 发第 roundIndex 局的牌
// 洗一副新牌，最后一张作为 mesa，剩下的按座位顺序每人发 cardsPerPlayer 张
// 下注顺序从 startingPlayerID 开始按座位轮转
func (e *Engine) deal(g Game, roundIndex int, startingPlayerID string) (Game, error) {
	if roundIndex < 0 || roundIndex >= len(g.RoundSequence) {
		return Game{}, fmt.Errorf("%w: round index %d out of sequence", ErrCorruptState, roundIndex)
	}
	start := slices.Index(g.SeatOrder, startingPlayerID)
	if start < 0 {
		return Game{}, fmt.Errorf("%w: starting player %s not seated", ErrCorruptState, startingPlayerID)
	}

	cards := g.RoundSequence[roundIndex]
	if len(g.Players)*cards+1 > DeckSize {
		return Game{}, ErrDeckExhausted
	}

	deck := NewDeck()
	deck.Shuffle(e.rand)
	mesa := deck[len(deck)-1]
	deck = deck[:len(deck)-1]

	players := make([]Player, len(g.Players))
	for i, p := range g.Players {
		hand := make(Cards, cards)
		copy(hand, deck[i*cards:(i+1)*cards])
		p.Hand = hand
		p.Bet = nil
		p.TricksWon = 0
		players[i] = p
	}

	g.Players = players
	g.Phase = Dealing{Round: Round{
		Number:           cards,
		Index:            roundIndex,
		CardsPerPlayer:   cards,
		Mesa:             mesa,
		StartingPlayerID: startingPlayerID,
		BiddingOrder:     rotate(g.SeatOrder, start),
	}}
	return g, nil
}

package updown

import (
	"fmt"
	"slices"
)

// Suit 牌的花色
type Suit uint8

const (
	SuitNone     Suit = iota
	SuitSpades        // 黑桃
	SuitHearts        // 红桃
	SuitDiamonds      // 方块
	SuitClubs         // 梅花
)

var suitNames = [...]string{"", "spades", "hearts", "diamonds", "clubs"}

// Suits 四种花色
var Suits = []Suit{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

func (s Suit) String() string {
	if int(s) < len(suitNames) {
		return suitNames[s]
	}
	return fmt.Sprintf("suit(%d)", uint8(s))
}

// ParseSuit 解析花色名称
func ParseSuit(name string) (Suit, error) {
	for i, n := range suitNames {
		if i > 0 && n == name {
			return Suit(i), nil
		}
	}
	return SuitNone, fmt.Errorf("unknown suit %q", name)
}

func (s Suit) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Suit) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*s = SuitNone
		return nil
	}
	v, err := ParseSuit(string(data))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Rank 牌的点数，数值越大牌越大
type Rank uint8

const (
	RankNone Rank = iota
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ
	RankQ
	RankK
	RankA
)

var rankNames = [...]string{"", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// Ranks 13 种点数（2-A）
var Ranks = []Rank{Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8, Rank9, Rank10, RankJ, RankQ, RankK, RankA}

func (r Rank) String() string {
	if int(r) < len(rankNames) {
		return rankNames[r]
	}
	return fmt.Sprintf("rank(%d)", uint8(r))
}

// ParseRank 解析点数
func ParseRank(name string) (Rank, error) {
	for i, n := range rankNames {
		if i > 0 && n == name {
			return Rank(i), nil
		}
	}
	return RankNone, fmt.Errorf("unknown rank %q", name)
}

func (r Rank) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rank) UnmarshalText(data []byte) error {
	v, err := ParseRank(string(data))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Card 代表一张扑克牌
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// NewCard
func NewCard(rank Rank, suit Suit) Card {
	return Card{
		Rank: rank,
		Suit: suit,
	}
}

// Valid 花色和点数都合法
func (c Card) Valid() bool {
	return c.Suit >= SuitSpades && c.Suit <= SuitClubs && c.Rank >= Rank2 && c.Rank <= RankA
}

func (c Card) String() string {
	return c.Rank.String() + " of " + c.Suit.String()
}

type Cards []Card

// NewDeck 生成一副 52 张的牌，按花色、点数排序
func NewDeck() Cards {
	cards := make(Cards, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

// Shuffle 洗牌，会修改 cs 本身
func (cs Cards) Shuffle(r Rand) {
	r.Shuffle(len(cs), func(i, j int) {
		cs[i], cs[j] = cs[j], cs[i]
	})
}

// Contains 是否包含指定的牌
func (cs Cards) Contains(c Card) bool {
	return slices.Contains(cs, c)
}

// HasSuit 是否有指定花色的牌
func (cs Cards) HasSuit(s Suit) bool {
	return slices.ContainsFunc(cs, func(c Card) bool { return c.Suit == s })
}

// Without 返回去掉 c 之后的新手牌，原切片不变
func (cs Cards) Without(c Card) Cards {
	out := make(Cards, 0, len(cs))
	removed := false
	for _, card := range cs {
		if !removed && card == c {
			removed = true
			continue
		}
		out = append(out, card)
	}
	return out
}

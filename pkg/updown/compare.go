package updown

// SuitPriority 花色优先级：mesa 最大，其次 pinta，其余花色相同
func SuitPriority(s, mesa, pinta Suit) int {
	switch s {
	case mesa:
		return 3
	case pinta:
		return 2
	}
	return 1
}

// CompareCards 比较两张牌，a 大返回正数，b 大返回负数
// 先比花色优先级，相同再比点数
func CompareCards(a, b Card, mesa, pinta Suit) int {
	pa, pb := SuitPriority(a.Suit, mesa, pinta), SuitPriority(b.Suit, mesa, pinta)
	if pa != pb {
		return pa - pb
	}
	return int(a.Rank) - int(b.Rank)
}

// TrickWinner 找出一墩中最大的牌，只有严格更大时才替换，所以相同时先出的赢
func TrickWinner(plays []PlayedCard, mesa, pinta Suit) (PlayedCard, bool) {
	if len(plays) == 0 {
		return PlayedCard{}, false
	}
	best := plays[0]
	for _, p := range plays[1:] {
		if CompareCards(p.Card, best.Card, mesa, pinta) > 0 {
			best = p
		}
	}
	return best, true
}

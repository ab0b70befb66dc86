package updown

// RoundSequence 生成每局发牌数：1,2,...,n,...,2,1
func RoundSequence(n int) []int {
	if n <= 0 {
		return nil
	}
	seq := make([]int, 0, 2*n-1)
	for i := 1; i <= n; i++ {
		seq = append(seq, i)
	}
	for i := n - 1; i >= 1; i-- {
		seq = append(seq, i)
	}
	return seq
}

// MaxRounds 在 players 人时最多能设置的局数，需要留一张做 mesa
func MaxRounds(players int) int {
	if players <= 0 {
		return 0
	}
	return (DeckSize - 1) / players
}

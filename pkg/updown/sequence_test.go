package updown

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundSequence(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{0, nil},
		{-1, nil},
		{1, []int{1}},
		{2, []int{1, 2, 1}},
		{3, []int{1, 2, 3, 2, 1}},
		{5, []int{1, 2, 3, 4, 5, 4, 3, 2, 1}},
	}
	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tt.want, RoundSequence(tt.n))
		})
	}
}

func TestRoundSequence_Palindrome(t *testing.T) {
	for n := 1; n <= 25; n++ {
		seq := RoundSequence(n)
		assert.Len(t, seq, 2*n-1)
		rev := slices.Clone(seq)
		slices.Reverse(rev)
		assert.Equal(t, seq, rev)
		assert.Equal(t, n, slices.Max(seq))
	}
}

func TestMaxRounds(t *testing.T) {
	tests := []struct {
		players int
		want    int
	}{
		{0, 0},
		{2, 25},
		{3, 17},
		{4, 12},
		{6, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaxRounds(tt.players))
		// 最大的一局加上 mesa 不能超过一副牌
		assert.LessOrEqual(t, tt.players*tt.want+1, DeckSize)
	}
}

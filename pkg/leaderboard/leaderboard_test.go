package leaderboard

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/play/updown/pkg/eventbus"
	"github.com/play/updown/pkg/updown"
)

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestBoard_Record(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	b := New(client, "test")

	require.NoError(t, b.Record(ctx, map[string]int{"alice": 30, "bob": 12, "carol": 0}))
	require.NoError(t, b.Record(ctx, map[string]int{"alice": 10, "bob": 40}))
	require.NoError(t, b.Record(ctx, nil))

	top, err := b.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Rank: 1, PlayerID: "bob", Points: 52, Wins: 1},
		{Rank: 2, PlayerID: "alice", Points: 40, Wins: 1},
		{Rank: 3, PlayerID: "carol", Points: 0, Wins: 0},
	}, top)

	t.Run("limit", func(t *testing.T) {
		top, err := b.Top(ctx, 1)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, "bob", top[0].PlayerID)

		top, err = b.Top(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, top)
	})
}

func TestBoard_Tie(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	b := New(client, "")

	require.NoError(t, b.Record(ctx, map[string]int{"alice": 0, "bob": 0}))
	wins, err := client.ZScore(ctx, "updown:leaderboard:wins", "alice").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, wins)
	wins, err = client.ZScore(ctx, "updown:leaderboard:wins", "bob").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, wins)
}

func TestBoard_HandleEvent(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	b := New(client, "test")

	require.NoError(t, b.HandleEvent(ctx, eventbus.GameEvent{Kind: eventbus.KindRoundCompleted, Scores: []updown.PlayerScore{{PlayerID: "alice", Points: 99}}}))
	top, err := b.Top(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, top)

	require.NoError(t, b.HandleEvent(ctx, eventbus.GameEvent{
		Kind:   eventbus.KindGameCompleted,
		RoomID: "ROOM01",
		Scores: []updown.PlayerScore{{PlayerID: "alice", Points: 14}, {PlayerID: "bob", Points: 22}},
	}))
	top, err = b.Top(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, Entry{Rank: 1, PlayerID: "bob", Points: 22, Wins: 1}, top[0])
	assert.Equal(t, Entry{Rank: 2, PlayerID: "alice", Points: 14, Wins: 0}, top[1])
}

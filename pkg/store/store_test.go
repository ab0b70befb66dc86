package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/play/updown/pkg/updown"
)

// setupTestRedis 创建测试用的Redis客户端
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func newGame(id string, players ...string) updown.Game {
	g := updown.NewGame(id, players[0], 1700000000000)
	for _, p := range players[1:] {
		g = g.AddPlayer(p)
	}
	return g
}

func TestStore_CreateGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()
	s := New(client, WithPrefix("test"))

	g := newGame("ABC123", "alice", "bob")
	require.NoError(t, s.Create(ctx, g))

	got, err := s.Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)
	assert.Equal(t, g.AdminID, got.AdminID)
	assert.Equal(t, g.SeatOrder, got.SeatOrder)
	assert.Equal(t, updown.StatusWaiting, got.Status())

	t.Run("duplicate id", func(t *testing.T) {
		assert.ErrorIs(t, s.Create(ctx, g), ErrExists)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.Get(ctx, "NOPE00")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("key layout", func(t *testing.T) {
		n, err := client.Exists(ctx, "test:game:ABC123").Result()
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})
}

func TestStore_TTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	s := New(client, WithTTL(time.Minute))

	require.NoError(t, s.Create(ctx, newGame("TTL001", "alice")))
	mr.FastForward(2 * time.Minute)

	_, err := s.Get(ctx, "TTL001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Update(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()
	s := New(client)

	require.NoError(t, s.Create(ctx, newGame("UPD001", "alice")))

	t.Run("applies change", func(t *testing.T) {
		next, err := s.Update(ctx, "UPD001", func(g updown.Game) (updown.Game, error) {
			return g.AddPlayer("bob"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, next.SeatOrder)

		got, err := s.Get(ctx, "UPD001")
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, got.SeatOrder)
	})

	t.Run("error aborts write", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := s.Update(ctx, "UPD001", func(g updown.Game) (updown.Game, error) {
			return g.AddPlayer("carol"), boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.Get(ctx, "UPD001")
		require.NoError(t, err)
		assert.NotContains(t, got.SeatOrder, "carol")
	})

	t.Run("missing game", func(t *testing.T) {
		_, err := s.Update(ctx, "NOPE00", func(g updown.Game) (updown.Game, error) {
			return g, nil
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_Update_Conflict(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	t.Run("retries after concurrent write", func(t *testing.T) {
		s := New(client, WithPrefix("retry"))
		require.NoError(t, s.Create(ctx, newGame("CON001", "alice")))

		calls := 0
		next, err := s.Update(ctx, "CON001", func(g updown.Game) (updown.Game, error) {
			calls++
			if calls == 1 {
				// 事务外的写入让第一次 EXEC 失败
				_, err := s.Update(ctx, "CON001", func(g updown.Game) (updown.Game, error) {
					return g.AddPlayer("bob"), nil
				})
				require.NoError(t, err)
			}
			return g.AddPlayer("carol"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, []string{"alice", "bob", "carol"}, next.SeatOrder)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		s := New(client, WithPrefix("giveup"), WithMaxRetries(2))
		require.NoError(t, s.Create(ctx, newGame("CON002", "alice")))

		calls := 0
		_, err := s.Update(ctx, "CON002", func(g updown.Game) (updown.Game, error) {
			calls++
			require.NoError(t, client.Set(ctx, "giveup:game:CON002", mustMarshal(t, g), 0).Err())
			return g.AddPlayer("bob"), nil
		})
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, 2, calls)

		got, err := s.Get(ctx, "CON002")
		require.NoError(t, err)
		assert.Equal(t, []string{"alice"}, got.SeatOrder)
	})
}

func TestStore_PlayerIndex(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()
	s := New(client)

	_, err := s.RoomOf(ctx, "alice")
	assert.ErrorIs(t, err, ErrPlayerNotInRoom)

	require.NoError(t, s.BindPlayer(ctx, "alice", "ROOM01"))
	room, err := s.RoomOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "ROOM01", room)

	t.Run("unbind other room keeps index", func(t *testing.T) {
		require.NoError(t, s.UnbindPlayer(ctx, "alice", "ROOM02"))
		room, err := s.RoomOf(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "ROOM01", room)
	})

	t.Run("unbind own room", func(t *testing.T) {
		require.NoError(t, s.UnbindPlayer(ctx, "alice", "ROOM01"))
		_, err := s.RoomOf(ctx, "alice")
		assert.ErrorIs(t, err, ErrPlayerNotInRoom)
	})
}

func TestStore_Delete(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()
	s := New(client)

	require.NoError(t, s.Create(ctx, newGame("DEL001", "alice", "bob")))
	require.NoError(t, s.BindPlayer(ctx, "alice", "DEL001"))
	require.NoError(t, s.BindPlayer(ctx, "bob", "OTHER1"))

	require.NoError(t, s.Delete(ctx, "DEL001"))

	_, err := s.Get(ctx, "DEL001")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.RoomOf(ctx, "alice")
	assert.ErrorIs(t, err, ErrPlayerNotInRoom)

	// bob 已经在别的房间，索引保留
	room, err := s.RoomOf(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "OTHER1", room)

	assert.ErrorIs(t, s.Delete(ctx, "DEL001"), ErrNotFound)
}

func mustMarshal(t *testing.T, g updown.Game) []byte {
	t.Helper()
	data, err := g.MarshalJSON()
	require.NoError(t, err)
	return data
}

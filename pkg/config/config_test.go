package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 6, cfg.Game.MaxPlayers)
	assert.Equal(t, 5, cfg.Game.DefaultRounds)
	assert.Equal(t, "updown", cfg.Store.Prefix)
	assert.Equal(t, 5, cfg.Store.MaxRetries)
	assert.Equal(t, 3*time.Second, cfg.Lock.TTL)
	assert.Equal(t, 3, cfg.Lock.Retries)
	assert.Equal(t, "file::memory:?cache=shared", cfg.Archive.DSN)
	assert.Equal(t, 10*time.Minute, cfg.Archive.CacheTTL)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("UPDOWN_HTTP_ADDR", ":9090")
	t.Setenv("UPDOWN_GAME_MAX_PLAYERS", "4")
	t.Setenv("UPDOWN_LOCK_TTL", "5s")
	t.Setenv("UPDOWN_LOG_TRACED", "true")

	v := viper.New()
	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 4, cfg.Game.MaxPlayers)
	assert.Equal(t, 5*time.Second, cfg.Lock.TTL)
	assert.True(t, cfg.Log.Traced)
	assert.True(t, v.GetBool("log.traced"))
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "updown.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
redis:
  addr: redis:6379
  db: 2
events:
  concurrency: 8
archive:
  dsn: file:/data/archive.db
`), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 8, cfg.Events.Concurrency)
	assert.Equal(t, "file:/data/archive.db", cfg.Archive.DSN)
	assert.Equal(t, 5, cfg.Game.DefaultRounds)

	_, err = Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	cfg.Game.MaxPlayers = 1
	cfg.Store.MaxRetries = 0
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game.max_players")
	assert.Contains(t, err.Error(), "store.max_retries")
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "UPDOWN"

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Game      GameConfig      `mapstructure:"game"`
	Store     StoreConfig     `mapstructure:"store"`
	Lock      LockConfig      `mapstructure:"lock"`
	Events    EventsConfig    `mapstructure:"events"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"` // 本地开发时输出彩色文本
	Traced  bool   `mapstructure:"traced"`  // 记录每条 sql
}

type GameConfig struct {
	MaxPlayers    int `mapstructure:"max_players"`
	DefaultRounds int `mapstructure:"default_rounds"`
}

type StoreConfig struct {
	Prefix     string        `mapstructure:"prefix"`
	MaxRetries int           `mapstructure:"max_retries"`
	TTL        time.Duration `mapstructure:"ttl"`
}

type LockConfig struct {
	TTL     time.Duration `mapstructure:"ttl"`
	Retries int           `mapstructure:"retries"`
}

type EventsConfig struct {
	QueueSize   int `mapstructure:"queue_size"`
	Concurrency int `mapstructure:"concurrency"`
}

type ArchiveConfig struct {
	DSN       string        `mapstructure:"dsn"`
	CacheSize int           `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

type RateLimitConfig struct {
	ActionsPerSecond int `mapstructure:"actions_per_second"` // 0 关闭限流
}

// SetDefaults 注册所有键的默认值，环境变量只能覆盖已注册的键
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", false)
	v.SetDefault("log.traced", false)
	v.SetDefault("game.max_players", 6)
	v.SetDefault("game.default_rounds", 5)
	v.SetDefault("store.prefix", "updown")
	v.SetDefault("store.max_retries", 5)
	v.SetDefault("store.ttl", 48*time.Hour)
	v.SetDefault("lock.ttl", 3*time.Second)
	v.SetDefault("lock.retries", 3)
	v.SetDefault("events.queue_size", 10000)
	v.SetDefault("events.concurrency", 4)
	v.SetDefault("archive.dsn", "file::memory:?cache=shared")
	v.SetDefault("archive.cache_size", 1000)
	v.SetDefault("archive.cache_ttl", 10*time.Minute)
	v.SetDefault("ratelimit.actions_per_second", 10)
}

// Load 读取默认值、配置文件（path 非空时）和 UPDOWN_* 环境变量
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 检查明显错误的配置
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is empty"))
	}
	if c.Game.MaxPlayers < 2 {
		errs = append(errs, fmt.Errorf("game.max_players must be at least 2, got %d", c.Game.MaxPlayers))
	}
	if c.Game.DefaultRounds < 1 {
		errs = append(errs, fmt.Errorf("game.default_rounds must be at least 1, got %d", c.Game.DefaultRounds))
	}
	if c.Store.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("store.max_retries must be at least 1, got %d", c.Store.MaxRetries))
	}
	if c.Lock.TTL <= 0 {
		errs = append(errs, errors.New("lock.ttl must be positive"))
	}
	if c.RateLimit.ActionsPerSecond < 0 {
		errs = append(errs, errors.New("ratelimit.actions_per_second must not be negative"))
	}
	return errors.Join(errs...)
}

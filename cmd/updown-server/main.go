package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/play/updown/pkg/compile"
	"github.com/play/updown/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(viper.GetViper(), *configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg.Log)
	compile.Log()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exts := newApp(cfg).extensions()
	if err := exts.LoadAll(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}
	log.Info().Strs("extensions", exts.Loaded()).Str("addr", cfg.HTTP.Addr).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	exts.ExitAll(shutdownCtx)
}

func setupLogger(c config.LogConfig) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logger := zerolog.New(os.Stdout)
	if c.Console {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime})
	}
	log.Logger = logger.With().Timestamp().Str("service", compile.Name).Str("host", compile.Hostname).Logger()
	// 没有带 logger 的 ctx 也能输出
	zerolog.DefaultContextLogger = &log.Logger
}

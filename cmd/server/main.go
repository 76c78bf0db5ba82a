package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/benbeisheim/minichess-backend/internal/config"
	"github.com/benbeisheim/minichess-backend/internal/logger"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.Logs)

	app, stop, err := newServer(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid ENGINE_EVAL")
	}
	defer stop()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().
		Str("addr", cfg.HTTP.Addr).
		Int("default_depth", cfg.Engine.DefaultDepth).
		Int("max_depth", cfg.Engine.MaxDepth).
		Str("eval", cfg.Engine.Evaluator).
		Int("quiescence", cfg.Engine.Quiescence).
		Msg("listening")
	if err := app.Listen(cfg.HTTP.Addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}

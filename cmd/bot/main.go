package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ilinovom/linkvault-bot/internal/app"
	"github.com/ilinovom/linkvault-bot/internal/config"
	"github.com/ilinovom/linkvault-bot/internal/logger"
	"github.com/ilinovom/linkvault-bot/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "linkvault-bot:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, os.Stdout)

	ctx := context.Background()
	store, err := repository.Open(ctx, cfg.DBConnString, cfg.DBTimeout, log.With().Str("comp", "store").Logger())
	if err != nil {
		log.Error().Err(err).Msg("open store")
		return err
	}
	defer store.Close()

	application, err := app.New(cfg, store, log)
	if err != nil {
		log.Error().Err(err).Msg("init app")
		return err
	}
	return application.Run(ctx)
}

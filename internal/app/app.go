package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ilinovom/linkvault-bot/internal/app/cmdHandlers"
	"github.com/ilinovom/linkvault-bot/internal/config"
	"github.com/ilinovom/linkvault-bot/internal/model"
	"github.com/ilinovom/linkvault-bot/internal/repository"
	"github.com/ilinovom/linkvault-bot/internal/server"
	"github.com/ilinovom/linkvault-bot/internal/service"
	"github.com/ilinovom/linkvault-bot/pkg/telegram"
)

// sweepSchedule is how often idle conversations are collected.
const sweepSchedule = "@every 1m"

// App coordinates the services, the telegram client and the HTTP server.
type App struct {
	cfg      *config.Config
	log      zerolog.Logger
	tgClient *telegram.Client
	handler  *cmdHandlers.CmdHandler
	sessions *cmdHandlers.SessionStore
	server   *server.Server
}

func New(cfg *config.Config, store repository.Store, log zerolog.Logger) (*App, error) {
	tgClient, err := telegram.NewClient(cfg.TelegramToken, cfg.PollTimeout, log.With().Str("comp", "telegram").Logger())
	if err != nil {
		return nil, err
	}
	if cfg.BotUsername == "" {
		cfg.BotUsername = tgClient.Username()
	}

	svcLog := log.With().Str("comp", "service").Logger()
	svc := cmdHandlers.Services{
		Users:       service.NewUserService(store, store),
		Bundles:     service.NewBundleService(store),
		Dispatcher:  service.NewDispatcher(store, tgClient, cfg.ItemDelay, svcLog),
		Broadcaster: service.NewBroadcaster(store, tgClient, cfg.BroadcastDelay, cfg.BroadcastProgressEvery, svcLog),
		Settings: service.NewSettingsService(store, model.ChannelButton{
			Name: cfg.ChannelButtonName,
			URL:  cfg.ChannelButtonURL,
		}),
	}
	sessions := cmdHandlers.NewSessionStore()
	tracker := service.NewUsageTracker(store, cfg.UsageWindow, svcLog)

	return &App{
		cfg:      cfg,
		log:      log,
		tgClient: tgClient,
		handler:  cmdHandlers.NewCmdHandler(cfg, svc, tgClient, sessions, log.With().Str("comp", "router").Logger()),
		sessions: sessions,
		server:   server.New(log, ":"+cfg.Port, store, tracker),
	}, nil
}

// Run serves Telegram updates and HTTP until ctx is cancelled or the process
// receives SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.handler.SetCommands(ctx)

	sweeper := cron.New()
	if a.cfg.SessionTTL > 0 {
		if _, err := sweeper.AddFunc(sweepSchedule, a.sweepSessions); err != nil {
			return err
		}
	}
	sweeper.Start()
	defer func() { <-sweeper.Stop().Done() }()

	errCh := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.tgClient.Start(ctx, a.handler)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.server.Start(); err != nil {
			errCh <- err
			stop()
		}
	}()

	<-ctx.Done()
	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("http server shutdown")
	}
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

func (a *App) sweepSessions() {
	if n := a.sessions.Sweep(a.cfg.SessionTTL); n > 0 {
		a.log.Info().Int("expired", n).Msg("idle conversations dropped")
	}
}

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/donaldgifford/restock-monitor/internal/classify"
	"github.com/donaldgifford/restock-monitor/internal/config"
	"github.com/donaldgifford/restock-monitor/internal/engine"
	"github.com/donaldgifford/restock-monitor/internal/fetch"
	"github.com/donaldgifford/restock-monitor/internal/notify"
	"github.com/donaldgifford/restock-monitor/internal/pause"
	"github.com/donaldgifford/restock-monitor/internal/state"
	"github.com/donaldgifford/restock-monitor/pkg/logger"
)

// app holds the components shared by check, serve and the flag commands.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	flag   pause.Flag
	store  *state.FileStore
	engine *engine.Engine

	logCloser io.Closer
}

func (a *app) Close() error {
	return a.logCloser.Close()
}

// loadApp reads the config file and builds every component from it.
func loadApp() (*app, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return newApp(cfg)
}

func newApp(cfg *config.Config) (*app, error) {
	log, closer := logger.NewWithOptions(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})

	flag, err := pause.New(cfg.Pause, log)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	store := state.NewFileStore(cfg.State.Path, state.WithLogger(log))

	fetcher := fetch.NewHTTPFetcher(
		fetch.WithTimeout(cfg.Fetch.Timeout),
		fetch.WithHeaders(fetch.Headers{
			UserAgent:      cfg.Fetch.UserAgent,
			AcceptLanguage: cfg.Fetch.AcceptLanguage,
			Accept:         cfg.Fetch.Accept,
		}),
	)

	opts := []engine.EngineOption{
		engine.WithLogger(log),
		engine.WithPauseFlag(flag),
		engine.WithConcurrency(cfg.Fetch.Concurrency),
	}
	if cfg.Fetch.WarmUp {
		opts = append(opts, engine.WithWarmUp(cfg.Fetch.WarmUpDelay))
	}

	eng := engine.NewEngine(
		cfg.Items,
		fetcher,
		classify.New(keywords(cfg.Keywords)),
		store,
		notifier(cfg.Notifications.Discord, log),
		opts...,
	)

	return &app{
		cfg:       cfg,
		log:       log,
		flag:      flag,
		store:     store,
		engine:    eng,
		logCloser: closer,
	}, nil
}

// keywords merges configured keyword lists over the built-in defaults.
func keywords(kc config.KeywordsConfig) classify.Keywords {
	kw := classify.DefaultKeywords()
	if len(kc.InStock) > 0 {
		kw.InStock = kc.InStock
	}
	if len(kc.OutOfStock) > 0 {
		kw.OutOfStock = kc.OutOfStock
	}
	if kc.IncludeTemporarilyUnavailable {
		kw.OutOfStock = append(append([]string(nil), kw.OutOfStock...), classify.TemporarilyUnavailable()...)
	}
	return kw
}

func notifier(dc config.DiscordConfig, log *slog.Logger) notify.Notifier {
	if dc.WebhookURL == "" {
		log.Warn("notifications.discord.webhook_url not set, restock notifications will only be logged")
		return notify.NewNoOpNotifier(log)
	}
	return notify.NewDiscordNotifier(
		dc.WebhookURL,
		notify.WithHTTPClient(&http.Client{Timeout: dc.Timeout}),
		notify.WithUsername(dc.Username),
		notify.WithMaxEmbeds(dc.MaxEmbeds),
		notify.WithLogger(log),
	)
}

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"ProductAdvisor/internal/catalog"
	"ProductAdvisor/internal/collector"
	"ProductAdvisor/internal/config"
	"ProductAdvisor/internal/logger"
	"ProductAdvisor/internal/notifier"
	"ProductAdvisor/internal/pipeline"
	"ProductAdvisor/internal/report"
	"ProductAdvisor/internal/scheduler"
	"ProductAdvisor/internal/storage"
)

// app holds what every subcommand needs.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	catalog *catalog.Catalog
}

func newApp() (*app, error) {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	cat := catalog.Default()
	if cfg.Catalog.File != "" {
		if cat, err = catalog.LoadFile(cfg.Catalog.File); err != nil {
			return nil, err
		}
		log.Info().Str("file", cfg.Catalog.File).Int("products", len(cat.Products())).Msg("catalog loaded")
	}
	return &app{cfg: cfg, log: log, catalog: cat}, nil
}

// openStore opens the database and syncs the catalog into it.
func (a *app) openStore(ctx context.Context) (*storage.SQLiteStore, error) {
	store, err := storage.Open(a.cfg.Database.SQLitePath, a.log)
	if err != nil {
		return nil, err
	}
	if err := store.SyncProducts(ctx, a.catalog.Products()); err != nil {
		store.Close()
		return nil, fmt.Errorf("sync products: %w", err)
	}
	return store, nil
}

func (a *app) readDataset() (*collector.Dataset, error) {
	ds, err := collector.ReadDataset(a.cfg.Dataset.Dir, a.log)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return ds, nil
}

func (a *app) importDataset(ctx context.Context, store *storage.SQLiteStore) error {
	ds, err := a.readDataset()
	if err != nil {
		return err
	}
	return store.ImportDataset(ctx, ds.Records())
}

func (a *app) runner(src collector.Source, sink pipeline.Sink) *pipeline.Runner {
	return pipeline.NewRunner(src, a.catalog, sink, a.cfg.Scoring.Workers, a.log)
}

func (a *app) reporter(store *storage.SQLiteStore) *report.Generator {
	return report.NewGenerator(store, a.cfg.Output.Dir, a.log)
}

// pusher uses the model writer when an API key is configured.
func (a *app) pusher(ctx context.Context, store *storage.SQLiteStore) *notifier.Pusher {
	var writer notifier.Writer = notifier.TemplateWriter{}
	if a.cfg.GenAIEnabled() {
		w, err := notifier.NewGenAIWriter(ctx, a.cfg.GenAI.APIKey, a.cfg.GenAI.Model, a.log)
		if err != nil {
			a.log.Warn().Err(err).Msg("genai unavailable, using templates")
		} else {
			writer = w
		}
	}
	return notifier.NewPusher(store, writer, a.log)
}

// telegram returns nil when no bot is configured.
func (a *app) telegram() *notifier.TelegramNotifier {
	if !a.cfg.TelegramEnabled() {
		return nil
	}
	return notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy, a.log)
}

func (a *app) scheduler(ctx context.Context, store *storage.SQLiteStore, tn *notifier.TelegramNotifier) *scheduler.Scheduler {
	deps := scheduler.Deps{
		Runner:   a.runner(store, store),
		Reporter: a.reporter(store),
		Pusher:   a.pusher(ctx, store),
		Store:    store,
	}
	if tn != nil {
		deps.Sender = tn
	}
	return scheduler.NewScheduler(ctx, deps, a.log)
}

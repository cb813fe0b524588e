package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"SitemapWatcher/internal/bot"
	"SitemapWatcher/internal/config"
	"SitemapWatcher/internal/domain"
	"SitemapWatcher/internal/infrastructure/inspector"
	"SitemapWatcher/internal/infrastructure/scheduler"
	"SitemapWatcher/internal/infrastructure/storage"
	"SitemapWatcher/internal/infrastructure/telegram"
	"SitemapWatcher/internal/inspect"
	"SitemapWatcher/internal/logging"
	"SitemapWatcher/internal/usecase"
)

// Application wires configuration to use cases and owns the lifecycle
// of the scheduler and webhook listener.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	runner  *usecase.Runner
	timer   *scheduler.IntervalScheduler
	webhook *bot.Webhook
	store   *storage.SQLiteStore
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	tracker := inspector.NewTracker(store, cfg.Watcher.Freshness())

	registry := inspect.NewRegistry()
	registry.Register(inspector.NewSitemapStrategy(nil, tracker, logging.Component(baseLogger, "inspector.sitemap")))
	registry.Register(inspector.NewRSSStrategy(nil, tracker, logging.Component(baseLogger, "inspector.rss")))
	dispatcher := inspect.NewDispatcher(registry, "sitemap", logging.Component(baseLogger, "inspector"))

	notifier := telegram.NewClient(cfg.Notifications.Telegram.BotToken)

	feeds := make(usecase.FeedList, 0, len(cfg.Feeds))
	for _, fc := range cfg.Feeds {
		feeds = append(feeds, domain.Feed{Name: fc.Name, URL: fc.URL, Inspector: fc.Inspector})
	}

	runner := usecase.NewRunner(usecase.RunnerDeps{
		Provider:  feeds,
		Inspector: dispatcher,
		Cursor:    usecase.NewCursorStore(store, logging.Component(baseLogger, "cursor")),
		Notifier:  notifier,
		Logger:    logging.Component(baseLogger, "watcher"),
	}, usecase.RunnerConfig{
		BatchSize:   cfg.Watcher.Batch(),
		ChatID:      cfg.Notifications.Telegram.ChatID,
		FeedDelay:   cfg.Watcher.FeedPause(),
		FooterDelay: cfg.Watcher.FooterPause(),
	})

	application := &Application{
		cfg:    cfg,
		logger: baseLogger,
		runner: runner,
		timer:  scheduler.NewIntervalScheduler(cfg.Scheduler.Interval()),
		store:  store,
	}

	if cfg.Webhook.ListenAddr != "" {
		handler := bot.NewHandler(runner)
		application.webhook = bot.NewWebhook(cfg.Webhook.ListenAddr, handler, notifier, logging.Component(baseLogger, "webhook"))
	}

	return application, nil
}

// Run starts the timer trigger and the optional command webhook, then
// blocks until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.cfg.Notifications.Telegram.ChatID == "" {
		a.logger.Error("target chat is not configured, notifications will be skipped")
	}

	job := func(t time.Time) {
		a.runner.Trigger(ctx, "timer")
	}
	if err := a.timer.Start(ctx, job); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	if a.webhook != nil {
		go func() {
			if err := a.webhook.Start(ctx); err != nil {
				a.logger.Error("webhook stopped", "error", err)
			}
		}()
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.timer.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler stop failed", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("storage close failed", "error", err)
	}

	return nil
}

package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "SITEMAP_WATCHER_CONFIG"
	storagePathEnv    = "STORAGE_PATH"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	webhookAddrEnv    = "WEBHOOK_LISTEN_ADDR"

	defaultInterval    = time.Hour
	defaultFeedDelay   = 2 * time.Second
	defaultFooterDelay = 500 * time.Millisecond
	defaultCheckTTL    = 20 * time.Hour
	defaultBatchSize   = 10
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Storage       StorageConfig      `yaml:"storage"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Watcher       WatcherConfig      `yaml:"watcher"`
	Notifications NotificationConfig `yaml:"notifications"`
	Webhook       WebhookConfig      `yaml:"webhook"`
	Feeds         []FeedConfig       `yaml:"feeds"`
}

// LoggingConfig controls console log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig describes the durable key-value store location.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when the timer trigger fires.
type SchedulerConfig struct {
	Every string `yaml:"every"`
}

// Interval resolves the timer period, falling back to the default on a
// missing or malformed value.
func (s SchedulerConfig) Interval() time.Duration {
	return parseDuration(s.Every, defaultInterval)
}

// WatcherConfig tunes the scheduling pass itself.
type WatcherConfig struct {
	BatchSize   int    `yaml:"batchSize"`
	FeedDelay   string `yaml:"feedDelay"`
	FooterDelay string `yaml:"footerDelay"`
	CheckTTL    string `yaml:"checkTtl"`
}

// FeedPause resolves the fixed delay between sequential feed checks.
func (w WatcherConfig) FeedPause() time.Duration {
	return parseDuration(w.FeedDelay, defaultFeedDelay)
}

// FooterPause resolves the delay before an immediate notification footer.
func (w WatcherConfig) FooterPause() time.Duration {
	return parseDuration(w.FooterDelay, defaultFooterDelay)
}

// Freshness resolves how long an inspected feed counts as already checked.
func (w WatcherConfig) Freshness() time.Duration {
	return parseDuration(w.CheckTTL, defaultCheckTTL)
}

// Batch returns the configured batch size or the default when unset.
func (w WatcherConfig) Batch() int {
	if w.BatchSize > 0 {
		return w.BatchSize
	}
	return defaultBatchSize
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// WebhookConfig describes the optional command webhook listener.
type WebhookConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

// FeedConfig describes a single monitored feed.
type FeedConfig struct {
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	Inspector string `yaml:"inspector"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(storagePathEnv); v != "" {
		c.Storage.Path = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(webhookAddrEnv); v != "" {
		c.Webhook.ListenAddr = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Storage.Path != "" {
		base.Storage = override.Storage
	}

	if override.Scheduler.Every != "" {
		base.Scheduler = override.Scheduler
	}

	if override.Watcher.BatchSize > 0 {
		base.Watcher.BatchSize = override.Watcher.BatchSize
	}
	if override.Watcher.FeedDelay != "" {
		base.Watcher.FeedDelay = override.Watcher.FeedDelay
	}
	if override.Watcher.FooterDelay != "" {
		base.Watcher.FooterDelay = override.Watcher.FooterDelay
	}
	if override.Watcher.CheckTTL != "" {
		base.Watcher.CheckTTL = override.Watcher.CheckTTL
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Webhook.ListenAddr != "" {
		base.Webhook = override.Webhook
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	return base
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		log.Printf("config: invalid duration %q, using %s", value, fallback)
		return fallback
	}
	return d
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Storage:   StorageConfig{Path: "sitemapwatcher.db"},
		Scheduler: SchedulerConfig{Every: "1h"},
		Watcher: WatcherConfig{
			BatchSize:   defaultBatchSize,
			FeedDelay:   "2s",
			FooterDelay: "500ms",
			CheckTTL:    "20h",
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Webhook: WebhookConfig{ListenAddr: ""},
		Feeds:   nil,
	}
}

package ports

import (
	"context"
	"time"

	"SitemapWatcher/internal/domain"
)

// FeedProvider returns the ordered feed list. The list is externally
// owned; the scheduler reads it once per pass and never reorders it.
type FeedProvider interface {
	Feeds(ctx context.Context) ([]domain.Feed, error)
}

// Inspector checks a single feed and reports newly discovered URLs.
// forceRefresh bypasses any already-checked-recently short-circuit.
type Inspector interface {
	Inspect(ctx context.Context, feed domain.Feed, forceRefresh bool) (domain.Outcome, error)
}

// KVStore is the durable get/put collaborator. No transactions or
// conditional writes are assumed; writes are last-write-wins.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Put(ctx context.Context, key, value string) error
}

// SendOptions tweaks how a text message is rendered by the channel.
type SendOptions struct {
	SuppressLinkPreview bool
}

// Notifier delivers messages to a chat channel.
type Notifier interface {
	SendText(ctx context.Context, target, text string, opts SendOptions) error
	SendAttachment(ctx context.Context, target string, blob []byte, filename, caption string) error
}

// Scheduler controls when passes execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

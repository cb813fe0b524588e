package inspector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"SitemapWatcher/internal/domain"
	"SitemapWatcher/internal/inspect"
)

// RSSStrategy inspects classic RSS/Atom feeds so the monitored list can
// mix sitemaps and syndication feeds.
type RSSStrategy struct {
	client  *http.Client
	parser  *gofeed.Parser
	tracker *Tracker
	logger  *slog.Logger
}

var _ inspect.Strategy = (*RSSStrategy)(nil)

// NewRSSStrategy wires an HTTP client and the snapshot tracker.
func NewRSSStrategy(client *http.Client, tracker *Tracker, log *slog.Logger) *RSSStrategy {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &RSSStrategy{
		client:  client,
		parser:  gofeed.NewParser(),
		tracker: tracker,
		logger:  log,
	}
}

// Name identifies the strategy inside the registry.
func (r *RSSStrategy) Name() string {
	return "rss"
}

// Inspect fetches the feed, collects item links, and diffs them against
// the stored snapshot.
func (r *RSSStrategy) Inspect(ctx context.Context, feed domain.Feed, forceRefresh bool) (domain.Outcome, error) {
	out := domain.Outcome{FeedURL: feed.URL, FeedName: feed.Name}

	if !forceRefresh {
		fresh, err := r.tracker.CheckedRecently(ctx, feed.URL, time.Now())
		if err == nil && fresh {
			r.debug("feed checked recently, skipping", "feed", feed.URL)
			out.Success = true
			return out, nil
		}
	}

	body, err := fetchBody(ctx, r.client, feed.URL)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("fetch feed: %w", err)
	}

	parsed, err := r.parser.ParseString(string(body))
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("parse feed: %w", err)
	}

	var current []string
	for _, item := range parsed.Items {
		if item != nil && item.Link != "" {
			current = append(current, item.Link)
		}
	}

	newURLs, err := r.tracker.Reconcile(ctx, feed.URL, current, time.Now())
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("reconcile feed %s: %w", feed.URL, err)
	}

	r.debug("feed inspected", "feed", feed.URL, "items", len(current), "new", len(newURLs))

	out.Success = true
	out.NewURLs = newURLs
	return out, nil
}

func (r *RSSStrategy) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

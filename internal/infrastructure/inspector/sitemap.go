package inspector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"SitemapWatcher/internal/domain"
	"SitemapWatcher/internal/inspect"
)

const maxBodyBytes = 10 << 20

// SitemapStrategy fetches a sitemap document and reports the <loc>
// entries not present in the previous snapshot.
type SitemapStrategy struct {
	client  *http.Client
	tracker *Tracker
	logger  *slog.Logger
}

var _ inspect.Strategy = (*SitemapStrategy)(nil)

// NewSitemapStrategy wires an HTTP client and the snapshot tracker.
func NewSitemapStrategy(client *http.Client, tracker *Tracker, log *slog.Logger) *SitemapStrategy {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &SitemapStrategy{client: client, tracker: tracker, logger: log}
}

// Name identifies the strategy inside the registry.
func (s *SitemapStrategy) Name() string {
	return "sitemap"
}

// Inspect fetches the sitemap, extracts its URL set, and diffs it
// against the stored snapshot. forceRefresh skips the freshness
// short-circuit.
func (s *SitemapStrategy) Inspect(ctx context.Context, feed domain.Feed, forceRefresh bool) (domain.Outcome, error) {
	out := domain.Outcome{FeedURL: feed.URL, FeedName: feed.Name}

	if !forceRefresh {
		fresh, err := s.tracker.CheckedRecently(ctx, feed.URL, time.Now())
		if err == nil && fresh {
			s.debug("sitemap checked recently, skipping", "feed", feed.URL)
			out.Success = true
			return out, nil
		}
	}

	body, err := fetchBody(ctx, s.client, feed.URL)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("fetch sitemap: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("parse sitemap: %w", err)
	}

	var current []string
	doc.Find("loc").Each(func(_ int, sel *goquery.Selection) {
		if u := strings.TrimSpace(sel.Text()); u != "" {
			current = append(current, u)
		}
	})

	newURLs, err := s.tracker.Reconcile(ctx, feed.URL, current, time.Now())
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("reconcile sitemap %s: %w", feed.URL, err)
	}

	s.debug("sitemap inspected", "feed", feed.URL, "urls", len(current), "new", len(newURLs))

	out.Success = true
	out.NewURLs = newURLs
	out.Content = body
	return out, nil
}

func (s *SitemapStrategy) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func fetchBody(ctx context.Context, client *http.Client, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "SitemapWatcher/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"SitemapWatcher/internal/aggregate"
	"SitemapWatcher/internal/domain"
	"SitemapWatcher/internal/ports"
)

// batchLinkCap limits immediate link lists on on-demand digest passes.
const batchLinkCap = 5

// RunnerDeps wires all driven adapters into the scheduling pass.
type RunnerDeps struct {
	Provider  ports.FeedProvider
	Inspector ports.Inspector
	Cursor    *CursorStore
	Notifier  ports.Notifier
	Logger    *slog.Logger
}

// RunnerConfig tunes a single pass.
type RunnerConfig struct {
	BatchSize   int
	ChatID      string
	FeedDelay   time.Duration
	FooterDelay time.Duration
}

// Runner executes scheduling passes: cursor read, batch selection,
// sequential feed checks, aggregation, notification, cursor write.
type Runner struct {
	provider  ports.FeedProvider
	inspector ports.Inspector
	cursor    *CursorStore
	notifier  ports.Notifier
	logger    *slog.Logger
	cfg       RunnerConfig
}

type passOptions struct {
	forceRefresh bool
	linkCap      int
}

// NewRunner constructs the pass orchestrator.
func NewRunner(deps RunnerDeps, cfg RunnerConfig) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	return &Runner{
		provider:  deps.Provider,
		inspector: deps.Inspector,
		cursor:    deps.Cursor,
		notifier:  deps.Notifier,
		logger:    logger,
		cfg:       cfg,
	}
}

// Trigger starts a scheduling pass in the background and returns
// immediately. Internal errors are logged rather than raised: a
// background pass has no synchronous caller to report to.
func (r *Runner) Trigger(ctx context.Context, reason string) {
	r.spawn(ctx, reason, passOptions{})
}

// TriggerDigest starts an on-demand pass that bypasses the
// checked-recently short-circuit in the inspector and caps immediate
// link lists for batch delivery.
func (r *Runner) TriggerDigest(ctx context.Context) {
	r.spawn(ctx, "digest", passOptions{forceRefresh: true, linkCap: batchLinkCap})
}

func (r *Runner) spawn(ctx context.Context, reason string, opts passOptions) {
	go func() {
		log := r.logger.With("pass", uuid.NewString()[:8], "trigger", reason)
		log.Info("pass started")
		if err := r.runPass(ctx, log, opts); err != nil {
			log.Error("pass failed", "error", err)
			return
		}
		log.Info("pass finished")
	}()
}

// runPass performs one cursor-read-to-cursor-write cycle. The cursor is
// written only after every feed in the slice has been attempted, so a
// hard cutoff mid-pass leaves it at its pre-pass value and the same
// slice is retried next time (at-least-once feed checking).
func (r *Runner) runPass(ctx context.Context, log *slog.Logger, opts passOptions) error {
	if r.provider == nil {
		return fmt.Errorf("feed provider is not configured")
	}

	feeds, err := r.provider.Feeds(ctx)
	if err != nil {
		return fmt.Errorf("load feed list: %w", err)
	}
	if len(feeds) == 0 {
		log.Info("no feeds registered, nothing to do")
		return nil
	}

	progress := r.cursor.Load(ctx)
	sel := SelectBatch(feeds, progress, r.cfg.BatchSize)
	log.Debug("batch selected", "start", sel.StartIndex, "size", len(sel.Feeds), "next", sel.NextIndex, "total", len(feeds))

	outcomes := r.processFeeds(ctx, log, sel.Feeds, opts)

	stats := aggregate.Stats(outcomes)
	if stats.TotalNew > 0 {
		if err := r.sendDigest(ctx, stats); err != nil {
			log.Error("digest not sent", "error", err)
		}
	}

	next := domain.Progress{
		SchemaVersion:    domain.ProgressSchemaVersion,
		LastIndex:        sel.NextIndex,
		LastUpdate:       time.Now().UTC(),
		TotalFeeds:       len(feeds),
		ProcessedInBatch: len(outcomes),
	}
	if err := r.cursor.Save(ctx, next); err != nil {
		// The next pass simply reprocesses the same slice; feed
		// inspection is idempotent.
		log.Warn("cursor write failed", "error", err)
	}

	log.Info("pass summary", "checked", len(outcomes), "new", stats.TotalNew, "domains", len(stats.Domains))
	return nil
}

// processFeeds checks the slice strictly sequentially with a fixed
// pause between feeds. One bad feed never aborts the pass: its error is
// recorded as a failed outcome and processing continues.
func (r *Runner) processFeeds(ctx context.Context, log *slog.Logger, slice []domain.Feed, opts passOptions) []domain.Outcome {
	outcomes := make([]domain.Outcome, 0, len(slice))
	for i, feed := range slice {
		if i > 0 && r.cfg.FeedDelay > 0 {
			time.Sleep(r.cfg.FeedDelay)
		}

		out, err := r.inspector.Inspect(ctx, feed, opts.forceRefresh)
		if err != nil {
			out = domain.Outcome{
				FeedURL:      feed.URL,
				FeedName:     feed.Name,
				Success:      false,
				ErrorMessage: err.Error(),
			}
			log.Warn("feed check failed", "feed", feed.URL, "error", err)
		}
		if out.FeedURL == "" {
			out.FeedURL = feed.URL
		}
		if out.FeedName == "" {
			out.FeedName = feed.Name
		}

		if out.Success && len(out.NewURLs) > 0 {
			if nerr := r.notifyImmediate(ctx, out, opts.linkCap); nerr != nil {
				log.Error("immediate notification failed", "feed", out.FeedURL, "error", nerr)
			}
		}

		outcomes = append(outcomes, out)
	}
	return outcomes
}

// notifyImmediate emits the fixed header, optional attachment, link
// list, footer sequence for one feed. The short pause before the footer
// lets the channel render the preceding messages first.
func (r *Runner) notifyImmediate(ctx context.Context, out domain.Outcome, linkCap int) error {
	if r.notifier == nil || r.cfg.ChatID == "" {
		return fmt.Errorf("notification target is not configured")
	}

	opts := ports.SendOptions{SuppressLinkPreview: true}
	if err := r.notifier.SendText(ctx, r.cfg.ChatID, immediateHeader(out), opts); err != nil {
		return fmt.Errorf("send header: %w", err)
	}

	if len(out.Content) > 0 {
		name := attachmentName(out.FeedURL)
		if err := r.notifier.SendAttachment(ctx, r.cfg.ChatID, out.Content, name, out.FeedURL); err != nil {
			return fmt.Errorf("send attachment: %w", err)
		}
	}

	if err := r.notifier.SendText(ctx, r.cfg.ChatID, immediateLinks(out.NewURLs, linkCap), opts); err != nil {
		return fmt.Errorf("send links: %w", err)
	}

	if r.cfg.FooterDelay > 0 {
		time.Sleep(r.cfg.FooterDelay)
	}

	if err := r.notifier.SendText(ctx, r.cfg.ChatID, immediateFooter(out, time.Now()), opts); err != nil {
		return fmt.Errorf("send footer: %w", err)
	}
	return nil
}

func (r *Runner) sendDigest(ctx context.Context, stats domain.PassStats) error {
	if r.notifier == nil || r.cfg.ChatID == "" {
		return fmt.Errorf("notification target is not configured")
	}

	message := DigestMessage(stats, time.Now())
	if err := r.notifier.SendText(ctx, r.cfg.ChatID, message, ports.SendOptions{SuppressLinkPreview: true}); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}

func attachmentName(feedURL string) string {
	if parsed, err := url.Parse(feedURL); err == nil && parsed.Host != "" {
		return parsed.Host + "-feed.xml"
	}
	return "feed.xml"
}

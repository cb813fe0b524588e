package inspect

import (
	"context"
	"fmt"
	"log/slog"

	"SitemapWatcher/internal/domain"
	"SitemapWatcher/internal/ports"
)

// Strategy captures a single feed-inspection implementation
// (sitemap, RSS, etc.).
type Strategy interface {
	Name() string
	Inspect(ctx context.Context, feed domain.Feed, forceRefresh bool) (domain.Outcome, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("inspector %s is not registered", name)
}

// Dispatcher implements ports.Inspector by routing each feed to the
// strategy named in its configuration, with a fallback for feeds that
// do not name one.
type Dispatcher struct {
	registry *Registry
	fallback string
	logger   *slog.Logger
}

var _ ports.Inspector = (*Dispatcher)(nil)

// NewDispatcher wires the strategy registry with a default strategy name.
func NewDispatcher(reg *Registry, fallback string, log *slog.Logger) *Dispatcher {
	return &Dispatcher{registry: reg, fallback: fallback, logger: log}
}

// Inspect resolves the feed's strategy and delegates to it.
func (d *Dispatcher) Inspect(ctx context.Context, feed domain.Feed, forceRefresh bool) (domain.Outcome, error) {
	if d.registry == nil {
		return domain.Outcome{}, fmt.Errorf("inspector registry is not configured")
	}

	name := feed.Inspector
	if name == "" {
		name = d.fallback
	}

	strategy, err := d.registry.Resolve(name)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("feed %s: %w", feed.URL, err)
	}

	if d.logger != nil {
		d.logger.Debug("inspect feed", "feed", feed.URL, "strategy", name, "force", forceRefresh)
	}

	return strategy.Inspect(ctx, feed, forceRefresh)
}

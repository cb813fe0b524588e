package inspector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"SitemapWatcher/internal/ports"
)

const snapshotKeyPrefix = "inspector/seen/"

// snapshot is the per-feed URL set persisted between checks.
type snapshot struct {
	CheckedAt time.Time `json:"checkedAt"`
	URLs      []string  `json:"urls"`
}

// Tracker persists per-feed URL snapshots in the durable store and
// computes which URLs are new since the previous check.
type Tracker struct {
	store    ports.KVStore
	freshFor time.Duration
}

// NewTracker wires the durable store. freshFor controls how long a feed
// counts as already checked for the short-circuit.
func NewTracker(store ports.KVStore, freshFor time.Duration) *Tracker {
	return &Tracker{store: store, freshFor: freshFor}
}

// CheckedRecently reports whether the feed's snapshot is still fresh,
// letting strategies skip the fetch entirely unless forced.
func (t *Tracker) CheckedRecently(ctx context.Context, feedURL string, now time.Time) (bool, error) {
	snap, found, err := t.load(ctx, feedURL)
	if err != nil || !found {
		return false, err
	}
	return t.freshFor > 0 && now.Sub(snap.CheckedAt) < t.freshFor, nil
}

// Reconcile diffs the currently observed URL set against the stored
// snapshot, persists the new snapshot, and returns the URLs not seen
// before. With no prior snapshot every observed URL counts as new.
func (t *Tracker) Reconcile(ctx context.Context, feedURL string, current []string, now time.Time) ([]string, error) {
	prev, found, err := t.load(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	var fresh []string
	if !found {
		fresh = append(fresh, current...)
	} else {
		seen := make(map[string]struct{}, len(prev.URLs))
		for _, u := range prev.URLs {
			seen[u] = struct{}{}
		}
		for _, u := range current {
			if _, ok := seen[u]; !ok {
				fresh = append(fresh, u)
			}
		}
	}

	if err := t.save(ctx, feedURL, snapshot{CheckedAt: now, URLs: current}); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (t *Tracker) load(ctx context.Context, feedURL string) (snapshot, bool, error) {
	if t.store == nil {
		return snapshot{}, false, fmt.Errorf("tracker store is not configured")
	}

	raw, found, err := t.store.Get(ctx, snapshotKey(feedURL))
	if err != nil {
		return snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		return snapshot{}, false, nil
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		// A corrupt snapshot degrades to "never checked".
		return snapshot{}, false, nil
	}
	return snap, true, nil
}

func (t *Tracker) save(ctx context.Context, feedURL string, snap snapshot) error {
	if t.store == nil {
		return fmt.Errorf("tracker store is not configured")
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := t.store.Put(ctx, snapshotKey(feedURL), string(raw)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func snapshotKey(feedURL string) string {
	return snapshotKeyPrefix + url.QueryEscape(feedURL)
}

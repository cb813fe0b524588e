package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"SitemapWatcher/internal/domain"
	"SitemapWatcher/internal/ports"
)

// cursorKey is the fixed key the scheduling cursor lives under.
const cursorKey = "scheduler/cursor"

// CursorStore reads and writes the typed scheduling cursor on top of the
// untyped durable key-value collaborator.
type CursorStore struct {
	store  ports.KVStore
	logger *slog.Logger
}

// NewCursorStore wires the durable store.
func NewCursorStore(store ports.KVStore, log *slog.Logger) *CursorStore {
	return &CursorStore{store: store, logger: log}
}

// Load returns the persisted cursor. Any failure (store error, missing
// key, corrupt payload) degrades to a fresh cursor at index 0 so a bad
// read restarts the cycle instead of crashing the pass.
func (c *CursorStore) Load(ctx context.Context) domain.Progress {
	fresh := domain.Progress{SchemaVersion: domain.ProgressSchemaVersion}
	if c.store == nil {
		return fresh
	}

	raw, found, err := c.store.Get(ctx, cursorKey)
	if err != nil {
		c.warn("cursor read failed, restarting cycle", "error", err)
		return fresh
	}
	if !found {
		return fresh
	}

	var progress domain.Progress
	if err := json.Unmarshal([]byte(raw), &progress); err != nil {
		c.warn("cursor payload corrupt, restarting cycle", "error", err)
		return fresh
	}
	if progress.SchemaVersion != domain.ProgressSchemaVersion {
		c.warn("cursor schema mismatch, restarting cycle", "stored", progress.SchemaVersion)
		return fresh
	}

	return progress
}

// Save overwrites the cursor as a single key. Last-write-wins; there is
// no conditional write, so concurrent passes can interleave.
func (c *CursorStore) Save(ctx context.Context, progress domain.Progress) error {
	if c.store == nil {
		return fmt.Errorf("cursor store is not configured")
	}

	progress.SchemaVersion = domain.ProgressSchemaVersion
	raw, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("marshal cursor: %w", err)
	}

	if err := c.store.Put(ctx, cursorKey, string(raw)); err != nil {
		return fmt.Errorf("write cursor: %w", err)
	}
	return nil
}

func (c *CursorStore) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

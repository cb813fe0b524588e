package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close error: %v", err)
		}
	})
	return store
}

func TestGetAbsentKey(t *testing.T) {
	store := openTestStore(t)

	value, found, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if found || value != "" {
		t.Fatalf("expected absence, got %q found=%v", value, found)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "scheduler/cursor", `{"lastIndex":3}`); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	value, found, err := store.Get(ctx, "scheduler/cursor")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !found {
		t.Fatalf("expected key to exist")
	}
	if value != `{"lastIndex":3}` {
		t.Fatalf("unexpected value: %s", value)
	}
}

func TestPutOverwritesLastWriteWins(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "k", "first"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := store.Put(ctx, "k", "second"); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	value, _, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if value != "second" {
		t.Fatalf("expected last write to win, got %s", value)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "a", "1"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := store.Put(ctx, "b", "2"); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	value, _, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if value != "1" {
		t.Fatalf("unexpected value for a: %s", value)
	}
}

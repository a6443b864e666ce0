package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"collectabase/internal/scrape"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func fp(v float64) *float64 {
	return &v
}

func TestOpenCreatesSchemaAndReopens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "catalog.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	count, err := reopened.Count(context.Background(), "")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestClearScopedToPlatform(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	batch := []scrape.Observation{
		{ExternalID: "1", Title: "Mario Kart 8 Deluxe", Platform: "nintendo switch", LooseUSD: fp(39.99)},
		{ExternalID: "2", Title: "Halo 3", Platform: "xbox 360", LooseUSD: fp(9.99)},
	}
	if _, err := store.Upsert(ctx, batch, 0.92); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	removed, err := store.Clear(ctx, "xbox 360")
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	count, err := store.Count(ctx, "")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count after clear = %d, want 1", count)
	}

	removed, err = store.Clear(ctx, "")
	if err != nil {
		t.Fatalf("Clear all failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed all = %d, want 1", removed)
	}
}

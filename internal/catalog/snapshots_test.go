package catalog

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRecordSnapshotAndHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stored, err := store.RecordSnapshot(ctx, Snapshot{
		ItemRef:        7,
		Source:         SourceLiveScrape,
		LoosePrice:     fp(36.79),
		CompletePrice:  fp(40.94),
		ConversionRate: 0.92,
		ExternalID:     "123",
	})
	if err != nil {
		t.Fatalf("RecordSnapshot failed: %v", err)
	}
	if stored.ID == 0 {
		t.Error("expected assigned snapshot ID")
	}
	if stored.ObservedAt.IsZero() {
		t.Error("expected ObservedAt to default to now")
	}

	history, err := store.History(ctx, 7, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	snap := history[0]
	if snap.Source != SourceLiveScrape || snap.ConversionRate != 0.92 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.LoosePrice == nil || *snap.LoosePrice != 36.79 {
		t.Errorf("loose price = %v", snap.LoosePrice)
	}
	if snap.NewPrice != nil {
		t.Errorf("new price = %v, want nil", snap.NewPrice)
	}
}

func TestHistoryCappedNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		_, err := store.RecordSnapshot(ctx, Snapshot{
			ItemRef:        1,
			Source:         SourceManual,
			LoosePrice:     fp(float64(i)),
			ConversionRate: 1.0,
			ObservedAt:     start.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("RecordSnapshot %d failed: %v", i, err)
		}
	}

	history, err := store.History(ctx, 1, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 20 {
		t.Fatalf("history length = %d, want default cap of 20", len(history))
	}
	if *history[0].LoosePrice != 24 {
		t.Errorf("newest snapshot loose = %v, want 24", *history[0].LoosePrice)
	}
	if *history[19].LoosePrice != 5 {
		t.Errorf("oldest returned loose = %v, want 5", *history[19].LoosePrice)
	}

	short, err := store.History(ctx, 1, 3)
	if err != nil {
		t.Fatalf("History with limit failed: %v", err)
	}
	if len(short) != 3 {
		t.Fatalf("history length = %d, want 3", len(short))
	}
	if *short[0].LoosePrice != 24 || *short[2].LoosePrice != 22 {
		t.Errorf("limited history = [%v .. %v], want newest three", *short[0].LoosePrice, *short[2].LoosePrice)
	}
}

func TestLatestSnapshotMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LatestSnapshot(context.Background(), 99)
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("err = %v, want ErrNoSnapshot", err)
	}
}

func TestRecordSnapshotValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.RecordSnapshot(ctx, Snapshot{Source: SourceManual}); err == nil {
		t.Error("expected error for missing item ref")
	}
	if _, err := store.RecordSnapshot(ctx, Snapshot{ItemRef: 1}); err == nil {
		t.Error("expected error for missing source")
	}
}

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"lean-dashboard/internal/models"
)

func newTestArchive(t *testing.T) *ArchiveStore {
	t.Helper()
	store, err := NewArchiveStore(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestArchiveEquityRoundTrip(t *testing.T) {
	store := newTestArchive(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	points := []models.EquityPoint{
		models.FlatPoint(base, 100000),
		models.FlatPoint(base.Add(time.Minute), 100500),
	}
	if err := store.SaveEquityPoints(ctx, "s1", points); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetEquityPoints(ctx, "s1", time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}
	if got[0].Close != 100000 || got[1].Close != 100500 {
		t.Errorf("closes: %v %v", got[0].Close, got[1].Close)
	}
	if !got[0].Datetime.Before(got[1].Datetime) {
		t.Error("points must come back ascending")
	}
}

func TestArchiveEquityReplaySameInstantOverwrites(t *testing.T) {
	store := newTestArchive(t)
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := store.SaveEquityPoints(ctx, "s1", []models.EquityPoint{models.FlatPoint(at, 100)}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveEquityPoints(ctx, "s1", []models.EquityPoint{models.FlatPoint(at, 200)}); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetEquityPoints(ctx, "s1", time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the replay collapsed, got %d rows", len(got))
	}
	if got[0].Close != 200 {
		t.Errorf("latest write wins, got %v", got[0].Close)
	}
}

func TestArchiveEquityTimeBounds(t *testing.T) {
	store := newTestArchive(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	var points []models.EquityPoint
	for i := 0; i < 5; i++ {
		points = append(points, models.FlatPoint(base.Add(time.Duration(i)*time.Hour), float64(100+i)))
	}
	if err := store.SaveEquityPoints(ctx, "s1", points); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetEquityPoints(ctx, "s1", base.Add(time.Hour), base.Add(3*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("inclusive bounds should keep 3 rows, got %d", len(got))
	}
}

func TestArchiveSessionsAreIsolated(t *testing.T) {
	store := newTestArchive(t)
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := store.SaveEquityPoints(ctx, "s1", []models.EquityPoint{models.FlatPoint(at, 100)}); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetEquityPoints(ctx, "s2", time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("session s2 must be empty, got %v", got)
	}
}

func TestArchiveSampleRoundTrip(t *testing.T) {
	store := newTestArchive(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		sample := models.RuntimeSample{
			Datetime:   base.Add(time.Duration(i) * time.Minute),
			Equity:     float64(1000 + i),
			Holdings:   500,
			Unrealized: -10,
			Fees:       1.5,
		}
		if err := store.SaveSample(ctx, "s1", sample); err != nil {
			t.Fatal(err)
		}
	}

	samples, err := store.GetSamples(ctx, "s1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected limit 2, got %d", len(samples))
	}
	if !samples[0].Datetime.Before(samples[1].Datetime) {
		t.Error("samples must come back ascending")
	}
	if samples[1].Equity != 1002 {
		t.Errorf("the newest samples are kept, got %v", samples[1].Equity)
	}
}

func TestArchiveLastEquityTime(t *testing.T) {
	store := newTestArchive(t)
	ctx := context.Background()

	last, err := store.LastEquityTime(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if !last.IsZero() {
		t.Errorf("no rows means zero time, got %v", last)
	}

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := store.SaveEquityPoints(ctx, "s1", []models.EquityPoint{
		models.FlatPoint(at, 100),
		models.FlatPoint(at.Add(time.Hour), 200),
	}); err != nil {
		t.Fatal(err)
	}

	last, err = store.LastEquityTime(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if !last.Equal(at.Add(time.Hour)) {
		t.Errorf("expected the newest timestamp, got %v", last)
	}
}

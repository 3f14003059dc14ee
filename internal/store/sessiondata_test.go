package store

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"lean-dashboard/internal/models"
)

func resultsWithRuntime(stats map[string]string) *models.SnapshotData {
	return &models.SnapshotData{RuntimeStatistics: stats}
}

func TestSessionDataUpdateParsesRuntimeStrings(t *testing.T) {
	dir := t.TempDir()
	s := NewSessionData(dir, zerolog.Nop())

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	samples := s.Update(resultsWithRuntime(map[string]string{
		"Equity":     "$101,500.25",
		"Holdings":   "$50,000.00",
		"Unrealized": "-$1,200.50",
		"Fees":       "$35.10",
	}), at)

	if len(samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(samples))
	}
	got := samples[0]
	if got.Equity != 101500.25 {
		t.Errorf("equity: %v", got.Equity)
	}
	if got.Holdings != 50000 {
		t.Errorf("holdings: %v", got.Holdings)
	}
	if got.Unrealized != -1200.50 {
		t.Errorf("unrealized: %v", got.Unrealized)
	}
	if got.Fees != 35.10 {
		t.Errorf("fees: %v", got.Fees)
	}

	// The table must survive a reload.
	stored := s.LoadStored()
	if len(stored) != 1 || stored[0].Equity != 101500.25 {
		t.Errorf("stored: %+v", stored)
	}
}

func TestSessionDataUpdateSkipsNonPositiveEquity(t *testing.T) {
	dir := t.TempDir()
	s := NewSessionData(dir, zerolog.Nop())

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	samples := s.Update(resultsWithRuntime(map[string]string{"Equity": "$0.00"}), at)
	if len(samples) != 0 {
		t.Errorf("zero-equity sample must be dropped, got %v", samples)
	}
	if stored := s.LoadStored(); len(stored) != 0 {
		t.Errorf("nothing should persist, got %v", stored)
	}
}

func TestSessionDataUpdateNilResults(t *testing.T) {
	dir := t.TempDir()
	s := NewSessionData(dir, zerolog.Nop())

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	s.Update(resultsWithRuntime(map[string]string{"Equity": "$100.00"}), at)

	samples := s.Update(nil, at.Add(time.Minute))
	if len(samples) != 1 {
		t.Errorf("nil results must return the stored table unchanged, got %v", samples)
	}
}

func TestSessionDataUpdateDeduplicatesByTimestamp(t *testing.T) {
	dir := t.TempDir()
	s := NewSessionData(dir, zerolog.Nop())

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	s.Update(resultsWithRuntime(map[string]string{"Equity": "$100.00"}), at)
	samples := s.Update(resultsWithRuntime(map[string]string{"Equity": "$200.00"}), at)

	if len(samples) != 1 {
		t.Fatalf("same-instant samples must collapse, got %d", len(samples))
	}
	if samples[0].Equity != 200 {
		t.Errorf("latest sample wins, got %v", samples[0].Equity)
	}
}

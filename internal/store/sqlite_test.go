package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cupscan/internal/errors"
	"cupscan/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeBars(count int, start time.Time, base float64) []models.Bar {
	bars := make([]models.Bar, count)
	for i := 0; i < count; i++ {
		price := base + float64(i)
		bars[i] = models.Bar{
			Timestamp: start.Add(time.Duration(i) * 5 * time.Minute),
			Open:      price,
			High:      price + 0.5,
			Low:       price - 0.5,
			Close:     price + 0.25,
			Volume:    int64(1000 + i),
		}
	}
	return bars
}

// TestReplaceBarsRoundTrip verifies that stored bars come back unchanged
// and that a second replace fully swaps the window.
func TestReplaceBarsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 8, 18, 13, 30, 0, 0, time.UTC)

	// Test 1: store and read back a window.
	bars := makeBars(5, start, 100.0)
	if err := s.ReplaceBars(ctx, "AAPL", bars); err != nil {
		t.Fatalf("Failed to replace bars: %v", err)
	}

	got, err := s.GetBars(ctx, "AAPL")
	if err != nil {
		t.Fatalf("Failed to get bars: %v", err)
	}
	if len(got) != len(bars) {
		t.Fatalf("Expected %d bars, got %d", len(bars), len(got))
	}
	for i, b := range bars {
		if !got[i].Timestamp.Equal(b.Timestamp) {
			t.Errorf("Bar %d timestamp mismatch: expected %v, got %v", i, b.Timestamp, got[i].Timestamp)
		}
		if got[i].Close != b.Close || got[i].Volume != b.Volume {
			t.Errorf("Bar %d mismatch: expected %+v, got %+v", i, b, got[i])
		}
	}

	// Test 2: replacing swaps the whole window, not just overlapping rows.
	fresh := makeBars(3, start.Add(24*time.Hour), 110.0)
	if err := s.ReplaceBars(ctx, "AAPL", fresh); err != nil {
		t.Fatalf("Failed to replace bars: %v", err)
	}

	count, err := s.BarCount(ctx, "AAPL")
	if err != nil {
		t.Fatalf("Failed to count bars: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 bars after replace, got %d", count)
	}

	latest, err := s.LatestTimestamp(ctx, "AAPL")
	if err != nil {
		t.Fatalf("Failed to get latest timestamp: %v", err)
	}
	if !latest.Equal(fresh[2].Timestamp) {
		t.Errorf("Expected latest timestamp %v, got %v", fresh[2].Timestamp, latest)
	}
}

// TestReplaceBarsEmptyClears verifies that replacing with an empty window
// removes the symbol's rows.
func TestReplaceBarsEmptyClears(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bars := makeBars(4, time.Date(2025, 8, 18, 13, 30, 0, 0, time.UTC), 200.0)
	if err := s.ReplaceBars(ctx, "MSFT", bars); err != nil {
		t.Fatalf("Failed to replace bars: %v", err)
	}
	if err := s.ReplaceBars(ctx, "MSFT", nil); err != nil {
		t.Fatalf("Failed to clear bars: %v", err)
	}

	count, err := s.BarCount(ctx, "MSFT")
	if err != nil {
		t.Fatalf("Failed to count bars: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 bars after clearing, got %d", count)
	}
}

// TestGetClosesOrderAndNoData verifies time ordering of the close series
// and the ErrNoData contract for empty symbols.
func TestGetClosesOrderAndNoData(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 8, 18, 13, 30, 0, 0, time.UTC)

	// Insert out of order; reads must come back in time order.
	bars := []models.Bar{
		{Timestamp: start.Add(10 * time.Minute), Open: 1, High: 1, Low: 1, Close: 3.0, Volume: 1},
		{Timestamp: start, Open: 1, High: 1, Low: 1, Close: 1.0, Volume: 1},
		{Timestamp: start.Add(5 * time.Minute), Open: 1, High: 1, Low: 1, Close: 2.0, Volume: 1},
	}
	if err := s.ReplaceBars(ctx, "NVDA", bars); err != nil {
		t.Fatalf("Failed to replace bars: %v", err)
	}

	closes, err := s.GetCloses(ctx, "NVDA")
	if err != nil {
		t.Fatalf("Failed to get closes: %v", err)
	}
	want := []float64{1.0, 2.0, 3.0}
	if len(closes) != len(want) {
		t.Fatalf("Expected %d closes, got %d", len(want), len(closes))
	}
	for i, c := range want {
		if closes[i] != c {
			t.Errorf("Close %d: expected %f, got %f", i, c, closes[i])
		}
	}

	// Unknown symbol maps to the no-data sentinel.
	_, err = s.GetCloses(ctx, "TSLA")
	if err == nil {
		t.Fatal("Expected error for symbol without bars, got nil")
	}
	if !errors.Is(err, errors.ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}

// TestSymbolsAndLatestTimestamp covers the listing and freshness helpers.
func TestSymbolsAndLatestTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 8, 18, 13, 30, 0, 0, time.UTC)

	if err := s.ReplaceBars(ctx, "META", makeBars(2, start, 300.0)); err != nil {
		t.Fatalf("Failed to replace bars: %v", err)
	}
	if err := s.ReplaceBars(ctx, "AMZN", makeBars(2, start, 150.0)); err != nil {
		t.Fatalf("Failed to replace bars: %v", err)
	}

	symbols, err := s.Symbols(ctx)
	if err != nil {
		t.Fatalf("Failed to list symbols: %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "AMZN" || symbols[1] != "META" {
		t.Errorf("Expected sorted symbols [AMZN META], got %v", symbols)
	}

	// A symbol with no rows reports the zero time without an error.
	latest, err := s.LatestTimestamp(ctx, "GOOGL")
	if err != nil {
		t.Fatalf("Failed to get latest timestamp: %v", err)
	}
	if !latest.IsZero() {
		t.Errorf("Expected zero time for empty symbol, got %v", latest)
	}
}

// TestPing verifies the connection check.
func TestPing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Failed to ping store: %v", err)
	}
}

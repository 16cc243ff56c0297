package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"cupscan/internal/analysis/patterns"
	"cupscan/internal/config"
	"cupscan/internal/errors"
	"cupscan/internal/models"
)

type fakeStore struct {
	closes  map[string][]float64
	dbErr   error
	pingErr error
}

func (f *fakeStore) ReplaceBars(context.Context, string, []models.Bar) error { return nil }
func (f *fakeStore) GetBars(context.Context, string) ([]models.Bar, error)   { return nil, nil }

func (f *fakeStore) GetCloses(_ context.Context, symbol string) ([]float64, error) {
	if f.dbErr != nil {
		return nil, f.dbErr
	}
	closes, ok := f.closes[symbol]
	if !ok || len(closes) == 0 {
		return nil, errors.NewDataError("bars", symbol, "no stored bars", errors.ErrNoData)
	}
	return closes, nil
}

func (f *fakeStore) LatestTimestamp(_ context.Context, symbol string) (time.Time, error) {
	if len(f.closes[symbol]) == 0 {
		return time.Time{}, nil
	}
	return time.Date(2025, 8, 18, 19, 55, 0, 0, time.UTC), nil
}

func (f *fakeStore) BarCount(_ context.Context, symbol string) (int, error) {
	if f.dbErr != nil {
		return 0, f.dbErr
	}
	return len(f.closes[symbol]), nil
}

func (f *fakeStore) Symbols(context.Context) ([]string, error) { return nil, nil }
func (f *fakeStore) Ping(context.Context) error                { return f.pingErr }
func (f *fakeStore) Close() error                              { return nil }

// rampTo extends a series linearly to target over the given number of steps.
func rampTo(series []float64, target float64, steps int) []float64 {
	last := series[len(series)-1]
	for i := 1; i <= steps; i++ {
		series = append(series, last+(target-last)*float64(i)/float64(steps))
	}
	return series
}

// patternSeries builds closes containing one cup-and-handle under default
// thresholds.
func patternSeries() []float64 {
	s := []float64{99.0}
	s = rampTo(s, 100.0, 5)
	s = rampTo(s, 98.0, 10)
	s = rampTo(s, 100.2, 10)
	s = rampTo(s, 99.0, 10)
	s = rampTo(s, 101.0, 10)
	s = rampTo(s, 98.3, 6)
	s = rampTo(s, 99.2, 6)
	s = rampTo(s, 98.2, 6)
	s = rampTo(s, 99.3, 6)
	s = rampTo(s, 98.3, 5)
	return s
}

func newTestServer(t *testing.T, st *fakeStore) *Server {
	t.Helper()

	cfg := config.ServerConfig{
		Addr:         ":0",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return NewServer(cfg, st, patterns.NewDetector(), zerolog.Nop())
}

func checkPattern(s *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/check_pattern", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// TestCheckPatternDetects verifies the success payload for a symbol whose
// closes contain the pattern.
func TestCheckPatternDetects(t *testing.T) {
	st := &fakeStore{closes: map[string][]float64{"AAPL": patternSeries()}}
	s := newTestServer(t, st)

	w := checkPattern(s, `{"symbol": "aapl"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var result models.DetectionResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.Symbol != "AAPL" {
		t.Errorf("Expected normalized symbol AAPL, got %s", result.Symbol)
	}
	if !result.Detected {
		t.Error("Expected cup_and_handle_detected to be true")
	}
	if result.Matches != 1 {
		t.Errorf("Expected 1 match, got %d", result.Matches)
	}
	if result.Samples != len(patternSeries()) {
		t.Errorf("Expected %d samples, got %d", len(patternSeries()), result.Samples)
	}
}

// TestCheckPatternNotDetected verifies a flat series reports false.
func TestCheckPatternNotDetected(t *testing.T) {
	flat := make([]float64, 50)
	for i := range flat {
		flat[i] = 100.0
	}
	st := &fakeStore{closes: map[string][]float64{"MSFT": flat}}
	s := newTestServer(t, st)

	w := checkPattern(s, `{"symbol": "MSFT"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var result models.DetectionResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.Detected {
		t.Error("Expected cup_and_handle_detected to be false")
	}
}

// TestCheckPatternBadRequests covers malformed bodies and unknown symbols.
func TestCheckPatternBadRequests(t *testing.T) {
	s := newTestServer(t, &fakeStore{closes: map[string][]float64{}})

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"empty body", ``, "symbol is required"},
		{"missing symbol", `{}`, "symbol is required"},
		{"not json", `symbol=AAPL`, "symbol is required"},
		{"unknown symbol", `{"symbol": "ENRON"}`, "invalid stock symbol 'ENRON'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := checkPattern(s, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.wantMsg) {
				t.Errorf("Expected error containing %q, got %s", tt.wantMsg, w.Body.String())
			}
		})
	}
}

// TestCheckPatternNoData verifies 404 for a watched symbol with nothing
// stored.
func TestCheckPatternNoData(t *testing.T) {
	s := newTestServer(t, &fakeStore{closes: map[string][]float64{}})

	w := checkPattern(s, `{"symbol": "TSLA"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "no data found for symbol 'TSLA'") {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

// TestCheckPatternStoreFailure verifies 500 on unexpected store errors.
func TestCheckPatternStoreFailure(t *testing.T) {
	st := &fakeStore{dbErr: errors.Wrap(errors.ErrDatabaseError, "disk gone")}
	s := newTestServer(t, st)

	w := checkPattern(s, `{"symbol": "NVDA"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "database error") {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

// TestHealth covers the healthy and degraded paths.
func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	s = newTestServer(t, &fakeStore{pingErr: errors.ErrDatabaseError})
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

// TestSymbols verifies watchlist coverage reporting.
func TestSymbols(t *testing.T) {
	st := &fakeStore{closes: map[string][]float64{"AAPL": {1, 2, 3}}}
	s := newTestServer(t, st)

	req := httptest.NewRequest(http.MethodGet, "/symbols", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Symbols []symbolStatus `json:"symbols"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(response.Symbols) != len(models.WatchedSymbols()) {
		t.Fatalf("Expected %d symbols, got %d", len(models.WatchedSymbols()), len(response.Symbols))
	}

	for _, status := range response.Symbols {
		if status.Symbol == "AAPL" {
			if status.Bars != 3 {
				t.Errorf("Expected 3 bars for AAPL, got %d", status.Bars)
			}
			if status.LatestBar == nil {
				t.Error("Expected latest_bar for AAPL")
			}
		} else if status.Bars != 0 {
			t.Errorf("Expected 0 bars for %s, got %d", status.Symbol, status.Bars)
		}
	}
}

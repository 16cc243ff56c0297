// Package models provides domain models for the pattern scanner.
package models

import (
	"time"
)

// watchedSymbols is the fixed set of tickers the scanner tracks.
var watchedSymbols = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "NVDA", "META", "TSLA"}

// WatchedSymbols returns a copy of the tracked ticker list.
func WatchedSymbols() []string {
	out := make([]string, len(watchedSymbols))
	copy(out, watchedSymbols)
	return out
}

// IsWatched reports whether symbol is in the tracked set.
func IsWatched(symbol string) bool {
	for _, s := range watchedSymbols {
		if s == symbol {
			return true
		}
	}
	return false
}

// Bar represents OHLCV data for a single sampling interval.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Closes extracts the closing prices from a bar sequence, preserving order.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// DetectionResult is the outcome of running pattern detection for one symbol.
type DetectionResult struct {
	Symbol    string    `json:"symbol"`
	Detected  bool      `json:"cup_and_handle_detected"`
	Matches   int       `json:"matches,omitempty"`
	Samples   int       `json:"samples,omitempty"`
	CheckedAt time.Time `json:"checked_at,omitempty"`
}

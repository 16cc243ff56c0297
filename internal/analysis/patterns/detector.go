package patterns

import (
	"cupscan/internal/errors"
)

// DefaultWindow is the sliding-window size used by NewDetector.
const DefaultWindow = 5

// Detector bundles a window size with a threshold configuration and runs the
// two-stage detection: extrema extraction, then the quintuple search. A
// Detector is immutable after construction and safe for concurrent use.
type Detector struct {
	window     int
	thresholds Thresholds
}

// NewDetector returns a detector with the default window and thresholds.
func NewDetector() *Detector {
	return &Detector{window: DefaultWindow, thresholds: DefaultThresholds()}
}

// NewDetectorWith returns a detector with a custom window and thresholds,
// rejecting an invalid configuration at construction time.
func NewDetectorWith(window int, th Thresholds) (*Detector, error) {
	if window < 1 {
		return nil, errors.NewConfigError("detection", "window_size", "must be a positive integer")
	}
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return &Detector{window: window, thresholds: th.Clone()}, nil
}

// Window returns the configured sliding-window size.
func (d *Detector) Window() int {
	return d.window
}

// Thresholds returns a copy of the configured thresholds.
func (d *Detector) Thresholds() Thresholds {
	return d.thresholds.Clone()
}

// Matches runs extrema detection followed by the quintuple search and
// returns every match in deterministic order. An empty series yields an
// empty result, not an error.
func (d *Detector) Matches(prices []float64) ([]Match, error) {
	ex := Detect(prices, d.window)
	return Search(prices, ex, d.thresholds)
}

// HasPattern reports whether the series contains at least one
// cup-and-handle match.
func (d *Detector) HasPattern(prices []float64) (bool, error) {
	matches, err := d.Matches(prices)
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

package collector

import (
	"errors"
	"testing"
	"time"
)

// TestBreakerTripsAndRecovers walks the full closed/open/half-open cycle.
func TestBreakerTripsAndRecovers(t *testing.T) {
	b := NewBreaker(3, 2, 20*time.Millisecond)

	// Test 1: stays closed below the threshold
	b.RecordFailure()
	b.RecordFailure()
	if b.State() != BreakerClosed {
		t.Fatalf("Expected CLOSED below threshold, got %s", b.State())
	}

	// Test 2: a success resets the failure count
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	if b.State() != BreakerClosed {
		t.Fatalf("Expected failure count reset on success, got %s", b.State())
	}

	// Test 3: trips at the threshold
	b.RecordFailure()
	if b.State() != BreakerOpen {
		t.Fatalf("Expected OPEN at threshold, got %s", b.State())
	}
	if err := b.Allow(); !errors.Is(err, ErrUpstreamSuspended) {
		t.Errorf("Expected ErrUpstreamSuspended while open, got %v", err)
	}

	// Test 4: admits a probe after the cooldown
	time.Sleep(25 * time.Millisecond)
	if err := b.Allow(); err != nil {
		t.Fatalf("Expected probe admitted after cooldown, got %v", err)
	}
	if b.State() != BreakerHalfOpen {
		t.Fatalf("Expected HALF_OPEN after cooldown, got %s", b.State())
	}

	// Test 5: probe successes close the breaker
	b.RecordSuccess()
	b.RecordSuccess()
	if b.State() != BreakerClosed {
		t.Errorf("Expected CLOSED after probe successes, got %s", b.State())
	}
}

// TestBreakerReopensOnProbeFailure verifies a failed probe goes straight
// back to open.
func TestBreakerReopensOnProbeFailure(t *testing.T) {
	b := NewBreaker(1, 1, 10*time.Millisecond)

	b.RecordFailure()
	if b.State() != BreakerOpen {
		t.Fatalf("Expected OPEN after tripping, got %s", b.State())
	}

	time.Sleep(15 * time.Millisecond)
	if err := b.Allow(); err != nil {
		t.Fatalf("Expected probe admitted, got %v", err)
	}

	b.RecordFailure()
	if b.State() != BreakerOpen {
		t.Errorf("Expected OPEN after failed probe, got %s", b.State())
	}
	if err := b.Allow(); !errors.Is(err, ErrUpstreamSuspended) {
		t.Errorf("Expected ErrUpstreamSuspended after failed probe, got %v", err)
	}
}
